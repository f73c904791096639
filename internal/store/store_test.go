package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/models"
)

func strPtr(s string) *string { return &s }

func priPtr(p models.Priority) *models.Priority { return &p }

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "dir", "tasks.jsonl"))
	require.NoError(t, err)
	return s
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore("")
	require.Error(t, err)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)

	tasks, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(context.Background(), nil))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestRoundTripPreservesFieldsAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := []models.Task{
		{
			ID:          7,
			Name:        "Ship report",
			Desc:        strPtr("quarterly numbers"),
			Tags:        []string{"work", "Urgent"},
			DueDate:     strPtr("2024-06-11"),
			Priority:    priPtr(models.PriorityHigh),
			Status:      models.StatusCompleted,
			CreatedAt:   "2024-06-10T09:00:00.000000",
			CompletedAt: strPtr("2024-06-10T17:30:00.000000"),
		},
		{
			ID:        2,
			Name:      "Water plants",
			Tags:      []string{},
			Status:    models.StatusActive,
			CreatedAt: "2024-06-09T08:00:00.000000",
		},
		{
			ID:        3,
			Name:      "日本語のタスク",
			Status:    models.StatusArchived,
			CreatedAt: "2024-06-09T08:00:01.000000",
		},
	}
	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// absent tags stay absent, empty tags stay empty
	assert.NotNil(t, out[1].Tags)
	assert.Nil(t, out[2].Tags)
}

func TestSaveWritesOneRecordPerLineWithNulls(t *testing.T) {
	s := newTestStore(t)
	tasks := []models.Task{
		{ID: 1, Name: "a", Status: models.StatusActive, CreatedAt: "2024-06-10T09:00:00.000000"},
		{ID: 2, Name: "b <&>", Status: models.StatusActive, CreatedAt: "2024-06-10T09:00:00.000000"},
	}
	require.NoError(t, s.Save(context.Background(), tasks))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"desc":null`)
	assert.Contains(t, lines[0], `"completed_at":null`)
	assert.Contains(t, lines[1], `"name":"b <&>"`)
}

func TestSaveOverwritesWholeFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []models.Task{
		{ID: 1, Name: "a", Status: models.StatusActive, CreatedAt: "x"},
		{ID: 2, Name: "b", Status: models.StatusActive, CreatedAt: "x"},
	}))
	require.NoError(t, s.Save(ctx, []models.Task{
		{ID: 2, Name: "b", Status: models.StatusActive, CreatedAt: "x"},
	}))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].ID)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoadSkipsBlankLines(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	content := `{"id":1,"name":"a","status":"active","created_at":"2024-06-10T09:00:00"}

{"id":2,"name":"b","status":"active","created_at":"2024-06-10T09:00:00"}
`
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))

	out, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestLoadCorruptRecord(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"bad json", `{"id":1,"name":`},
		{"not an object", `[1,2,3]`},
		{"unknown status", `{"id":1,"name":"a","status":"done","created_at":"x"}`},
		{"unknown priority", `{"id":1,"name":"a","status":"active","priority":"urgent","created_at":"x"}`},
		{"bad due date", `{"id":1,"name":"a","status":"active","due_date":"2024-02-30","created_at":"x"}`},
		{"missing id", `{"name":"a","status":"active","created_at":"x"}`},
		{"missing name", `{"id":1,"status":"active","created_at":"x"}`},
		{"missing status", `{"id":1,"name":"a","created_at":"x"}`},
		{"missing created_at", `{"id":1,"name":"a","status":"active"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
			good := `{"id":9,"name":"ok","status":"active","created_at":"x"}`
			require.NoError(t, os.WriteFile(s.Path(), []byte(good+"\n"+tt.line+"\n"), 0o644))

			out, err := s.Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, models.ErrCorruptRecord))

			var corrupt *CorruptRecordError
			require.True(t, errors.As(err, &corrupt))
			assert.Equal(t, 2, corrupt.Line)
			assert.Contains(t, err.Error(), s.Path())
		})
	}
}
