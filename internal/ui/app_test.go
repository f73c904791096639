package ui

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/store"
	"github.com/tgienger/todo/internal/todo"
	"github.com/tgienger/todo/internal/ui/views"
)

type memSettings map[string]string

func (m memSettings) GetSetting(key string) (string, error) { return m[key], nil }

func (m memSettings) SetSetting(key, value string) error {
	m[key] = value
	return nil
}

func newTestRepo(t *testing.T) *todo.Repository {
	t.Helper()
	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "tasks.jsonl"))
	require.NoError(t, err)
	clock := func() time.Time { return time.Date(2024, 6, 10, 9, 30, 0, 0, time.Local) }
	return todo.NewRepository(fs,
		todo.WithClock(clock),
		todo.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestInitRestoresRange(t *testing.T) {
	settings := memSettings{rangeSettingKey: "week"}
	app := NewApp(context.Background(), newTestRepo(t), settings)
	app.Init()
	assert.Equal(t, models.RangeWeek, app.taskList.Range())
}

func TestInitIgnoresUnknownRange(t *testing.T) {
	settings := memSettings{rangeSettingKey: "fortnight"}
	app := NewApp(context.Background(), newTestRepo(t), settings)
	app.Init()
	assert.Equal(t, models.Range(""), app.taskList.Range())
}

func TestRangeChangedIsSaved(t *testing.T) {
	settings := memSettings{}
	app := NewApp(context.Background(), newTestRepo(t), settings)

	_, cmd := app.Update(views.RangeChanged{Range: models.RangeMonth})
	assert.Nil(t, cmd)
	assert.Equal(t, "month", settings[rangeSettingKey])
}

func TestNilSettings(t *testing.T) {
	app := NewApp(context.Background(), newTestRepo(t), nil)
	assert.NotNil(t, app.Init())
	_, cmd := app.Update(views.RangeChanged{Range: models.RangeYear})
	assert.Nil(t, cmd)

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Contains(t, app.View(), "No tasks found")
}
