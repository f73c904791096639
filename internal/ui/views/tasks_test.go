package views

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
)

func newTestView(t *testing.T) (*TaskListView, *todo.Repository) {
	t.Helper()
	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "tasks.jsonl"))
	require.NoError(t, err)
	clock := func() time.Time { return time.Date(2024, 6, 10, 9, 30, 0, 0, time.Local) }
	repo := todo.NewRepository(fs,
		todo.WithClock(clock),
		todo.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	v := NewTaskListView(context.Background(), repo)
	v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return v, repo
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds the view's own messages back until nothing is left.
// Other messages, such as cursor blinks, are dropped.
func drain(t *testing.T, v *TaskListView, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var emitted []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tasksLoadedMsg, taskChangedMsg, errMsg:
			_, next := v.Update(msg)
			queue = append(queue, next)
		default:
			emitted = append(emitted, msg)
		}
	}
	return emitted
}

func press(t *testing.T, v *TaskListView, msg tea.KeyMsg) []tea.Msg {
	t.Helper()
	_, cmd := v.Update(msg)
	return drain(t, v, cmd)
}

func mustCreate(t *testing.T, repo *todo.Repository, in models.CreateTask) models.Task {
	t.Helper()
	task, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	return task
}

func names(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Name
	}
	return out
}

func TestInitListsActiveTasksWithoutLimit(t *testing.T) {
	v, repo := newTestView(t)
	for i := 0; i < 12; i++ {
		mustCreate(t, repo, models.CreateTask{Name: "task"})
	}
	done := mustCreate(t, repo, models.CreateTask{Name: "done"})
	_, err := repo.Finish(context.Background(), done.ID)
	require.NoError(t, err)

	drain(t, v, v.Init())
	assert.Len(t, v.tasks, 12)
	assert.Contains(t, v.View(), "12 shown")
}

func TestFinishSelected(t *testing.T) {
	v, repo := newTestView(t)
	mustCreate(t, repo, models.CreateTask{Name: "first"})
	mustCreate(t, repo, models.CreateTask{Name: "second"})
	drain(t, v, v.Init())

	press(t, v, runes("j"))
	press(t, v, runes("x"))

	assert.Equal(t, "Task 2 marked as completed", v.message)
	assert.Equal(t, []string{"first"}, names(v.tasks))
	task, ok, err := repo.Get(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.NotNil(t, task.CompletedAt)
}

func TestStatusCycleShowsOtherStatuses(t *testing.T) {
	v, repo := newTestView(t)
	mustCreate(t, repo, models.CreateTask{Name: "open"})
	drain(t, v, v.Init())
	press(t, v, runes("a"))
	assert.Empty(t, v.tasks)

	press(t, v, runes("s"))
	assert.Equal(t, models.StatusCompleted, v.status)
	assert.Empty(t, v.tasks)

	press(t, v, runes("s"))
	assert.Equal(t, models.StatusArchived, v.status)
	assert.Equal(t, []string{"open"}, names(v.tasks))
}

func TestRangeCycleEmitsRangeChanged(t *testing.T) {
	v, repo := newTestView(t)
	mustCreate(t, repo, models.CreateTask{Name: "today", DueDate: strPtr("2024-06-10")})
	mustCreate(t, repo, models.CreateTask{Name: "undated"})
	drain(t, v, v.Init())
	assert.Len(t, v.tasks, 2)

	emitted := press(t, v, runes("r"))
	assert.Equal(t, models.RangeToday, v.Range())
	assert.Contains(t, emitted, RangeChanged{Range: models.RangeToday})
	assert.Equal(t, []string{"today"}, names(v.tasks))

	for v.Range() != models.RangeAll {
		press(t, v, runes("r"))
	}
	assert.Equal(t, []string{"today"}, names(v.tasks))

	press(t, v, runes("r"))
	assert.Equal(t, models.Range(""), v.Range())
	assert.Len(t, v.tasks, 2)
}

func TestSortToggles(t *testing.T) {
	v, repo := newTestView(t)
	mustCreate(t, repo, models.CreateTask{Name: "low", Priority: priPtr(models.PriorityLow)})
	mustCreate(t, repo, models.CreateTask{Name: "high", Priority: priPtr(models.PriorityHigh)})
	drain(t, v, v.Init())

	press(t, v, runes("o"))
	assert.Equal(t, models.OrderByPriority, v.orderBy)
	assert.Equal(t, []string{"high", "low"}, names(v.tasks))

	press(t, v, runes("O"))
	assert.Equal(t, models.OrderDesc, v.order)
	assert.Equal(t, []string{"low", "high"}, names(v.tasks))
}

func TestSearchFiltersByKeyword(t *testing.T) {
	v, repo := newTestView(t)
	mustCreate(t, repo, models.CreateTask{Name: "Write report"})
	mustCreate(t, repo, models.CreateTask{Name: "groceries", Desc: strPtr("milk")})
	drain(t, v, v.Init())

	press(t, v, runes("/"))
	assert.Equal(t, FocusSearchInput, v.focus)
	v.searchInput.SetValue("MILK")
	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, FocusTaskList, v.focus)
	assert.Equal(t, []string{"groceries"}, names(v.tasks))

	press(t, v, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, v.tasks, 2)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	v, repo := newTestView(t)
	mustCreate(t, repo, models.CreateTask{Name: "keep"})
	mustCreate(t, repo, models.CreateTask{Name: "drop"})
	drain(t, v, v.Init())

	press(t, v, runes("j"))
	press(t, v, runes("d"))
	require.True(t, v.confirmingDelete)
	assert.Contains(t, v.View(), "2. drop")

	press(t, v, runes("n"))
	assert.False(t, v.confirmingDelete)
	assert.Len(t, v.tasks, 2)

	press(t, v, runes("d"))
	press(t, v, runes("y"))
	assert.Equal(t, "Task 2 deleted successfully", v.message)
	assert.Equal(t, []string{"keep"}, names(v.tasks))
}

func TestCreateThroughForm(t *testing.T) {
	v, repo := newTestView(t)
	drain(t, v, v.Init())

	press(t, v, runes("n"))
	require.True(t, v.editing)
	v.editName.SetValue("Ship report")
	v.editTags.SetValue("work, , urgent")
	v.editDue.SetValue("tomorrow")
	v.editPriority.SetValue("HIGH")
	press(t, v, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.False(t, v.editing)
	assert.Equal(t, "Task created successfully with ID: 1", v.message)
	task, ok, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"work", "urgent"}, task.Tags)
	assert.Equal(t, "2024-06-11", *task.DueDate)
	assert.Equal(t, models.PriorityHigh, *task.Priority)
	assert.Nil(t, task.Desc)
}

func TestFormKeepsErrorsInline(t *testing.T) {
	v, _ := newTestView(t)
	drain(t, v, v.Init())

	press(t, v, runes("n"))
	press(t, v, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, v.editing)
	assert.Contains(t, v.editErr, "name is required")

	v.editName.SetValue("x")
	v.editDue.SetValue("someday")
	press(t, v, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, v.editing)
	assert.Contains(t, v.editErr, "YYYY-MM-DD")

	press(t, v, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.editing)
	assert.Empty(t, v.tasks)
}

func TestEditThroughForm(t *testing.T) {
	v, repo := newTestView(t)
	mustCreate(t, repo, models.CreateTask{Name: "draft", Tags: []string{"a", "b"}})
	drain(t, v, v.Init())

	press(t, v, runes("e"))
	require.True(t, v.editing)
	assert.Equal(t, "draft", v.editName.Value())
	assert.Equal(t, "a, b", v.editTags.Value())

	v.editName.SetValue("final")
	v.editTags.SetValue("")
	press(t, v, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, "Task 1 updated successfully", v.message)
	task, _, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "final", task.Name)
	assert.Equal(t, []string{}, task.Tags)
}

func TestTabCyclesFormFields(t *testing.T) {
	v, _ := newTestView(t)
	press(t, v, runes("n"))
	for i := 1; i < fieldCount; i++ {
		press(t, v, tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, i, v.editFocusIdx)
	}
	press(t, v, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldName, v.editFocusIdx)
	press(t, v, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldSave, v.editFocusIdx)
}

func TestDetailViewShowsOverdue(t *testing.T) {
	v, repo := newTestView(t)
	mustCreate(t, repo, models.CreateTask{Name: "late", DueDate: strPtr("2024-06-01"), Desc: strPtr("overdue work")})
	drain(t, v, v.Init())

	press(t, v, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.viewingTask)
	out := v.View()
	assert.Contains(t, out, "1. late")
	assert.Contains(t, out, "2024-06-01 (overdue)")
	assert.Contains(t, out, "overdue work")
	assert.Contains(t, out, "2024-06-10 09:30:00")

	press(t, v, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.viewingTask)
}

func TestQuit(t *testing.T) {
	v, _ := newTestView(t)
	_, cmd := v.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func strPtr(s string) *string { return &s }

func priPtr(p models.Priority) *models.Priority { return &p }
