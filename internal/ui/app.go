package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/todo"
	"github.com/tgienger/todo/internal/ui/views"
)

// rangeSettingKey remembers the last due-range filter between sessions
const rangeSettingKey = "browse.range"

// Settings persists small UI preferences. The SQLite backend provides one.
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

type App struct {
	settings Settings
	taskList *views.TaskListView
}

// NewApp creates the browse application. settings may be nil.
func NewApp(ctx context.Context, repo *todo.Repository, settings Settings) *App {
	return &App{
		settings: settings,
		taskList: views.NewTaskListView(ctx, repo),
	}
}

func (a *App) Init() tea.Cmd {
	// Restore the last used range filter
	if a.settings != nil {
		if saved, err := a.settings.GetSetting(rangeSettingKey); err == nil && saved != "" {
			if rng, err := models.ParseRange(saved); err == nil {
				a.taskList.SetRange(rng)
			}
		}
	}
	return a.taskList.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(views.RangeChanged); ok {
		if a.settings != nil {
			_ = a.settings.SetSetting(rangeSettingKey, string(msg.Range))
		}
		return a, nil
	}

	_, cmd := a.taskList.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.taskList.View()
}

// Run starts the full-screen browser and blocks until the user quits
func Run(ctx context.Context, repo *todo.Repository, settings Settings, opts ...tea.ProgramOption) error {
	app := NewApp(ctx, repo, settings)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(app, opts...)
	_, err := p.Run()
	return err
}
