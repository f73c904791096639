// Package todo implements the task repository: identity allocation,
// mutations with status side effects, and filtered listings.
//
// Every operation reloads the full task set from the store, and mutations
// write the full set back. A mutex serializes load→mutate→save cycles within
// the process; separate processes sharing a file are not coordinated.
package todo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/store"
)

// Repository applies task operations against a Store
type Repository struct {
	store  store.Store
	now    func() time.Time
	logger *slog.Logger
	mu     sync.Mutex
}

// Option configures a Repository
type Option func(*Repository)

// WithClock replaces the wall clock used for timestamps and date windows
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger for mutation events
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// NewRepository creates a repository over s
func NewRepository(s store.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  s,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the repository clock's current time
func (r *Repository) Now() time.Time {
	return r.now()
}

// NextID returns one more than the highest id in tasks, or 1 for an empty set
func NextID(tasks []models.Task) int {
	maxID := 0
	for i := range tasks {
		if tasks[i].ID > maxID {
			maxID = tasks[i].ID
		}
	}
	return maxID + 1
}

// allocateID picks the next id from the freshly loaded tasks and, when the
// store keeps one, the high-water mark, then advances the mark.
func (r *Repository) allocateID(ctx context.Context, tasks []models.Task) (int, error) {
	id := NextID(tasks)
	seq, ok := r.store.(store.Sequencer)
	if !ok {
		return id, nil
	}
	last, err := seq.LastID(ctx)
	if err != nil {
		return 0, err
	}
	id = max(id, last+1)
	if err := seq.SetLastID(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

func indexOf(tasks []models.Task, id int) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) timestamp() string {
	return models.FormatTimestamp(r.now())
}

// Create validates in, stores a new active task and returns it
func (r *Repository) Create(ctx context.Context, in models.CreateTask) (models.Task, error) {
	if err := validateCreate(in); err != nil {
		return models.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.store.Load(ctx)
	if err != nil {
		return models.Task{}, err
	}

	id, err := r.allocateID(ctx, tasks)
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		ID:        id,
		Name:      in.Name,
		Desc:      in.Desc,
		Tags:      in.Tags,
		DueDate:   in.DueDate,
		Priority:  in.Priority,
		Status:    models.StatusActive,
		CreatedAt: r.timestamp(),
	}
	tasks = append(tasks, task)
	if err := r.store.Save(ctx, tasks); err != nil {
		return models.Task{}, err
	}

	r.logger.Info("task created", "id", task.ID)
	return task, nil
}

// Get returns the task with id; ok is false when there is none
func (r *Repository) Get(ctx context.Context, id int) (task models.Task, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.store.Load(ctx)
	if err != nil {
		return models.Task{}, false, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return models.Task{}, false, nil
	}
	return tasks[i], true, nil
}

// Update applies the non-nil fields of in to an existing task. Moving a task
// into completed stamps completed_at; no other transition touches it.
func (r *Repository) Update(ctx context.Context, in models.UpdateTask) (models.Task, error) {
	if err := validateUpdate(in); err != nil {
		return models.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.store.Load(ctx)
	if err != nil {
		return models.Task{}, err
	}
	i := indexOf(tasks, in.ID)
	if i < 0 {
		return models.Task{}, fmt.Errorf("task with ID %d %w", in.ID, models.ErrNotFound)
	}

	task := &tasks[i]
	if in.Name != nil {
		task.Name = *in.Name
	}
	if in.Desc != nil {
		task.Desc = in.Desc
	}
	if in.Tags != nil {
		task.Tags = in.Tags
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	if in.Priority != nil {
		task.Priority = in.Priority
	}
	if in.Status != nil {
		old := task.Status
		task.Status = *in.Status
		if task.Status == models.StatusCompleted && old != models.StatusCompleted {
			ts := r.timestamp()
			task.CompletedAt = &ts
		}
	}

	if err := r.store.Save(ctx, tasks); err != nil {
		return models.Task{}, err
	}

	r.logger.Info("task updated", "id", task.ID, "status", task.Status)
	return *task, nil
}

// Finish marks the task completed
func (r *Repository) Finish(ctx context.Context, id int) (models.Task, error) {
	status := models.StatusCompleted
	return r.Update(ctx, models.UpdateTask{ID: id, Status: &status})
}

// Delete removes the task with id. The store is written only when a task
// was actually removed.
func (r *Repository) Delete(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.store.Load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return false, nil
	}
	tasks = append(tasks[:i], tasks[i+1:]...)
	if err := r.store.Save(ctx, tasks); err != nil {
		return false, err
	}

	r.logger.Info("task deleted", "id", id)
	return true, nil
}

func validateCreate(in models.CreateTask) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required: %w", models.ErrValidation)
	}
	return validateFields(in.DueDate, in.Priority)
}

func validateUpdate(in models.UpdateTask) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return fmt.Errorf("name cannot be empty: %w", models.ErrValidation)
	}
	if in.Status != nil && !in.Status.Valid() {
		return fmt.Errorf("invalid status %q: %w", *in.Status, models.ErrValidation)
	}
	return validateFields(in.DueDate, in.Priority)
}

func validateFields(due *string, priority *models.Priority) error {
	if due != nil {
		if _, err := models.ParseDate(*due); err != nil {
			return err
		}
	}
	if priority != nil && !priority.Valid() {
		return fmt.Errorf("invalid priority %q: %w", *priority, models.ErrValidation)
	}
	return nil
}
