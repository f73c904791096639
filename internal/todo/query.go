package todo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tgienger/todo/internal/models"
)

// query is a validated ListTasks with defaults applied
type query struct {
	keyword  string
	tags     []string
	priority *models.Priority
	status   models.Status
	rng      models.Range
	orderBy  models.OrderBy
	order    models.Order
	limit    int
}

func newQuery(in models.ListTasks) (query, error) {
	q := query{
		keyword:  strings.ToLower(in.Keyword),
		tags:     in.Tags,
		priority: in.Priority,
		status:   models.StatusActive,
		limit:    models.DefaultLimit,
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return query{}, fmt.Errorf("invalid status %q: %w", *in.Status, models.ErrValidation)
		}
		q.status = *in.Status
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return query{}, fmt.Errorf("invalid priority %q: %w", *in.Priority, models.ErrValidation)
	}

	var err error
	if q.rng, err = models.ParseRange(string(in.Range)); err != nil {
		return query{}, err
	}
	if q.orderBy, err = models.ParseOrderBy(string(in.OrderBy)); err != nil {
		return query{}, err
	}
	if q.order, err = models.ParseOrder(string(in.Order)); err != nil {
		return query{}, err
	}

	if in.Limit != nil {
		if *in.Limit < 0 {
			return query{}, fmt.Errorf("limit must be >= 0: %w", models.ErrValidation)
		}
		q.limit = *in.Limit
	}
	return q, nil
}

// List returns the tasks matching in. Filters run in a fixed order (status,
// priority, tags, keyword, due range) before sorting and the limit. A nil
// status lists active tasks only; a nil limit caps the result at 10 and a
// zero limit returns everything.
func (r *Repository) List(ctx context.Context, in models.ListTasks) ([]models.Task, error) {
	q, err := newQuery(in)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	tasks, err := r.store.Load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	tasks = filter(tasks, func(t *models.Task) bool { return t.Status == q.status })
	if q.priority != nil {
		tasks = filter(tasks, func(t *models.Task) bool {
			return t.Priority != nil && *t.Priority == *q.priority
		})
	}
	if len(q.tags) > 0 {
		tasks = filter(tasks, func(t *models.Task) bool { return hasAnyTag(t, q.tags) })
	}
	if q.keyword != "" {
		tasks = filter(tasks, func(t *models.Task) bool { return matchesKeyword(t, q.keyword) })
	}
	if q.rng != "" {
		tasks, err = filterRange(tasks, q.rng, r.now())
		if err != nil {
			return nil, err
		}
	}

	sortTasks(tasks, q.orderBy, q.order)

	if q.limit > 0 && len(tasks) > q.limit {
		tasks = tasks[:q.limit]
	}
	return tasks, nil
}

func filter(tasks []models.Task, keep func(*models.Task) bool) []models.Task {
	out := tasks[:0]
	for i := range tasks {
		if keep(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

func hasAnyTag(t *models.Task, tags []string) bool {
	for _, tag := range tags {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}

// matchesKeyword expects keyword already lower-cased
func matchesKeyword(t *models.Task, keyword string) bool {
	if strings.Contains(strings.ToLower(t.Name), keyword) {
		return true
	}
	return t.Desc != nil && strings.Contains(strings.ToLower(*t.Desc), keyword)
}

func filterRange(tasks []models.Task, rng models.Range, now time.Time) ([]models.Task, error) {
	tasks = filter(tasks, func(t *models.Task) bool {
		_, ok := t.Due()
		return ok
	})
	if rng == models.RangeAll {
		return tasks, nil
	}
	window, err := Bucket(rng, now)
	if err != nil {
		return nil, err
	}
	return filter(tasks, func(t *models.Task) bool {
		d, _ := t.Due()
		return window.Contains(d)
	}), nil
}

// sortTasks orders tasks stably by key. Missing due dates and priorities sort
// after present ones; desc reverses the whole comparison.
func sortTasks(tasks []models.Task, key models.OrderBy, order models.Order) {
	less := lessFunc(key)
	if order == models.OrderDesc {
		asc := less
		less = func(a, b *models.Task) bool { return asc(b, a) }
	}
	sort.SliceStable(tasks, func(i, j int) bool { return less(&tasks[i], &tasks[j]) })
}

func lessFunc(key models.OrderBy) func(a, b *models.Task) bool {
	switch key {
	case models.OrderByPriority:
		return func(a, b *models.Task) bool { return a.Priority.Rank() < b.Priority.Rank() }
	case models.OrderByID:
		return func(a, b *models.Task) bool { return a.ID < b.ID }
	case models.OrderByCreatedAt:
		return lessCreatedAt
	default:
		return lessDueDate
	}
}

func lessDueDate(a, b *models.Task) bool {
	da, okA := a.Due()
	db, okB := b.Due()
	switch {
	case okA && okB:
		return startOfDay(da).Before(startOfDay(db))
	case okA:
		return true
	default:
		return false
	}
}

func lessCreatedAt(a, b *models.Task) bool {
	ta, errA := models.ParseTimestamp(a.CreatedAt)
	tb, errB := models.ParseTimestamp(b.CreatedAt)
	if errA != nil || errB != nil {
		return a.CreatedAt < b.CreatedAt
	}
	return ta.Before(tb)
}
