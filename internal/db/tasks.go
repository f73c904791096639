package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tgienger/todo/internal/models"
)

// Load returns every task in insertion order, tags included
func (db *DB) Load(ctx context.Context) ([]models.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, description, has_tags, due_date, priority, status, created_at, completed_at
		FROM tasks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	hasTags := map[int]bool{}
	for rows.Next() {
		var (
			t        models.Task
			tagged   bool
			desc     sql.NullString
			due      sql.NullString
			priority sql.NullString
			status   string
			done     sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &desc, &tagged, &due, &priority, &status, &t.CreatedAt, &done); err != nil {
			return nil, err
		}
		t.Desc = nullable(desc)
		t.DueDate = nullable(due)
		t.CompletedAt = nullable(done)
		t.Status = models.Status(status)
		if priority.Valid {
			p := models.Priority(priority.String)
			t.Priority = &p
		}
		if err := checkTask(&t); err != nil {
			return nil, fmt.Errorf("%s: task %d: %w: %v", db.path, t.ID, models.ErrCorruptRecord, err)
		}
		hasTags[t.ID] = tagged
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := db.loadTags(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if hasTags[tasks[i].ID] {
			tasks[i].Tags = append([]string{}, tags[tasks[i].ID]...)
		}
	}
	return tasks, nil
}

// Save replaces the stored task set with tasks in a single transaction
func (db *DB) Save(ctx context.Context, tasks []models.Task) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, position, name, description, has_tags, due_date, priority, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range tasks {
		var priority any
		if t.Priority != nil {
			priority = string(*t.Priority)
		}
		if _, err = stmt.ExecContext(ctx, t.ID, i, t.Name, t.Desc, t.Tags != nil, t.DueDate, priority, string(t.Status), t.CreatedAt, t.CompletedAt); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
		if err = saveTags(ctx, tx, t.ID, t.Tags); err != nil {
			return fmt.Errorf("insert tags for task %d: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func checkTask(t *models.Task) error {
	if !t.Status.Valid() {
		return fmt.Errorf("invalid status %q", t.Status)
	}
	if t.Priority != nil && !t.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", *t.Priority)
	}
	return t.Validate()
}
