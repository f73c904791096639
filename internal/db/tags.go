package db

import (
	"context"
	"database/sql"
)

// loadTags returns every task's tags keyed by task id, in stored order
func (db *DB) loadTags(ctx context.Context) (map[int][]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT task_id, name FROM task_tags ORDER BY task_id, position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := map[int][]string{}
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		tags[id] = append(tags[id], name)
	}
	return tags, rows.Err()
}

// saveTags writes a task's tags. Rows are removed with their task, so
// callers only insert.
func saveTags(ctx context.Context, tx *sql.Tx, taskID int, tags []string) error {
	for i, name := range tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO task_tags (task_id, position, name) VALUES (?, ?, ?)",
			taskID, i, name,
		); err != nil {
			return err
		}
	}
	return nil
}
