package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/crxsync/internal/model"
)

// CreateComment stores a comment of a task.
func (r *Repository) CreateComment(ctx context.Context, c model.Comment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comments (id, task_id, task_title, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.TaskID, c.TaskTitle, c.Message, c.CreatedAt.UnixMilli())
	if err != nil {
		switch {
		case isConstraintErr(err, "UNIQUE constraint failed: comments."):
			return fmt.Errorf("comment %s: %w", c.ID, model.ErrAlreadyExists)
		case isConstraintErr(err, "FOREIGN KEY constraint failed"):
			return fmt.Errorf("task %s: %w", c.TaskID, model.ErrNotFound)
		}
		return fmt.Errorf("could not insert comment: %w", err)
	}

	return nil
}

// ListComments returns the comments of a task created after since, oldest first.
func (r *Repository) ListComments(ctx context.Context, taskID string, since time.Time) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, task_title, message, created_at
		FROM comments
		WHERE task_id = ? AND created_at > ?
		ORDER BY created_at, id
	`, taskID, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("could not query comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.TaskID, &c.TaskTitle, &c.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("could not scan comment: %w", err)
		}
		c.CreatedAt = time.UnixMilli(createdAt).UTC()
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return comments, nil
}
