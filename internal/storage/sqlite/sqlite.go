package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage"
	"github.com/slok/crxsync/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db       *sql.DB
	migrator *migrations.Migrator
	logger   log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new SQLite repository, the schema is migrated to the latest version.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, migrator: migrator, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// SchemaVersion returns the applied schema version.
func (r *Repository) SchemaVersion(ctx context.Context) (uint, error) {
	v, dirty, err := r.migrator.Version(ctx)
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, fmt.Errorf("schema version %d is dirty", v)
	}
	return v, nil
}

const selectTasks = `
	SELECT
		t.id, t.title, t.notes, t.importance,
		t.due_at, t.created_at, t.completed_at, t.deleted_at, t.modified_at,
		t.elapsed_seconds, t.estimated_seconds,
		COALESCE(m.activity_id, ''), COALESCE(m.activity_key, 0), COALESCE(m.state_id, ''),
		COALESCE(m.creator_id, 0), COALESCE(m.assignee_id, 0)
	FROM tasks t
	LEFT JOIN task_sync_metadata m ON m.task_id = t.id
`

const orderTasks = ` ORDER BY t.created_at, t.id`

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.TaskContainer, error) {
	row := r.db.QueryRowContext(ctx, selectTasks+` WHERE t.id = ?`, id)
	c, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}

	tags, err := r.tags(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Tags = tags[id]
	if c.Tags == nil {
		c.Tags = []string{}
	}

	return &c, nil
}

// SaveTask creates or replaces a task, its sync metadata and its tags.
func (r *Repository) SaveTask(ctx context.Context, c model.TaskContainer) error {
	if c.Task.ID == "" {
		return fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	t := c.Task
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (
			id, title, notes, importance,
			due_at, created_at, completed_at, deleted_at, modified_at,
			elapsed_seconds, estimated_seconds
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			notes = excluded.notes,
			importance = excluded.importance,
			due_at = excluded.due_at,
			created_at = excluded.created_at,
			completed_at = excluded.completed_at,
			deleted_at = excluded.deleted_at,
			modified_at = excluded.modified_at,
			elapsed_seconds = excluded.elapsed_seconds,
			estimated_seconds = excluded.estimated_seconds
	`,
		t.ID, t.Title, t.Notes, t.Importance,
		toMillis(t.DueAt), toMillis(t.CreatedAt), toMillis(t.CompletedAt), toMillis(t.DeletedAt), toMillis(t.ModifiedAt),
		t.ElapsedSeconds, t.EstimatedSeconds,
	)
	if err != nil {
		return fmt.Errorf("could not upsert task: %w", err)
	}

	if c.Remote == (model.RemoteMetadata{}) {
		_, err = tx.ExecContext(ctx, `DELETE FROM task_sync_metadata WHERE task_id = ?`, t.ID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO task_sync_metadata (task_id, activity_id, activity_key, state_id, creator_id, assignee_id)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(task_id) DO UPDATE SET
				activity_id = excluded.activity_id,
				activity_key = excluded.activity_key,
				state_id = excluded.state_id,
				creator_id = excluded.creator_id,
				assignee_id = excluded.assignee_id
		`, t.ID, c.Remote.ActivityID, c.Remote.ActivityKey, c.Remote.StateID, c.Remote.CreatorID, c.Remote.AssigneeID)
	}
	if err != nil {
		return fmt.Errorf("could not store sync metadata: %w", err)
	}

	if err := syncTags(ctx, tx, t.ID, model.NormalizeTags(c.Tags)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Saved task in repository: %s", t.ID)
	return nil
}

// syncTags makes the stored tags of a task exactly the given ones.
func syncTags(ctx context.Context, tx *sql.Tx, taskID string, tags []string) error {
	rows, err := tx.QueryContext(ctx, `SELECT tag FROM task_tags WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("could not query tags: %w", err)
	}
	existing := map[string]bool{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			rows.Close()
			return fmt.Errorf("could not scan tag: %w", err)
		}
		existing[tag] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating tags: %w", err)
	}

	wanted := map[string]bool{}
	for _, tag := range tags {
		wanted[tag] = true
		if existing[tag] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO task_tags (task_id, tag) VALUES (?, ?)`, taskID, tag); err != nil {
			return fmt.Errorf("could not insert tag: %w", err)
		}
	}

	for tag := range existing {
		if wanted[tag] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ? AND tag = ?`, taskID, tag); err != nil {
			return fmt.Errorf("could not delete tag: %w", err)
		}
	}

	return nil
}

// DeleteTask deletes a task, its sync metadata, tags and comments.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted task from repository: %s", id)
	return nil
}

// ListTasks returns all the tasks.
func (r *Repository) ListTasks(ctx context.Context) ([]model.TaskContainer, error) {
	return r.listTasks(ctx, selectTasks+orderTasks)
}

// ListSyncedTasks returns the tasks that have a remote activity.
func (r *Repository) ListSyncedTasks(ctx context.Context) ([]model.TaskContainer, error) {
	return r.listTasks(ctx, selectTasks+` WHERE COALESCE(m.activity_id, '') != ''`+orderTasks)
}

// ListLocallyCreatedTasks returns the tasks never seen by a sync.
func (r *Repository) ListLocallyCreatedTasks(ctx context.Context) ([]model.TaskContainer, error) {
	return r.listTasks(ctx, selectTasks+` WHERE COALESCE(m.activity_key, 0) = 0`+orderTasks)
}

// ListLocallyUpdatedTasks returns the tasks with sync metadata modified after since.
func (r *Repository) ListLocallyUpdatedTasks(ctx context.Context, since time.Time) ([]model.TaskContainer, error) {
	return r.listTasks(ctx, selectTasks+` WHERE COALESCE(m.activity_key, 0) != 0 AND t.modified_at > ?`+orderTasks, since.UnixMilli())
}

// ClearSyncMetadata removes the sync metadata of all the tasks.
func (r *Repository) ClearSyncMetadata(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_sync_metadata`); err != nil {
		return fmt.Errorf("could not delete sync metadata: %w", err)
	}
	return nil
}

func (r *Repository) listTasks(ctx context.Context, query string, args ...any) ([]model.TaskContainer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.TaskContainer{}
	for rows.Next() {
		c, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	tags, err := r.tags(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Tags = tags[tasks[i].Task.ID]
		if tasks[i].Tags == nil {
			tasks[i].Tags = []string{}
		}
	}

	return tasks, nil
}

// tags returns the tags indexed by task, all the tasks are returned when taskID is empty.
func (r *Repository) tags(ctx context.Context, taskID string) (map[string][]string, error) {
	query := `SELECT task_id, tag FROM task_tags ORDER BY task_id, tag`
	args := []any{}
	if taskID != "" {
		query = `SELECT task_id, tag FROM task_tags WHERE task_id = ? ORDER BY tag`
		args = append(args, taskID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tags: %w", err)
	}
	defer rows.Close()

	res := map[string][]string{}
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("could not scan tag: %w", err)
		}
		res[id] = append(res[id], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.TaskContainer, error) {
	var c model.TaskContainer
	var dueAt, createdAt, completedAt, deletedAt, modifiedAt sql.NullInt64

	err := s.Scan(
		&c.Task.ID,
		&c.Task.Title,
		&c.Task.Notes,
		&c.Task.Importance,
		&dueAt,
		&createdAt,
		&completedAt,
		&deletedAt,
		&modifiedAt,
		&c.Task.ElapsedSeconds,
		&c.Task.EstimatedSeconds,
		&c.Remote.ActivityID,
		&c.Remote.ActivityKey,
		&c.Remote.StateID,
		&c.Remote.CreatorID,
		&c.Remote.AssigneeID,
	)
	if err != nil {
		return model.TaskContainer{}, err
	}

	c.Task.DueAt = fromMillis(dueAt)
	c.Task.CreatedAt = fromMillis(createdAt)
	c.Task.CompletedAt = fromMillis(completedAt)
	c.Task.DeletedAt = fromMillis(deletedAt)
	c.Task.ModifiedAt = fromMillis(modifiedAt)
	c.Task.Fields = c.Task.PresentFields()

	return c, nil
}

func toMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.UnixMilli(n.Int64).UTC()
}

func isConstraintErr(err error, constraint string) bool {
	return err != nil && strings.Contains(err.Error(), constraint)
}
