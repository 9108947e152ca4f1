package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/mkrupp/taskcase/internal/domain"
	"github.com/mkrupp/taskcase/internal/infra/logging"
)

// SQLiteTaskRepositoryConfig holds configuration for the SQLite task repository.
type SQLiteTaskRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/tasksvc.db"`
}

// SQLiteTaskRepository implements Repository using SQLite as the storage backend.
type SQLiteTaskRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteTaskRepository)(nil)

// SQLiteTaskRepositoryFactory creates a factory function that returns a new SQLiteTaskRepository.
// The factory function implements the RepositoryFactory type.
func SQLiteTaskRepositoryFactory(cfg SQLiteTaskRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteTaskRepository(cfg)
	}
}

// NewSQLiteTaskRepository creates a new SQLiteTaskRepository with the given configuration.
// It initializes the database connection and creates the schema if needed.
// The users table must exist before tasks are written, so the user repository
// has to be initialized first.
// Returns an error if database connection or initialization fails.
func NewSQLiteTaskRepository(cfg SQLiteTaskRepositoryConfig) (*SQLiteTaskRepository, error) {
	log := logging.GetLogger("repo.task.sqlite_task_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	// Pragmas apply per connection, so they go into the DSN where every
	// pooled connection picks them up.
	db, err := sql.Open("sqlite", dsn(cfg.DatabasePath))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLiteTaskRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func dsn(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func initializeDB(db *sql.DB) (err error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT    NOT NULL,
			description TEXT    NOT NULL DEFAULT '',
			status      TEXT    NOT NULL DEFAULT 'pending',
			created_by  INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_tasks_created_by ON tasks (created_by)",
	); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	return nil
}

const taskColumns = "id, title, description, status, created_by, created_at, updated_at"

// CreateTask implements Repository.CreateTask using SQLite.
func (r *SQLiteTaskRepository) CreateTask(
	ctx context.Context,
	create domain.TaskCreate,
	createdBy int64,
) (*domain.Task, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	task := domain.Task{
		Title:       create.Title,
		Description: create.Description,
		Status:      domain.StatusPending,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().Unix(),
	}
	task.UpdatedAt = task.CreatedAt

	if create.Status != "" {
		task.Status = create.Status
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks (title, description, status, created_by, created_at, updated_at)"+
			" VALUES (?, ?, ?, ?, ?, ?)",
		task.Title,
		task.Description,
		task.Status,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	task.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &task, nil
}

// GetTaskByID implements Repository.GetTaskByID using SQLite.
func (r *SQLiteTaskRepository) GetTaskByID(ctx context.Context, id int64) (*domain.Task, bool, error) {
	var task domain.Task

	err := r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id,
	).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrTaskNotFound, err)
		}

		return nil, false, fmt.Errorf("query task: %w", err)
	}

	return &task, true, nil
}

// ListTasks implements Repository.ListTasks using SQLite.
func (r *SQLiteTaskRepository) ListTasks(
	ctx context.Context,
	owner *int64,
	offset, limit int64,
) ([]domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	args := []any{}

	if owner != nil {
		query += " WHERE created_by = ?"
		args = append(args, *owner)
	}

	query += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}

	for rows.Next() {
		var task domain.Task

		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.CreatedBy,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask implements Repository.UpdateTask using SQLite.
func (r *SQLiteTaskRepository) UpdateTask(ctx context.Context, id int64, update domain.TaskUpdate) (*domain.Task, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	task, found, err := r.GetTaskByID(ctx, id)
	if err != nil && !found {
		return nil, err
	}

	if update.Title != nil {
		task.Title = *update.Title
	}

	if update.Description != nil {
		task.Description = *update.Description
	}

	if update.Status != nil {
		task.Status = *update.Status
	}

	task.UpdatedAt = time.Now().Unix()

	_, err = r.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, description = ?, status = ?, updated_at = ? WHERE id = ?",
		task.Title,
		task.Description,
		task.Status,
		task.UpdatedAt,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	return task, nil
}

// DeleteTask implements Repository.DeleteTask using SQLite.
func (r *SQLiteTaskRepository) DeleteTask(ctx context.Context, id int64) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete task: %w", domain.ErrTaskNotFound)
	}

	return nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteTaskRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
