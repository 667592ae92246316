package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/emotitask/emotitask/internal/core"
)

// TaskStore manages task persistence
type TaskStore struct {
	db *DB
}

// NewTaskStore creates a new task store
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// taskColumns maps task field names (as they appear on the wire) to
// their SQL columns. Only these columns may be touched by UpdateField.
var taskColumns = map[string]string{
	"name":         "name",
	"description":  "description",
	"priority":     "priority",
	"is_completed": "is_completed",
	"start_time":   "start_time",
}

// Create inserts a new task and fills in its ID
func (s *TaskStore) Create(task *core.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	var goalID sql.NullInt64
	if task.GoalID != nil {
		goalID = sql.NullInt64{Int64: *task.GoalID, Valid: true}
	}
	var startTime sql.NullTime
	if task.StartTime != nil {
		startTime = sql.NullTime{Time: *task.StartTime, Valid: true}
	}

	res, err := s.db.conn.Exec(`
		INSERT INTO tasks (
			user_id, goal_id, name, description, priority, is_completed,
			start_time, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.UserID, goalID, task.Name, task.Description, task.Priority,
		task.IsCompleted, startTime, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	task.ID, err = res.LastInsertId()
	return err
}

// Get retrieves a task by ID
func (s *TaskStore) Get(id int64) (*core.Task, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, user_id, goal_id, name, description, priority, is_completed,
		       start_time, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id)
	return scanTaskRow(row.Scan)
}

// GetByUser retrieves all tasks for a user
func (s *TaskStore) GetByUser(userID int64) ([]*core.Task, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, user_id, goal_id, name, description, priority, is_completed,
		       start_time, created_at, updated_at
		FROM tasks WHERE user_id = ? ORDER BY priority DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetOpenByUser retrieves a user's incomplete tasks
func (s *TaskStore) GetOpenByUser(userID int64, limit int) ([]*core.Task, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, user_id, goal_id, name, description, priority, is_completed,
		       start_time, created_at, updated_at
		FROM tasks WHERE user_id = ? AND is_completed = 0
		ORDER BY priority DESC, created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// Update updates a task record
func (s *TaskStore) Update(task *core.Task) error {
	task.UpdatedAt = time.Now().UTC()

	var goalID sql.NullInt64
	if task.GoalID != nil {
		goalID = sql.NullInt64{Int64: *task.GoalID, Valid: true}
	}
	var startTime sql.NullTime
	if task.StartTime != nil {
		startTime = sql.NullTime{Time: *task.StartTime, Valid: true}
	}

	res, err := s.db.conn.Exec(`
		UPDATE tasks SET
			goal_id = ?, name = ?, description = ?, priority = ?,
			is_completed = ?, start_time = ?, updated_at = ?
		WHERE id = ?
	`, goalID, task.Name, task.Description, task.Priority,
		task.IsCompleted, startTime, task.UpdatedAt, task.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

// UpdateField assigns a single column of a single task inside one
// transaction and returns a snapshot of the updated record. The field
// must be one of the known mutable columns; unknown fields are
// rejected before any SQL runs. Re-applying the same assignment yields
// the same final state.
func (s *TaskStore) UpdateField(id int64, field string, value interface{}) (*core.Task, error) {
	col, ok := taskColumns[field]
	if !ok {
		return nil, fmt.Errorf("%w: task field %q", core.ErrInvalidInput, field)
	}

	var task *core.Task
	err := s.db.Transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE tasks SET `+col+` = ?, updated_at = ? WHERE id = ?`,
			value, time.Now().UTC(), id,
		)
		if err != nil {
			return fmt.Errorf("update task field: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrRecordNotFound
		}

		row := tx.QueryRow(`
			SELECT id, user_id, goal_id, name, description, priority, is_completed,
			       start_time, created_at, updated_at
			FROM tasks WHERE id = ?
		`, id)
		task, err = scanTaskRow(row.Scan)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task
func (s *TaskStore) Delete(id int64) error {
	res, err := s.db.conn.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

// Count returns the total number of tasks
func (s *TaskStore) Count() (int, error) {
	var count int
	err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func scanTaskRow(scan func(dest ...interface{}) error) (*core.Task, error) {
	var t core.Task
	var goalID sql.NullInt64
	var startTime sql.NullTime

	err := scan(&t.ID, &t.UserID, &goalID, &t.Name, &t.Description, &t.Priority,
		&t.IsCompleted, &startTime, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if goalID.Valid {
		t.GoalID = &goalID.Int64
	}
	if startTime.Valid {
		t.StartTime = &startTime.Time
	}
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]*core.Task, error) {
	var tasks []*core.Task
	for rows.Next() {
		task, err := scanTaskRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
