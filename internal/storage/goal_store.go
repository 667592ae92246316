package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/emotitask/emotitask/internal/core"
)

// GoalStore manages goal persistence
type GoalStore struct {
	db *DB
}

// NewGoalStore creates a new goal store
func NewGoalStore(db *DB) *GoalStore {
	return &GoalStore{db: db}
}

// Create inserts a new goal and fills in its ID
func (s *GoalStore) Create(goal *core.Goal) error {
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now

	res, err := s.db.conn.Exec(`
		INSERT INTO goals (user_id, name, description, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, goal.UserID, goal.Name, goal.Description, goal.IsCompleted, goal.CreatedAt, goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}

	goal.ID, err = res.LastInsertId()
	return err
}

// Get retrieves a goal by ID
func (s *GoalStore) Get(id int64) (*core.Goal, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, user_id, name, description, is_completed, created_at, updated_at
		FROM goals WHERE id = ?
	`, id)

	var g core.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.IsCompleted, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan goal: %w", err)
	}
	return &g, nil
}

// GetByUser retrieves all goals for a user
func (s *GoalStore) GetByUser(userID int64) ([]*core.Goal, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, user_id, name, description, is_completed, created_at, updated_at
		FROM goals WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []*core.Goal
	for rows.Next() {
		var g core.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.IsCompleted, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, &g)
	}
	return goals, rows.Err()
}

// Update updates a goal record
func (s *GoalStore) Update(goal *core.Goal) error {
	goal.UpdatedAt = time.Now().UTC()

	res, err := s.db.conn.Exec(`
		UPDATE goals SET name = ?, description = ?, is_completed = ?, updated_at = ?
		WHERE id = ?
	`, goal.Name, goal.Description, goal.IsCompleted, goal.UpdatedAt, goal.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
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

// Delete removes a goal
func (s *GoalStore) Delete(id int64) error {
	res, err := s.db.conn.Exec(`DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
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
