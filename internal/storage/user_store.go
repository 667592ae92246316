// Package storage provides database operations for EmotiTask.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/emotitask/emotitask/internal/core"
)

// UserStore manages user persistence
type UserStore struct {
	db *DB
}

// NewUserStore creates a new user store
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user and fills in its ID
func (s *UserStore) Create(user *core.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := s.db.conn.Exec(`
		INSERT INTO users (name, email, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.Name, user.Email, user.Description, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID
func (s *UserStore) Get(id int64) (*core.User, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, name, email, description, is_active, created_at, updated_at
		FROM users WHERE id = ?
	`, id)
	return scanUser(row)
}

// GetByEmail retrieves a user by email
func (s *UserStore) GetByEmail(email string) (*core.User, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, name, email, description, is_active, created_at, updated_at
		FROM users WHERE email = ?
	`, email)
	return scanUser(row)
}

// GetAll retrieves all users
func (s *UserStore) GetAll() ([]*core.User, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, name, email, description, is_active, created_at, updated_at
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Description, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// Update updates a user record
func (s *UserStore) Update(user *core.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := s.db.conn.Exec(`
		UPDATE users SET name = ?, email = ?, description = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, user.Name, user.Email, user.Description, user.IsActive, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
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

// Delete removes a user
func (s *UserStore) Delete(id int64) error {
	res, err := s.db.conn.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
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

func scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Description, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
