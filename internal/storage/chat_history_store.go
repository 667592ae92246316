package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/emotitask/emotitask/internal/core"
)

// ChatHistoryStore manages chat history persistence
type ChatHistoryStore struct {
	db *DB
}

// NewChatHistoryStore creates a new chat history store
func NewChatHistoryStore(db *DB) *ChatHistoryStore {
	return &ChatHistoryStore{db: db}
}

// Create inserts a new chat history and fills in its ID
func (s *ChatHistoryStore) Create(ch *core.ChatHistory) error {
	now := time.Now().UTC()
	ch.CreatedAt = now
	ch.UpdatedAt = now

	res, err := s.db.conn.Exec(`
		INSERT INTO chat_histories (
			user_id, name, description, messages, model_used, tokens_used,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ch.UserID, ch.Name, ch.Description, ch.Messages, ch.ModelUsed,
		ch.TokensUsed, ch.CreatedAt, ch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert chat history: %w", err)
	}

	ch.ID, err = res.LastInsertId()
	return err
}

// Get retrieves a chat history by ID
func (s *ChatHistoryStore) Get(id int64) (*core.ChatHistory, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, user_id, name, description, messages, model_used, tokens_used,
		       created_at, updated_at
		FROM chat_histories WHERE id = ?
	`, id)

	var ch core.ChatHistory
	err := row.Scan(&ch.ID, &ch.UserID, &ch.Name, &ch.Description, &ch.Messages,
		&ch.ModelUsed, &ch.TokensUsed, &ch.CreatedAt, &ch.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat history: %w", err)
	}
	return &ch, nil
}

// GetByUser retrieves all chat histories for a user, newest first
func (s *ChatHistoryStore) GetByUser(userID int64) ([]*core.ChatHistory, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, user_id, name, description, messages, model_used, tokens_used,
		       created_at, updated_at
		FROM chat_histories WHERE user_id = ? ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query chat histories: %w", err)
	}
	defer rows.Close()

	var histories []*core.ChatHistory
	for rows.Next() {
		var ch core.ChatHistory
		if err := rows.Scan(&ch.ID, &ch.UserID, &ch.Name, &ch.Description, &ch.Messages,
			&ch.ModelUsed, &ch.TokensUsed, &ch.CreatedAt, &ch.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan chat history: %w", err)
		}
		histories = append(histories, &ch)
	}
	return histories, rows.Err()
}

// Update updates a chat history record
func (s *ChatHistoryStore) Update(ch *core.ChatHistory) error {
	ch.UpdatedAt = time.Now().UTC()

	res, err := s.db.conn.Exec(`
		UPDATE chat_histories SET
			name = ?, description = ?, messages = ?, model_used = ?,
			tokens_used = ?, updated_at = ?
		WHERE id = ?
	`, ch.Name, ch.Description, ch.Messages, ch.ModelUsed, ch.TokensUsed,
		ch.UpdatedAt, ch.ID)
	if err != nil {
		return fmt.Errorf("update chat history: %w", err)
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

// UpdateMessages updates just the message log and usage fields
func (s *ChatHistoryStore) UpdateMessages(id int64, messages, modelUsed string, tokensUsed int) error {
	res, err := s.db.conn.Exec(`
		UPDATE chat_histories SET
			messages = ?, model_used = ?, tokens_used = ?, updated_at = ?
		WHERE id = ?
	`, messages, modelUsed, tokensUsed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update chat messages: %w", err)
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

// Delete removes a chat history
func (s *ChatHistoryStore) Delete(id int64) error {
	res, err := s.db.conn.Exec(`DELETE FROM chat_histories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chat history: %w", err)
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
