package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emotitask/emotitask/internal/core"
)

// StyleStore manages MBTI reference data: types, chat styles, and
// each user's MBTI assignment.
type StyleStore struct {
	db *DB
}

// NewStyleStore creates a new style store
func NewStyleStore(db *DB) *StyleStore {
	return &StyleStore{db: db}
}

// GetMBTITypes retrieves all MBTI types
func (s *StyleStore) GetMBTITypes() ([]*core.MBTIType, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, persona_id, name, description FROM mbti_types ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query mbti types: %w", err)
	}
	defer rows.Close()

	var types []*core.MBTIType
	for rows.Next() {
		var t core.MBTIType
		if err := rows.Scan(&t.ID, &t.PersonaID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("scan mbti type: %w", err)
		}
		types = append(types, &t)
	}
	return types, rows.Err()
}

// GetMBTIType retrieves a single MBTI type by ID
func (s *StyleStore) GetMBTIType(id int64) (*core.MBTIType, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, persona_id, name, description FROM mbti_types WHERE id = ?
	`, id)

	var t core.MBTIType
	err := row.Scan(&t.ID, &t.PersonaID, &t.Name, &t.Description)
	if err == sql.ErrNoRows {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan mbti type: %w", err)
	}
	return &t, nil
}

// GetChatStyle retrieves the chat style for an MBTI type
func (s *StyleStore) GetChatStyle(mbtiTypeID int64) (*core.ChatStyle, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, mbti_type_id, keywords, temperature
		FROM chat_styles WHERE mbti_type_id = ?
	`, mbtiTypeID)
	return scanChatStyle(row)
}

// GetChatStyleForUser retrieves the chat style matching a user's MBTI
// assignment. Returns core.ErrRecordNotFound if the user has no
// assignment or the type has no style.
func (s *StyleStore) GetChatStyleForUser(userID int64) (*core.ChatStyle, error) {
	row := s.db.conn.QueryRow(`
		SELECT cs.id, cs.mbti_type_id, cs.keywords, cs.temperature
		FROM chat_styles cs
		JOIN user_mbti_types um ON um.mbti_type_id = cs.mbti_type_id
		WHERE um.user_id = ?
	`, userID)
	return scanChatStyle(row)
}

// GetUserMBTIType returns the MBTI type assigned to a user
func (s *StyleStore) GetUserMBTIType(userID int64) (*core.MBTIType, error) {
	row := s.db.conn.QueryRow(`
		SELECT mt.id, mt.persona_id, mt.name, mt.description
		FROM mbti_types mt
		JOIN user_mbti_types um ON um.mbti_type_id = mt.id
		WHERE um.user_id = ?
	`, userID)

	var t core.MBTIType
	err := row.Scan(&t.ID, &t.PersonaID, &t.Name, &t.Description)
	if err == sql.ErrNoRows {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan mbti type: %w", err)
	}
	return &t, nil
}

// AssignUserMBTIType sets or replaces a user's MBTI assignment in
// place. A single upsert, not delete-then-insert, so a concurrent
// reader never observes a user without an assignment mid-update.
func (s *StyleStore) AssignUserMBTIType(userID, mbtiTypeID int64) error {
	_, err := s.db.conn.Exec(`
		INSERT INTO user_mbti_types (user_id, mbti_type_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			mbti_type_id = excluded.mbti_type_id,
			updated_at = excluded.updated_at
	`, userID, mbtiTypeID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("assign mbti type: %w", err)
	}
	return nil
}

// GetQuestions retrieves all questionnaire questions
func (s *StyleStore) GetQuestions() ([]*core.Question, error) {
	rows, err := s.db.conn.Query(`SELECT id, question FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []*core.Question
	for rows.Next() {
		var q core.Question
		if err := rows.Scan(&q.ID, &q.Question); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, &q)
	}
	return questions, rows.Err()
}

// GetAnswers retrieves all seeded answers for a question
func (s *StyleStore) GetAnswers(questionID int64) ([]*core.Answer, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, question_id, answer FROM answers WHERE question_id = ? ORDER BY id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var answers []*core.Answer
	for rows.Next() {
		var a core.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Answer); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, &a)
	}
	return answers, rows.Err()
}

func scanChatStyle(row *sql.Row) (*core.ChatStyle, error) {
	var cs core.ChatStyle
	var keywordsJSON string

	err := row.Scan(&cs.ID, &cs.MBTITypeID, &keywordsJSON, &cs.Temperature)
	if err == sql.ErrNoRows {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat style: %w", err)
	}

	if err := json.Unmarshal([]byte(keywordsJSON), &cs.Keywords); err != nil {
		return nil, fmt.Errorf("decode style keywords: %w", err)
	}
	return &cs, nil
}
