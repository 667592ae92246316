// Package core defines the fundamental types for EmotiTask.
package core

import (
	"time"
)

// -----------------------------------------------------------------------------
// USER
// -----------------------------------------------------------------------------

// User represents an application user.
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// -----------------------------------------------------------------------------
// GOAL / TASK
// -----------------------------------------------------------------------------

// Goal groups tasks under a longer-term objective.
type Goal struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Task priority levels
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Task is a single work item. The assistant may mutate exactly one of
// its mutable fields per conversational turn; id and user_id are never
// touched by the assistant.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	GoalID      *int64     `json:"goal_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Priority    int        `json:"priority"` // 1=Low, 2=Medium, 3=High
	IsCompleted bool       `json:"is_completed"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// -----------------------------------------------------------------------------
// CHAT HISTORY
// -----------------------------------------------------------------------------

// ChatHistory stores one conversation's message log as a JSON string,
// together with the model that produced it and its token spend.
type ChatHistory struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Messages    string    `json:"messages,omitempty"` // JSON array of {role, content}
	ModelUsed   string    `json:"model_used,omitempty"`
	TokensUsed  int       `json:"tokens_used,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// -----------------------------------------------------------------------------
// MBTI REFERENCE DATA
// -----------------------------------------------------------------------------

// Question is a seeded questionnaire question.
type Question struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
}

// Answer is a seeded multiple-choice answer for a question.
type Answer struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
}

// MBTIType is one of the 16 personality types.
type MBTIType struct {
	ID          int64  `json:"id"`
	PersonaID   string `json:"persona_id"` // e.g. "INTJ"
	Name        string `json:"name"`       // e.g. "The Architect"
	Description string `json:"description"`
}

// ChatStyle is the per-personality tone configuration the assistant
// embeds verbatim into its prompt. Immutable reference data.
type ChatStyle struct {
	ID          int64    `json:"id"`
	MBTITypeID  int64    `json:"mbti_type_id"`
	Keywords    []string `json:"keywords"`    // ordered tone keywords
	Temperature float64  `json:"temperature"` // sampling temperature in [0,2]
}
