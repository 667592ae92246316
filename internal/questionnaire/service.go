// Package questionnaire turns MBTI questionnaire answers into
// personality insights via the completion engine.
package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/emotitask/emotitask/internal/core"
	"github.com/emotitask/emotitask/internal/llm"
	"github.com/emotitask/emotitask/internal/logging"
)

// ErrEmptyAnswers is returned when no answers were submitted.
var ErrEmptyAnswers = errors.New("no answers provided")

// Completer produces one chat completion. Satisfied by llm.Client.
type Completer interface {
	Chat(ctx context.Context, system, userMessage string, temperature float64) (*llm.Result, error)
}

// UserReader resolves users by ID. Satisfied by storage.UserStore.
type UserReader interface {
	Get(id int64) (*core.User, error)
}

// Service processes questionnaire answers.
type Service struct {
	users UserReader
	llm   Completer
	log   *logging.Logger
}

// NewService creates a questionnaire service.
func NewService(users UserReader, completer Completer) *Service {
	return &Service{
		users: users,
		llm:   completer,
		log:   logging.WithField("component", "questionnaire"),
	}
}

// Result carries the insight generation outcome.
type Result struct {
	Prompt   string    `json:"prompt"`
	Response string    `json:"response"`
	Model    string    `json:"model"`
	Usage    llm.Usage `json:"usage"`
}

const insightTemperature = 0.7

// BuildPromptFromAnswers renders the insight prompt. Answers are
// question/answer text pairs in questionnaire order.
func BuildPromptFromAnswers(userName string, answers []string) (string, error) {
	if len(answers) == 0 {
		return "", ErrEmptyAnswers
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s completed a personality questionnaire with these answers:\n\n", userName)
	for i, answer := range answers {
		fmt.Fprintf(&b, "%d. %s\n", i+1, answer)
	}
	b.WriteString("\nDescribe their working style and motivation in two short paragraphs, ")
	b.WriteString("then suggest which of the 16 MBTI types fits best and why.")
	return b.String(), nil
}

// Process builds the insight prompt for the user's answers and runs it
// through the completion engine.
func (s *Service) Process(ctx context.Context, userID int64, answers []string) (*Result, error) {
	user, err := s.users.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", userID, err)
	}

	prompt, err := BuildPromptFromAnswers(user.Name, answers)
	if err != nil {
		return nil, err
	}

	result, err := s.llm.Chat(ctx, "You are a thoughtful personality coach.", prompt, insightTemperature)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"user_id": userID,
		"tokens":  result.Usage.TotalTokens,
	}).Info("processed questionnaire")

	return &Result{
		Prompt:   prompt,
		Response: result.Text,
		Model:    result.Model,
		Usage:    result.Usage,
	}, nil
}
