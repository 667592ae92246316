package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emotitask/emotitask/internal/assistant"
	"github.com/emotitask/emotitask/internal/core"
	"github.com/emotitask/emotitask/internal/llm"
	"github.com/emotitask/emotitask/internal/questionnaire"
)

// handleAssistantChat runs one conversational turn.
func (s *Server) handleAssistantChat(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID         int64  `json:"user_id"`
		ConversationID int64  `json:"conversation_id"`
		Message        string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if input.UserID == 0 || input.Message == "" {
		s.respondError(w, http.StatusBadRequest, "user_id and message required")
		return
	}

	turn, err := s.assistant.Converse(r.Context(), input.UserID, input.ConversationID, input.Message)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrMissingStyle):
			s.respondError(w, http.StatusUnprocessableEntity, "user has no chat style assigned")
		case errors.Is(err, core.ErrRecordNotFound):
			s.respondError(w, http.StatusNotFound, err.Error())
		default:
			var ce *llm.CompletionError
			if errors.As(err, &ce) && ce.StatusCode != 0 {
				s.respondError(w, http.StatusBadGateway, ce.Error())
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.respondJSON(w, http.StatusOK, turn)
}

// handleProcessAnswers turns questionnaire answers into personality
// insights.
func (s *Server) handleProcessAnswers(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID  int64    `json:"user_id"`
		Answers []string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if input.UserID == 0 {
		s.respondError(w, http.StatusBadRequest, "user_id required")
		return
	}

	result, err := s.questionnaire.Process(r.Context(), input.UserID, input.Answers)
	if err != nil {
		switch {
		case errors.Is(err, questionnaire.ErrEmptyAnswers):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, core.ErrRecordNotFound):
			s.respondError(w, http.StatusNotFound, err.Error())
		default:
			var ce *llm.CompletionError
			if errors.As(err, &ce) && ce.StatusCode != 0 {
				s.respondError(w, http.StatusBadGateway, ce.Error())
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// handleGetModels lists models offered by the completion provider.
func (s *Server) handleGetModels(w http.ResponseWriter, r *http.Request) {
	if s.llmClient == nil || !s.llmClient.IsConfigured() {
		s.respondError(w, http.StatusServiceUnavailable, "completion engine not configured")
		return
	}

	models, err := s.llmClient.ListModels(r.Context())
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"models":  models,
		"default": s.llmClient.Model(),
	})
}
