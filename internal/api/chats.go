package api

import (
	"encoding/json"
	"net/http"

	"github.com/emotitask/emotitask/internal/core"
)

func (s *Server) handleCreateChatHistory(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID      int64  `json:"user_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if input.UserID == 0 || input.Name == "" {
		s.respondError(w, http.StatusBadRequest, "user_id and name required")
		return
	}

	ch := &core.ChatHistory{
		UserID:      input.UserID,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.chatStore.Create(ch); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.Broadcast("chat.created", ch)
	s.respondJSON(w, http.StatusCreated, ch)
}

func (s *Server) handleGetChatHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "chatID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	ch, err := s.chatStore.Get(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ch)
}

func (s *Server) handleUpdateChatHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "chatID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	ch, err := s.chatStore.Get(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	var updates struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if updates.Name != "" {
		ch.Name = updates.Name
	}
	if updates.Description != "" {
		ch.Description = updates.Description
	}

	if err := s.chatStore.Update(ch); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ch)
}

// handleUpdateChatMessages replaces the message log wholesale,
// together with the model attribution and token spend.
func (s *Server) handleUpdateChatMessages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "chatID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	var input struct {
		Messages   json.RawMessage `json:"messages"`
		ModelUsed  string          `json:"model_used"`
		TokensUsed int             `json:"tokens_used"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// the log must at least be a JSON array
	var probe []json.RawMessage
	if err := json.Unmarshal(input.Messages, &probe); err != nil {
		s.respondError(w, http.StatusBadRequest, "messages must be a JSON array")
		return
	}

	if err := s.chatStore.UpdateMessages(id, string(input.Messages), input.ModelUsed, input.TokensUsed); err != nil {
		s.respondStoreError(w, err)
		return
	}

	ch, err := s.chatStore.Get(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ch)
}

func (s *Server) handleDeleteChatHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "chatID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	if err := s.chatStore.Delete(id); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
