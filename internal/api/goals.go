package api

import (
	"encoding/json"
	"net/http"

	"github.com/emotitask/emotitask/internal/core"
)

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
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

	goal := &core.Goal{
		UserID:      input.UserID,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.goalStore.Create(goal); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "goalID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	goal, err := s.goalStore.Get(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "goalID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	goal, err := s.goalStore.Get(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	var updates struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsCompleted *bool  `json:"is_completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if updates.Name != "" {
		goal.Name = updates.Name
	}
	if updates.Description != "" {
		goal.Description = updates.Description
	}
	if updates.IsCompleted != nil {
		goal.IsCompleted = *updates.IsCompleted
	}

	if err := s.goalStore.Update(goal); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "goalID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	if err := s.goalStore.Delete(id); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
