package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/emotitask/emotitask/internal/core"
	"github.com/emotitask/emotitask/internal/logging"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID      int64      `json:"user_id"`
		GoalID      *int64     `json:"goal_id"`
		Name        string     `json:"name"`
		Description string     `json:"description"`
		Priority    int        `json:"priority"`
		StartTime   *time.Time `json:"start_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if input.UserID == 0 || input.Name == "" {
		s.respondError(w, http.StatusBadRequest, "user_id and name required")
		return
	}
	if input.Priority == 0 {
		input.Priority = core.PriorityMedium
	}
	if input.Priority < core.PriorityLow || input.Priority > core.PriorityHigh {
		s.respondError(w, http.StatusBadRequest, "priority must be 1-3")
		return
	}

	task := &core.Task{
		UserID:      input.UserID,
		GoalID:      input.GoalID,
		Name:        input.Name,
		Description: input.Description,
		Priority:    input.Priority,
		StartTime:   input.StartTime,
	}
	if err := s.taskStore.Create(task); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.indexTask(r, task)
	s.Broadcast("task.created", task)
	s.respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := s.taskStore.Get(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := s.taskStore.Get(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	var updates struct {
		GoalID      *int64     `json:"goal_id"`
		Name        string     `json:"name"`
		Description string     `json:"description"`
		Priority    *int       `json:"priority"`
		IsCompleted *bool      `json:"is_completed"`
		StartTime   *time.Time `json:"start_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if updates.GoalID != nil {
		task.GoalID = updates.GoalID
	}
	if updates.Name != "" {
		task.Name = updates.Name
	}
	if updates.Description != "" {
		task.Description = updates.Description
	}
	if updates.Priority != nil {
		if *updates.Priority < core.PriorityLow || *updates.Priority > core.PriorityHigh {
			s.respondError(w, http.StatusBadRequest, "priority must be 1-3")
			return
		}
		task.Priority = *updates.Priority
	}
	if updates.IsCompleted != nil {
		task.IsCompleted = *updates.IsCompleted
	}
	if updates.StartTime != nil {
		task.StartTime = updates.StartTime
	}

	if err := s.taskStore.Update(task); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.indexTask(r, task)
	s.Broadcast("task.updated", task)
	s.respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := s.taskStore.Delete(id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	if s.indexer != nil {
		if err := s.indexer.RemoveTask(r.Context(), id); err != nil {
			logging.Warn("deindex task %d: %v", id, err)
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// indexTask pushes the task into the retrieval index, best effort
func (s *Server) indexTask(r *http.Request, task *core.Task) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexTask(r.Context(), task); err != nil {
		logging.Warn("index task %d: %v", task.ID, err)
	}
}
