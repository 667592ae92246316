package api

import (
	"encoding/json"
	"net/http"

	"github.com/emotitask/emotitask/internal/core"
)

func (s *Server) handleGetMBTITypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.styleStore.GetMBTITypes()
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, types)
}

func (s *Server) handleGetMBTIType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "typeID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid type id")
		return
	}

	mbtiType, err := s.styleStore.GetMBTIType(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, mbtiType)
}

func (s *Server) handleGetChatStyle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "typeID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid type id")
		return
	}

	style, err := s.styleStore.GetChatStyle(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, style)
}

// handleGetQuestions returns the questionnaire with answers nested per
// question.
func (s *Server) handleGetQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.styleStore.GetQuestions()
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	type questionWithAnswers struct {
		*core.Question
		Answers []*core.Answer `json:"answers"`
	}

	result := make([]questionWithAnswers, 0, len(questions))
	for _, q := range questions {
		answers, err := s.styleStore.GetAnswers(q.ID)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		result = append(result, questionWithAnswers{Question: q, Answers: answers})
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetUserMBTI(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	mbtiType, err := s.styleStore.GetUserMBTIType(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, mbtiType)
}

// handleAssignUserMBTI sets (or replaces, in place) the user's MBTI
// type.
func (s *Server) handleAssignUserMBTI(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var input struct {
		MBTITypeID int64 `json:"mbti_type_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if input.MBTITypeID == 0 {
		s.respondError(w, http.StatusBadRequest, "mbti_type_id required")
		return
	}

	// both sides must exist
	if _, err := s.userStore.Get(id); err != nil {
		s.respondStoreError(w, err)
		return
	}
	if _, err := s.styleStore.GetMBTIType(input.MBTITypeID); err != nil {
		s.respondStoreError(w, err)
		return
	}

	if err := s.styleStore.AssignUserMBTIType(id, input.MBTITypeID); err != nil {
		s.respondStoreError(w, err)
		return
	}

	mbtiType, err := s.styleStore.GetUserMBTIType(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, mbtiType)
}
