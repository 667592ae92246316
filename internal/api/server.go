// Package api provides the HTTP API server for EmotiTask.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/emotitask/emotitask/internal/assistant"
	"github.com/emotitask/emotitask/internal/core"
	"github.com/emotitask/emotitask/internal/llm"
	"github.com/emotitask/emotitask/internal/questionnaire"
	"github.com/emotitask/emotitask/internal/storage"
)

// Version reported by the health endpoint.
const Version = "0.1.0"

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	db    *storage.DB
	wsHub *WebSocketHub

	// Stores
	userStore  *storage.UserStore
	goalStore  *storage.GoalStore
	taskStore  *storage.TaskStore
	chatStore  *storage.ChatHistoryStore
	styleStore *storage.StyleStore

	// Services
	assistant     *assistant.Assistant
	questionnaire *questionnaire.Service
	llmClient     *llm.Client
	indexer       *assistant.Indexer // nil when the vector backend is down
}

// Config for the server
type Config struct {
	Host          string
	Port          int
	DB            *storage.DB
	Assistant     *assistant.Assistant
	Questionnaire *questionnaire.Service
	LLMClient     *llm.Client
	Indexer       *assistant.Indexer
}

// New creates a new API server
func New(cfg Config) *Server {
	s := &Server{
		db:            cfg.DB,
		userStore:     storage.NewUserStore(cfg.DB),
		goalStore:     storage.NewGoalStore(cfg.DB),
		taskStore:     storage.NewTaskStore(cfg.DB),
		chatStore:     storage.NewChatHistoryStore(cfg.DB),
		styleStore:    storage.NewStyleStore(cfg.DB),
		assistant:     cfg.Assistant,
		questionnaire: cfg.Questionnaire,
		llmClient:     cfg.LLMClient,
		indexer:       cfg.Indexer,
		wsHub:         NewWebSocketHub(),
	}

	s.setupRouter()

	// the assistant broadcasts through this server's hub
	if s.assistant != nil {
		s.assistant.SetBroadcaster(s)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // completions are slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRouter configures all routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Users
		r.Get("/users", s.handleGetUsers)
		r.Post("/users", s.handleCreateUser)
		r.Get("/users/{userID}", s.handleGetUser)
		r.Put("/users/{userID}", s.handleUpdateUser)
		r.Delete("/users/{userID}", s.handleDeleteUser)
		r.Get("/users/{userID}/goals", s.handleGetUserGoals)
		r.Get("/users/{userID}/tasks", s.handleGetUserTasks)
		r.Get("/users/{userID}/chat-histories", s.handleGetUserChatHistories)
		r.Get("/users/{userID}/mbti", s.handleGetUserMBTI)
		r.Put("/users/{userID}/mbti", s.handleAssignUserMBTI)

		// Goals
		r.Post("/goals", s.handleCreateGoal)
		r.Get("/goals/{goalID}", s.handleGetGoal)
		r.Put("/goals/{goalID}", s.handleUpdateGoal)
		r.Delete("/goals/{goalID}", s.handleDeleteGoal)

		// Tasks
		r.Post("/tasks", s.handleCreateTask)
		r.Get("/tasks/{taskID}", s.handleGetTask)
		r.Put("/tasks/{taskID}", s.handleUpdateTask)
		r.Delete("/tasks/{taskID}", s.handleDeleteTask)

		// Chat histories
		r.Post("/chat-histories", s.handleCreateChatHistory)
		r.Get("/chat-histories/{chatID}", s.handleGetChatHistory)
		r.Put("/chat-histories/{chatID}", s.handleUpdateChatHistory)
		r.Put("/chat-histories/{chatID}/messages", s.handleUpdateChatMessages)
		r.Delete("/chat-histories/{chatID}", s.handleDeleteChatHistory)

		// MBTI reference data (read-only)
		r.Get("/mbti-types", s.handleGetMBTITypes)
		r.Get("/mbti-types/{typeID}", s.handleGetMBTIType)
		r.Get("/mbti-types/{typeID}/chat-style", s.handleGetChatStyle)
		r.Get("/questions", s.handleGetQuestions)

		// Assistant
		r.Post("/assistant/chat", s.handleAssistantChat)
		r.Post("/process-answers", s.handleProcessAnswers)
		r.Get("/models", s.handleGetModels)
	})

	// WebSocket
	r.Get("/ws", s.handleWebSocket)

	s.router = r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.wsHub.Run()

	fmt.Printf("API server starting on http://%s\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.wsHub.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

// Broadcast sends an event to all WebSocket clients. Satisfies
// assistant.Broadcaster.
func (s *Server) Broadcast(event string, payload interface{}) {
	s.wsHub.Broadcast(WebSocketMessage{
		Type:      event,
		Data:      payload,
		Timestamp: time.Now(),
	})
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps storage errors to HTTP statuses
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrRecordNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrMissingRequired):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrDuplicateRecord):
		s.respondError(w, http.StatusConflict, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := s.db != nil && s.db.Conn().Ping() == nil

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"version":        Version,
		"database":       dbOK,
		"llm_configured": s.llmClient != nil && s.llmClient.IsConfigured(),
		"index_attached": s.indexer != nil,
	})
}
