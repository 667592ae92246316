// EmotiTask Daemon - the task assistant backend
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emotitask/emotitask/internal/api"
	"github.com/emotitask/emotitask/internal/assistant"
	"github.com/emotitask/emotitask/internal/config"
	"github.com/emotitask/emotitask/internal/embeddings"
	"github.com/emotitask/emotitask/internal/llm"
	"github.com/emotitask/emotitask/internal/questionnaire"
	"github.com/emotitask/emotitask/internal/storage"
	"github.com/emotitask/emotitask/internal/vectors"
)

var (
	configPath string
	dataDir    string
	port       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "emotitask",
		Short: "EmotiTask - a personality-aware task assistant backend",
		RunE:  runDaemon,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides config)")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Starting EmotiTask...")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	// Open database
	dbPath := filepath.Join(cfg.DataDir, "emotitask.db")
	db, err := storage.Open(storage.Config{Path: dbPath})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Seed reference data (questions, answers, MBTI types, chat styles)
	if err := db.SeedStaticData(); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	// Connect to Qdrant
	vectorStore, err := vectors.NewStore(vectors.Config{
		Host: cfg.Qdrant.Host,
		Port: cfg.Qdrant.Port,
	})
	if err != nil {
		fmt.Printf("⚠️  Qdrant not available: %v\n", err)
		fmt.Println("   Retrieval context will be limited")
		vectorStore = nil
	} else {
		defer vectorStore.Close()
		fmt.Println("✅ Qdrant connected")
	}

	// Initialize embeddings
	embedder := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Ollama.URL,
		Model:   cfg.Ollama.Model,
	})
	if err := embedder.Health(context.Background()); err != nil {
		fmt.Printf("⚠️  Ollama not available: %v\n", err)
		fmt.Println("   Retrieval context will be limited")
	} else {
		fmt.Println("✅ Ollama connected")

		if vectorStore != nil {
			if err := vectorStore.EnsureCollection(context.Background(), embedder.Dimension()); err != nil {
				fmt.Printf("⚠️  Failed to ensure collection: %v\n", err)
			}
		}
	}

	// Initialize LLM client
	llmClient := llm.NewClient(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
	if !llmClient.IsConfigured() {
		fmt.Println("⚠️  OPENAI_API_KEY not set - chat will be unavailable")
	} else {
		fmt.Println("✅ Completion engine configured")
	}

	// Stores
	userStore := storage.NewUserStore(db)
	taskStore := storage.NewTaskStore(db)
	chatStore := storage.NewChatHistoryStore(db)
	styleStore := storage.NewStyleStore(db)

	// Indexer and searcher are only attached when the vector backend
	// is up; without them the assistant runs degraded.
	var indexer *assistant.Indexer
	var searcher assistant.Searcher
	if vectorStore != nil {
		indexer = assistant.NewIndexer(embedder, vectorStore)
		searcher = vectorStore
	}

	asst := assistant.New(assistant.Config{
		Router:     assistant.NewRouter(embedder, searcher),
		Dispatcher: assistant.NewDispatcher(taskStore),
		Completer:  llmClient,
		Users:      userStore,
		Styles:     styleStore,
		Chats:      chatStore,
		Indexer:    indexer,
	})

	server := api.New(api.Config{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		DB:            db,
		Assistant:     asst,
		Questionnaire: questionnaire.NewService(userStore, llmClient),
		LLMClient:     llmClient,
		Indexer:       indexer,
	})

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\n🛑 Shutting down...")
		server.Stop(context.Background())
	}()

	// Start server (blocks)
	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
