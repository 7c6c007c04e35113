package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/document-qa-api/internal/chunker"
	"github.com/BerylCAtieno/document-qa-api/internal/config"
	"github.com/BerylCAtieno/document-qa-api/internal/db"
	"github.com/BerylCAtieno/document-qa-api/internal/extractor"
	"github.com/BerylCAtieno/document-qa-api/internal/llm"
	"github.com/BerylCAtieno/document-qa-api/internal/repository"
	"github.com/BerylCAtieno/document-qa-api/internal/router"
	"github.com/BerylCAtieno/document-qa-api/internal/services"
	"github.com/BerylCAtieno/document-qa-api/internal/storage"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
	"github.com/BerylCAtieno/document-qa-api/internal/vectorindex"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Fatalf("Configuration error: %v", cfgErr)
		}
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	// Chat history database
	database, err := db.NewSQLiteDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// LLM provider
	provider, err := llm.NewProvider(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize LLM provider", "error", err)
	}
	defer provider.Close()

	// Vector index
	store, closeStore, err := newVectorStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize vector index", "backend", cfg.VectorIndexBackend, "error", err)
	}
	defer closeStore()
	index := vectorindex.New(provider.Embedder, store, logger)

	splitter, err := chunker.NewSplitter(
		chunker.WithChunkSize(cfg.ChunkSize),
		chunker.WithOverlap(cfg.ChunkOverlap),
	)
	if err != nil {
		logger.Fatal("Invalid chunking configuration", "error", err)
	}

	// Optional archive of raw uploads
	var archive storage.Storage
	if cfg.ArchiveEnabled() {
		archive, err = storage.NewS3Storage(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize S3 storage", "error", err)
		}
	}

	ingestion := services.NewIngestionService(services.IngestionDeps{
		Extractor:   extractor.New(),
		Splitter:    splitter,
		Index:       index,
		LLM:         provider.Client,
		Archive:     archive,
		Temperature: cfg.LLMTemperature,
		Logger:      logger,
	})
	questions := services.NewQuestionService(index, provider.Client, cfg.RetrievalTopK, cfg.LLMTemperature, logger)
	session := services.NewSessionService(ingestion, questions, repository.NewHistoryRepository(database), archive, logger)

	handler := router.NewRouter(session, questions, router.Options{
		MaxFileSize:        cfg.MaxFileSize,
		AllowedUploadTypes: cfg.AllowedUploadTypes,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"llm_provider", cfg.LLMProvider,
			"vector_backend", cfg.VectorIndexBackend,
			"archive_enabled", cfg.ArchiveEnabled())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return
	}

	logger.Info("Server exited")
}

func newVectorStore(ctx context.Context, cfg *config.Config) (vectorindex.Store, func(), error) {
	switch cfg.VectorIndexBackend {
	case config.BackendPGVector:
		store, err := vectorindex.NewPGVectorStore(ctx, cfg.VectorIndexURL, cfg.VectorIndexAPIKey, cfg.VectorIndexName, cfg.EmbeddingDimension)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.BackendQdrant:
		store := vectorindex.NewQdrantStore(vectorindex.QdrantConfig{
			URL:        cfg.VectorIndexURL,
			APIKey:     cfg.VectorIndexAPIKey,
			Collection: cfg.VectorIndexName,
			Dimension:  cfg.EmbeddingDimension,
		})
		if err := store.EnsureCollection(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case config.BackendMemory:
		return vectorindex.NewMemoryStore(cfg.EmbeddingDimension), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector index backend %q", cfg.VectorIndexBackend)
	}
}
