package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/ai"
	"github.com/hrops/invoice-insight/internal/analysis"
	"github.com/hrops/invoice-insight/internal/config"
	"github.com/hrops/invoice-insight/internal/document"
	"github.com/hrops/invoice-insight/internal/export"
	"github.com/hrops/invoice-insight/internal/index"
	"github.com/hrops/invoice-insight/internal/invoice"
	"github.com/hrops/invoice-insight/internal/query"
	"github.com/hrops/invoice-insight/internal/repository"
	"github.com/hrops/invoice-insight/internal/server"
	"github.com/hrops/invoice-insight/internal/vectorstore"
	"github.com/hrops/invoice-insight/pkg/database"
	"github.com/hrops/invoice-insight/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Invoice Insight",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize run-history database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	runRepo := repository.NewRunRepository(db, logger)

	// Create the working directory for uploaded archives
	if err := os.MkdirAll(cfg.Analysis.WorkDir, 0755); err != nil {
		logger.Fatal("Failed to create work directory", zap.Error(err))
	}

	// Initialize AI components
	generator := ai.NewClient(ai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		VisionModel: cfg.OpenAI.VisionModel,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	}, logger)

	embedder := ai.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel, logger)

	// Initialize vector store
	store, err := vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		UseTLS: cfg.Qdrant.UseTLS,
	}, embedder, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Qdrant", zap.Error(err))
	}
	defer store.Close()

	// Initialize pipeline components
	extractor := document.NewExtractor(generator, logger)
	walker := document.NewWalker(logger)
	parser := invoice.NewParser(generator, logger)
	aggregator := invoice.NewAggregator(generator, logger)
	indexer := index.NewIndexer(store, cfg.Qdrant.Collection, cfg.Qdrant.VectorSize, logger)

	service := analysis.NewService(extractor, walker, parser, aggregator, indexer, cfg.Analysis.WorkDir, logger)
	answerer := query.NewAnswerer(store, generator, cfg.Qdrant.Collection, cfg.Analysis.TopK, logger)
	exporter := export.NewExporter(logger)

	// Initialize HTTP server
	handlers := server.NewHandlers(service, answerer, runRepo, exporter, logger)
	srv := server.New(cfg.Server, handlers, logger, cfg.Logger.Level == "debug")

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
