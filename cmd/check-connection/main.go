package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/ai"
	"github.com/hrops/invoice-insight/internal/vectorstore"
)

func main() {
	apiKey := flag.String("key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	model := flag.String("model", "gpt-4o-mini", "Chat model to probe")
	embeddingModel := flag.String("embedding-model", "text-embedding-3-small", "Embedding model to probe")
	qdrantHost := flag.String("qdrant-host", "localhost", "Qdrant host")
	qdrantPort := flag.Int("qdrant-port", 6334, "Qdrant gRPC port")
	timeout := flag.Duration("timeout", 30*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "ERROR: OPENAI_API_KEY not set and no --key flag provided\n")
		fmt.Fprintf(os.Stderr, "Usage: check-connection --key sk-... [--qdrant-host <host>] [--timeout 30s]\n")
		os.Exit(1)
	}

	fmt.Println("=== Connection Check ===")
	fmt.Println("Configuration:")
	fmt.Printf("  Chat model: %s\n", *model)
	fmt.Printf("  Embedding model: %s\n", *embeddingModel)
	fmt.Printf("  Qdrant: %s:%d\n", *qdrantHost, *qdrantPort)
	fmt.Printf("  API key length: %d chars\n", len(*apiKey))
	fmt.Printf("  Timeout: %v\n", *timeout)
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Chat completion probe
	generator := ai.NewClient(ai.Config{
		APIKey: *apiKey,
		Model:  *model,
	}, logger)

	fmt.Println("Probing chat completion API...")
	start := time.Now()
	reply, err := generator.Generate(ctx, "Reply with the single word: ok")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Chat completion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Chat completion responded in %v: %q\n\n", time.Since(start), reply)

	// Embedding probe
	embedder := ai.NewOpenAIEmbedder(*apiKey, *embeddingModel, logger)

	fmt.Println("Probing embeddings API...")
	start = time.Now()
	vector, err := embedder.EmbedQuery(ctx, "employee record")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Embedding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Embedding responded in %v (dimension %d)\n\n", time.Since(start), len(vector))

	// Qdrant probe; the constructor health-checks the connection
	fmt.Println("Probing Qdrant...")
	start = time.Now()
	store, err := vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
		Host: *qdrantHost,
		Port: *qdrantPort,
	}, embedder, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Qdrant connection failed: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	fmt.Printf("✓ Qdrant healthy in %v\n\n", time.Since(start))

	fmt.Println("✅ All connections OK")
}
