// Package vectorstore provides the vector storage capability used to index
// and retrieve employee reimbursement records.
package vectorstore

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the Qdrant gRPC connection failed.
	ErrConnectionFailed = errors.New("failed to connect to Qdrant")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")
)

// Document is a text payload with metadata, ready for indexing.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
}

// SearchResult is one similarity-search hit, highest score first.
type SearchResult struct {
	ID       string
	Content  string
	Score    float32
	Metadata map[string]interface{}
}

// Store is the vector storage capability: collection lifecycle, batch
// upsert and metadata-filtered similarity search. Implementations embed
// text through an Embedder; the caller never handles raw vectors.
type Store interface {
	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// CreateCollection creates a collection with the given vector size
	// and cosine distance.
	CreateCollection(ctx context.Context, collection string, vectorSize int) error

	// DeleteCollection deletes a collection and all its documents.
	DeleteCollection(ctx context.Context, collection string) error

	// AddDocuments embeds and upserts the documents in one batch,
	// returning the stored IDs.
	AddDocuments(ctx context.Context, collection string, docs []Document) ([]string, error)

	// SearchWithFilters performs similarity search constrained by
	// exact-match metadata filters, returning up to k results in
	// descending similarity order.
	SearchWithFilters(ctx context.Context, collection, query string, k int, filters map[string]interface{}) ([]SearchResult, error)

	// Close releases the underlying connection.
	Close() error
}
