package storage

import (
	"context"

	"github.com/poiesic/luminote/core"
)

// CorpusStore manages named corpora of transcript documents together with
// their embedded chunks. Implementations must be thread-safe and support
// concurrent access.
type CorpusStore interface {
	// ListCorpora returns all corpora, ordered by creation time.
	ListCorpora(ctx context.Context) ([]*core.Corpus, error)

	// CreateCorpus creates a new corpus with the given display name and
	// returns it. The store assigns the unique resource name.
	CreateCorpus(ctx context.Context, displayName string) (*core.Corpus, error)

	// GetCorpus retrieves a corpus by its resource name.
	// Returns ErrCorpusNotFound if it does not exist.
	GetCorpus(ctx context.Context, name string) (*core.Corpus, error)

	// DeleteCorpus removes a corpus and all documents and chunks under it.
	// Returns ErrCorpusNotFound if it does not exist.
	DeleteCorpus(ctx context.Context, name string) error

	// ListDocuments returns all documents in a corpus, ordered by insertion.
	ListDocuments(ctx context.Context, corpus string) ([]*core.Document, error)

	// UpsertDocument chunks, embeds, and stores text under a corpus.
	// The document ID is derived from the content, so re-uploading the
	// same text replaces the previous copy. Returns the stored document.
	UpsertDocument(ctx context.Context, corpus, displayName, text string) (*core.Document, error)

	// DeleteDocument removes a document and its chunks from a corpus.
	// Returns ErrNotFound if the document does not exist.
	DeleteDocument(ctx context.Context, corpus string, id core.ID) error

	// Search embeds the query and returns up to topK chunks from the corpus
	// with vector distance <= maxDistance, ordered by distance ascending.
	Search(ctx context.Context, corpus, query string, topK int, maxDistance float32) ([]*core.Passage, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkIndex exposes a corpus's raw chunk records for maintenance
// operations such as reindexing after an embedding-model change.
type ChunkIndex interface {
	// ListChunks returns all chunks stored under a corpus.
	ListChunks(ctx context.Context, corpus string) ([]*core.Chunk, error)

	// UpdateChunks rewrites existing chunk records, typically with fresh
	// vectors.
	UpdateChunks(ctx context.Context, corpus string, chunks ...*core.Chunk) error
}

// MemoryRepository persists per-user preference items.
type MemoryRepository interface {
	// AddMemories merges items into the user's memory set. Items already
	// present are ignored. Returns the updated memory.
	AddMemories(ctx context.Context, userID string, items ...string) (*core.UserMemory, error)

	// GetMemories retrieves the user's memory. A user with no stored items
	// yields an empty memory, not an error.
	GetMemories(ctx context.Context, userID string) (*core.UserMemory, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
