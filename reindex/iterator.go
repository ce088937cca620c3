package reindex

import (
	"context"

	"github.com/poiesic/luminote/core"
	"github.com/poiesic/luminote/storage"
)

const (
	// DefaultBatchSize is the default number of chunks to process per batch
	DefaultBatchSize = 100
)

// ChunkIterator walks every chunk in every corpus in batches.
type ChunkIterator struct {
	store     storage.CorpusStore
	index     storage.ChunkIndex
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks per batch (must be > 0)
func NewChunkIterator(store storage.CorpusStore, index storage.ChunkIndex, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		store:     store,
		index:     index,
		batchSize: batchSize,
	}
}

// Count returns the total number of chunks across all corpora.
func (it *ChunkIterator) Count(ctx context.Context) (int, error) {
	corpora, err := it.store.ListCorpora(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, corpus := range corpora {
		chunks, err := it.index.ListChunks(ctx, corpus.Name)
		if err != nil {
			return 0, err
		}
		total += len(chunks)
	}
	return total, nil
}

// ForEach iterates over all chunks corpus by corpus, calling fn for each
// batch. Iteration stops on the first error from fn. Context cancellation
// is checked between batches.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func(corpus string, chunks []*core.Chunk) error) error {
	corpora, err := it.store.ListCorpora(ctx)
	if err != nil {
		return err
	}

	for _, corpus := range corpora {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunks, err := it.index.ListChunks(ctx, corpus.Name)
		if err != nil {
			return err
		}

		for i := 0; i < len(chunks); i += it.batchSize {
			end := i + it.batchSize
			if end > len(chunks) {
				end = len(chunks)
			}

			if err := fn(corpus.Name, chunks[i:end]); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
	return nil
}
