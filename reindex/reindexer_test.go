package reindex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/luminote/ai/mock"
	"github.com/poiesic/luminote/core"
	"github.com/poiesic/luminote/storage"
	"github.com/poiesic/luminote/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededStore(t *testing.T, docs int) (storage.CorpusStore, storage.ChunkIndex, string) {
	t.Helper()

	backend, err := badger.OpenBackend("", true)
	require.NoError(t, err)
	store, err := badger.NewCorpusStore(backend, mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		backend.Close()
	})

	ctx := context.Background()
	corpus, err := store.CreateCorpus(ctx, "user-alice")
	require.NoError(t, err)
	for i := 0; i < docs; i++ {
		_, err := store.UpsertDocument(ctx, corpus.Name,
			fmt.Sprintf("doc-%d", i), fmt.Sprintf("[00:00:%02d] segment %d", i, i))
		require.NoError(t, err)
	}
	return store, store, corpus.Name
}

func TestChunkIterator(t *testing.T) {
	store, index, _ := newSeededStore(t, 5)
	ctx := context.Background()

	iterator := NewChunkIterator(store, index, 2)

	total, err := iterator.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	var batchSizes []int
	err = iterator.ForEach(ctx, func(corpus string, chunks []*core.Chunk) error {
		batchSizes = append(batchSizes, len(chunks))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, batchSizes)
}

func TestChunkIteratorStopsOnError(t *testing.T) {
	store, index, _ := newSeededStore(t, 5)

	iterator := NewChunkIterator(store, index, 2)
	calls := 0
	err := iterator.ForEach(context.Background(), func(corpus string, chunks []*core.Chunk) error {
		calls++
		return errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestBatchProcessor(t *testing.T) {
	_, index, corpusName := newSeededStore(t, 1)
	ctx := context.Background()

	chunks, err := index.ListChunks(ctx, corpusName)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	original := make([]float32, len(chunks[0].Vector))
	copy(original, chunks[0].Vector)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{2, 0, 0}
		}
		return out, nil
	}

	processor := NewBatchProcessor(index, embedder, 1, time.Millisecond)
	require.NoError(t, processor.Process(ctx, corpusName, chunks))

	updated, err := index.ListChunks(ctx, corpusName)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, updated[0].Vector, "vector replaced and normalized")
	assert.NotEqual(t, original, updated[0].Vector)
}

func TestBatchProcessorCountMismatch(t *testing.T) {
	_, index, corpusName := newSeededStore(t, 1)
	ctx := context.Background()

	chunks, err := index.ListChunks(ctx, corpusName)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, nil
	}

	processor := NewBatchProcessor(index, embedder, 1, time.Millisecond)
	err = processor.Process(ctx, corpusName, chunks)
	assert.ErrorContains(t, err, "mismatch")
}

func TestReindexerRun(t *testing.T) {
	store, index, _ := newSeededStore(t, 3)

	var buf bytes.Buffer
	config := &Config{BatchSize: 2, ReportInterval: 1, MaxRetries: 1, RetryDelay: time.Millisecond}
	reindexer := NewReindexer(store, index, mock.NewMockEmbedder(), config, &buf)

	require.NoError(t, reindexer.Run(context.Background()))

	output := buf.String()
	assert.Contains(t, output, "Starting reindexing of 3 chunks")
	assert.Contains(t, output, "Reindexing complete")
}

func TestReindexerRunEmpty(t *testing.T) {
	backend, err := badger.OpenBackend("", true)
	require.NoError(t, err)
	store, err := badger.NewCorpusStore(backend, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer func() {
		store.Close()
		backend.Close()
	}()

	var buf bytes.Buffer
	reindexer := NewReindexer(store, store, mock.NewMockEmbedder(), nil, &buf)
	require.NoError(t, reindexer.Run(context.Background()))
	assert.Contains(t, buf.String(), "No chunks found")
}

func TestNormalizeVector(t *testing.T) {
	normalized := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, normalized[0], 0.001)
	assert.InDelta(t, 0.8, normalized[1], 0.001)

	zero := NormalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
