// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/luminote/ai"
	"github.com/poiesic/luminote/core"
	"github.com/poiesic/luminote/storage"
)

const (
	// Chunks break on line boundaries, so a single line longer than this
	// stays whole.
	defaultMaxChunkChars = 1000
)

// CorpusStore implements storage.CorpusStore for BadgerDB.
// Chunk embeddings are computed concurrently on an ants worker pool.
type CorpusStore struct {
	backend       *Backend
	embedder      ai.Embedder
	pool          *ants.Pool
	nameSeq       *badger.Sequence
	maxChunkChars int
	logger        *slog.Logger
}

var (
	_ storage.CorpusStore = (*CorpusStore)(nil)
	_ storage.ChunkIndex  = (*CorpusStore)(nil)
)

// Option configures a CorpusStore.
type Option func(*CorpusStore) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *CorpusStore) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithMaxChunkChars sets the chunk size bound in characters.
func WithMaxChunkChars(n int) Option {
	return func(s *CorpusStore) error {
		if n < 1 {
			return fmt.Errorf("%w: chunk size must be positive", storage.ErrInvalidQuery)
		}
		s.maxChunkChars = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *CorpusStore) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewCorpusStore creates a CorpusStore on the given backend.
func NewCorpusStore(backend *Backend, embedder ai.Embedder, opts ...Option) (*CorpusStore, error) {
	nameSeq, err := backend.GetSequence(corpusIDSeq)
	if err != nil {
		return nil, err
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		nameSeq.Release()
		return nil, err
	}

	s := &CorpusStore{
		backend:       backend,
		embedder:      embedder,
		pool:          pool,
		nameSeq:       nameSeq,
		maxChunkChars: defaultMaxChunkChars,
		logger:        slog.Default().With("component", "corpus-store"),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Close()
			return nil, optErr
		}
	}

	return s, nil
}

// Close releases the name sequence and the worker pool.
// The backend is closed by its owner.
func (s *CorpusStore) Close() error {
	s.pool.Release()
	return s.nameSeq.Release()
}

// ListCorpora returns all corpora, ordered by creation time.
func (s *CorpusStore) ListCorpora(ctx context.Context) ([]*core.Corpus, error) {
	var corpora []*core.Corpus

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(corpusRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				corpus, err := storage.UnmarshalCorpus(val)
				if err != nil {
					return err
				}
				corpora = append(corpora, corpus)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(corpora, func(a, b *core.Corpus) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return corpora, nil
}

// CreateCorpus creates a new corpus with the given display name.
func (s *CorpusStore) CreateCorpus(ctx context.Context, displayName string) (*core.Corpus, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, fmt.Errorf("corpus: %w", core.ErrEmptyDisplayName)
	}

	next, err := s.nameSeq.Next()
	if err != nil {
		return nil, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if next == 0 {
		next, err = s.nameSeq.Next()
		if err != nil {
			return nil, err
		}
	}

	corpus := &core.Corpus{
		Name:        fmt.Sprintf("corpora/%d", next),
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCorpusKey(corpus.Name), storage.MarshalCorpus(corpus)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("created corpus", "name", corpus.Name, "display_name", displayName)
	return corpus, nil
}

// GetCorpus retrieves a corpus by its resource name.
func (s *CorpusStore) GetCorpus(ctx context.Context, name string) (*core.Corpus, error) {
	var corpus *core.Corpus
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		corpus, err = s.readCorpus(tx, name)
		return err
	}, false)
	return corpus, err
}

// DeleteCorpus removes a corpus and all documents and chunks under it.
func (s *CorpusStore) DeleteCorpus(ctx context.Context, name string) error {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := s.readCorpus(tx, name); err != nil {
			return err
		}
		if err := deleteByPrefix(tx, makeChunkPrefix(name)); err != nil {
			return err
		}
		if err := deleteByPrefix(tx, makeDocumentPrefix(name)); err != nil {
			return err
		}
		if err := tx.Delete(makeCorpusKey(name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.logger.Info("deleted corpus", "name", name)
	return nil
}

// ListDocuments returns all documents in a corpus, ordered by insertion time.
func (s *CorpusStore) ListDocuments(ctx context.Context, corpus string) ([]*core.Document, error) {
	var documents []*core.Document

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := s.readCorpus(tx, corpus); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDocumentPrefix(corpus)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				document, err := storage.UnmarshalDocument(val)
				if err != nil {
					return err
				}
				documents = append(documents, document)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(documents, func(a, b *core.Document) int {
		return a.InsertedAt.Compare(b.InsertedAt)
	})
	return documents, nil
}

// UpsertDocument chunks, embeds, and stores text under a corpus.
// The document ID is content-based, so re-uploading the same text replaces
// the previous copy instead of duplicating it.
func (s *CorpusStore) UpsertDocument(ctx context.Context, corpus, displayName, text string) (*core.Document, error) {
	document := &core.Document{
		Id:          core.IDFromContent(text),
		DisplayName: displayName,
		Text:        text,
		InsertedAt:  time.Now().UTC(),
	}
	if err := core.ValidateDocument(document); err != nil {
		return nil, err
	}
	if _, err := s.GetCorpus(ctx, corpus); err != nil {
		return nil, err
	}

	parts := chunkText(text, s.maxChunkChars)
	chunks, err := s.embedChunks(ctx, document.Id, parts)
	if err != nil {
		return nil, err
	}

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		// Drop chunks from any previous copy of this document.
		if err := deleteByPrefix(tx, makeChunkDocumentPrefix(corpus, document.Id)); err != nil {
			return err
		}
		if err := tx.Set(makeDocumentKey(corpus, document.Id), storage.MarshalDocument(document)); err != nil {
			return err
		}
		for _, chunk := range chunks {
			key := makeChunkKey(corpus, document.Id, chunk.Id)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("upserted document",
		"corpus", corpus, "document", document.Id, "chunks", len(chunks))
	return document, nil
}

// DeleteDocument removes a document and its chunks from a corpus.
func (s *CorpusStore) DeleteDocument(ctx context.Context, corpus string, id core.ID) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(corpus, id)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: document %d", storage.ErrNotFound, id)
			}
			return err
		}
		if err := deleteByPrefix(tx, makeChunkDocumentPrefix(corpus, id)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Search embeds the query and returns up to topK chunks from the corpus with
// vector distance <= maxDistance, ordered by distance ascending.
func (s *CorpusStore) Search(ctx context.Context, corpus, query string, topK int, maxDistance float32) ([]*core.Passage, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: topK must be positive", storage.ErrInvalidQuery)
	}
	if _, err := s.GetCorpus(ctx, corpus); err != nil {
		return nil, err
	}

	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrEmbeddingFailed, err)
	}
	normalize(queryVector)

	var passages []*core.Passage
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(corpus)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(chunk.Vector) == 0 {
				continue
			}

			// Cosine distance for normalized vectors.
			distance := 1 - dotProduct(queryVector, chunk.Vector)
			if distance <= maxDistance {
				passages = append(passages, &core.Passage{
					Text:     chunk.Text,
					Distance: distance,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(passages, func(a, b *core.Passage) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})
	if len(passages) > topK {
		passages = passages[:topK]
	}
	return passages, nil
}

// ListChunks returns all chunks stored under a corpus.
func (s *CorpusStore) ListChunks(ctx context.Context, corpus string) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(corpus)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				chunks = append(chunks, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// UpdateChunks rewrites existing chunk records under a corpus.
func (s *CorpusStore) UpdateChunks(ctx context.Context, corpus string, chunks ...*core.Chunk) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(corpus, chunk.DocumentId, chunk.Id)
			if _, err := tx.Get(key); err != nil {
				if err == badger.ErrKeyNotFound {
					return fmt.Errorf("%w: chunk %d", storage.ErrNotFound, chunk.Id)
				}
				return err
			}
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// embedChunks embeds chunk texts concurrently on the worker pool.
func (s *CorpusStore) embedChunks(ctx context.Context, documentID core.ID, parts []string) ([]*core.Chunk, error) {
	chunks := make([]*core.Chunk, len(parts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i, part := range parts {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()

			vector, err := s.embedder.EmbedText(ctx, part)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			normalize(vector)

			chunks[i] = &core.Chunk{
				Id:         core.IDFromContent(fmt.Sprintf("%d:%s", i, part)),
				DocumentId: documentID,
				Text:       part,
				Vector:     vector,
			}
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrEmbeddingFailed, firstErr)
	}
	return chunks, nil
}

// readCorpus reads a corpus record inside a transaction.
func (s *CorpusStore) readCorpus(tx *badger.Txn, name string) (*core.Corpus, error) {
	item, err := tx.Get(makeCorpusKey(name))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, fmt.Errorf("%w: %s", storage.ErrCorpusNotFound, name)
		}
		return nil, err
	}

	var corpus *core.Corpus
	err = item.Value(func(val []byte) error {
		var err error
		corpus, err = storage.UnmarshalCorpus(val)
		return err
	})
	return corpus, err
}

// deleteByPrefix removes all keys under a prefix within a transaction.
func deleteByPrefix(tx *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// chunkText splits text into chunks of at most maxChars characters, breaking
// only on line boundaries. A single line longer than maxChars stays whole.
func chunkText(text string, maxChars int) []string {
	var (
		chunks  []string
		current strings.Builder
	)

	for _, line := range strings.Split(text, "\n") {
		if current.Len() > 0 && current.Len()+len(line)+1 > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// normalize scales a vector to unit length in place.
func normalize(vector []float32) {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	magnitude := float32(math.Sqrt(sum))
	for i := range vector {
		vector[i] /= magnitude
	}
}
