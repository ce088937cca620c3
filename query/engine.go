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


package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/luminote/ai"
	"github.com/poiesic/luminote/core"
	"github.com/poiesic/luminote/corpus"
	"github.com/poiesic/luminote/storage"
)

const (
	defaultTopK        = 5
	defaultMaxDistance = 0.65
)

// MemoryFetcher supplies the user's preference block for prompt injection.
type MemoryFetcher interface {
	Fetch(ctx context.Context, userID string) (string, error)
}

// Engine answers questions about a user's ingested video.
type Engine struct {
	store       storage.CorpusStore
	manager     *corpus.Manager
	memories    MemoryFetcher
	generator   ai.Generator
	topK        int
	maxDistance float32
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithTopK sets the number of passages retrieved per query. Default is 5.
func WithTopK(topK int) Option {
	return func(e *Engine) error {
		if topK < 1 {
			return fmt.Errorf("%w: topK must be positive", storage.ErrInvalidQuery)
		}
		e.topK = topK
		return nil
	}
}

// WithMaxDistance sets the vector distance cutoff for retrieval.
// Default is 0.65.
func WithMaxDistance(maxDistance float32) Option {
	return func(e *Engine) error {
		e.maxDistance = maxDistance
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a query engine. memories may be nil, in which case
// answers are not personalized.
func NewEngine(store storage.CorpusStore, generator ai.Generator, memories MemoryFetcher, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrCorpusStoreRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	e := &Engine{
		store:       store,
		manager:     corpus.NewManager(store),
		memories:    memories,
		generator:   generator,
		topK:        defaultTopK,
		maxDistance: defaultMaxDistance,
		logger:      slog.Default().With("component", "query-engine"),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			return nil, optErr
		}
	}

	return e, nil
}

// Answer retrieves context from the user's corpus and generates a grounded,
// timestamped answer. The raw model output always decodes to a result; only
// validation, retrieval, and transport problems surface as errors.
func (e *Engine) Answer(ctx context.Context, userID, query string) (core.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return core.QueryResult{}, ErrEmptyQuery
	}
	if err := core.ValidateUserId(userID); err != nil {
		return core.QueryResult{}, err
	}

	userCorpus, err := e.manager.GetOrCreate(ctx, userID)
	if err != nil {
		return core.QueryResult{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	passages, err := e.store.Search(ctx, userCorpus.Name, query, e.topK, e.maxDistance)
	if err != nil {
		return core.QueryResult{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	texts := make([]string, len(passages))
	for i, passage := range passages {
		texts[i] = passage.Text
	}

	memoryBlock := ""
	if e.memories != nil {
		memoryBlock, err = e.memories.Fetch(ctx, userID)
		if err != nil {
			// Personalization is best effort; answer without it.
			e.logger.Warn("failed to fetch user memories", "user", userID, "error", err)
			memoryBlock = ""
		}
	}

	prompt := buildSystemPrompt(memoryBlock, texts)
	response, err := e.generator.Generate(ctx, prompt, query)
	if err != nil {
		return core.QueryResult{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	result := ParseAnswer(response)
	e.logger.Debug("answered query",
		"user", userID, "passages", len(passages), "timestamp", result.Timestamp)
	return result, nil
}
