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


package luminote

import (
	"log/slog"

	"github.com/poiesic/luminote/ai"
	"github.com/poiesic/luminote/ai/openai"
	"github.com/poiesic/luminote/ingest"
	"github.com/poiesic/luminote/memory"
	"github.com/poiesic/luminote/query"
	"github.com/poiesic/luminote/storage"
	"github.com/poiesic/luminote/storage/badger"
	"github.com/poiesic/luminote/transcript"
)

// Assistant bundles the storage backend and AI provider behind one handle.
// It is the main entry point for embedding luminote in an application.
type Assistant struct {
	backend     *badger.Backend
	corpusStore storage.CorpusStore
	memoryRepo  storage.MemoryRepository
	provider    ai.Provider
	logger      *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*assistantOptions)

type assistantOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the default AI service configuration.
func WithAIConfig(config *ai.Config) AssistantOption {
	return func(o *assistantOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// NewAssistant opens the database at filePath and wires up the AI provider.
func NewAssistant(filePath string, opts ...AssistantOption) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	corpusStore, err := badger.NewCorpusStore(backend, provider.Embedder())
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	memoryRepo, err := badger.NewMemoryRepository(backend)
	if err != nil {
		corpusStore.Close()
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Assistant{
		backend:     backend,
		corpusStore: corpusStore,
		memoryRepo:  memoryRepo,
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

// Close releases the AI provider, stores, and the backend.
func (a *Assistant) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.memoryRepo.Close(); err != nil {
		a.logger.Error("error closing memory repository", "err", err)
		return err
	}
	if err := a.corpusStore.Close(); err != nil {
		a.logger.Error("error closing corpus store", "err", err)
		return err
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// CorpusStore exposes the underlying corpus store.
func (a *Assistant) CorpusStore() storage.CorpusStore {
	return a.corpusStore
}

// MemoryRepository exposes the underlying memory repository.
func (a *Assistant) MemoryRepository() storage.MemoryRepository {
	return a.memoryRepo
}

// NewIngestionPipeline creates a pipeline that ingests transcripts from the
// given source into this assistant's storage.
func (a *Assistant) NewIngestionPipeline(source transcript.Source, opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(source, a.corpusStore, a.provider.Generator(), opts...)
}

// NewQueryEngine creates a personalized query engine over this assistant's
// storage.
func (a *Assistant) NewQueryEngine(opts ...query.Option) (*query.Engine, error) {
	memories, err := memory.NewStore(a.memoryRepo, a.provider.Generator())
	if err != nil {
		return nil, err
	}
	return query.NewEngine(a.corpusStore, a.provider.Generator(), memories, opts...)
}

// NewMemoryStore creates a personalization store over this assistant's
// storage.
func (a *Assistant) NewMemoryStore() (*memory.Store, error) {
	return memory.NewStore(a.memoryRepo, a.provider.Generator())
}
