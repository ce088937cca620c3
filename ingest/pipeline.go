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


package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/luminote/ai"
	"github.com/poiesic/luminote/core"
	"github.com/poiesic/luminote/corpus"
	"github.com/poiesic/luminote/storage"
	"github.com/poiesic/luminote/transcript"
)

const (
	// Number of formatted segments sent to the generator per concept batch.
	defaultBatchSize = 10
)

// Pipeline ingests a video transcript into a user's corpus, reporting
// progress as a stream of events.
type Pipeline struct {
	source    transcript.Source
	manager   *corpus.Manager
	store     storage.CorpusStore
	batcher   *ConceptBatcher
	batchSize int
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets the number of segments per concept extraction batch.
// Default is 10.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	source transcript.Source,
	store storage.CorpusStore,
	generator ai.Generator,
	opts ...Option,
) (*Pipeline, error) {
	if source == nil {
		return nil, ErrTranscriptSourceRequired
	}
	if store == nil {
		return nil, ErrCorpusStoreRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	p := &Pipeline{
		source:    source,
		manager:   corpus.NewManager(store),
		store:     store,
		batcher:   NewConceptBatcher(generator),
		batchSize: defaultBatchSize,
		logger:    slog.Default().With("component", "ingest-pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			return nil, optErr
		}
	}

	return p, nil
}

// Run ingests the referenced video into the user's corpus. The returned
// channel is unbuffered and closed after exactly one terminal event, either
// completed or error. Cancelling the context stops the stream between steps.
func (p *Pipeline) Run(ctx context.Context, videoRef, userID string) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		p.run(ctx, videoRef, userID, events)
	}()
	return events
}

func (p *Pipeline) run(ctx context.Context, videoRef, userID string, events chan<- Event) {
	if err := p.source.Validate(videoRef); err != nil {
		p.emit(ctx, events, errorEvent(fmt.Sprintf("Invalid URL: %v", err)))
		return
	}
	if err := core.ValidateUserId(userID); err != nil {
		p.emit(ctx, events, errorEvent(fmt.Sprintf("Invalid user: %v", err)))
		return
	}

	// Each ingestion replaces the user's corpus contents.
	userCorpus, err := p.manager.GetOrCreate(ctx, userID)
	if err != nil {
		p.emit(ctx, events, errorEvent(fmt.Sprintf("Failed to prepare corpus: %v", err)))
		return
	}
	if err := p.manager.Purge(ctx, userCorpus.Name); err != nil {
		p.emit(ctx, events, errorEvent(fmt.Sprintf("Failed to prepare corpus: %v", err)))
		return
	}
	if !p.emit(ctx, events, progressEvent("Preparing corpus...", 5)) {
		return
	}

	if !p.emit(ctx, events, progressEvent("Loading transcript...", 10)) {
		return
	}
	segments, err := p.source.Fetch(ctx, videoRef)
	if err != nil {
		if errors.Is(err, transcript.ErrTranscriptUnavailable) {
			p.emit(ctx, events, errorEvent(fmt.Sprintf("Transcript not available: %v", err)))
		} else {
			p.emit(ctx, events, errorEvent(fmt.Sprintf("Failed to load video: %v", err)))
		}
		return
	}
	if len(segments) == 0 {
		p.emit(ctx, events, errorEvent("No documents loaded from video transcript"))
		return
	}

	if !p.emit(ctx, events, progressEvent("Formatting transcript...", 20)) {
		return
	}
	lines := formatSegments(segments)

	concepts := NewConceptSet()
	batches := (len(lines) + p.batchSize - 1) / p.batchSize
	for i := 0; i < batches; i++ {
		if ctx.Err() != nil {
			return
		}

		end := (i + 1) * p.batchSize
		if end > len(lines) {
			end = len(lines)
		}
		block := strings.Join(lines[i*p.batchSize:end], "\n")
		concepts.Add(p.batcher.Extract(ctx, block)...)

		progress := 20 + 70*(i+1)/batches
		message := fmt.Sprintf("Processing batch %d/%d", i+1, batches)
		if !p.emit(ctx, events, progressEvent(message, progress)) {
			return
		}
	}

	if !p.emit(ctx, events, progressEvent("Indexing vector store...", 95)) {
		return
	}
	text := strings.Join(lines, "\n")
	displayName := fmt.Sprintf("Transcript for %s", videoRef)
	if _, err := p.store.UpsertDocument(ctx, userCorpus.Name, displayName, text); err != nil {
		p.emit(ctx, events, errorEvent(fmt.Sprintf("Failed to add documents to vector store: %v", err)))
		return
	}

	p.logger.Info("ingested transcript",
		"user", userID, "corpus", userCorpus.Name,
		"segments", len(segments), "concepts", concepts.Len())
	p.emit(ctx, events, completedEvent("Video processed successfully", concepts.Values()))
}

// emit sends an event, yielding to the consumer. Returns false when the
// context is cancelled before the send completes.
func (p *Pipeline) emit(ctx context.Context, events chan<- Event, event Event) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// formatSegments renders segments as "[HH:MM:SS] text" lines.
func formatSegments(segments []core.TranscriptSegment) []string {
	lines := make([]string, len(segments))
	for i, segment := range segments {
		lines[i] = fmt.Sprintf("[%s] %s", core.Clock(segment.Start), segment.Text)
	}
	return lines
}
