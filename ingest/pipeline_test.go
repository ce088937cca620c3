package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/luminote/ai/mock"
	"github.com/poiesic/luminote/core"
	"github.com/poiesic/luminote/corpus"
	"github.com/poiesic/luminote/storage"
	"github.com/poiesic/luminote/storage/badger"
	"github.com/poiesic/luminote/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource is a scriptable transcript.Source for pipeline tests.
type stubSource struct {
	segments    []core.TranscriptSegment
	validateErr error
	fetchErr    error
}

func (s *stubSource) Validate(ref string) error {
	return s.validateErr
}

func (s *stubSource) Fetch(ctx context.Context, ref string) ([]core.TranscriptSegment, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.segments, nil
}

func newTestPipeline(t *testing.T, source transcript.Source, generator *mock.MockGenerator, opts ...Option) (*Pipeline, storage.CorpusStore) {
	t.Helper()

	store, memoryRepo, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		memoryRepo.Close()
		backend.Close()
	})

	pipeline, err := NewPipeline(source, store, generator, opts...)
	require.NoError(t, err)
	return pipeline, store
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	for event := range events {
		out = append(out, event)
	}
	return out
}

func TestNewPipelineValidation(t *testing.T) {
	source := &stubSource{}
	store, memoryRepo, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer func() {
		store.Close()
		memoryRepo.Close()
		backend.Close()
	}()

	_, err = NewPipeline(nil, store, mock.NewMockGenerator())
	assert.ErrorIs(t, err, ErrTranscriptSourceRequired)

	_, err = NewPipeline(source, nil, mock.NewMockGenerator())
	assert.ErrorIs(t, err, ErrCorpusStoreRequired)

	_, err = NewPipeline(source, store, nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
}

func TestPipelineRun(t *testing.T) {
	source := &stubSource{
		segments: []core.TranscriptSegment{
			{Text: "intro", Start: 0},
			{Text: "details", Start: 95},
		},
	}
	generator := mock.NewMockGenerator().Enqueue(`["course introduction", "course introduction"]`)
	pipeline, store := newTestPipeline(t, source, generator)

	events := collect(t, pipeline.Run(context.Background(), "https://youtu.be/abc", "alice"))
	require.NotEmpty(t, events)

	t.Run("exactly one terminal event, last in stream", func(t *testing.T) {
		terminals := 0
		for _, event := range events {
			if event.Terminal() {
				terminals++
			}
		}
		assert.Equal(t, 1, terminals)
		assert.True(t, events[len(events)-1].Terminal())
	})

	t.Run("progress is non-decreasing", func(t *testing.T) {
		last := 0
		for _, event := range events {
			if event.Status != StatusProgress {
				continue
			}
			assert.GreaterOrEqual(t, event.Progress, last)
			last = event.Progress
		}
	})

	t.Run("completes with deduplicated concepts", func(t *testing.T) {
		final := events[len(events)-1]
		assert.Equal(t, StatusCompleted, final.Status)
		assert.Equal(t, 100, final.Progress)
		assert.Equal(t, []string{"course introduction"}, final.Concepts)
	})

	t.Run("document holds formatted transcript", func(t *testing.T) {
		ctx := context.Background()
		manager := corpus.NewManager(store)
		userCorpus, err := manager.GetOrCreate(ctx, "alice")
		require.NoError(t, err)

		docs, err := store.ListDocuments(ctx, userCorpus.Name)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "[00:00:00] intro\n[00:01:35] details", docs[0].Text)
	})
}

func TestPipelineRunReplacesPreviousIngestion(t *testing.T) {
	source := &stubSource{
		segments: []core.TranscriptSegment{{Text: "first video", Start: 0}},
	}
	generator := mock.NewMockGenerator().Enqueue(`[]`)
	pipeline, store := newTestPipeline(t, source, generator)
	ctx := context.Background()

	collect(t, pipeline.Run(ctx, "https://youtu.be/one", "alice"))

	source.segments = []core.TranscriptSegment{{Text: "second video", Start: 0}}
	collect(t, pipeline.Run(ctx, "https://youtu.be/two", "alice"))

	userCorpus, err := corpus.NewManager(store).GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	docs, err := store.ListDocuments(ctx, userCorpus.Name)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "[00:00:00] second video", docs[0].Text)
}

func TestPipelineRunBatches(t *testing.T) {
	var segments []core.TranscriptSegment
	for i := 0; i < 25; i++ {
		segments = append(segments, core.TranscriptSegment{
			Text:  fmt.Sprintf("segment %d", i),
			Start: float64(i),
		})
	}
	source := &stubSource{segments: segments}
	generator := mock.NewMockGenerator().Enqueue(`[]`)
	pipeline, _ := newTestPipeline(t, source, generator)

	events := collect(t, pipeline.Run(context.Background(), "https://youtu.be/abc", "alice"))

	// 25 segments in windows of 10 make 3 batches.
	assert.Equal(t, 3, generator.CallCount())

	var batchMessages []string
	for _, event := range events {
		if strings.HasPrefix(event.Message, "Processing batch") {
			batchMessages = append(batchMessages, fmt.Sprintf("%s@%d", event.Message, event.Progress))
		}
	}
	assert.Equal(t, []string{
		"Processing batch 1/3@43",
		"Processing batch 2/3@66",
		"Processing batch 3/3@90",
	}, batchMessages)
}

func TestPipelineRunErrors(t *testing.T) {
	generator := mock.NewMockGenerator().Enqueue(`[]`)

	t.Run("invalid reference", func(t *testing.T) {
		source := &stubSource{validateErr: transcript.ErrInvalidVideoRef}
		pipeline, _ := newTestPipeline(t, source, generator)

		events := collect(t, pipeline.Run(context.Background(), "nope", "alice"))
		require.Len(t, events, 1)
		assert.Equal(t, StatusError, events[0].Status)
		assert.Contains(t, events[0].Message, "Invalid URL")
		assert.Zero(t, events[0].Progress)
	})

	t.Run("empty user", func(t *testing.T) {
		source := &stubSource{}
		pipeline, _ := newTestPipeline(t, source, generator)

		events := collect(t, pipeline.Run(context.Background(), "https://youtu.be/abc", ""))
		require.Len(t, events, 1)
		assert.Equal(t, StatusError, events[0].Status)
	})

	t.Run("transcript unavailable", func(t *testing.T) {
		source := &stubSource{fetchErr: transcript.ErrTranscriptUnavailable}
		pipeline, _ := newTestPipeline(t, source, generator)

		events := collect(t, pipeline.Run(context.Background(), "https://youtu.be/abc", "alice"))
		final := events[len(events)-1]
		assert.Equal(t, StatusError, final.Status)
		assert.Contains(t, final.Message, "Transcript not available")
	})

	t.Run("video not found", func(t *testing.T) {
		source := &stubSource{fetchErr: transcript.ErrNotFound}
		pipeline, _ := newTestPipeline(t, source, generator)

		events := collect(t, pipeline.Run(context.Background(), "https://youtu.be/abc", "alice"))
		final := events[len(events)-1]
		assert.Equal(t, StatusError, final.Status)
		assert.Contains(t, final.Message, "Failed to load video")
	})

	t.Run("empty transcript", func(t *testing.T) {
		source := &stubSource{segments: []core.TranscriptSegment{}}
		pipeline, _ := newTestPipeline(t, source, generator)

		events := collect(t, pipeline.Run(context.Background(), "https://youtu.be/abc", "alice"))
		final := events[len(events)-1]
		assert.Equal(t, StatusError, final.Status)
		assert.Equal(t, "No documents loaded from video transcript", final.Message)
	})
}

func TestPipelineRunAbsorbsConceptFailures(t *testing.T) {
	source := &stubSource{
		segments: []core.TranscriptSegment{{Text: "hello", Start: 0}},
	}
	generator := mock.NewMockGenerator()
	generator.GenerateFunc = func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("model offline")
	}

	pipeline, _ := newTestPipeline(t, source, generator)
	events := collect(t, pipeline.Run(context.Background(), "https://youtu.be/abc", "alice"))

	final := events[len(events)-1]
	assert.Equal(t, StatusCompleted, final.Status)
	assert.Empty(t, final.Concepts)
}

func TestPipelineRunCancellation(t *testing.T) {
	source := &stubSource{
		segments: []core.TranscriptSegment{{Text: "hello", Start: 0}},
	}
	pipeline, _ := newTestPipeline(t, source, mock.NewMockGenerator().Enqueue(`[]`))

	ctx, cancel := context.WithCancel(context.Background())
	events := pipeline.Run(ctx, "https://youtu.be/abc", "alice")

	// Take the first event, then walk away.
	<-events
	cancel()

	// The stream must close rather than block on an abandoned consumer.
	for range events {
	}
}
