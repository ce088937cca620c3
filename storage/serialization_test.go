package storage

import (
	"testing"
	"time"

	"github.com/poiesic/luminote/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalCorpus(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	corpus := &core.Corpus{
		Name:        "corpora/7",
		DisplayName: "user-alice",
		CreatedAt:   now,
	}

	data := MarshalCorpus(corpus)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCorpus(data)
	require.NoError(t, err)
	assert.Equal(t, corpus, decoded)
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name     string
		document *core.Document
	}{
		{
			name: "transcript document",
			document: &core.Document{
				Id:          core.IDFromContent("[00:00:00] hello"),
				DisplayName: "Transcript for dQw4w9WgXcQ",
				Text:        "[00:00:00] hello\n[00:01:35] details",
				InsertedAt:  now,
			},
		},
		{
			name: "empty text",
			document: &core.Document{
				Id:          core.ID(3),
				DisplayName: "empty",
				InsertedAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalDocument(tt.document)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalDocument(data)
			require.NoError(t, err)
			assert.Equal(t, tt.document, decoded)
		})
	}
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	chunk := &core.Chunk{
		Id:         core.ID(11),
		DocumentId: core.ID(3),
		Text:       "[00:00:10] the speaker introduces the topic",
		Vector:     []float32{0.1, -0.2, 0.3, 0.9},
	}

	data := MarshalChunk(chunk)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)
}

func TestMarshalUnmarshalUserMemory(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name   string
		memory *core.UserMemory
	}{
		{
			name: "with items",
			memory: &core.UserMemory{
				UserId:    "alice",
				Items:     []string{"prefers concise answers", "interested in go"},
				UpdatedAt: now,
			},
		},
		{
			name: "no items",
			memory: &core.UserMemory{
				UserId:    "bob",
				UpdatedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalUserMemory(tt.memory)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalUserMemory(data)
			require.NoError(t, err)
			assert.Equal(t, tt.memory, decoded)
		})
	}
}

func TestUnmarshalTruncatedData(t *testing.T) {
	document := &core.Document{
		Id:          core.ID(9),
		DisplayName: "doc",
		Text:        "some text",
		InsertedAt:  time.Now().UTC(),
	}
	data := MarshalDocument(document)

	_, err := UnmarshalDocument(data[:len(data)/2])
	assert.Error(t, err)
}
