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


package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// TranscriptSegment is one ordered unit of transcript text with its
// originating playback offset in seconds. Segments are produced once per
// ingestion run and never mutated.
type TranscriptSegment struct {
	Text  string
	Start float64
}

// Clock renders the segment's playback offset as zero-padded HH:MM:SS.
func (s TranscriptSegment) Clock() string {
	return Clock(s.Start)
}

// Corpus is a per-user knowledge-base handle in the retrieval backend.
// Name is the backend resource name; DisplayName is derived deterministically
// from the owning user's identifier, so at most one corpus per user exists.
type Corpus struct {
	Name        string
	DisplayName string
	CreatedAt   time.Time
}

// Document is an artifact uploaded into a corpus, typically the full
// formatted transcript of one video.
type Document struct {
	Id          ID
	DisplayName string
	Text        string
	InsertedAt  time.Time
}

// Chunk is an indexed slice of a document together with its embedding.
// Chunks are internal to the retrieval backend; queries see passages.
type Chunk struct {
	Id         ID
	DocumentId ID
	Text       string
	Vector     []float32
}

// Passage is an ephemeral similarity-search result. Distance is the cosine
// distance between the query and the chunk (lower is closer).
type Passage struct {
	Text     string
	Distance float32
}

// QueryResult is the canonical output of the query engine. It is always
// produced, even when the model's raw output could not be decoded as JSON.
type QueryResult struct {
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// UserMemory holds the deduplicated set of remembered preference strings for
// one user. The set only grows; items are unioned in and never pruned.
type UserMemory struct {
	UserId    string
	Items     []string
	UpdatedAt time.Time
}

// Contains reports whether the memory set already holds item.
func (m *UserMemory) Contains(item string) bool {
	for _, existing := range m.Items {
		if existing == item {
			return true
		}
	}
	return false
}
