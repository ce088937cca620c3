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


package storage

import (
	"github.com/poiesic/luminote/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalCorpus serializes a Corpus to bytes.
func MarshalCorpus(corpus *core.Corpus) []byte {
	buf := make([]byte, core.CorpusMUS.Size(*corpus))
	core.CorpusMUS.Marshal(*corpus, buf)
	return buf
}

// UnmarshalCorpus deserializes a Corpus from bytes.
func UnmarshalCorpus(data []byte) (*core.Corpus, error) {
	corpus, _, err := core.CorpusMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &corpus, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(document *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*document))
	core.DocumentMUS.Marshal(*document, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	document, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &document, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalUserMemory serializes a UserMemory to bytes.
func MarshalUserMemory(memory *core.UserMemory) []byte {
	buf := make([]byte, core.UserMemoryMUS.Size(*memory))
	core.UserMemoryMUS.Marshal(*memory, buf)
	return buf
}

// UnmarshalUserMemory deserializes a UserMemory from bytes.
func UnmarshalUserMemory(data []byte) (*core.UserMemory, error) {
	memory, _, err := core.UserMemoryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &memory, nil
}
