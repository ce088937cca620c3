package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/luminote/core"
)

// Key prefixes for different data types
const (
	corpusRecordPrefix = "correc"
	corpusIDSeq        = "correcseq"
	documentRecordPart = "docrec"
	chunkRecordPart    = "chkrec"
	userMemoryPrefix   = "memrec"
)

// makeCorpusKey generates a key for a corpus by resource name.
func makeCorpusKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", corpusRecordPrefix, name))
}

// makeDocumentKey generates a key for a document within a corpus.
// Format: corpus:docrec:id
func makeDocumentKey(corpus string, id core.ID) []byte {
	prefix := makeDocumentPrefix(corpus)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeDocumentPrefix generates the iteration prefix for a corpus's documents.
func makeDocumentPrefix(corpus string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", corpus, documentRecordPart))
}

// makeChunkKey generates a key for a chunk within a corpus.
// Format: corpus:chkrec:documentID:chunkID
func makeChunkKey(corpus string, documentID, chunkID core.ID) []byte {
	prefix := makeChunkDocumentPrefix(corpus, documentID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makeChunkDocumentPrefix generates the iteration prefix for one document's chunks.
func makeChunkDocumentPrefix(corpus string, documentID core.ID) []byte {
	prefix := makeChunkPrefix(corpus)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeChunkPrefix generates the iteration prefix for a corpus's chunks.
func makeChunkPrefix(corpus string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", corpus, chunkRecordPart))
}

// makeUserMemoryKey generates a key for a user's memory record.
func makeUserMemoryKey(userID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", userMemoryPrefix, userID))
}
