package ingest

import "errors"

var (
	// ErrTranscriptSourceRequired is returned when a transcript source is not provided.
	ErrTranscriptSourceRequired = errors.New("transcript source required")

	// ErrCorpusStoreRequired is returned when a corpus store is not provided.
	ErrCorpusStoreRequired = errors.New("corpus store required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")
)
