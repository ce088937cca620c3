package query

import "errors"

var (
	// ErrEmptyQuery indicates a blank or missing query string.
	ErrEmptyQuery = errors.New("query must be a non-empty string")

	// ErrQueryFailed indicates the generator call failed.
	ErrQueryFailed = errors.New("failed to process query")

	// ErrCorpusStoreRequired is returned when a corpus store is not provided.
	ErrCorpusStoreRequired = errors.New("corpus store required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")
)
