package transcript

import "errors"

var (
	// ErrInvalidVideoRef indicates a malformed or unsupported video reference.
	ErrInvalidVideoRef = errors.New("invalid video reference")

	// ErrNotFound indicates the referenced video does not exist.
	ErrNotFound = errors.New("video not found")

	// ErrTranscriptUnavailable indicates the video exists but has no captions.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
)
