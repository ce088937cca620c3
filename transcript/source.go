package transcript

import (
	"context"

	"github.com/poiesic/luminote/core"
)

// Source pulls a video's transcript as an ordered sequence of timestamped
// segments. Implementations must be thread-safe for concurrent use.
type Source interface {
	// Validate reports whether ref is a well-formed video reference for this
	// source. It performs no I/O. Returns ErrInvalidVideoRef (possibly
	// wrapped) when the reference is malformed.
	Validate(ref string) error

	// Fetch retrieves the transcript for ref. Segments are returned in
	// playback order. Returns ErrNotFound when the video does not exist and
	// ErrTranscriptUnavailable when it has no captions.
	Fetch(ctx context.Context, ref string) ([]core.TranscriptSegment, error)
}
