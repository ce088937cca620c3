package transcript

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/luminote/core"
)

// SRTSource reads transcripts from SubRip (.srt) caption files. The video
// reference is the file path.
type SRTSource struct{}

var _ Source = (*SRTSource)(nil)

// NewSRTSource creates a transcript source backed by local SubRip files.
func NewSRTSource() *SRTSource {
	return &SRTSource{}
}

// Validate checks that ref names an .srt file.
func (s *SRTSource) Validate(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("%w: empty reference", ErrInvalidVideoRef)
	}
	if !strings.HasSuffix(strings.ToLower(ref), ".srt") {
		return fmt.Errorf("%w: %q is not an .srt file", ErrInvalidVideoRef, ref)
	}
	return nil
}

// Fetch reads and parses the caption file at ref.
func (s *SRTSource) Fetch(ctx context.Context, ref string) ([]core.TranscriptSegment, error) {
	if err := s.Validate(ref); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, err
	}

	segments := ParseSRT(string(data))
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no caption frames in %s", ErrTranscriptUnavailable, ref)
	}
	return segments, nil
}

// ParseSRT parses SubRip caption text into transcript segments.
//
//	1                                   sequence number
//	00:00:00,000 --> 00:00:01,830       start --> end
//	I'm happy to                        line
//	have you here today.                line
//
// Consecutive text lines of one cue are merged into a single segment carrying
// the cue's start offset.
func ParseSRT(text string) []core.TranscriptSegment {
	if text == "" {
		return []core.TranscriptSegment{}
	}

	var (
		segments  []core.TranscriptSegment
		start     float64
		cue       strings.Builder
		inCue     bool
		flushCue  = func() {
			if cue.Len() > 0 {
				segments = append(segments, core.TranscriptSegment{
					Text:  cue.String(),
					Start: start,
				})
				cue.Reset()
			}
			inCue = false
		}
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		// Blank line ends the current cue.
		if line == "" {
			flushCue()
			continue
		}

		// Skip sequence numbers.
		if isDigitOnly(line) && !inCue {
			continue
		}

		// Timestamp line (start --> end), HH:MM:SS,mmm --> HH:MM:SS,mmm.
		if strings.Contains(line, "-->") {
			flushCue()
			parts := strings.Split(line, "-->")
			if len(parts) == 2 {
				start = core.OffsetSeconds(strings.TrimSpace(parts[0]))
				inCue = true
			}
			continue
		}

		if cue.Len() > 0 {
			cue.WriteString(" ")
		}
		cue.WriteString(line)
	}
	flushCue()

	return segments
}

// isDigitOnly checks if a string contains only digits.
func isDigitOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
