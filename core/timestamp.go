package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ZeroClock is the fallback timestamp used when an offset cannot be
// interpreted or an answer cannot be grounded in retrieved context.
const ZeroClock = "00:00:00"

// maxClockSeconds is the largest offset the two-digit hour field can show.
const maxClockSeconds = 99*3600 + 59*60 + 59

// Clock formats a playback offset in seconds as zero-padded HH:MM:SS.
// Negative or non-finite offsets render as ZeroClock; offsets past the
// two-digit hour field clamp to 99:59:59. Clamping must happen before the
// int64 conversion, whose result is implementation-specific out of range.
func Clock(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return ZeroClock
	}
	if seconds > maxClockSeconds {
		seconds = maxClockSeconds
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// OffsetSeconds coerces a raw playback offset into seconds. Transcript
// sources hand back offsets in several shapes: an already-formatted
// "HH:MM:SS" string, integer or float seconds, a numeric string, or a
// json.Number. Anything unparsable yields 0 rather than an error, so a
// malformed offset degrades to ZeroClock instead of aborting ingestion.
func OffsetSeconds(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return nonNegative(v)
	case float32:
		return nonNegative(float64(v))
	case int:
		return nonNegative(float64(v))
	case int64:
		return nonNegative(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return nonNegative(f)
	case string:
		return parseOffsetString(v)
	default:
		return 0
	}
}

// parseOffsetString interprets "HH:MM:SS", "MM:SS", "HH:MM:SS,mmm" (SubRip)
// or a plain numeric string as seconds. Garbage maps to 0.
func parseOffsetString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	// SubRip carries milliseconds after a comma.
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return 0
		}
		var total float64
		for _, part := range parts {
			n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil || n < 0 {
				return 0
			}
			total = total*60 + n
		}
		return nonNegative(total)
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return nonNegative(n)
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
