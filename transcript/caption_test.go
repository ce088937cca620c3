package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url extra params", "https://www.youtube.com/watch?v=abc123&t=42s", "abc123", false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"missing v parameter", "https://www.youtube.com/watch?list=PL123", "", true},
		{"short url no id", "https://youtu.be/", "", true},
		{"not youtube", "https://vimeo.com/12345", "", true},
		{"empty", "", "", true},
		{"garbage", "not a url", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := VideoID(tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVideoRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestCaptionSourceValidate(t *testing.T) {
	source := NewCaptionSource("http://localhost:9000")

	assert.NoError(t, source.Validate("https://www.youtube.com/watch?v=abc"))
	assert.ErrorIs(t, source.Validate("https://example.com/video"), ErrInvalidVideoRef)
}

func TestCaptionSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("video") {
		case "mixed":
			// Offsets arrive as numbers, strings, and clocks.
			w.Write([]byte(`[
				{"text": "intro", "start": 0},
				{"text": "middle", "start": "42.5"},
				{"text": "details", "start": "00:01:35"}
			]`))
		case "blank":
			w.Write([]byte(`[{"text": "  ", "start": 0}]`))
		case "broken":
			w.Write([]byte(`{not json`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	source := NewCaptionSource(server.URL, WithHTTPClient(server.Client()))
	ctx := context.Background()

	t.Run("normalizes mixed offset shapes", func(t *testing.T) {
		segments, err := source.Fetch(ctx, "https://www.youtube.com/watch?v=mixed")
		require.NoError(t, err)
		require.Len(t, segments, 3)

		assert.Equal(t, "intro", segments[0].Text)
		assert.InDelta(t, 0.0, segments[0].Start, 0.001)
		assert.InDelta(t, 42.5, segments[1].Start, 0.001)
		assert.InDelta(t, 95.0, segments[2].Start, 0.001)
	})

	t.Run("unknown video", func(t *testing.T) {
		_, err := source.Fetch(ctx, "https://www.youtube.com/watch?v=nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("blank-only track", func(t *testing.T) {
		_, err := source.Fetch(ctx, "https://www.youtube.com/watch?v=blank")
		assert.ErrorIs(t, err, ErrTranscriptUnavailable)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := source.Fetch(ctx, "https://www.youtube.com/watch?v=broken")
		assert.ErrorIs(t, err, ErrTranscriptUnavailable)
	})

	t.Run("invalid reference skips the network", func(t *testing.T) {
		_, err := source.Fetch(ctx, "ftp://nowhere")
		assert.ErrorIs(t, err, ErrInvalidVideoRef)
	})
}
