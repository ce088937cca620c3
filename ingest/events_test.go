package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEncode(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "progress",
			event: progressEvent("Loading transcript...", 10),
			want:  `{"status":"progress","message":"Loading transcript...","progress":10}`,
		},
		{
			name:  "completed with concepts",
			event: completedEvent("Video processed successfully", []string{"a", "b"}),
			want:  `{"status":"completed","message":"Video processed successfully","progress":100,"concepts":["a","b"]}`,
		},
		{
			name:  "error omits progress",
			event: errorEvent("Transcript not available: boom"),
			want:  `{"status":"error","message":"Transcript not available: boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			require.NoError(t, tt.event.Encode(&buf))
			assert.Equal(t, tt.want+"\n", buf.String())
		})
	}
}

func TestEventTerminal(t *testing.T) {
	assert.False(t, progressEvent("x", 10).Terminal())
	assert.True(t, completedEvent("x", nil).Terminal())
	assert.True(t, errorEvent("x").Terminal())
}
