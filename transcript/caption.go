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


package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/luminote/core"
)

// CaptionSource fetches YouTube transcripts from a caption service that
// returns the track as a JSON array of {"text": ..., "start": ...} objects.
// Offsets arrive in whatever shape the service produced them (seconds as a
// number, seconds as a string, or a formatted clock) and are normalized here.
type CaptionSource struct {
	endpoint string
	client   *http.Client
}

var _ Source = (*CaptionSource)(nil)

// CaptionOption configures a CaptionSource.
type CaptionOption func(*CaptionSource)

// WithHTTPClient sets a custom HTTP client, e.g. to impose a timeout policy.
func WithHTTPClient(client *http.Client) CaptionOption {
	return func(s *CaptionSource) {
		if client != nil {
			s.client = client
		}
	}
}

// NewCaptionSource creates a transcript source backed by a caption service.
// endpoint is the service base URL; the video id is appended as a query
// parameter.
func NewCaptionSource(endpoint string, opts ...CaptionOption) *CaptionSource {
	s := &CaptionSource{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks that ref is a YouTube watch URL with an extractable video id.
func (s *CaptionSource) Validate(ref string) error {
	_, err := VideoID(ref)
	return err
}

// Fetch retrieves and normalizes the caption track for the referenced video.
func (s *CaptionSource) Fetch(ctx context.Context, ref string) ([]core.TranscriptSegment, error) {
	videoID, err := VideoID(ref)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/captions?video=%s", s.endpoint, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTranscriptUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, videoID)
	case resp.StatusCode == http.StatusNoContent:
		return nil, fmt.Errorf("%w: video %s has no captions", ErrTranscriptUnavailable, videoID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: caption service returned %s", ErrTranscriptUnavailable, resp.Status)
	}

	var frames []captionFrame
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&frames); err != nil {
		return nil, fmt.Errorf("%w: malformed caption payload: %w", ErrTranscriptUnavailable, err)
	}

	segments := make([]core.TranscriptSegment, 0, len(frames))
	for _, frame := range frames {
		text := strings.TrimSpace(frame.Text)
		if text == "" {
			continue
		}
		segments = append(segments, core.TranscriptSegment{
			Text:  text,
			Start: core.OffsetSeconds(frame.Start),
		})
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: empty caption track for %s", ErrTranscriptUnavailable, videoID)
	}
	return segments, nil
}

// captionFrame mirrors one entry of the caption service payload. Start is
// left untyped because services disagree on its representation.
type captionFrame struct {
	Text  string `json:"text"`
	Start any    `json:"start"`
}

// VideoID extracts the video identifier from a YouTube watch URL.
// Accepts youtube.com/watch?v=ID and youtu.be/ID forms.
func VideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrInvalidVideoRef)
	}
	if !strings.Contains(ref, "youtube.com") && !strings.Contains(ref, "youtu.be") {
		return "", fmt.Errorf("%w: must be a YouTube URL", ErrInvalidVideoRef)
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidVideoRef, err)
	}

	if strings.Contains(u.Host, "youtu.be") {
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return "", fmt.Errorf("%w: missing video id", ErrInvalidVideoRef)
		}
		return id, nil
	}

	id := u.Query().Get("v")
	if id == "" {
		return "", fmt.Errorf("%w: missing v parameter", ErrInvalidVideoRef)
	}
	return id, nil
}
