package ingest

import (
	"encoding/json"
	"io"
)

// Status labels a pipeline event.
type Status string

const (
	// StatusProgress marks an intermediate checkpoint.
	StatusProgress Status = "progress"

	// StatusCompleted marks successful completion. Terminal.
	StatusCompleted Status = "completed"

	// StatusError marks a failure. Terminal.
	StatusError Status = "error"
)

// Event is one entry of the ingestion progress stream. Events serialize to
// NDJSON: one JSON object per line.
type Event struct {
	Status   Status   `json:"status"`
	Message  string   `json:"message"`
	Progress int      `json:"progress,omitempty"`
	Concepts []string `json:"concepts,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusError
}

// Encode writes the event as one NDJSON line.
func (e Event) Encode(w io.Writer) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func progressEvent(message string, progress int) Event {
	return Event{Status: StatusProgress, Message: message, Progress: progress}
}

func completedEvent(message string, concepts []string) Event {
	return Event{Status: StatusCompleted, Message: message, Progress: 100, Concepts: concepts}
}

func errorEvent(message string) Event {
	return Event{Status: StatusError, Message: message}
}
