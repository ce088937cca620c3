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


package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/luminote/ai"
	"github.com/poiesic/luminote/core"
	"github.com/poiesic/luminote/storage"
)

var (
	// ErrRepositoryRequired is returned when a memory repository is not provided.
	ErrRepositoryRequired = errors.New("memory repository required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrEmptyFeedback indicates blank feedback text.
	ErrEmptyFeedback = errors.New("feedback must be a non-empty string")

	// ErrClassificationFailed indicates the rubric response could not be parsed.
	ErrClassificationFailed = errors.New("failed to classify feedback")
)

// classification is the rubric's JSON verdict.
type classification struct {
	WorthRemembering  bool   `json:"worth_remembering"`
	PreferenceSummary string `json:"preference_summary"`
	Reason            string `json:"reason"`
}

// Store decides which user feedback is worth keeping and renders stored
// preferences for prompt injection.
type Store struct {
	repository storage.MemoryRepository
	generator  ai.Generator
	logger     *slog.Logger
}

// NewStore creates a personalization store.
func NewStore(repository storage.MemoryRepository, generator ai.Generator) (*Store, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	return &Store{
		repository: repository,
		generator:  generator,
		logger:     slog.Default().With("component", "memory-store"),
	}, nil
}

// Remember classifies feedback against the student-success rubric and stores
// it when it reveals a durable preference. Returns whether the feedback was
// stored and a user-facing message. A response that does not parse as the
// rubric's JSON verdict is a processing error, not a silent discard.
func (s *Store) Remember(ctx context.Context, userID, feedback string) (bool, string, error) {
	if err := core.ValidateUserId(userID); err != nil {
		return false, "", err
	}
	if strings.TrimSpace(feedback) == "" {
		return false, "", ErrEmptyFeedback
	}

	response, err := s.generator.Generate(ctx, classificationPrompt,
		fmt.Sprintf("User Feedback: %q", feedback))
	if err != nil {
		return false, "", fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	var verdict classification
	if err := json.Unmarshal([]byte(ai.StripFences(response)), &verdict); err != nil {
		return false, "", fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	if !verdict.WorthRemembering {
		s.logger.Debug("feedback not stored", "user", userID, "reason", verdict.Reason)
		return false, "Feedback acknowledged but not stored as a preference.", nil
	}

	summary := strings.TrimSpace(verdict.PreferenceSummary)
	if summary == "" {
		summary = feedback
	}

	if _, err := s.repository.AddMemories(ctx, userID, summary); err != nil {
		return false, "", err
	}

	s.logger.Info("stored preference", "user", userID)
	return true, fmt.Sprintf("Memory stored: %s", summary), nil
}

// Fetch renders the user's stored preferences as a bulleted block for prompt
// injection, or an empty string when nothing is stored.
func (s *Store) Fetch(ctx context.Context, userID string) (string, error) {
	memory, err := s.repository.GetMemories(ctx, userID)
	if err != nil {
		return "", err
	}
	if memory == nil || len(memory.Items) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(memoryBlockHeader)
	for _, item := range memory.Items {
		b.WriteString("\n- ")
		b.WriteString(item)
	}
	return b.String(), nil
}
