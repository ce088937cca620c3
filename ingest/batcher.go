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


package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/luminote/ai"
)

const conceptPrompt = `Extract the key concepts discussed in the given transcript excerpt and return them as JSON.

Output ONLY a valid JSON array of strings. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening bracket [ and
end with the closing bracket ].

Rules:
- Each concept is a short topic phrase of 5 to 10 words.
- Include only topics actually discussed in the excerpt. Do not hallucinate.
- If no clear topics can be identified, return [].
- The JSON must parse without errors; no trailing commas and no text outside the array.

Example:
Input: "[00:04:10] The krebs cycle produces ATP inside the mitochondria."
Output:
["how the krebs cycle produces ATP", "role of mitochondria in energy production"]`

const (
	defaultExtractAttempts = 3
	defaultExtractDelay    = 500 * time.Millisecond
)

// ConceptBatcher extracts topic phrases from transcript blocks. Extraction is
// best effort: a block that cannot be processed contributes no concepts and
// never fails the surrounding ingestion.
type ConceptBatcher struct {
	generator   ai.Generator
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// NewConceptBatcher creates a batcher using the given generator.
func NewConceptBatcher(generator ai.Generator) *ConceptBatcher {
	return &ConceptBatcher{
		generator:   generator,
		maxAttempts: defaultExtractAttempts,
		retryDelay:  defaultExtractDelay,
		logger:      slog.Default().With("component", "concept-batcher"),
	}
}

// Extract returns the concepts found in one transcript block. Transport
// errors are retried with backoff; a block that still fails, or whose
// response does not parse as a JSON string array, yields an empty slice.
func (b *ConceptBatcher) Extract(ctx context.Context, block string) []string {
	var response string
	err := ai.RetryWithBackoff(ctx, func() error {
		var genErr error
		response, genErr = b.generator.Generate(ctx, conceptPrompt, block)
		return genErr
	}, b.maxAttempts, b.retryDelay)
	if err != nil {
		b.logger.Warn("concept extraction failed, skipping block", "error", err)
		return nil
	}

	var concepts []string
	if err := json.Unmarshal([]byte(ai.StripFences(response)), &concepts); err != nil {
		b.logger.Warn("concept response is not a JSON array, skipping block", "error", err)
		return nil
	}

	out := concepts[:0]
	for _, concept := range concepts {
		concept = strings.TrimSpace(concept)
		if concept != "" {
			out = append(out, concept)
		}
	}
	return out
}
