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


package core

import (
	"fmt"
	"strings"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - DisplayName must not be empty
//
// NOT validated:
//   - ID (0 means "derive from content" and is assigned by the store)
//   - InsertedAt (populated by the store)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	if doc.DisplayName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDisplayName)
	}

	return nil
}

// ValidateCorpus validates a Corpus according to domain rules.
func ValidateCorpus(c *Corpus) error {
	if c == nil {
		return fmt.Errorf("%w: corpus is nil", ErrInvalidCorpus)
	}

	if c.DisplayName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCorpus, ErrEmptyDisplayName)
	}

	return nil
}

// ValidateUserId validates a user identifier.
func ValidateUserId(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserId
	}
	return nil
}
