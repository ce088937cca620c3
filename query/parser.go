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


package query

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/luminote/ai"
	"github.com/poiesic/luminote/core"
)

// decoder attempts to read a QueryResult out of raw model output.
// Decoders are pure; the second return reports whether the layer matched.
type decoder func(string) (core.QueryResult, bool)

var (
	answerFieldRe = regexp.MustCompile(`(?s)"answer"\s*:\s*"(.*?)"`)
	clockRe       = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// ParseAnswer decodes raw model output into a QueryResult. The decoder chain
// is total: well-formed JSON decodes directly, a leaked JSON fragment has its
// answer field salvaged, and anything else passes through as the answer text
// with a zero timestamp. ParseAnswer never fails.
func ParseAnswer(raw string) core.QueryResult {
	raw = strings.TrimSpace(raw)

	for _, decode := range []decoder{
		decodeJSON,
		salvageAnswerField,
		passthroughMarkdown,
	} {
		if result, ok := decode(raw); ok {
			result.Timestamp = normalizeClock(result.Timestamp)
			return result
		}
	}

	// Last resort: the whole output is the answer.
	return core.QueryResult{Answer: raw, Timestamp: core.ZeroClock}
}

// decodeJSON handles the contract case: a JSON object, possibly wrapped in a
// markdown fence, with an answer field. The field may be empty, but it must
// be present; an unrelated object is not an answer.
func decodeJSON(raw string) (core.QueryResult, bool) {
	if fenced, ok := ai.ExtractFenced(raw); ok {
		raw = fenced
	}
	raw = strings.TrimSpace(raw)

	var payload struct {
		Answer    *string `json:"answer"`
		Timestamp string  `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return core.QueryResult{}, false
	}
	if payload.Answer == nil {
		return core.QueryResult{}, false
	}
	return core.QueryResult{Answer: *payload.Answer, Timestamp: payload.Timestamp}, true
}

// salvageAnswerField recovers the answer from JSON-ish output that does not
// parse, e.g. truncated objects or stray trailing text.
func salvageAnswerField(raw string) (core.QueryResult, bool) {
	if !strings.HasPrefix(raw, "{") || !strings.Contains(raw, `"answer"`) {
		return core.QueryResult{}, false
	}

	match := answerFieldRe.FindStringSubmatch(raw)
	if match == nil {
		return core.QueryResult{}, false
	}

	answer := match[1]
	if unquoted, err := strconv.Unquote(`"` + answer + `"`); err == nil {
		answer = unquoted
	}
	return core.QueryResult{Answer: answer, Timestamp: core.ZeroClock}, true
}

// passthroughMarkdown keeps structured prose intact. A response carrying
// markdown markers was meant to be read as-is, not decoded.
func passthroughMarkdown(raw string) (core.QueryResult, bool) {
	if !strings.Contains(raw, "#") && !strings.Contains(raw, "**") {
		return core.QueryResult{}, false
	}
	return core.QueryResult{Answer: raw, Timestamp: core.ZeroClock}, true
}

// normalizeClock replaces anything that is not an HH:MM:SS clock with the
// zero clock.
func normalizeClock(timestamp string) string {
	timestamp = strings.TrimSpace(timestamp)
	if !clockRe.MatchString(timestamp) {
		return core.ZeroClock
	}
	return timestamp
}
