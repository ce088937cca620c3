// Package memory stores durable user preferences for personalized answers.
//
// Feedback is classified by a generator call against a fixed rubric: only
// persistent learning preferences, difficulties, and personal context are
// kept. Stored items form an append-only deduplicated set per user and are
// rendered as a bulleted block for prompt injection.
package memory
