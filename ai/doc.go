// Package ai defines the generative-model and embedding interfaces used by
// the ingestion pipeline, query engine and memory store, together with the
// shared configuration for OpenAI-compatible providers.
//
// Concrete implementations live in subpackages: ai/openai talks to any
// OpenAI-compatible endpoint (Ollama, LocalAI, vLLM, OpenAI itself) through
// langchaingo; ai/mock provides deterministic test doubles.
package ai
