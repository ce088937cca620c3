// Package openai implements the ai service interfaces against any
// OpenAI-compatible API (Ollama, LocalAI, vLLM, OpenAI) via langchaingo.
package openai
