// Package llm provides the optional AI document classifier. Providers (OpenAI,
// Anthropic, Ollama) are chosen by configuration and hidden behind the Backend
// capability interface, with response caching and rate limiting.
package llm
