// Package ai defines the interfaces to the external AI collaborators
// (embedding and content extraction) together with the failover adapter
// that keeps ingestion and search operational when a provider misbehaves.
//
// Concrete implementations live in subpackages: ai/openai talks to any
// OpenAI-compatible API, ai/mock provides deterministic test doubles.
package ai
