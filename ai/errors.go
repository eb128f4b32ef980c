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

package ai

import "errors"

var (
	// ErrProviderUnavailable indicates the embedding provider could not
	// be reached within the retry budget.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrProviderRateLimited indicates the provider rejected the call
	// due to rate limiting. Transient; retried with backoff.
	ErrProviderRateLimited = errors.New("embedding provider rate limited")

	// ErrExtractionFailed indicates a source could not be converted to
	// plain text. Permanent; the source is malformed and retrying will
	// not help.
	ErrExtractionFailed = errors.New("content extraction failed")

	// ErrEmbedderRequired indicates a nil embedder was supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEmptyBatch indicates an embedding batch with no texts.
	ErrEmptyBatch = errors.New("embedding batch is empty")
)
