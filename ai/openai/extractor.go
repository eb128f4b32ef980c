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

package openai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/lorekeep/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Maximum source size accepted for extraction. Larger documents must be
// split upstream.
const maxSourceBytes = 1 << 20

// Extractor implements ai.Extractor using OpenAI-compatible chat APIs.
// It resolves a source descriptor to raw bytes, then runs an LLM pass
// to strip markup and boilerplate, leaving clean plain text.
type Extractor struct {
	client llms.Model
	logger *slog.Logger
}

// newExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newExtractor(config *ai.Config) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		client: client,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewExtractor creates a new content extractor using the provided configuration.
//
// Returns ai.Extractor interface to enforce abstraction.
func NewExtractor(config *ai.Config) (ai.Extractor, error) {
	return newExtractor(config)
}

// Extract resolves the source to raw content and cleans it into plain
// text. A source naming an existing file is read from disk; any other
// source is treated as inline content. Malformed sources fail with an
// error wrapping ai.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, source string) (string, error) {
	raw, err := e.resolve(source)
	if err != nil {
		return "", err
	}

	e.logger.Debug("extracting text", "source", source, "bytes", len(raw))

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(extractionPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(raw),
			},
		},
	}

	response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		e.logger.Error("extraction model call failed", "source", source, "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", fmt.Errorf("%w: model returned no choices", ai.ErrExtractionFailed)
	}

	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return "", fmt.Errorf("%w: no text could be extracted from %q", ai.ErrExtractionFailed, source)
	}
	return text, nil
}

// resolve turns a source descriptor into raw text content.
func (e *Extractor) resolve(source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", fmt.Errorf("%w: empty source", ai.ErrExtractionFailed)
	}

	raw := source
	if info, err := os.Stat(source); err == nil && info.Mode().IsRegular() {
		if info.Size() > maxSourceBytes {
			return "", fmt.Errorf("%w: source %q exceeds %d bytes", ai.ErrExtractionFailed, source, maxSourceBytes)
		}
		data, err := os.ReadFile(source)
		if err != nil {
			// Stat succeeded but the read did not; treat as transient.
			return "", err
		}
		raw = string(data)
	}

	if !utf8.ValidString(raw) {
		return "", fmt.Errorf("%w: source %q is not valid UTF-8", ai.ErrExtractionFailed, source)
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: source %q is empty", ai.ErrExtractionFailed, source)
	}
	return raw, nil
}
