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

import "github.com/poiesic/lorekeep/ai"

// Provider bundles the langchaingo-backed embedding and extraction
// services behind ai.Provider.
type Provider struct {
	embedder  *Embedder
	extractor *Extractor
}

// NewProvider validates the configuration and builds both services
// against the configured OpenAI-compatible endpoints.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	extractor, err := newExtractor(config)
	if err != nil {
		return nil, err
	}

	return &Provider{embedder: embedder, extractor: extractor}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) Extractor() ai.Extractor {
	return p.extractor
}

// Close is a no-op; the HTTP clients hold no persistent connections.
func (p *Provider) Close() error {
	return nil
}
