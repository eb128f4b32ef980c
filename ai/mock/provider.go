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

package mock

import "github.com/poiesic/lorekeep/ai"

// Provider bundles the mock embedder and extractor behind ai.Provider.
// The concrete fields stay exported so tests can inject behavior and
// inspect call counts.
type Provider struct {
	Emb *Embedder
	Ext *Extractor
}

// NewMockProvider returns a provider with default deterministic doubles.
func NewMockProvider() ai.Provider {
	return &Provider{
		Emb: &Embedder{},
		Ext: &Extractor{},
	}
}

func (p *Provider) Embedder() ai.Embedder {
	return p.Emb
}

func (p *Provider) Extractor() ai.Extractor {
	return p.Ext
}

func (p *Provider) Close() error {
	return nil
}
