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

// Package search provides ranked hybrid retrieval over the note corpus.
//
// A query is resolved to a vector (embedding its text, or taking a
// caller-supplied vector after shape validation), matched against the
// in-memory vector index, and blended with metadata signals into a
// final score. Every result carries its per-signal score breakdown.
//
// Structured filters run through a small planner: a selective tag
// filter resolves to a candidate set before the vector search, an
// unselective one is applied to an over-fetched result page afterward.
// Both plans return the same results for the same query; the choice is
// purely a cost decision.
package search
