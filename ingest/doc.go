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

// Package ingest implements the ingestion state machine that moves
// submitted documents through extraction, confidence assessment,
// embedding, and a quality gate before they become searchable notes.
//
// Every submission is tracked as a task walking a fixed state graph:
//
//	RECEIVED -> EXTRACTING -> ASSESSING -> EMBEDDING
//	                                           |
//	                     +---------------------+---------------------+
//	                     v                                           v
//	              AUTO_FINALIZED                              PENDING_REVIEW
//	                                                                 |
//	                                                   +-------------+----------+
//	                                                   v                        v
//	                                               FINALIZED                REJECTED
//
// FAILED is reachable from any non-terminal state; CANCELLED only from
// the pre-embedding states, so a cancelled task can never leave partial
// records behind. Submissions whose assessed confidence clears the
// threshold finalize automatically; the rest park in the review queue
// with their embedding already computed, so reviewers see them in
// search context.
//
// Finalization is atomic: the note, its embedding record, and the audit
// entries commit in one storage transaction or not at all.
package ingest
