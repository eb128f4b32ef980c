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

// Package storage provides the storage abstraction layer for lorekeep.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. It allows for different storage backends (BadgerDB, in-memory,
// etc.) to be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern, one repository per
// aggregate:
//
//   - NoteRepository: notes and their tag index
//   - LinkRepository: typed links between notes
//   - EmbeddingRepository: versioned embedding records
//   - TaskRepository: ingestion task state
//   - ReviewRepository: the human review queue
//   - AuditRepository: the append-only audit ledger
//
// # Transactions
//
// Every repository embeds Repository, whose WithTransaction threads a
// single write transaction through the context. Calls made through that
// context join the transaction, which is how finalization commits a note,
// its embedding, and the audit record as one atomic unit:
//
//	err := notes.WithTransaction(ctx, func(ctx context.Context) error {
//	    if _, err := notes.AddNotes(ctx, note); err != nil {
//	        return err
//	    }
//	    if err := embeddings.PutEmbedding(ctx, rec); err != nil {
//	        return err
//	    }
//	    return audit.Append(ctx, entry)
//	})
//
// # Usage
//
// Create repositories over a shared backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	notes, err := badger.NewNoteRepository(backend)
//
// Use in tests with in-memory storage:
//
//	backend := badger.NewTestBackend(t)
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
