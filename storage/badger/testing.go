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

package badger

// Repositories bundles every repository over a shared backend.
// It exists so callers can open storage in one call and close it in one.
type Repositories struct {
	Backend    *Backend
	Notes      *NoteRepository
	Links      *LinkRepository
	Embeddings *EmbeddingRepository
	Tasks      *TaskRepository
	Reviews    *ReviewRepository
	Audit      *AuditRepository
}

// OpenRepositories opens a backend and every repository over it.
// Pass inMemory=true for tests.
func OpenRepositories(filePath string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	notes, err := NewNoteRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	audit, err := NewAuditRepository(backend)
	if err != nil {
		notes.Close()
		backend.Close()
		return nil, err
	}

	return &Repositories{
		Backend:    backend,
		Notes:      notes,
		Links:      NewLinkRepository(backend),
		Embeddings: NewEmbeddingRepository(backend),
		Tasks:      NewTaskRepository(backend),
		Reviews:    NewReviewRepository(backend),
		Audit:      audit,
	}, nil
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close when done.
func NewMemoryRepositories() (*Repositories, error) {
	return OpenRepositories("", true)
}

// Close releases every repository and the backend.
func (r *Repositories) Close() error {
	r.Notes.Close()
	r.Audit.Close()
	return r.Backend.Close()
}
