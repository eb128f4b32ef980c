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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidNote indicates a Note failed validation.
	ErrInvalidNote = errors.New("invalid note")

	// ErrInvalidLink indicates a Link failed validation.
	ErrInvalidLink = errors.New("invalid link")

	// ErrInvalidTask indicates an IngestionTask failed validation.
	ErrInvalidTask = errors.New("invalid ingestion task")

	// ErrEmptyContent indicates the Contents field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidNoteType indicates an invalid NoteType value.
	ErrInvalidNoteType = errors.New("invalid note type")

	// ErrInvalidNoteStatus indicates an invalid NoteStatus value.
	ErrInvalidNoteStatus = errors.New("invalid note status")

	// ErrInvalidActorKind indicates an invalid ActorKind value.
	ErrInvalidActorKind = errors.New("invalid actor kind")

	// ErrInvalidLinkKind indicates an invalid LinkKind value.
	ErrInvalidLinkKind = errors.New("invalid link kind")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidQuality indicates a quality score outside [0,1].
	ErrInvalidQuality = errors.New("quality score must be in [0,1]")

	// ErrSelfLink indicates a link whose endpoints are the same note.
	ErrSelfLink = errors.New("link endpoints must differ")

	// ErrEmptySource indicates an ingestion task without a source descriptor.
	ErrEmptySource = errors.New("source descriptor cannot be empty")
)
