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

import (
	"fmt"
	"time"
)

// ValidateNote validates a Note according to domain rules.
//
// Validation rules:
//   - Contents must not be empty
//   - Type must be a known NoteType
//   - Status must be a known NoteStatus
//   - Quality must be in [0,1]
//   - Provenance actor must be valid
//
// NOT validated:
//   - ID (0 is valid from database sequences)
//   - VersionInfo (populated by the note repository)
func ValidateNote(note *Note) error {
	if note == nil {
		return fmt.Errorf("%w: note is nil", ErrInvalidNote)
	}

	if note.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNote, ErrEmptyContent)
	}

	if err := ValidateNoteType(note.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNote, err)
	}

	if err := ValidateNoteStatus(note.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNote, err)
	}

	if note.Quality < 0 || note.Quality > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidNote, ErrInvalidQuality)
	}

	if err := ValidateActorKind(note.Provenance.Actor); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNote, err)
	}

	return nil
}

// ValidateLink validates a Link according to domain rules.
// Cycles are permitted in the note graph; only the kind and endpoints
// are checked.
func ValidateLink(link *Link) error {
	if link == nil {
		return fmt.Errorf("%w: link is nil", ErrInvalidLink)
	}

	if link.From == link.To {
		return fmt.Errorf("%w: %w", ErrInvalidLink, ErrSelfLink)
	}

	if err := ValidateLinkKind(link.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}

	return nil
}

// ValidateTask validates an IngestionTask on submission.
func ValidateTask(task *IngestionTask) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", ErrInvalidTask)
	}

	if task.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTask, ErrEmptySource)
	}

	return nil
}

// ValidateNoteType validates that a NoteType has a valid value.
func ValidateNoteType(noteType NoteType) error {
	switch noteType {
	case NoteTypeFleeting, NoteTypeLiterature, NoteTypePermanent,
		NoteTypeInsight, NoteTypeAgent:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidNoteType, noteType)
}

// ValidateNoteStatus validates that a NoteStatus has a valid value.
func ValidateNoteStatus(status NoteStatus) error {
	switch status {
	case NoteStatusActive, NoteStatusUnreviewed, NoteStatusWithdrawn,
		NoteStatusDeleted:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidNoteStatus, status)
}

// ValidateActorKind validates that an ActorKind has a valid value.
func ValidateActorKind(actor ActorKind) error {
	if actor != ActorHuman && actor != ActorAgent {
		return fmt.Errorf("%w: value %d", ErrInvalidActorKind, actor)
	}
	return nil
}

// ValidateLinkKind validates that a LinkKind has a valid value.
func ValidateLinkKind(kind LinkKind) error {
	switch kind {
	case LinkKindCites, LinkKindSupports, LinkKindDerivedFrom, LinkKindRelated:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidLinkKind, kind)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
