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

package search

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/lorekeep/core"
)

// Filter restricts search results by structured metadata. All populated
// constraints must hold for a note to pass; within Types and Tags a
// single match suffices.
type Filter struct {
	// Types admits only notes of the listed types.
	Types []core.NoteType

	// Tags admits only notes carrying at least one of the listed tags.
	Tags []string

	// Actor admits only notes from the given provenance actor.
	Actor core.ActorKind

	// CreatedAfter and CreatedBefore bound the note's creation time.
	// Zero values leave the bound open.
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// Empty reports whether the filter constrains nothing.
func (f *Filter) Empty() bool {
	return f == nil || (len(f.Types) == 0 && len(f.Tags) == 0 && f.Actor == 0 &&
		f.CreatedAfter.IsZero() && f.CreatedBefore.IsZero())
}

// Validate rejects malformed filters before any retrieval work runs.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	for _, t := range f.Types {
		if err := core.ValidateNoteType(t); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}
	for _, tag := range f.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%w: blank tag", ErrInvalidFilter)
		}
	}
	switch f.Actor {
	case 0, core.ActorHuman, core.ActorAgent:
	default:
		return fmt.Errorf("%w: unknown actor %d", ErrInvalidFilter, f.Actor)
	}
	if !f.CreatedAfter.IsZero() && !f.CreatedBefore.IsZero() && f.CreatedAfter.After(f.CreatedBefore) {
		return fmt.Errorf("%w: time range is inverted", ErrInvalidFilter)
	}
	return nil
}

// Matches reports whether the note satisfies every populated constraint.
func (f *Filter) Matches(note *core.Note) bool {
	if f == nil {
		return true
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, note.Type) {
		return false
	}
	if len(f.Tags) > 0 && !overlaps(note.Tags, f.Tags) {
		return false
	}
	if f.Actor != 0 && note.Provenance.Actor != f.Actor {
		return false
	}
	created := note.Version.CreatedAt
	if !f.CreatedAfter.IsZero() && created.Before(f.CreatedAfter) {
		return false
	}
	if !f.CreatedBefore.IsZero() && created.After(f.CreatedBefore) {
		return false
	}
	return true
}

func overlaps(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
