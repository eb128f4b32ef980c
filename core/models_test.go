package core

import (
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestTaskState_Terminal(t *testing.T) {
	tests := []struct {
		state TaskState
		want  bool
	}{
		{TaskStateReceived, false},
		{TaskStateExtracting, false},
		{TaskStateAssessing, false},
		{TaskStateEmbedding, false},
		{TaskStatePendingReview, false},
		{TaskStateAutoFinalized, true},
		{TaskStateFinalized, true},
		{TaskStateRejected, true},
		{TaskStateFailed, true},
		{TaskStateCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.Terminal(); got != tt.want {
				t.Errorf("TaskState(%v).Terminal() = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestNote_Searchable(t *testing.T) {
	tests := []struct {
		name              string
		status            NoteStatus
		includeUnreviewed bool
		want              bool
	}{
		{"active default", NoteStatusActive, false, true},
		{"active opted in", NoteStatusActive, true, true},
		{"unreviewed default", NoteStatusUnreviewed, false, false},
		{"unreviewed opted in", NoteStatusUnreviewed, true, true},
		{"withdrawn default", NoteStatusWithdrawn, false, false},
		{"withdrawn opted in", NoteStatusWithdrawn, true, false},
		{"deleted opted in", NoteStatusDeleted, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := &Note{Status: tt.status}
			if got := note.Searchable(tt.includeUnreviewed); got != tt.want {
				t.Errorf("Searchable(%v) = %v, want %v", tt.includeUnreviewed, got, tt.want)
			}
		})
	}
}

func TestRecordSerialization_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("note", func(t *testing.T) {
		note := Note{
			Id:       IDFromContent("note"),
			Contents: "the content body",
			Type:     NoteTypeLiterature,
			Tags:     []string{"go", "search"},
			Status:   NoteStatusActive,
			Quality:  0.85,
			Provenance: Provenance{
				Actor:        ActorAgent,
				AgentVersion: "researcher-2",
			},
			Version: VersionInfo{
				Version:    3,
				CreatedAt:  now.Add(-time.Hour),
				ModifiedAt: now,
			},
		}

		buf := make([]byte, NoteMUS.Size(note))
		NoteMUS.Marshal(note, buf)
		got, n, err := NoteMUS.Unmarshal(buf)
		if err != nil {
			t.Fatalf("Unmarshal() error: %v", err)
		}
		if n != len(buf) {
			t.Errorf("Unmarshal() consumed %d bytes, want %d", n, len(buf))
		}
		if got.Id != note.Id || got.Contents != note.Contents || got.Quality != note.Quality {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, note)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "go" {
			t.Errorf("tags mismatch: %v", got.Tags)
		}
		if !got.Version.ModifiedAt.Equal(note.Version.ModifiedAt) {
			t.Errorf("timestamp mismatch: %v vs %v", got.Version.ModifiedAt, note.Version.ModifiedAt)
		}
	})

	t.Run("embedding record", func(t *testing.T) {
		rec := EmbeddingRecord{
			NoteId:       42,
			NoteVersion:  2,
			Vector:       []float32{0.1, 0.2, 0.3},
			ModelVersion: "embeddinggemma-1",
			Current:      true,
			CreatedAt:    now,
		}

		buf := make([]byte, EmbeddingRecordMUS.Size(rec))
		EmbeddingRecordMUS.Marshal(rec, buf)
		got, _, err := EmbeddingRecordMUS.Unmarshal(buf)
		if err != nil {
			t.Fatalf("Unmarshal() error: %v", err)
		}
		if got.NoteId != rec.NoteId || got.NoteVersion != rec.NoteVersion ||
			got.ModelVersion != rec.ModelVersion || !got.Current {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, rec)
		}
		if len(got.Vector) != 3 || got.Vector[1] != 0.2 {
			t.Errorf("vector mismatch: %v", got.Vector)
		}
	})

	t.Run("audit record", func(t *testing.T) {
		rec := AuditRecord{
			Seq:           7,
			Actor:         "reviewer",
			Action:        AuditActionNoteWithdraw,
			NoteId:        42,
			NoteVersion:   2,
			Timestamp:     now,
			Justification: "duplicate of an existing note",
		}

		buf := make([]byte, AuditRecordMUS.Size(rec))
		AuditRecordMUS.Marshal(rec, buf)
		got, _, err := AuditRecordMUS.Unmarshal(buf)
		if err != nil {
			t.Fatalf("Unmarshal() error: %v", err)
		}
		if got.Seq != rec.Seq || got.Actor != rec.Actor || got.Action != rec.Action ||
			got.NoteId != rec.NoteId || got.NoteVersion != rec.NoteVersion ||
			got.Justification != rec.Justification || !got.Timestamp.Equal(rec.Timestamp) {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, rec)
		}
	})
}
