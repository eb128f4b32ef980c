package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NoteType classifies a note by its role in the knowledge base.
type NoteType int

const (
	// NoteTypeFleeting is a quick, unprocessed capture.
	NoteTypeFleeting NoteType = iota + 1
	// NoteTypeLiterature is a note derived from an external source.
	NoteTypeLiterature
	// NoteTypePermanent is a refined, standalone note.
	NoteTypePermanent
	// NoteTypeInsight is a synthesized conclusion across notes.
	NoteTypeInsight
	// NoteTypeAgent is content generated by an automated agent.
	NoteTypeAgent
)

// NoteStatus tracks the lifecycle state of a note version.
// Notes are never deleted outright; withdrawal and deletion are
// terminal version states.
type NoteStatus int

const (
	// NoteStatusActive is a finalized note visible to default search.
	NoteStatusActive NoteStatus = iota + 1
	// NoteStatusUnreviewed is a note awaiting human disposition.
	// Excluded from default search results.
	NoteStatusUnreviewed
	// NoteStatusWithdrawn is a note rejected during review.
	// Retrievable by ID, never returned by search.
	NoteStatusWithdrawn
	// NoteStatusDeleted is the terminal deletion state.
	NoteStatusDeleted
)

// ActorKind identifies the origin of content or of a mutation.
type ActorKind int

const (
	// ActorHuman represents a human user.
	ActorHuman ActorKind = iota + 1
	// ActorAgent represents an automated agent.
	ActorAgent
)

// Provenance records where a note came from.
type Provenance struct {
	Actor        ActorKind
	AgentVersion string // Populated when Actor == ActorAgent
}

// VersionInfo tracks the version lineage of a note.
// Version starts at 1 and increments on every content edit.
type VersionInfo struct {
	Version    uint32
	CreatedAt  time.Time // When version 1 was created
	ModifiedAt time.Time // When the current version was written
}

// Note is a unit of knowledge content subject to versioning and embedding.
// Notes are owned by the note repository and mutated only through
// versioned writes that also append to the audit ledger.
type Note struct {
	Id         ID
	Contents   string
	Type       NoteType
	Tags       []string
	Status     NoteStatus
	Quality    float64 // Confidence score assigned at ingestion, in [0,1]
	Provenance Provenance
	Version    VersionInfo
}

// Searchable reports whether the note may appear in search results.
// Withdrawn and deleted notes are never searchable; unreviewed notes
// are searchable only when the caller opts in.
func (n *Note) Searchable(includeUnreviewed bool) bool {
	switch n.Status {
	case NoteStatusActive:
		return true
	case NoteStatusUnreviewed:
		return includeUnreviewed
	}
	return false
}

// LinkKind is the typed relation between two notes.
type LinkKind int

const (
	// LinkKindCites marks a citation of the target note.
	LinkKindCites LinkKind = iota + 1
	// LinkKindSupports marks the source as evidence for the target.
	LinkKindSupports
	// LinkKindDerivedFrom marks the source as derived from the target.
	LinkKindDerivedFrom
	// LinkKindRelated marks an untyped association.
	LinkKindRelated
)

// Link is a directed relation between two notes. The note graph may
// contain cycles; back-references never imply ownership.
type Link struct {
	From      ID
	To        ID
	Kind      LinkKind
	CreatedAt time.Time
}

// EmbeddingRecord binds a vector to a specific content version of a note.
// At most one record is current per (note, model version) pair; stale
// records are retained for audit and excluded from query by the Current
// flag.
type EmbeddingRecord struct {
	NoteId       ID
	NoteVersion  uint32
	Vector       []float32
	ModelVersion string
	Current      bool
	CreatedAt    time.Time
}

// TaskState is the state of an ingestion task in the state machine.
type TaskState int

const (
	// TaskStateReceived is the initial state after submission.
	TaskStateReceived TaskState = iota + 1
	// TaskStateExtracting means content extraction is in progress.
	TaskStateExtracting
	// TaskStateAssessing means quality assessment is in progress.
	TaskStateAssessing
	// TaskStateEmbedding means embedding computation has begun.
	// Cancellation is refused from this state onward.
	TaskStateEmbedding
	// TaskStateAutoFinalized is terminal: confidence met the
	// auto-approval threshold and the note is active.
	TaskStateAutoFinalized
	// TaskStatePendingReview means the note exists but is unreviewed.
	TaskStatePendingReview
	// TaskStateFinalized is terminal: a human approved the note.
	TaskStateFinalized
	// TaskStateRejected is terminal: a human withdrew the note.
	TaskStateRejected
	// TaskStateFailed is terminal pending manual inspection.
	TaskStateFailed
	// TaskStateCancelled is terminal: the caller cancelled before
	// any records were written.
	TaskStateCancelled
)

// Terminal reports whether the task has finished for good. PENDING_REVIEW
// is not terminal; it resolves through a human disposition.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateAutoFinalized, TaskStateFinalized, TaskStateRejected,
		TaskStateFailed, TaskStateCancelled:
		return true
	}
	return false
}

// String returns the canonical name used in logs and the CLI.
func (s TaskState) String() string {
	switch s {
	case TaskStateReceived:
		return "RECEIVED"
	case TaskStateExtracting:
		return "EXTRACTING"
	case TaskStateAssessing:
		return "ASSESSING"
	case TaskStateEmbedding:
		return "EMBEDDING"
	case TaskStateAutoFinalized:
		return "AUTO_FINALIZED"
	case TaskStatePendingReview:
		return "PENDING_REVIEW"
	case TaskStateFinalized:
		return "FINALIZED"
	case TaskStateRejected:
		return "REJECTED"
	case TaskStateFailed:
		return "FAILED"
	case TaskStateCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// IngestionTask tracks a submitted document through the ingestion state
// machine. Mutated only by the state machine.
type IngestionTask struct {
	Id          string // UUID
	Source      string // Source descriptor (path, URL, opaque reference)
	State       TaskState
	Confidence  float64 // Populated once assessed
	NoteId      ID      // Populated once the note is created
	ErrorDetail string  // Populated on failure, for operator inspection
	RetryCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReviewReason codes why an item landed in the review queue.
type ReviewReason int

const (
	// ReviewReasonLowConfidence means the assessed confidence fell
	// below the auto-approval threshold.
	ReviewReasonLowConfidence ReviewReason = iota + 1
	// ReviewReasonContentEdit means an edit to an existing note was
	// routed through review.
	ReviewReasonContentEdit
)

// ReviewItem references an ingestion task awaiting human disposition.
type ReviewItem struct {
	Id        string // UUID
	TaskId    string
	NoteId    ID
	Reasons   []ReviewReason
	CreatedAt time.Time
}

// Audit actions recorded in the ledger.
const (
	AuditActionNoteCreate   = "note.create"
	AuditActionNoteEdit     = "note.edit"
	AuditActionNoteFinalize = "note.finalize"
	AuditActionNoteWithdraw = "note.withdraw"
	AuditActionNoteDelete   = "note.delete"
	AuditActionEmbed        = "embedding.write"
	AuditActionReembed      = "embedding.rewrite"
)

// AuditRecord is an immutable entry in the append-only audit ledger.
// Records are never mutated or deleted.
type AuditRecord struct {
	Seq           uint64 // Ledger sequence number, assigned on append
	Actor         string
	Action        string
	NoteId        ID
	NoteVersion   uint32
	Timestamp     time.Time
	Justification string
}

// ScoreBreakdown is the per-factor decomposition of a search score,
// retained for explainability and audit.
type ScoreBreakdown struct {
	Semantic float64 // Weighted semantic similarity contribution
	Metadata float64 // Weighted metadata match contribution
	Quality  float64 // Weighted quality score contribution
	Type     float64 // Weighted note type contribution
	Decay    float64 // Recency penalty (subtracted)
}

// SearchResult is a ranked search hit with its score decomposition.
type SearchResult struct {
	Note      *Note
	Score     float64
	Breakdown ScoreBreakdown
}

// SimilarityMatch is a raw vector index hit before ranking.
type SimilarityMatch struct {
	NoteId   ID
	Distance float64 // Cosine distance in [0,2]
}
