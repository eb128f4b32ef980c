package badger

import (
	"encoding/binary"

	"github.com/poiesic/lorekeep/core"
)

// Key prefixes for different data types
const (
	notePrefix      = "notrec"
	noteTagPrefix   = "nottag"
	noteIDSeq       = "notrecseq"
	linkFromPrefix  = "lnkfrm"
	linkToPrefix    = "lnkto"
	embeddingPrefix = "embrec"
	taskPrefix      = "tskrec"
	reviewPrefix    = "revrec"
	auditPrefix     = "audrec"
	auditNotePrefix = "audnot"
	auditSeq        = "audrecseq"
)

// appendBigEndian appends an 8-byte BigEndian encoding so lexicographic
// key order matches numeric order.
func appendBigEndian(buf []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, v)
}

// makeNoteKey generates a key for a note by ID.
// Format: prefix:id, with the ID in BigEndian so iteration runs in ID order.
func makeNoteKey(id core.ID) []byte {
	buf := []byte(notePrefix + ":")
	return appendBigEndian(buf, uint64(id))
}

// makeNoteTagKey generates a composite key for the tag index.
// Format: prefix:tag:id
func makeNoteTagKey(tag string, id core.ID) []byte {
	buf := makePartialNoteTagKey(tag)
	return appendBigEndian(buf, uint64(id))
}

// makePartialNoteTagKey generates a partial key for tag queries.
// Format: prefix:tag:
func makePartialNoteTagKey(tag string) []byte {
	return []byte(noteTagPrefix + ":" + tag + ":")
}

// makeLinkFromKey generates a key for the outgoing-link table.
// Format: prefix:from:to:kind
func makeLinkFromKey(from, to core.ID, kind core.LinkKind) []byte {
	buf := []byte(linkFromPrefix + ":")
	buf = appendBigEndian(buf, uint64(from))
	buf = appendBigEndian(buf, uint64(to))
	return append(buf, byte(kind))
}

// makePartialLinkFromKey generates a partial key for outgoing-link queries.
func makePartialLinkFromKey(from core.ID) []byte {
	buf := []byte(linkFromPrefix + ":")
	return appendBigEndian(buf, uint64(from))
}

// makeLinkToKey generates a key for the incoming-link table.
// Format: prefix:to:from:kind
func makeLinkToKey(from, to core.ID, kind core.LinkKind) []byte {
	buf := []byte(linkToPrefix + ":")
	buf = appendBigEndian(buf, uint64(to))
	buf = appendBigEndian(buf, uint64(from))
	return append(buf, byte(kind))
}

// makePartialLinkToKey generates a partial key for incoming-link queries.
func makePartialLinkToKey(to core.ID) []byte {
	buf := []byte(linkToPrefix + ":")
	return appendBigEndian(buf, uint64(to))
}

// makeEmbeddingKey generates a composite key for an embedding record.
// Format: prefix:noteID:modelVersion:noteVersion
func makeEmbeddingKey(noteID core.ID, modelVersion string, noteVersion uint32) []byte {
	buf := makePartialEmbeddingKey(noteID)
	buf = append(buf, []byte(modelVersion+":")...)
	return binary.BigEndian.AppendUint32(buf, noteVersion)
}

// makePartialEmbeddingKey generates a partial key covering every
// embedding record of a note.
// Format: prefix:noteID:
func makePartialEmbeddingKey(noteID core.ID) []byte {
	buf := []byte(embeddingPrefix + ":")
	buf = appendBigEndian(buf, uint64(noteID))
	return append(buf, ':')
}

// makeTaskKey generates a key for an ingestion task by its UUID.
func makeTaskKey(id string) []byte {
	return []byte(taskPrefix + ":" + id)
}

// makeReviewKey generates a key for a review queue item by its UUID.
func makeReviewKey(id string) []byte {
	return []byte(reviewPrefix + ":" + id)
}

// makeAuditKey generates a key for an audit record by sequence number.
// BigEndian so the ledger iterates in append order.
func makeAuditKey(seq uint64) []byte {
	buf := []byte(auditPrefix + ":")
	return appendBigEndian(buf, seq)
}

// makeAuditNoteKey generates a composite key for the per-note audit index.
// Format: prefix:noteID:seq
func makeAuditNoteKey(noteID core.ID, seq uint64) []byte {
	buf := makePartialAuditNoteKey(noteID)
	return appendBigEndian(buf, seq)
}

// makePartialAuditNoteKey generates a partial key for per-note audit queries.
func makePartialAuditNoteKey(noteID core.ID) []byte {
	buf := []byte(auditNotePrefix + ":")
	return appendBigEndian(buf, uint64(noteID))
}
