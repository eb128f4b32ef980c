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

package storage

import (
	"fmt"

	"github.com/poiesic/lorekeep/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalNote serializes a Note to bytes.
func MarshalNote(note *core.Note) []byte {
	buf := make([]byte, core.NoteMUS.Size(*note))
	core.NoteMUS.Marshal(*note, buf)
	return buf
}

// UnmarshalNote deserializes a Note from bytes.
func UnmarshalNote(data []byte) (*core.Note, error) {
	note, _, err := core.NoteMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &note, nil
}

// MarshalLink serializes a Link to bytes.
func MarshalLink(link *core.Link) []byte {
	buf := make([]byte, core.LinkMUS.Size(*link))
	core.LinkMUS.Marshal(*link, buf)
	return buf
}

// UnmarshalLink deserializes a Link from bytes.
func UnmarshalLink(data []byte) (*core.Link, error) {
	link, _, err := core.LinkMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &link, nil
}

// MarshalEmbeddingRecord serializes an EmbeddingRecord to bytes.
func MarshalEmbeddingRecord(record *core.EmbeddingRecord) []byte {
	buf := make([]byte, core.EmbeddingRecordMUS.Size(*record))
	core.EmbeddingRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalEmbeddingRecord deserializes an EmbeddingRecord from bytes.
func UnmarshalEmbeddingRecord(data []byte) (*core.EmbeddingRecord, error) {
	record, _, err := core.EmbeddingRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalTask serializes an IngestionTask to bytes.
func MarshalTask(task *core.IngestionTask) []byte {
	buf := make([]byte, core.IngestionTaskMUS.Size(*task))
	core.IngestionTaskMUS.Marshal(*task, buf)
	return buf
}

// UnmarshalTask deserializes an IngestionTask from bytes.
func UnmarshalTask(data []byte) (*core.IngestionTask, error) {
	task, _, err := core.IngestionTaskMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &task, nil
}

// MarshalReviewItem serializes a ReviewItem to bytes.
func MarshalReviewItem(item *core.ReviewItem) []byte {
	buf := make([]byte, core.ReviewItemMUS.Size(*item))
	core.ReviewItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalReviewItem deserializes a ReviewItem from bytes.
func UnmarshalReviewItem(data []byte) (*core.ReviewItem, error) {
	item, _, err := core.ReviewItemMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &item, nil
}

// MarshalAuditRecord serializes an AuditRecord to bytes.
func MarshalAuditRecord(record *core.AuditRecord) []byte {
	buf := make([]byte, core.AuditRecordMUS.Size(*record))
	core.AuditRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalAuditRecord deserializes an AuditRecord from bytes.
func UnmarshalAuditRecord(data []byte) (*core.AuditRecord, error) {
	record, _, err := core.AuditRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &record, nil
}
