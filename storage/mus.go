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
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/recallit/core"
)

// mus serializers for the values the badger backend persists. Field
// order is the wire format: append new fields at the end only, never
// reorder or remove, or existing indexes stop unmarshaling.
var (
	RecordMUS    = recordMUS{}
	ModelInfoMUS = modelInfoMUS{}

	metadataMUS = unitMetadataMUS{}
	vectorMUS   = ord.NewSliceSer[float32](varint.Float32)
)

type unitMetadataMUS struct{}

func (unitMetadataMUS) Marshal(v core.UnitMetadata, bs []byte) (n int) {
	n = ord.String.Marshal(v.ChatEngine, bs)
	n += ord.String.Marshal(v.ChatAccount, bs[n:])
	n += ord.String.Marshal(v.ChatID, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Created, bs[n:])
	n += ord.String.Marshal(v.TurnID, bs[n:])
	n += ord.String.Marshal(v.Speaker, bs[n:])
	n += ord.String.Marshal(v.Timestamp, bs[n:])
	n += ord.String.Marshal(string(v.Accessibility), bs[n:])
	n += varint.Float64.Marshal(v.AccessibilityConfidence, bs[n:])
	n += varint.Int.Marshal(v.ChunkIndex, bs[n:])
	n += ord.String.Marshal(v.ChunkID, bs[n:])
	return n
}

func (unitMetadataMUS) Unmarshal(bs []byte) (v core.UnitMetadata, n int, err error) {
	var n1 int
	if v.ChatEngine, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.ChatAccount, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ChatID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Created, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.TurnID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Speaker, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Timestamp, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var label string
	if label, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	v.Accessibility = core.AccessibilityLabel(label)
	n += n1
	if v.AccessibilityConfidence, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ChunkID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (unitMetadataMUS) Size(v core.UnitMetadata) (size int) {
	size = ord.String.Size(v.ChatEngine)
	size += ord.String.Size(v.ChatAccount)
	size += ord.String.Size(v.ChatID)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Created)
	size += ord.String.Size(v.TurnID)
	size += ord.String.Size(v.Speaker)
	size += ord.String.Size(v.Timestamp)
	size += ord.String.Size(string(v.Accessibility))
	size += varint.Float64.Size(v.AccessibilityConfidence)
	size += varint.Int.Size(v.ChunkIndex)
	size += ord.String.Size(v.ChunkID)
	return size
}

func (unitMetadataMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 9; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	if n1, err = varint.Float64.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

type recordMUS struct{}

func (recordMUS) Marshal(v Record, bs []byte) (n int) {
	n = ord.String.Marshal(v.PageContent, bs)
	n += metadataMUS.Marshal(v.Metadata, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += varint.Uint64.Marshal(v.Seq, bs[n:])
	return n
}

func (recordMUS) Unmarshal(bs []byte) (v Record, n int, err error) {
	var n1 int
	if v.PageContent, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Seq, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (recordMUS) Size(v Record) (size int) {
	size = ord.String.Size(v.PageContent)
	size += metadataMUS.Size(v.Metadata)
	size += vectorMUS.Size(v.Vector)
	size += varint.Uint64.Size(v.Seq)
	return size
}

func (recordMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = ord.String.Skip(bs); err != nil {
		return
	}
	if n1, err = metadataMUS.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = vectorMUS.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = varint.Uint64.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

type modelInfoMUS struct{}

func (modelInfoMUS) Marshal(v ModelInfo, bs []byte) (n int) {
	n = ord.String.Marshal(v.Model, bs)
	n += varint.Int.Marshal(v.Dimensions, bs[n:])
	return n
}

func (modelInfoMUS) Unmarshal(bs []byte) (v ModelInfo, n int, err error) {
	var n1 int
	if v.Model, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Dimensions, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (modelInfoMUS) Size(v ModelInfo) (size int) {
	size = ord.String.Size(v.Model)
	size += varint.Int.Size(v.Dimensions)
	return size
}

func (modelInfoMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = ord.String.Skip(bs); err != nil {
		return
	}
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}
