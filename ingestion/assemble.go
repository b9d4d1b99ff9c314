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


package ingestion

import (
	"github.com/poiesic/recallit/chunk"
	"github.com/poiesic/recallit/core"
)

// AssembleUnits chunks every turn of a transcript and attaches the full
// metadata lineage to each chunk. Turns whose text yields no chunks
// produce no units. Unit order follows turn order, then chunk index.
func AssembleUnits(t core.Transcript, cls core.Classification, splitter *chunk.Splitter) []*core.RetrievalUnit {
	var units []*core.RetrievalUnit

	for _, turn := range t.Turns {
		for _, c := range splitter.Split(turn.Text) {
			units = append(units, &core.RetrievalUnit{
				PageContent: c.Text,
				Metadata: core.UnitMetadata{
					ChatEngine:              t.ChatEngine,
					ChatAccount:             t.ChatAccount,
					ChatID:                  t.ChatID,
					Title:                   t.Title,
					Created:                 t.Created,
					TurnID:                  turn.TurnID,
					Speaker:                 turn.Speaker,
					Timestamp:               turn.Timestamp,
					Accessibility:           cls.Label,
					AccessibilityConfidence: cls.Confidence,
					ChunkIndex:              c.Index,
					ChunkID:                 core.ChunkID(t.ChatID, turn.TurnID, c.Index),
				},
			})
		}
	}

	return units
}
