package badger

import (
	"encoding/binary"

	"github.com/poiesic/recallit/core"
)

// Key prefixes for different data types
const (
	unitPrefix   = "unit:"
	modelMetaKey = "meta:model"
	unitSeqName  = "unitseq"
)

// makeUnitKey generates a key for a retrieval unit from its chunk_id.
// The chunk_id is hashed to a fixed-width ID so keys stay short and
// uniform regardless of chat and turn identifier lengths.
func makeUnitKey(chunkID string) []byte {
	prefixBytes := []byte(unitPrefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// BigEndian so iteration order is stable across runs
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.UnitIDFromChunkID(chunkID)))
	return buf
}

// makeModelMetaKey generates the key holding the pinned embedding model.
func makeModelMetaKey() []byte {
	return []byte(modelMetaKey)
}
