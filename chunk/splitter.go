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


package chunk

import (
	"iter"
	"strings"

	"github.com/poiesic/recallit/core"
)

const (
	// DefaultSize is the maximum chunk length in runes.
	DefaultSize = 150

	// DefaultOverlap is the number of runes repeated from the end of
	// the previous chunk at the start of the next one.
	DefaultOverlap = 30
)

// separators are tried in order; the first one present in the text is
// used, and oversized parts fall through to the next. The empty string
// is the terminal fallback and slices runes directly.
var separators = []string{"\n\n", "\n", " ", ""}

// Splitter divides text into overlapping chunks measured in runes.
//
// The split is lossless: stripping each chunk's recorded overlap prefix
// and concatenating what remains reproduces the input text exactly. No
// whitespace is trimmed or collapsed.
type Splitter struct {
	size    int
	overlap int
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter) error

// WithSize sets the maximum chunk length in runes.
func WithSize(size int) SplitterOption {
	return func(s *Splitter) error {
		if size <= 0 {
			return ErrInvalidSize
		}
		s.size = size
		return nil
	}
}

// WithOverlap sets the overlap length in runes.
func WithOverlap(overlap int) SplitterOption {
	return func(s *Splitter) error {
		if overlap < 0 {
			return ErrInvalidOverlap
		}
		s.overlap = overlap
		return nil
	}
}

// NewSplitter creates a splitter with the given options applied over
// the defaults.
func NewSplitter(opts ...SplitterOption) (*Splitter, error) {
	s := &Splitter{
		size:    DefaultSize,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.overlap >= s.size {
		return nil, ErrInvalidOverlap
	}

	return s, nil
}

// Size returns the configured maximum chunk length in runes.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap length in runes.
func (s *Splitter) Overlap() int { return s.overlap }

// Split divides text into chunks. Empty text yields no chunks.
func (s *Splitter) Split(text string) []core.Chunk {
	var chunks []core.Chunk
	for c := range s.Chunks(text) {
		chunks = append(chunks, c)
	}
	return chunks
}

// Chunks returns a restartable iterator over the chunks of text.
func (s *Splitter) Chunks(text string) iter.Seq[core.Chunk] {
	return func(yield func(core.Chunk) bool) {
		if text == "" {
			return
		}

		pieces := splitRecursive(text, s.size, separators)

		var (
			index int
			tail  []rune // overlap carried from the previous chunk
			cur   []rune // new content of the chunk under construction
		)

		flush := func() bool {
			c := core.Chunk{
				Index:   index,
				Text:    string(tail) + string(cur),
				Overlap: len(tail),
			}
			index++
			tail = overlapTail(append(tail, cur...), s.overlap)
			cur = cur[:0:0]
			return yield(c)
		}

		for _, piece := range pieces {
			runes := []rune(piece)

			if len(cur) > 0 && len(tail)+len(cur)+len(runes) > s.size {
				if !flush() {
					return
				}
			}

			// A single piece can exceed the room left by the overlap.
			// Shrink the carried tail so the chunk still fits.
			if room := s.size - len(runes); len(tail) > room {
				tail = tail[len(tail)-room:]
			}

			cur = append(cur, runes...)
		}

		if len(cur) > 0 {
			flush()
		}
	}
}

// splitRecursive breaks text into pieces of at most size runes while
// preserving every rune: each separator stays attached to the part it
// terminates, so concatenating the pieces reproduces the input.
func splitRecursive(text string, size int, seps []string) []string {
	if runeLen(text) <= size {
		return []string{text}
	}

	sep := seps[0]
	if sep == "" {
		return sliceRunes(text, size)
	}

	if !strings.Contains(text, sep) {
		return splitRecursive(text, size, seps[1:])
	}

	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, part := range parts {
		if i < len(parts)-1 {
			part += sep
		}
		if part == "" {
			continue
		}
		if runeLen(part) <= size {
			pieces = append(pieces, part)
			continue
		}
		pieces = append(pieces, splitRecursive(part, size, seps[1:])...)
	}
	return pieces
}

// sliceRunes hard-slices text into size-rune pieces.
func sliceRunes(text string, size int) []string {
	runes := []rune(text)
	pieces := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}

// overlapTail returns at most n trailing runes of text as a fresh slice.
func overlapTail(runes []rune, n int) []rune {
	if len(runes) > n {
		runes = runes[len(runes)-n:]
	}
	out := make([]rune, len(runes))
	copy(out, runes)
	return out
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
