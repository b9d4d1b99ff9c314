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
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/recallit/core"
)

// NoAnswer is returned verbatim when the context cannot answer the
// question. The generator is instructed to emit exactly this string.
const NoAnswer = "I don't have enough information to answer that."

const promptHeader = `You are a helpful AI assistant.
Answer the user's question based ONLY on the following context sources.
Each source has an ID like [1], [2].

When you use information from a source, you MUST cite it using its ID at the end of the sentence (e.g. "Windows settings can be reset [1].").

If the answer is not in the context, say "` + NoAnswer + `"

Context:
`

// buildPrompt formats retrieved units as numbered sources followed by
// the question. Source numbers are 1-based retrieval order.
func buildPrompt(question string, sources []*core.ScoredUnit) string {
	var b strings.Builder
	b.WriteString(promptHeader)

	for i, s := range sources {
		fmt.Fprintf(&b, "Source [%d]:\n%s\n\n", i+1, s.Unit.PageContent)
	}

	b.WriteString("Question:\n")
	b.WriteString(question)
	return b.String()
}

// citationMarker matches [n] and the full-width 【n】 variant some
// models emit.
var citationMarker = regexp.MustCompile(`(?:\[|【)(\d+)(?:\]|】)`)

// renumberCitations rewrites the answer's citation markers so they are
// numbered by first appearance, and returns the citation list in that
// order. Markers referencing no retrieved source are stripped. All
// markers are normalized to the [n] form.
func renumberCitations(answer string, sources []*core.ScoredUnit) (string, []core.Citation) {
	renumbered := make(map[int]int) // retrieval number -> answer number
	var citations []core.Citation

	rewritten := citationMarker.ReplaceAllStringFunc(answer, func(match string) string {
		n, err := strconv.Atoi(citationMarker.FindStringSubmatch(match)[1])
		if err != nil || n < 1 || n > len(sources) {
			return ""
		}

		newN, ok := renumbered[n]
		if !ok {
			newN = len(citations) + 1
			renumbered[n] = newN

			m := sources[n-1].Unit.Metadata
			citations = append(citations, core.Citation{
				SourceID:  fmt.Sprintf("[%d]", newN),
				Title:     m.Title,
				ChatID:    m.ChatID,
				TurnID:    m.TurnID,
				Timestamp: m.Timestamp,
			})
		}

		return fmt.Sprintf("[%d]", newN)
	})

	return rewritten, citations
}
