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


// Package search answers questions over indexed transcripts with
// inline citations.
//
// The Engine type implements the retrieval flow:
//   - Embed the question and fetch the top matching units
//   - Build a prompt with numbered context sources
//   - Generate a grounded answer
//   - Renumber citation markers by first appearance and map them back
//     to source metadata
//
// Failures degrade rather than crash: an empty index produces the
// no-answer text, and a failed generation falls back to raw snippets
// unless snippet fallback is disabled.
package search
