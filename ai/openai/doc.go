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


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package works with any OpenAI API-compatible service, including:
//   - Ollama (local)
//   - LM Studio (local)
//   - OpenAI API
//   - Azure OpenAI
//
// The package implements three services:
//   - Embedder: converts text to vector embeddings
//   - Classifier: scores transcripts on the personal/work axis
//   - Generator: produces grounded answers from retrieval prompts
//
// All services are accessed through the Provider, which implements
// ai.AIProvider. Constructors return interface types to keep callers
// decoupled from this package's concrete types.
package openai
