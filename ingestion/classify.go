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
	"fmt"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
)

// DefaultThreshold is the work probability at or above which a
// transcript is labeled work. The comparison is inclusive.
const DefaultThreshold = 0.9

// DecideLabel maps a classifier verdict onto an accessibility label.
//
// The stored confidence is always the work probability, regardless of
// which label wins, so downstream consumers read one consistent scale.
func DecideLabel(probs ai.Probabilities, threshold float64) (core.Classification, error) {
	if threshold < 0 || threshold > 1 {
		return core.Classification{}, ErrInvalidThreshold
	}

	workProb, ok := probs[ai.CategoryTwo]
	if !ok {
		return core.Classification{}, fmt.Errorf("%w: verdict missing %s", ErrClassificationUnavailable, ai.CategoryTwo)
	}
	if workProb < 0 || workProb > 1 {
		return core.Classification{}, fmt.Errorf("%w: probability %v out of range", ErrClassificationUnavailable, workProb)
	}

	label := core.LabelPersonal
	if workProb >= threshold {
		label = core.LabelWork
	}

	return core.Classification{
		Label:      label,
		Confidence: workProb,
	}, nil
}
