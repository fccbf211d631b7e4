// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package prediction provides a lightweight similarity lookup over
// compacted traces. It is not a trained model - downstream modeling
// stays out of scope - just a nearest-neighbour view of the labeled
// part of the corpus, useful for triage and for sanity-checking the
// compaction output.
package prediction

import (
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/stats"
)

type Estimation struct {
	AttackRatio float64           `json:"attackRatio"`
	Neighbours  []stats.MatchItem `json:"-"`
}

// SimilarTraces finds the k nearest labeled compacted traces to the
// provided encoded token sequence. Distance is the edit distance over
// the textual encodings - compaction makes the strings short enough
// for this to stay cheap even on larger corpora.
func SimilarTraces(db *stats.Database, encoded string, k int) (*stats.BestMatches, error) {
	recs, err := db.GetAllRecords(
		stats.ListFilter{}.
			SetLabeled(true).
			SetCompacted(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar traces: %w", err)
	}
	matches := stats.NewBestMatches(k)
	for _, rec := range recs {
		dist := levenshtein.ComputeDistance(rec.CompactedTokens, encoded)
		item := rec
		matches.TryAdd(&item, dist)
	}
	return matches, nil
}

// EstimateTrace summarizes the labels of the nearest neighbours of
// the provided encoded trace.
func EstimateTrace(db *stats.Database, encoded string, k int) (Estimation, error) {
	matches, err := SimilarTraces(db, encoded, k)
	if err != nil {
		return Estimation{}, err
	}
	return Estimation{
		AttackRatio: matches.AttackRatio(),
		Neighbours:  matches.Items(),
	}, nil
}
