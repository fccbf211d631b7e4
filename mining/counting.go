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

package mining

import (
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/parallel"
)

// OccurrenceCount returns the number of contiguous token windows of
// the trace equal to the pattern. Matching operates on structured
// token sequences which makes every match delimiter-anchored by
// construction - a pattern can never match inside a longer token.
// Overlapping windows count individually, in line with the window
// denominator of total support.
func OccurrenceCount(tokens, pattern []string) int {
	if len(pattern) == 0 || len(pattern) > len(tokens) {
		return 0
	}
	var ans int
	for i := 0; i+len(pattern) <= len(tokens); i++ {
		if tokensEqual(tokens[i:i+len(pattern)], pattern) {
			ans++
		}
	}
	return ans
}

func tokensEqual(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// supportCounts holds per-candidate partial counts of one corpus
// shard. Partials from different shards combine by exact elementwise
// integer addition which is associative and commutative - the only
// cross-worker coordination point of a mining level.
type supportCounts struct {
	caseCounts  []int64
	totalCounts []int64
}

func newSupportCounts(numCandidates int) supportCounts {
	return supportCounts{
		caseCounts:  make([]int64, numCandidates),
		totalCounts: make([]int64, numCandidates),
	}
}

func combineCounts(a, b supportCounts) supportCounts {
	for i := range a.caseCounts {
		a.caseCounts[i] += b.caseCounts[i]
		a.totalCounts[i] += b.totalCounts[i]
	}
	return a
}

// countSupports computes both support counts for all candidates as
// a fork-join map/reduce over corpus shards. Candidates are a read-only
// snapshot for the whole phase; each shard writes only its own partial.
func countSupports(corpus [][]string, candidates [][]string, numWorkers int) (supportCounts, error) {
	shards := parallel.Split(corpus, numWorkers)
	return parallel.Run(
		shards,
		func(shard [][]string) (supportCounts, error) {
			partial := newSupportCounts(len(candidates))
			for _, tokens := range shard {
				for ci, cand := range candidates {
					occ := OccurrenceCount(tokens, cand)
					if occ > 0 {
						partial.caseCounts[ci]++
						partial.totalCounts[ci] += int64(occ)
					}
				}
			}
			return partial, nil
		},
		combineCounts,
	)
}
