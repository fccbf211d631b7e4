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

package embops

import (
	"fmt"
	"sort"

	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/parallel"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/trace"
)

// CorpusStats computes per-trace sufficient statistics for the whole
// corpus as a fork-join batch. Each unit of work is one trace and is
// side-effect-free; the output preserves corpus order regardless of
// worker completion order.
func CorpusStats(corpus *trace.Corpus, tbl *Table, numWorkers int) ([]*StatsVector, error) {
	shards := parallel.Split(corpus.Traces, numWorkers)
	ans, err := parallel.Run(
		shards,
		func(shard []trace.Trace) ([]*StatsVector, error) {
			partial := make([]*StatsVector, len(shard))
			for i, tr := range shard {
				partial[i] = TraceStats(tr.ID, tr.CurrentTokens(), tbl)
			}
			return partial, nil
		},
		func(a, b []*StatsVector) []*StatsVector { return append(a, b...) },
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute corpus embedding stats: %w", err)
	}
	return ans, nil
}

// Aggregate merges per-trace rows into a single group row under the
// provided group id. Partitioning rows arbitrarily, aggregating the
// parts and merging the results yields the same {N, Sum, Min, Max}
// as aggregating everything at once.
func Aggregate(groupID string, rows []*StatsVector) *StatsVector {
	if len(rows) == 0 {
		return nil
	}
	ans := rows[0].clone()
	for _, row := range rows[1:] {
		ans = Combine(ans, row)
	}
	ans.ID = groupID
	return ans
}

// GroupBy aggregates rows by the derived key, returning group rows
// ordered by key for reproducible output.
func GroupBy(rows []*StatsVector, keyOf func(*StatsVector) string) []*StatsVector {
	groups := make(map[string][]*StatsVector)
	keys := make([]string, 0)
	for _, row := range rows {
		key := keyOf(row)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], row)
	}
	sort.Strings(keys)
	ans := make([]*StatsVector, len(keys))
	for i, key := range keys {
		ans[i] = Aggregate(key, groups[key])
	}
	return ans
}
