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

// Package compact implements the iterative trace rewrite engine.
// Compaction collapses repeated-action runs and mined frequent
// sequences into single derived symbols, shortening traces while the
// growing vocabulary keeps a 1:1 mapping from every derived symbol
// back to the pattern it replaced.
package compact

import (
	"fmt"

	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/parallel"
	"github.com/rs/zerolog/log"
)

const dfltNumWorkers = 4

// CheckpointStore persists compaction progress records. A nil store
// disables checkpointing entirely.
type CheckpointStore interface {
	SaveCheckpoint(cp *Checkpoint) error
}

type Compactor struct {
	numWorkers      int
	checkpointEvery int
	store           CheckpointStore
}

// NewCompactor creates a compactor writing a progress record into
// store every checkpointEvery applied rules (0 disables this even
// with a non-nil store).
func NewCompactor(numWorkers, checkpointEvery int, store CheckpointStore) *Compactor {
	if numWorkers < 1 {
		numWorkers = dfltNumWorkers
	}
	return &Compactor{
		numWorkers:      numWorkers,
		checkpointEvery: checkpointEvery,
		store:           store,
	}
}

// applyRunRule performs one scan of a token sequence collapsing
// maximal runs of two or more base occurrences into a single multi
// symbol and absorbing base occurrences directly abutting an already
// present multi symbol on either side. A second application with the
// same rule is always a no-op.
func applyRunRule(tokens []string, base, multi string) []string {
	ans := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if tokens[i] != base && tokens[i] != multi {
			ans = append(ans, tokens[i])
			i++
			continue
		}
		// a maximal segment of base/multi occurrences
		segStart := i
		var numMulti int
		for i < len(tokens) && (tokens[i] == base || tokens[i] == multi) {
			if tokens[i] == multi {
				numMulti++
			}
			i++
		}
		switch {
		case numMulti > 0:
			// base neighbours are absorbed into the multi
			// occurrences, which themselves stay separate
			for j := 0; j < numMulti; j++ {
				ans = append(ans, multi)
			}
		case i-segStart >= 2:
			ans = append(ans, multi)
		default:
			ans = append(ans, base)
		}
	}
	return ans
}

// applySequenceRule replaces non-overlapping occurrences of the
// pattern with the symbol, scanning left to right. The scan continues
// right after each replacement, so a fresh symbol never participates
// in another match of the same rule.
func applySequenceRule(tokens []string, pattern []string, symbol string) []string {
	if len(pattern) == 0 || len(tokens) < len(pattern) {
		return tokens
	}
	ans := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if i+len(pattern) <= len(tokens) && tokensEqual(tokens[i:i+len(pattern)], pattern) {
			ans = append(ans, symbol)
			i += len(pattern)

		} else {
			ans = append(ans, tokens[i])
			i++
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

// ApplyRule rewrites a single token sequence with a single rule.
func ApplyRule(tokens []string, rule Rule) []string {
	if rule.Kind == RuleRun {
		return applyRunRule(tokens, rule.Token, rule.Symbol)
	}
	return applySequenceRule(tokens, rule.Pattern, rule.Symbol)
}

// Apply rewrites the whole corpus with the ordered rule list, starting
// at rule index startAt (non-zero when resuming from a checkpoint).
// Rules apply strictly in order - each one rewrites the output of the
// previous one - while each single rule runs data-parallel across
// corpus shards. The outer loop is the only writer of the corpus
// state; workers of one pass see a read-only snapshot of their shard.
func (c *Compactor) Apply(corpus [][]string, rules []Rule, startAt int) ([][]string, error) {
	current := make([][]string, len(corpus))
	copy(current, corpus)
	for ri := startAt; ri < len(rules); ri++ {
		rule := rules[ri]
		type result struct {
			offset int
			seqs   [][]string
		}
		shards := parallel.Split(indexed(current), c.numWorkers)
		rewritten, err := parallel.Run(
			shards,
			func(shard []indexedSeq) ([]result, error) {
				if len(shard) == 0 {
					return nil, nil
				}
				seqs := make([][]string, len(shard))
				for i, item := range shard {
					seqs[i] = ApplyRule(item.tokens, rule)
				}
				return []result{{offset: shard[0].idx, seqs: seqs}}, nil
			},
			func(a, b []result) []result { return append(a, b...) },
		)
		if err != nil {
			return nil, fmt.Errorf("failed to apply rule %d (%s): %w", ri, rule, err)
		}
		next := make([][]string, len(current))
		for _, res := range rewritten {
			copy(next[res.offset:], res.seqs)
		}
		current = next

		if c.store != nil && c.checkpointEvery > 0 && (ri+1)%c.checkpointEvery == 0 {
			cp := NewCheckpoint(ri+1, rules, current)
			if err := c.store.SaveCheckpoint(cp); err != nil {
				return nil, fmt.Errorf("failed to checkpoint compaction at rule %d: %w", ri, err)
			}
			log.Info().Int("iteration", ri+1).Msg("stored compaction checkpoint")
		}
	}
	return current, nil
}

type indexedSeq struct {
	idx    int
	tokens []string
}

func indexed(corpus [][]string) []indexedSeq {
	ans := make([]indexedSeq, len(corpus))
	for i, tokens := range corpus {
		ans[i] = indexedSeq{idx: i, tokens: tokens}
	}
	return ans
}
