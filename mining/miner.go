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
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// Result carries all sequences found by a mining run. Sequences holds
// the concatenation of all levels sorted by (size desc, total support
// desc, discovery order) with names assigned in that order. Levels
// keeps the per-level view in discovery order.
type Result struct {
	Sequences []FrequentSequence
	Levels    [][]FrequentSequence
}

// OfSize returns sequences of the given size, preserving
// the global order (and thus substitution priority).
func (res *Result) OfSize(size int) []FrequentSequence {
	ans := make([]FrequentSequence, 0, len(res.Sequences))
	for _, fs := range res.Sequences {
		if fs.Size == size {
			ans = append(ans, fs)
		}
	}
	return ans
}

type Miner struct {
	conf Config
}

func NewMiner(conf Config) *Miner {
	return &Miner{conf: conf}
}

// Mine runs the level-wise search over the corpus. The lengths
// argument mirrors the upstream interchange format where trace lengths
// travel separately from token data; a mismatch between the two arrays
// aborts before any counting starts. The result is independent of the
// worker count - any sharding of the corpus produces identical
// sequences and supports.
func (m *Miner) Mine(corpus [][]string, lengths []int) (*Result, error) {
	if err := m.conf.validate(); err != nil {
		return nil, err
	}
	if len(corpus) != len(lengths) {
		return nil, fmt.Errorf(
			"%w: %d traces vs. %d lengths", ErrPrecondition, len(corpus), len(lengths))
	}
	for i, tokens := range corpus {
		if len(tokens) != lengths[i] {
			return nil, fmt.Errorf(
				"%w: trace %d has %d tokens, declared length %d",
				ErrPrecondition, i, len(tokens), lengths[i])
		}
	}

	candidates := m.initialCandidates(corpus)
	ans := &Result{Levels: make([][]FrequentSequence, 0, m.conf.MaxSeqLen)}
	for k := 1; k <= m.conf.MaxSeqLen; k++ {
		if len(candidates) == 0 {
			log.Info().Int("level", k).Msg("no candidates left, stopping mining")
			break
		}
		caseDenom, totalDenom := supportDenominators(lengths, k)
		if totalDenom == 0 {
			log.Info().Int("level", k).Msg("no windows of this size left, stopping mining")
			break
		}
		counts, err := countSupports(corpus, candidates, m.conf.workers())
		if err != nil {
			return nil, fmt.Errorf("failed to mine level %d: %w", k, err)
		}
		frequent := make([]FrequentSequence, 0, len(candidates))
		frequentTokens := make([][]string, 0, len(candidates))
		for ci, cand := range candidates {
			caseSupport := float64(counts.caseCounts[ci]) / float64(caseDenom)
			totalSupport := float64(counts.totalCounts[ci]) / float64(totalDenom)
			if caseSupport >= m.conf.CaseThreshold || totalSupport >= m.conf.TotalThreshold {
				frequent = append(frequent, FrequentSequence{
					Tokens:       cand,
					Size:         k,
					CaseSupport:  caseSupport,
					TotalSupport: totalSupport,
				})
				frequentTokens = append(frequentTokens, cand)
			}
		}
		log.Info().
			Int("level", k).
			Int("numCandidates", len(candidates)).
			Int("numFrequent", len(frequent)).
			Msg("finished mining level")
		ans.Levels = append(ans.Levels, frequent)
		candidates = joinCandidates(frequentTokens)
	}
	ans.Sequences = nameSorted(ans.Levels)
	return ans, nil
}

func (m *Miner) initialCandidates(corpus [][]string) [][]string {
	alphabet := m.conf.Alphabet
	if len(alphabet) == 0 {
		alphabet = distinctTokens(corpus)

	} else {
		tmp := make([]string, len(alphabet))
		copy(tmp, alphabet)
		sort.Strings(tmp)
		alphabet = tmp
	}
	ans := make([][]string, len(alphabet))
	for i, tok := range alphabet {
		ans[i] = []string{tok}
	}
	return ans
}

func distinctTokens(corpus [][]string) []string {
	seen := make(map[string]bool)
	for _, tokens := range corpus {
		for _, tok := range tokens {
			seen[tok] = true
		}
	}
	ans := make([]string, 0, len(seen))
	for tok := range seen {
		ans = append(ans, tok)
	}
	sort.Strings(ans)
	return ans
}

// supportDenominators computes the two level-specific normalization
// constants: the number of traces long enough to contain a size-k
// window at all and the number of all possible size-k windows.
func supportDenominators(lengths []int, k int) (caseDenom, totalDenom int64) {
	for _, ln := range lengths {
		if ln >= k {
			caseDenom++
			totalDenom += int64(ln - k + 1)
		}
	}
	return
}

// joinCandidates generates size-(k+1) candidates from size-k frequent
// sequences: A and B join into A + last(B) iff the (k-1)-suffix of A
// equals the (k-1)-prefix of B and A != B. At k=1 the affix is empty,
// so every ordered pair of distinct frequent tokens joins. The
// iteration order over the (already deterministically ordered) input
// fixes the discovery order of the next level.
func joinCandidates(frequent [][]string) [][]string {
	ans := make([][]string, 0, len(frequent))
	for ai, a := range frequent {
		for bi, b := range frequent {
			if ai == bi {
				continue
			}
			if !tokensEqual(a[1:], b[:len(b)-1]) {
				continue
			}
			cand := make([]string, 0, len(a)+1)
			cand = append(cand, a...)
			cand = append(cand, b[len(b)-1])
			ans = append(ans, cand)
		}
	}
	return ans
}

// nameSorted flattens the per-level results, applies the canonical
// (size desc, total support desc, discovery order) ordering and
// assigns names reflecting it. This order doubles as the substitution
// priority during compaction, so it must stay stable.
func nameSorted(levels [][]FrequentSequence) []FrequentSequence {
	ans := make([]FrequentSequence, 0)
	for _, level := range levels {
		ans = append(ans, level...)
	}
	sort.SliceStable(ans, func(i, j int) bool {
		if ans[i].Size != ans[j].Size {
			return ans[i].Size > ans[j].Size
		}
		return ans[i].TotalSupport > ans[j].TotalSupport
	})
	for i := range ans {
		ans[i].Name = fmt.Sprintf("seq_%d", i)
	}
	return ans
}
