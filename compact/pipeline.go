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

package compact

import (
	"fmt"

	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/mining"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/trace"
)

// CompactRuns collapses repeated-action runs in the whole corpus,
// processing vocabulary entries in their canonical ascending-ID order.
// The run symbol of every processed entry is registered with the
// vocabulary; the corpus argument stays untouched. Applying the
// function a second time with the same vocabulary snapshot leaves
// the corpus unchanged.
func (c *Compactor) CompactRuns(corpus [][]string, vocab *trace.Vocabulary, entries []trace.Symbol) ([][]string, error) {
	rules := RunRules(entries)
	for _, rule := range rules {
		if _, ok := vocab.Get(rule.Symbol); !ok {
			if _, err := vocab.AddRun(rule.Token); err != nil {
				return nil, fmt.Errorf("failed to compact runs: %w", err)
			}
		}
	}
	ans, err := c.Apply(corpus, rules, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to compact runs: %w", err)
	}
	return ans, nil
}

// CompactNamedSequences substitutes mined frequent sequences with
// their assigned symbols, in the canonical mined order, and afterwards
// re-collapses runs of the newly introduced symbols so repeated
// occurrences of a mined pattern shrink as well. Marker literals
// injected by the upstream encoding never take part in substitution.
func (c *Compactor) CompactNamedSequences(
	corpus [][]string,
	vocab *trace.Vocabulary,
	seqs []mining.FrequentSequence,
	markers []string,
) ([][]string, error) {
	rules := SequenceRules(seqs, markers)
	minedSyms := make([]trace.Symbol, 0, len(rules))
	for _, rule := range rules {
		sym, ok := vocab.Get(rule.Symbol)
		if !ok {
			var err error
			sym, err = vocab.AddMined(rule.Symbol, rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("failed to compact named sequences: %w", err)
			}
		}
		minedSyms = append(minedSyms, sym)
	}
	runRules := RunRules(minedSyms)
	for _, rule := range runRules {
		if _, ok := vocab.Get(rule.Symbol); !ok {
			if _, err := vocab.AddRun(rule.Token); err != nil {
				return nil, fmt.Errorf("failed to compact named sequences: %w", err)
			}
		}
	}
	// both rule groups form a single totally ordered list, so
	// an interrupted run resumes from one checkpoint chain
	rules = append(rules, runRules...)
	ans, err := c.Apply(corpus, rules, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to compact named sequences: %w", err)
	}
	return ans, nil
}
