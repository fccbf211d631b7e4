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

type RuleKind int8

const (
	// RuleRun collapses runs of two or more occurrences of Token
	// into a single Symbol occurrence.
	RuleRun RuleKind = iota

	// RuleSequence replaces occurrences of the Pattern token
	// sequence with a single Symbol occurrence.
	RuleSequence
)

// Rule is one element of the totally ordered rewrite list applied
// during compaction. Each rule operates on the output of the previous
// one, so the list order is part of the pipeline semantics and must be
// serialized together with any checkpoint. Patterns are structured
// token sequences, never raw matching text - no metacharacter escaping
// is involved anywhere.
type Rule struct {
	Kind    RuleKind `msgpack:"kind" json:"kind"`
	Token   string   `msgpack:"token,omitempty" json:"token,omitempty"`
	Pattern []string `msgpack:"pattern,omitempty" json:"pattern,omitempty"`
	Symbol  string   `msgpack:"symbol" json:"symbol"`
}

func (r Rule) String() string {
	if r.Kind == RuleRun {
		return fmt.Sprintf("Rule{run %s -> %s}", r.Token, r.Symbol)
	}
	return fmt.Sprintf("Rule{seq %s -> %s}", trace.Encode(r.Pattern), r.Symbol)
}

// RunRules derives run-collapse rules for all provided vocabulary
// entries. The entries are expected in ascending ID order (the
// canonical compaction order) as produced by Vocabulary.Snapshot -
// the function deliberately takes a materialized snapshot rather than
// iterating a live vocabulary.
func RunRules(vocab []trace.Symbol) []Rule {
	ans := make([]Rule, len(vocab))
	for i, sym := range vocab {
		ans[i] = Rule{
			Kind:   RuleRun,
			Token:  sym.Name,
			Symbol: trace.RunSymbolName(sym.Name),
		}
	}
	return ans
}

// SequenceRules turns mined frequent sequences into substitution
// rules, keeping the provided order (size desc, total support desc,
// discovery order). Sequences containing an upstream marker literal
// are excluded - such tokens are encoding artifacts, not actions.
func SequenceRules(seqs []mining.FrequentSequence, markers []string) []Rule {
	markerSet := make(map[string]bool, len(markers))
	for _, m := range markers {
		markerSet[m] = true
	}
	ans := make([]Rule, 0, len(seqs))
	for _, fs := range seqs {
		if containsAny(fs.Tokens, markerSet) {
			continue
		}
		pattern := make([]string, len(fs.Tokens))
		copy(pattern, fs.Tokens)
		ans = append(ans, Rule{
			Kind:    RuleSequence,
			Pattern: pattern,
			Symbol:  fs.Name,
		})
	}
	return ans
}

func containsAny(tokens []string, set map[string]bool) bool {
	for _, tok := range tokens {
		if set[tok] {
			return true
		}
	}
	return false
}
