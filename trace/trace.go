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

package trace

import (
	"fmt"
)

type Label int8

const (
	LabelUnknown Label = iota
	LabelNormal
	LabelAttack
)

func (lb Label) String() string {
	switch lb {
	case LabelNormal:
		return "normal"
	case LabelAttack:
		return "attack"
	default:
		return "unknown"
	}
}

// Trace is an ordered sequence of audit actions observed for
// a single (time window, process) case. A trace is never rewritten
// in place - compaction produces a new value via WithCompacted
// while the raw token sequence stays untouched.
type Trace struct {
	ID      string
	Window  string
	Process string

	// Tokens is the raw action sequence as produced by the
	// upstream extraction stage.
	Tokens []string

	// Length is the raw sequence length stored separately
	// as the extraction stage reports it on its own.
	Length int

	// Compacted is the current compacted version of Tokens.
	// An uncompacted trace has Compacted == nil.
	Compacted []string

	CompactedLength int

	Label Label
}

// CurrentTokens returns the most compacted version available.
func (tr Trace) CurrentTokens() []string {
	if tr.Compacted != nil {
		return tr.Compacted
	}
	return tr.Tokens
}

// WithCompacted returns a copy of the trace with a new compacted
// version attached. It returns an error in case the new version
// is longer than the raw sequence which would mean a corrupted
// rewrite chain.
func (tr Trace) WithCompacted(tokens []string) (Trace, error) {
	if len(tokens) > tr.Length {
		return tr, fmt.Errorf(
			"failed to attach compacted version of trace %s: length %d exceeds raw length %d",
			tr.ID, len(tokens), tr.Length,
		)
	}
	ans := tr
	ans.Compacted = tokens
	ans.CompactedLength = len(tokens)
	return ans, nil
}

// Corpus is a list of traces processed as a single batch.
type Corpus struct {
	Traces []Trace
}

func (c *Corpus) Len() int {
	return len(c.Traces)
}

// Lengths returns current (i.e. most compacted) lengths of all traces.
func (c *Corpus) Lengths() []int {
	ans := make([]int, len(c.Traces))
	for i, tr := range c.Traces {
		ans[i] = len(tr.CurrentTokens())
	}
	return ans
}

// TokenSeqs returns current token sequences of all traces,
// in corpus order.
func (c *Corpus) TokenSeqs() [][]string {
	ans := make([][]string, len(c.Traces))
	for i, tr := range c.Traces {
		ans[i] = tr.CurrentTokens()
	}
	return ans
}

// ApplyCompacted attaches compacted versions to all traces. The seqs
// argument must come in corpus order (typically from a compactor run
// over TokenSeqs output).
func (c *Corpus) ApplyCompacted(seqs [][]string) error {
	if len(seqs) != len(c.Traces) {
		return fmt.Errorf(
			"failed to apply compacted corpus: %d sequences for %d traces", len(seqs), len(c.Traces))
	}
	for i, tokens := range seqs {
		tr, err := c.Traces[i].WithCompacted(tokens)
		if err != nil {
			return err
		}
		c.Traces[i] = tr
	}
	return nil
}

// DistinctTokens returns all distinct raw tokens of the corpus
// in ascending order. It is used as the default mining alphabet.
func (c *Corpus) DistinctTokens() []string {
	return distinctSorted(c.TokenSeqs())
}
