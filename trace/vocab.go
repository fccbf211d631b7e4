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
	"sort"
)

type SymbolKind int8

const (
	SymbolBase SymbolKind = iota
	SymbolRun
	SymbolMined
)

// RunSymbolName derives the name of the symbol which replaces
// a run of two or more instances of the given token.
func RunSymbolName(token string) string {
	return "multi_" + token
}

// Symbol is a single vocabulary entry - a base action id or a derived
// symbol standing for the pattern stored in Source.
type Symbol struct {
	ID     int
	Name   string
	Kind   SymbolKind
	Source []string
}

// Vocabulary is the append-only token alphabet shared by all phases
// of the pipeline. Entries are never removed or modified and their IDs
// grow monotonically, which gives every phase a fixed canonical order
// to iterate in. The orchestrator is the only writer; workers operate
// on read-only snapshots.
type Vocabulary struct {
	entries []Symbol
	byName  map[string]int
	version int
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		byName: make(map[string]int),
	}
}

// NewBaseVocabulary creates a vocabulary out of base action tokens.
// The tokens are sorted first so the entry IDs do not depend on the
// order the caller collected them in.
func NewBaseVocabulary(tokens []string) *Vocabulary {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	ans := NewVocabulary()
	for _, tok := range sorted {
		ans.mustAdd(tok, SymbolBase, nil)
	}
	return ans
}

func (v *Vocabulary) add(name string, kind SymbolKind, source []string) (Symbol, error) {
	if _, ok := v.byName[name]; ok {
		return Symbol{}, fmt.Errorf("failed to extend vocabulary: symbol %s already defined", name)
	}
	sym := Symbol{
		ID:     len(v.entries),
		Name:   name,
		Kind:   kind,
		Source: source,
	}
	v.entries = append(v.entries, sym)
	v.byName[name] = sym.ID
	v.version++
	return sym, nil
}

func (v *Vocabulary) mustAdd(name string, kind SymbolKind, source []string) Symbol {
	sym, err := v.add(name, kind, source)
	if err != nil {
		panic(err)
	}
	return sym
}

func (v *Vocabulary) AddBase(token string) (Symbol, error) {
	return v.add(token, SymbolBase, nil)
}

// AddRun registers the run-collapse symbol for the provided token.
func (v *Vocabulary) AddRun(token string) (Symbol, error) {
	return v.add(RunSymbolName(token), SymbolRun, []string{token, token})
}

// AddMined registers a symbol standing for a mined frequent sequence.
func (v *Vocabulary) AddMined(name string, pattern []string) (Symbol, error) {
	src := make([]string, len(pattern))
	copy(src, pattern)
	return v.add(name, SymbolMined, src)
}

func (v *Vocabulary) Get(name string) (Symbol, bool) {
	id, ok := v.byName[name]
	if !ok {
		return Symbol{}, false
	}
	return v.entries[id], true
}

func (v *Vocabulary) Size() int {
	return len(v.entries)
}

// Version grows with every appended symbol which allows consumers
// to tell vocabulary snapshots apart.
func (v *Vocabulary) Version() int {
	return v.version
}

// Snapshot returns a copy of all entries in ascending ID order.
// The copy is safe to hand to parallel workers while the orchestrator
// keeps extending the vocabulary between phases.
func (v *Vocabulary) Snapshot() []Symbol {
	ans := make([]Symbol, len(v.entries))
	copy(ans, v.entries)
	return ans
}

// SnapshotKind works like Snapshot restricted to a single symbol kind.
func (v *Vocabulary) SnapshotKind(kind SymbolKind) []Symbol {
	ans := make([]Symbol, 0, len(v.entries))
	for _, sym := range v.entries {
		if sym.Kind == kind {
			ans = append(ans, sym)
		}
	}
	return ans
}
