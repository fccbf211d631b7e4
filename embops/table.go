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

// Package embops turns externally trained per-token embeddings into
// mergeable sufficient statistics and normalized feature vectors.
package embops

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sajari/word2vec"
)

// Table maps tokens to their D-dimensional embedding vectors. It is
// backed either by a binary word2vec model or by a plain JSON table,
// both produced by the external embedding-training stage.
type Table struct {
	dim     int
	model   *word2vec.Model
	vectors map[string][]float64
}

// LoadWord2VecModel opens a token embedding table stored
// in the word2vec binary format.
func LoadWord2VecModel(path string) (*Table, error) {
	fr, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load word2vec model: %w", err)
	}
	defer fr.Close()
	model, err := word2vec.FromReader(fr)
	if err != nil {
		return nil, fmt.Errorf("failed to load word2vec model: %w", err)
	}
	return &Table{
		dim:   model.Dim(),
		model: model,
	}, nil
}

// NewTableFromVectors builds a table directly from token vectors.
// All vectors must share the same dimension.
func NewTableFromVectors(vectors map[string][]float64) (*Table, error) {
	ans := &Table{vectors: vectors}
	for tok, vec := range vectors {
		if ans.dim == 0 {
			ans.dim = len(vec)

		} else if len(vec) != ans.dim {
			return nil, fmt.Errorf(
				"failed to create embedding table: token %s has dimension %d, expected %d",
				tok, len(vec), ans.dim,
			)
		}
	}
	if ans.dim == 0 {
		return nil, fmt.Errorf("failed to create embedding table: no vectors provided")
	}
	return ans, nil
}

// LoadJSONTable reads a {token: [values...]} JSON object.
func LoadJSONTable(path string) (*Table, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding table: %w", err)
	}
	var vectors map[string][]float64
	if err := json.Unmarshal(rawData, &vectors); err != nil {
		return nil, fmt.Errorf("failed to load embedding table: %w", err)
	}
	return NewTableFromVectors(vectors)
}

func (t *Table) Dim() int {
	return t.dim
}

// Lookup resolves embeddings for the provided tokens. Tokens missing
// from the table are absent from the result - the caller decides how
// to handle the reduced count.
func (t *Table) Lookup(tokens []string) map[string][]float64 {
	if t.model != nil {
		wordMap := t.model.Map(tokens)
		ans := make(map[string][]float64, len(wordMap))
		for tok, vec := range wordMap {
			conv := make([]float64, len(vec))
			for i, v := range vec {
				conv[i] = float64(v)
			}
			ans[tok] = conv
		}
		return ans
	}
	ans := make(map[string][]float64)
	for _, tok := range tokens {
		if vec, ok := t.vectors[tok]; ok {
			ans[tok] = vec
		}
	}
	return ans
}
