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
	"math"

	"github.com/rs/zerolog/log"
)

// StatsVector is the mergeable sufficient-statistics summary of token
// embeddings belonging to one trace or one group of traces. N, Sum,
// Min and Max merge exactly; MeanSq (elementwise mean of squared
// values, stored as a mean rather than a raw sum) merges as an
// n-weighted mean which is exact only for n=1 children or children
// with identical within-child variance - a documented approximation.
type StatsVector struct {
	ID     string    `msgpack:"id" json:"id"`
	N      int       `msgpack:"n" json:"n"`
	Sum    []float64 `msgpack:"sum" json:"sum"`
	MeanSq []float64 `msgpack:"meanSq" json:"meanSq"`
	Min    []float64 `msgpack:"min" json:"min"`
	Max    []float64 `msgpack:"max" json:"max"`
}

// NewZeroStatsVector creates the zero row emitted for traces with no
// token present in the embedding table. Consumers must branch on N=0
// before interpreting Min/Max - the zeros there are placeholders, not
// observed values.
func NewZeroStatsVector(id string, dim int) *StatsVector {
	return &StatsVector{
		ID:     id,
		Sum:    make([]float64, dim),
		MeanSq: make([]float64, dim),
		Min:    make([]float64, dim),
		Max:    make([]float64, dim),
	}
}

// TraceStats computes the per-trace sufficient statistics over all
// trace tokens present in the embedding table. Missing tokens reduce
// N; they are reported but never fail the computation.
func TraceStats(id string, tokens []string, tbl *Table) *StatsVector {
	dim := tbl.Dim()
	found := tbl.Lookup(tokens)
	ans := NewZeroStatsVector(id, dim)
	var numMissing int
	for _, tok := range tokens {
		vec, ok := found[tok]
		if !ok {
			numMissing++
			continue
		}
		if ans.N == 0 {
			copy(ans.Min, vec)
			copy(ans.Max, vec)

		} else {
			for d, v := range vec {
				ans.Min[d] = math.Min(ans.Min[d], v)
				ans.Max[d] = math.Max(ans.Max[d], v)
			}
		}
		for d, v := range vec {
			ans.Sum[d] += v
			ans.MeanSq[d] += v * v
		}
		ans.N++
	}
	if ans.N > 0 {
		for d := range ans.MeanSq {
			ans.MeanSq[d] /= float64(ans.N)
		}
	}
	if numMissing > 0 {
		log.Warn().
			Str("traceId", id).
			Int("numMissing", numMissing).
			Msg("trace tokens missing from the embedding table")
	}
	return ans
}

// Combine merges two sufficient-statistics vectors into a new one.
// The operation is commutative and associative (in exact arithmetic),
// so any merge tree over the same rows produces the same result for
// N, Sum, Min and Max; MeanSq carries the documented weighted-mean
// approximation. An N=0 operand acts as the neutral element which
// keeps its placeholder Min/Max zeros out of the merged row.
func Combine(a, b *StatsVector) *StatsVector {
	if len(a.Sum) != len(b.Sum) {
		panic(fmt.Sprintf(
			"cannot combine stats vectors of dimensions %d and %d", len(a.Sum), len(b.Sum)))
	}
	if a.N == 0 {
		ans := b.clone()
		ans.ID = mergedID(a.ID, b.ID)
		return ans
	}
	if b.N == 0 {
		ans := a.clone()
		ans.ID = mergedID(a.ID, b.ID)
		return ans
	}
	dim := len(a.Sum)
	ans := NewZeroStatsVector(mergedID(a.ID, b.ID), dim)
	ans.N = a.N + b.N
	for d := 0; d < dim; d++ {
		ans.Sum[d] = a.Sum[d] + b.Sum[d]
		ans.MeanSq[d] = (float64(a.N)*a.MeanSq[d] + float64(b.N)*b.MeanSq[d]) / float64(ans.N)
		ans.Min[d] = math.Min(a.Min[d], b.Min[d])
		ans.Max[d] = math.Max(a.Max[d], b.Max[d])
	}
	return ans
}

func (sv *StatsVector) clone() *StatsVector {
	ans := NewZeroStatsVector(sv.ID, len(sv.Sum))
	ans.N = sv.N
	copy(ans.Sum, sv.Sum)
	copy(ans.MeanSq, sv.MeanSq)
	copy(ans.Min, sv.Min)
	copy(ans.Max, sv.Max)
	return ans
}

func mergedID(a, b string) string {
	if a == b {
		return a
	}
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a
}

// FeatureVector is the normalized downstream-facing form of
// a sufficient-statistics row.
type FeatureVector struct {
	ID   string    `msgpack:"id" json:"id"`
	N    int       `msgpack:"n" json:"n"`
	Mean []float64 `msgpack:"mean" json:"mean"`
	Std  []float64 `msgpack:"std" json:"std"`
	Min  []float64 `msgpack:"min" json:"min"`
	Max  []float64 `msgpack:"max" json:"max"`
}

// Features normalizes the sufficient statistics into mean/std/min/max.
// The standard deviation is the unbiased estimate reconstructed purely
// from {N, Sum, MeanSq} - raw per-token values are not available at
// this point anymore. For N <= 1 it is zero by definition.
func (sv *StatsVector) Features() *FeatureVector {
	dim := len(sv.Sum)
	ans := &FeatureVector{
		ID:   sv.ID,
		N:    sv.N,
		Mean: make([]float64, dim),
		Std:  make([]float64, dim),
		Min:  make([]float64, dim),
		Max:  make([]float64, dim),
	}
	copy(ans.Min, sv.Min)
	copy(ans.Max, sv.Max)
	if sv.N == 0 {
		return ans
	}
	for d := 0; d < dim; d++ {
		mean := sv.Sum[d] / float64(sv.N)
		ans.Mean[d] = mean
		if sv.N > 1 {
			variance := math.Max(0, sv.MeanSq[d]-mean*mean) *
				float64(sv.N) / float64(sv.N-1)
			ans.Std[d] = math.Sqrt(variance)
		}
	}
	return ans
}
