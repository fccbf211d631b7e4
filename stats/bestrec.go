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

package stats

import (
	"fmt"

	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/trace"
)

type MatchItem struct {
	Record   *TraceRecord
	Distance int
}

// BestMatches keeps the k nearest trace records seen so far,
// ordered by ascending distance.
type BestMatches struct {
	size int
	data []MatchItem
}

// AttackRatio returns the fraction of matches labeled as attacks.
// Unlabeled matches count as non-attacks.
func (bm *BestMatches) AttackRatio() float64 {
	if len(bm.data) == 0 {
		return 0
	}
	var numAttacks float64
	for _, v := range bm.data {
		if v.Record.Label == trace.LabelAttack {
			numAttacks++
		}
	}
	return numAttacks / float64(len(bm.data))
}

func (bm *BestMatches) Print() {
	for _, v := range bm.data {
		fmt.Printf("%s (dist: %d, label: %s)\n", v.Record.ID, v.Distance, v.Record.Label)
	}
}

func (bm *BestMatches) At(idx int) MatchItem {
	return bm.data[idx]
}

func (bm *BestMatches) Items() []MatchItem {
	return bm.data
}

func (bm *BestMatches) TryAdd(rec *TraceRecord, dist int) bool {
	pos := -1
	for i := 0; i < len(bm.data); i++ {
		if dist < bm.data[i].Distance {
			pos = i
			break
		}
	}
	if pos == -1 && len(bm.data) < bm.size {
		bm.data = append(
			bm.data,
			MatchItem{
				Record:   rec,
				Distance: dist,
			},
		)
		return true
	}
	if pos > -1 {
		bm.data = append(bm.data, MatchItem{})
		copy(bm.data[pos+1:], bm.data[pos:])
		bm.data[pos] = MatchItem{
			Record:   rec,
			Distance: dist,
		}
		if len(bm.data) > bm.size {
			bm.data = bm.data[:bm.size]
		}
		return true
	}
	return false
}

func NewBestMatches(size int) *BestMatches {
	return &BestMatches{
		size: size,
		data: make([]MatchItem, 0, size),
	}
}
