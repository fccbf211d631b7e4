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

// Package mining implements a level-wise Apriori-style search for
// frequent contiguous token sequences in a trace corpus. Two support
// measures are computed for every candidate: case support (the fraction
// of traces containing the sequence at least once) and total support
// (the fraction of all possible equally-sized token windows matching
// the sequence). A candidate passing either threshold is frequent.
package mining

import (
	"errors"
	"fmt"
)

const dfltNumWorkers = 4

// ErrPrecondition marks an invalid mining configuration or input.
// No mining work starts once the error is detected.
var ErrPrecondition = errors.New("precondition violated")

type Config struct {

	// CaseThreshold is the minimum case support, must be in (0, 1].
	CaseThreshold float64

	// TotalThreshold is the minimum total support, must be in (0, 1].
	TotalThreshold float64

	// MaxSeqLen limits the size of mined sequences, must be >= 1.
	MaxSeqLen int

	// Alphabet optionally provides the known token alphabet. When
	// empty, distinct tokens of the corpus are collected instead.
	Alphabet []string

	// NumWorkers limits the counting worker pool. Zero means
	// the package default.
	NumWorkers int
}

func (conf Config) workers() int {
	if conf.NumWorkers < 1 {
		return dfltNumWorkers
	}
	return conf.NumWorkers
}

// validate fails fast on a broken configuration - the error names the
// violated invariant and nothing is computed afterwards.
func (conf Config) validate() error {
	if conf.MaxSeqLen < 1 {
		return fmt.Errorf("%w: maxSeqLen must be >= 1, got %d", ErrPrecondition, conf.MaxSeqLen)
	}
	if conf.CaseThreshold <= 0 {
		return fmt.Errorf("%w: caseThreshold must be > 0, got %f", ErrPrecondition, conf.CaseThreshold)
	}
	if conf.TotalThreshold <= 0 {
		return fmt.Errorf("%w: totalThreshold must be > 0, got %f", ErrPrecondition, conf.TotalThreshold)
	}
	return nil
}

// FrequentSequence is a mined contiguous token sequence together with
// its supports. Values are immutable once created by a mining level.
type FrequentSequence struct {
	Tokens       []string `json:"tokens"`
	Size         int      `json:"size"`
	CaseSupport  float64  `json:"caseSupport"`
	TotalSupport float64  `json:"totalSupport"`
	Name         string   `json:"name"`
}

func (fs FrequentSequence) String() string {
	return fmt.Sprintf(
		"FrequentSequence{%s, case: %01.3f, total: %01.3f}",
		fs.Name, fs.CaseSupport, fs.TotalSupport,
	)
}
