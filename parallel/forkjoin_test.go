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

package parallel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCoversAllItems(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	shards := Split(items, 3)
	assert.Equal(t, 3, len(shards))
	var joined []int
	for _, shard := range shards {
		joined = append(joined, shard...)
	}
	assert.Equal(t, items, joined)
}

func TestSplitMoreWorkersThanItems(t *testing.T) {
	shards := Split([]int{1, 2}, 10)
	assert.Equal(t, 2, len(shards))
}

func TestSplitEmpty(t *testing.T) {
	shards := Split([]int{}, 4)
	assert.Equal(t, 0, len(shards))
}

func TestRunSumsPartials(t *testing.T) {
	shards := Split([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 4)
	ans, err := Run(
		shards,
		func(shard []int) (int, error) {
			var sum int
			for _, v := range shard {
				sum += v
			}
			return sum, nil
		},
		func(a, b int) int { return a + b },
	)
	assert.NoError(t, err)
	assert.Equal(t, 55, ans)
}

func TestRunFailFast(t *testing.T) {
	shards := Split([]int{1, 2, 3, 4}, 2)
	_, err := Run(
		shards,
		func(shard []int) (int, error) {
			if shard[0] == 3 {
				return 0, fmt.Errorf("broken shard")
			}
			return 1, nil
		},
		func(a, b int) int { return a + b },
	)
	assert.ErrorIs(t, err, ErrWorkerFailure)
}

func TestRunRecoversPanic(t *testing.T) {
	shards := Split([]int{1, 2}, 2)
	_, err := Run(
		shards,
		func(shard []int) (int, error) {
			if shard[0] == 2 {
				panic("boom")
			}
			return 1, nil
		},
		func(a, b int) int { return a + b },
	)
	assert.ErrorIs(t, err, ErrWorkerFailure)
}

func TestRunEmptyShards(t *testing.T) {
	ans, err := Run(
		nil,
		func(shard []int) (int, error) { return 1, nil },
		func(a, b int) int { return a + b },
	)
	assert.NoError(t, err)
	assert.Equal(t, 0, ans)
}
