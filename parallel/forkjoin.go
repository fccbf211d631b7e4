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

// Package parallel provides the single fork-join primitive the pipeline
// builds its batch phases on: a deterministic partition function, a pure
// per-shard function and an associative combine. A failed or panicking
// shard aborts the whole phase - partial results never leak out as they
// would corrupt downstream thresholding.
package parallel

import (
	"errors"
	"fmt"
	"sync"
)

// ErrWorkerFailure marks a failure of any shard of a fork-join phase.
var ErrWorkerFailure = errors.New("worker failure")

// Split partitions items into at most n contiguous shards of roughly
// equal size. The partitioning is deterministic and order-preserving:
// concatenating the shards yields the original slice.
func Split[T any](items []T, n int) [][]T {
	if n < 1 {
		n = 1
	}
	if n > len(items) {
		n = len(items)
	}
	if n == 0 {
		return nil
	}
	ans := make([][]T, 0, n)
	chunkSize := len(items) / n
	rest := len(items) % n
	var pos int
	for i := 0; i < n; i++ {
		size := chunkSize
		if i < rest {
			size++
		}
		ans = append(ans, items[pos:pos+size])
		pos += size
	}
	return ans
}

// Run executes fn over all shards concurrently and folds the partial
// results with combine. The combine function must be associative and
// commutative so worker completion order cannot influence the result;
// Run nevertheless folds in shard order to keep even a non-conforming
// combine deterministic. The first shard error (a panic including)
// aborts the whole run.
func Run[S, R any](shards []S, fn func(shard S) (R, error), combine func(a, b R) R) (R, error) {
	var zero R
	if len(shards) == 0 {
		return zero, nil
	}
	results := make([]R, len(shards))
	errs := make([]error, len(shards))
	var wg sync.WaitGroup
	for i, shard := range shards {
		wg.Add(1)
		go func(i int, shard S) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("worker %d panicked: %v", i, r)
				}
			}()
			results[i], errs[i] = fn(shard)
		}(i, shard)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return zero, fmt.Errorf("%w (shard %d): %s", ErrWorkerFailure, i, err)
		}
	}
	ans := results[0]
	for _, r := range results[1:] {
		ans = combine(ans, r)
	}
	return ans, nil
}
