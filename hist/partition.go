// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hist

const (
	// MinBlockSize is the smallest number of pixels worth handing to a
	// worker of its own.
	MinBlockSize = 200

	// DefaultWorkers is used when no worker count is requested.
	DefaultWorkers = 2
)

// Block is the half-open pixel index range [Start, End).
type Block struct {
	Start, End int
}

// Len returns the number of pixels in the block.
func (b Block) Len() int {
	return b.End - b.Start
}

// Empty reports whether the block covers no pixels.
func (b Block) Empty() bool {
	return b.End <= b.Start
}

// MaxWorkers returns ceil(n / MinBlockSize), the most workers a buffer
// of n pixels can keep busy.
func MaxWorkers(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + MinBlockSize - 1) / MinBlockSize
}

// ResolveWorkers returns the worker count for n pixels given a requested
// count. A request of 0 (or less) means DefaultWorkers. The result is
// capped by MaxWorkers(n) and is always at least 1.
func ResolveWorkers(n, requested int) int {
	if requested <= 0 {
		requested = DefaultWorkers
	}
	return max(1, min(requested, MaxWorkers(n)))
}

// Partition splits [0, n) into w contiguous blocks. The first w-1 blocks
// hold n/w pixels each and the last one absorbs the remainder. A w below
// 1 is treated as 1, and n == 0 yields a single empty block.
func Partition(n, w int) []Block {
	n = max(n, 0)
	w = max(w, 1)
	if n == 0 {
		return []Block{{}}
	}

	size := n / w
	blocks := make([]Block, w)
	start := 0
	for i := range w - 1 {
		blocks[i] = Block{Start: start, End: start + size}
		start += size
	}
	blocks[w-1] = Block{Start: start, End: n}
	return blocks
}
