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

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"golang.org/x/sys/cpu"
)

// cell is one bucket counter with its lock. Cells are padded to a cache
// line so that workers hammering neighbouring buckets do not false-share.
type cell struct {
	count uint64
	mu    sync.Mutex
	_     cpu.CacheLinePad
}

// Store is the shared histogram that strategies write into.
//
// Store does not pick a synchronization policy: each strategy mutates the
// counters through exactly one of the add methods below. Reset and
// Snapshot must not run concurrently with a strategy; the worker join
// orders them.
type Store struct {
	cells [Buckets]cell
}

// NewStore returns a zeroed store.
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of buckets.
func (s *Store) Len() int {
	return len(s.cells)
}

// Reset zeroes every counter.
func (s *Store) Reset() {
	for i := range s.cells {
		s.cells[i].count = 0
	}
}

// Snapshot returns a copy of the counters.
func (s *Store) Snapshot() Histogram {
	h := make(Histogram, len(s.cells))
	for i := range s.cells {
		h[i] = s.cells[i].count
	}
	return h
}

func (s *Store) add(bucket int, n uint64) {
	s.cells[bucket].count += n
}

func (s *Store) lockedAdd(bucket int, n uint64) {
	c := &s.cells[bucket]
	c.mu.Lock()
	c.count += n
	c.mu.Unlock()
}

func (s *Store) atomicAdd(bucket int, n uint64) {
	atomic.AddUint64(&s.cells[bucket].count, n)
}

// counter exposes the raw counter word for transactional updates.
func (s *Store) counter(bucket int) *uint64 {
	return &s.cells[bucket].count
}

// Histogram is an immutable snapshot of bucket counts.
type Histogram []uint64

// Total returns the number of pixels counted.
func (h Histogram) Total() uint64 {
	return lo.Sum(h)
}

// Equal reports whether h and other hold the same count in every bucket.
func (h Histogram) Equal(other Histogram) bool {
	return slices.Equal(h, other)
}

// Diff returns a human-readable diff from h to other (-h +other), or ""
// when they are equal.
func (h Histogram) Diff(other Histogram) string {
	return cmp.Diff(h, other)
}

// NonZero returns the occupied buckets.
func (h Histogram) NonZero() map[int]uint64 {
	m := make(map[int]uint64)
	for i, n := range h {
		if n != 0 {
			m[i] = n
		}
	}
	return m
}

// Tally is a block-private histogram, built without synchronization.
type Tally [Buckets]uint64

// TallyBlock classifies every pixel of b.
func TallyBlock(src Source, b Block) Tally {
	var t Tally
	for i := b.Start; i < b.End; i++ {
		t[Classify(src.At(i))]++
	}
	return t
}
