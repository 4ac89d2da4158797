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
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned when a strategy cannot run on this platform.
var ErrUnsupported = errors.New("hist: strategy not supported on this platform")

// Kind identifies an update strategy.
type Kind int

const (
	// Sequential applies every increment from a single goroutine.
	Sequential Kind = iota

	// Locking guards each bucket with its own mutex.
	Locking

	// Atomic uses hardware fetch-and-add on each bucket.
	Atomic

	// Transactional wraps each increment in a hardware memory transaction.
	Transactional
)

// Kinds lists every strategy kind in run order, supported or not.
var Kinds = []Kind{Sequential, Transactional, Locking, Atomic}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Sequential:
		return "sequential"
	case Locking:
		return "locking"
	case Atomic:
		return "atomic"
	case Transactional:
		return "transactional"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Parallel reports whether the kind spreads blocks over several workers.
func (k Kind) Parallel() bool {
	return k != Sequential
}

// ParseKind parses a kind name. It accepts the String forms and the
// short aliases "seq", "mutex" and "tm".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential", "seq":
		return Sequential, nil
	case "locking", "mutex":
		return Locking, nil
	case "atomic":
		return Atomic, nil
	case "transactional", "tm":
		return Transactional, nil
	}
	return 0, fmt.Errorf("hist: unknown strategy %q", s)
}

// Family is the shape of a strategy's update loop.
type Family int

const (
	// DirectIncrement classifies each pixel and immediately publishes a
	// single increment to the shared store.
	DirectIncrement Family = iota

	// LocalAggregate first builds a private Tally for the block and then
	// publishes only its non-zero buckets, one synchronized operation per
	// bucket instead of per pixel.
	LocalAggregate
)

// String returns the lower-case name of the family.
func (f Family) String() string {
	switch f {
	case DirectIncrement:
		return "direct"
	case LocalAggregate:
		return "aggregate"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// ParseFamily parses "direct" or "aggregate".
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct":
		return DirectIncrement, nil
	case "aggregate", "local":
		return LocalAggregate, nil
	}
	return 0, fmt.Errorf("hist: unknown family %q", s)
}

// DefaultFamily returns the family a kind uses unless told otherwise.
func DefaultFamily(k Kind) Family {
	if k == Sequential {
		return DirectIncrement
	}
	return LocalAggregate
}

// Strategy applies the pixels of one block to a shared store.
//
// Apply may be called concurrently for disjoint blocks of the same source
// against the same store, except for Sequential, which must only ever see
// one block at a time.
type Strategy interface {
	Kind() Kind
	Family() Family
	Apply(s *Store, src Source, b Block)
}

// NewStrategy returns the strategy for kind using the given family.
// Transactional returns ErrUnsupported when the CPU has no usable
// transactional memory; no other strategy is substituted for it.
func NewStrategy(kind Kind, family Family) (Strategy, error) {
	if family != DirectIncrement && family != LocalAggregate {
		return nil, fmt.Errorf("hist: invalid family %d", int(family))
	}
	switch kind {
	case Sequential:
		return sequential{family}, nil
	case Locking:
		return locking{family}, nil
	case Atomic:
		return atomicAdd{family}, nil
	case Transactional:
		return newTransactional(family)
	}
	return nil, fmt.Errorf("hist: invalid kind %d", int(kind))
}

// visit feeds the updates of block b to publish, shaped by family.
func visit(family Family, src Source, b Block, publish func(bucket int, n uint64)) {
	if family == DirectIncrement {
		for i := b.Start; i < b.End; i++ {
			publish(Classify(src.At(i)), 1)
		}
		return
	}
	t := TallyBlock(src, b)
	for bucket, n := range t {
		if n != 0 {
			publish(bucket, n)
		}
	}
}

type sequential struct{ family Family }

func (sequential) Kind() Kind { return Sequential }
func (s sequential) Family() Family { return s.family }

func (s sequential) Apply(store *Store, src Source, b Block) {
	visit(s.family, src, b, store.add)
}

type locking struct{ family Family }

func (locking) Kind() Kind { return Locking }
func (l locking) Family() Family { return l.family }

func (l locking) Apply(store *Store, src Source, b Block) {
	visit(l.family, src, b, store.lockedAdd)
}

type atomicAdd struct{ family Family }

func (atomicAdd) Kind() Kind { return Atomic }
func (a atomicAdd) Family() Family { return a.family }

func (a atomicAdd) Apply(store *Store, src Source, b Block) {
	visit(a.family, src, b, store.atomicAdd)
}
