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

// Package hist computes luminance histograms over pixel buffers using
// interchangeable update strategies.
//
// Every strategy produces the same histogram for the same input; they
// differ only in how concurrent workers publish counts into the shared
// Store:
//
//	Sequential     single goroutine, no synchronization
//	Locking        one mutex per bucket
//	Atomic         atomic fetch-and-add per bucket
//	Transactional  hardware memory transactions (x86 RTM), when available
//
// Typical use:
//
//	store := hist.NewStore()
//	st, err := hist.NewStrategy(hist.Atomic, hist.LocalAggregate)
//	if err != nil {
//	    return err
//	}
//	blocks := hist.Partition(src.Len(), hist.ResolveWorkers(src.Len(), 0))
//	for _, b := range blocks {
//	    st.Apply(store, src, b) // normally one worker per block
//	}
//	h := store.Snapshot()
package hist

import "github.com/ajroetker/go-lumahist/hist/bitmap"

const (
	// MaxChannel is one past the largest 8-bit channel value.
	MaxChannel = 256

	// Buckets is the number of histogram buckets.
	Buckets = 256

	// Border is the width of the luminance range covered by one bucket.
	Border = MaxChannel / Buckets
)

// Rec. 709 luminance weights.
const (
	WeightR = 0.2126
	WeightG = 0.7152
	WeightB = 0.0722
)

// Source is an index-addressable, read-only pixel buffer.
type Source interface {
	Len() int
	At(i int) bitmap.Pixel
}

// Luminance returns the perceived brightness of p, in [0, 256).
//
// The explicit conversions round each product before the sum, which
// keeps the compiler from fusing them into FMAs: bucket boundaries are
// the same on every architecture.
func Luminance(p bitmap.Pixel) float64 {
	r := float64(WeightR * float64(p.R))
	g := float64(WeightG * float64(p.G))
	b := float64(WeightB * float64(p.B))
	return r + g + b
}

// Classify returns the bucket index of p, in [0, Buckets).
//
// The weights sum to 1, so Luminance never reaches MaxChannel and the
// truncated quotient stays below Buckets.
func Classify(p bitmap.Pixel) int {
	return int(Luminance(p) / Border)
}
