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

package experiment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-lumahist/hist"
	"github.com/ajroetker/go-lumahist/hist/bitmap"
	"github.com/ajroetker/go-lumahist/hist/contrib/workerpool"
)

// dropLast wraps a strategy and loses the last pixel of every block.
type dropLast struct {
	hist.Strategy
}

func (d dropLast) Apply(s *hist.Store, src hist.Source, b hist.Block) {
	if !b.Empty() {
		b.End--
	}
	d.Strategy.Apply(s, src, b)
}

// panicAfterFirst panics in every block except the first.
type panicAfterFirst struct {
	hist.Strategy
}

func (p panicAfterFirst) Apply(s *hist.Store, src hist.Source, b hist.Block) {
	if b.Start != 0 {
		panic(fmt.Sprintf("block at %d", b.Start))
	}
	p.Strategy.Apply(s, src, b)
}

func mustStrategy(t *testing.T, kind hist.Kind) hist.Strategy {
	t.Helper()
	st, err := hist.NewStrategy(kind, hist.DefaultFamily(kind))
	require.NoError(t, err)
	return st
}

func mustBitmap(t *testing.T, n int) *bitmap.Bitmap {
	t.Helper()
	bmp, err := bitmap.New(n)
	require.NoError(t, err)
	return bmp
}

func TestCompareAllAgree(t *testing.T) {
	for _, n := range []int{0, 1, 50, 1000, 100003} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			e := New(mustBitmap(t, n), WithWorkers(8))
			report, err := e.Compare(context.Background())
			require.NoError(t, err)

			require.Len(t, report.Results, len(hist.Available()))
			assert.Equal(t, uint64(n), report.Reference.Total())
			for _, res := range report.Results {
				assert.Equal(t, report.Reference, res.Histogram, "strategy %s", res.Kind)
				assert.Equal(t, n, res.Size)
			}
		})
	}
}

func TestCompareDirectFamily(t *testing.T) {
	e := New(mustBitmap(t, 20000),
		WithWorkers(4),
		WithFamily(hist.Locking, hist.DirectIncrement),
		WithFamily(hist.Atomic, hist.DirectIncrement))
	report, err := e.Compare(context.Background(), hist.Locking, hist.Atomic)
	require.NoError(t, err)

	for _, kind := range []hist.Kind{hist.Locking, hist.Atomic} {
		res, ok := report.Result(kind)
		require.True(t, ok, "missing %s", kind)
		assert.Equal(t, hist.DirectIncrement, res.Family)
		assert.Equal(t, report.Reference, res.Histogram)
	}
}

func TestRunZeroSize(t *testing.T) {
	e := New(mustBitmap(t, 0), WithWorkers(16))
	for _, kind := range hist.Available() {
		res, err := e.Run(context.Background(), kind)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Spawned, "strategy %s", kind)
		assert.Equal(t, 1, res.Workers, "strategy %s", kind)
		assert.Zero(t, res.Histogram.Total(), "strategy %s", kind)
	}
}

func TestRunClampsWorkers(t *testing.T) {
	e := New(mustBitmap(t, 50), WithWorkers(64))
	res, err := e.Run(context.Background(), hist.Atomic)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Workers)
	assert.Equal(t, 0, res.Spawned)
	assert.Equal(t, uint64(50), res.Histogram.Total())
}

func TestRunWorkers(t *testing.T) {
	e := New(mustBitmap(t, 100000), WithWorkers(4))

	res, err := e.Run(context.Background(), hist.Locking)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Workers)
	assert.Equal(t, 3, res.Spawned)

	res, err = e.Run(context.Background(), hist.Sequential)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Workers)
	assert.Equal(t, 0, res.Spawned)
}

func TestRunResetsStore(t *testing.T) {
	e := New(mustBitmap(t, 3000))
	first, err := e.Run(context.Background(), hist.Atomic)
	require.NoError(t, err)
	second, err := e.Run(context.Background(), hist.Atomic)
	require.NoError(t, err)
	assert.Equal(t, first.Histogram, second.Histogram)
	assert.Equal(t, uint64(3000), second.Histogram.Total())
}

func TestCompareMismatch(t *testing.T) {
	e := New(mustBitmap(t, 5000),
		WithWorkers(4),
		WithStrategy(dropLast{mustStrategy(t, hist.Atomic)}))

	report, err := e.Compare(context.Background(), hist.Atomic, hist.Locking)
	require.Error(t, err)
	assert.True(t, IsMismatch(err))

	var me *MismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, hist.Atomic, me.Kind)
	assert.NotEmpty(t, me.Diff)

	var re *RunError
	assert.False(t, errors.As(err, &re), "mismatch reported as a run failure")

	_, ok := report.Result(hist.Locking)
	assert.True(t, ok, "later strategy did not run after a mismatch")
}

func TestCompareRunError(t *testing.T) {
	m := workerpool.New()
	e := New(mustBitmap(t, 5000),
		WithWorkers(4),
		WithManager(m),
		WithStrategy(panicAfterFirst{mustStrategy(t, hist.Locking)}))

	report, err := e.Compare(context.Background(), hist.Locking, hist.Atomic)
	require.Error(t, err)

	var re *RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, hist.Locking, re.Kind)

	var pe *workerpool.PanicError
	assert.ErrorAs(t, err, &pe)
	assert.False(t, IsMismatch(err))

	_, ok := report.Result(hist.Locking)
	assert.False(t, ok, "failed run kept a result")

	res, ok := report.Result(hist.Atomic)
	require.True(t, ok)
	assert.Equal(t, report.Reference, res.Histogram)
	assert.Equal(t, int64(3), m.Runs())
}

func TestCompareUnsupported(t *testing.T) {
	if hist.Supported(hist.Transactional) {
		t.Skip("transactional memory is available")
	}
	e := New(mustBitmap(t, 1000))
	report, err := e.Compare(context.Background(), hist.Transactional)
	assert.ErrorIs(t, err, hist.ErrUnsupported)
	assert.Len(t, report.Results, 1)
	for _, k := range hist.Available() {
		assert.NotEqual(t, hist.Transactional, k)
	}
}

func TestRepeat(t *testing.T) {
	m := workerpool.New()
	e := New(mustBitmap(t, 2000), WithManager(m), WithRepeat(3))
	report, err := e.Compare(context.Background(), hist.Atomic)
	require.NoError(t, err)
	assert.Len(t, report.Results, 2)
	assert.Equal(t, int64(6), m.Runs())
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(mustBitmap(t, 100))
	_, err := e.Run(ctx, hist.Atomic)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweep(t *testing.T) {
	reports, err := Sweep(context.Background(), []int{0, 1000, 5000}, nil, WithWorkers(3))
	require.NoError(t, err)
	require.Len(t, reports, 3)
	for i, n := range []int{0, 1000, 5000} {
		assert.Equal(t, n, reports[i].Size)
		assert.Equal(t, uint64(n), reports[i].Reference.Total())
	}

	reports, err = Sweep(context.Background(), []int{-1, 10}, []hist.Kind{hist.Atomic})
	assert.ErrorIs(t, err, bitmap.ErrNegativeSize)
	assert.Len(t, reports, 1)
}
