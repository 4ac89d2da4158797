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

// Package experiment times histogram strategies against each other over
// one pixel source and checks that they all agree.
//
// Runs are strictly sequential: each one resets the shared store, times
// the partitioned update, joins every worker and snapshots the result.
// Compare uses the Sequential run as the reference and reports any
// strategy whose histogram differs as a *MismatchError.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ajroetker/go-lumahist/hist"
	"github.com/ajroetker/go-lumahist/hist/contrib/htm"
	"github.com/ajroetker/go-lumahist/hist/contrib/workerpool"
)

// Result describes one completed run.
type Result struct {
	Kind      hist.Kind
	Family    hist.Family
	Size      int
	Workers   int
	Spawned   int
	Elapsed   time.Duration
	Histogram hist.Histogram
}

// Experiment owns the store and worker manager used for a series of runs
// over a single source.
type Experiment struct {
	src     hist.Source
	store   *hist.Store
	manager *workerpool.Manager
	logger  *slog.Logger

	workers  int
	repeat   int
	families map[hist.Kind]hist.Family
	built    map[hist.Kind]hist.Strategy
}

// Option configures an Experiment.
type Option func(*Experiment)

// WithWorkers sets the requested worker count; 0 means the partitioner's
// default.
func WithWorkers(n int) Option {
	return func(e *Experiment) {
		e.workers = n
	}
}

// WithRepeat runs every strategy n times in Compare and keeps the fastest
// run. Values below 1 mean 1.
func WithRepeat(n int) Option {
	return func(e *Experiment) {
		e.repeat = max(n, 1)
	}
}

// WithFamily overrides the update family used for kind.
func WithFamily(kind hist.Kind, family hist.Family) Option {
	return func(e *Experiment) {
		e.families[kind] = family
	}
}

// WithStrategy replaces the implementation used for st.Kind().
func WithStrategy(st hist.Strategy) Option {
	return func(e *Experiment) {
		e.built[st.Kind()] = st
	}
}

// WithManager sets the worker manager.
func WithManager(m *workerpool.Manager) Option {
	return func(e *Experiment) {
		e.manager = m
	}
}

// WithLogger sets the logger for per-run diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) {
		e.logger = l
	}
}

// New creates an experiment over src.
func New(src hist.Source, opts ...Option) *Experiment {
	e := &Experiment{
		src:      src,
		store:    hist.NewStore(),
		repeat:   1,
		families: make(map[hist.Kind]hist.Family),
		built:    make(map[hist.Kind]hist.Strategy),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.manager == nil {
		e.manager = workerpool.New()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Size returns the number of pixels in the source.
func (e *Experiment) Size() int {
	return e.src.Len()
}

// Strategy returns the strategy used for kind, building it on first use.
func (e *Experiment) Strategy(kind hist.Kind) (hist.Strategy, error) {
	if st, ok := e.built[kind]; ok {
		return st, nil
	}
	family, ok := e.families[kind]
	if !ok {
		family = hist.DefaultFamily(kind)
	}
	st, err := hist.NewStrategy(kind, family)
	if err != nil {
		return nil, err
	}
	e.built[kind] = st
	return st, nil
}

// Partition returns the blocks a run of kind would use.
func (e *Experiment) Partition(kind hist.Kind) []hist.Block {
	n := e.src.Len()
	if !kind.Parallel() {
		return hist.Partition(n, 1)
	}
	return hist.Partition(n, hist.ResolveWorkers(n, e.workers))
}

// Run performs one timed run of kind on a freshly reset store. A failure
// inside any block is returned as a *RunError and no histogram is kept.
func (e *Experiment) Run(ctx context.Context, kind hist.Kind) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	st, err := e.Strategy(kind)
	if err != nil {
		return Result{}, err
	}

	blocks := e.Partition(kind)
	e.logger.Debug("experiment parameters",
		"strategy", kind, "family", st.Family(),
		"size", e.src.Len(), "workers", len(blocks))

	e.store.Reset()
	spawned := e.manager.Spawned()

	start := time.Now()
	err = e.manager.Run(blocks, func(b hist.Block) error {
		st.Apply(e.store, e.src, b)
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		e.logger.Error("run failed", "strategy", kind, "err", err)
		return Result{}, &RunError{Kind: kind, Err: err}
	}

	res := Result{
		Kind:      kind,
		Family:    st.Family(),
		Size:      e.src.Len(),
		Workers:   len(blocks),
		Spawned:   int(e.manager.Spawned() - spawned),
		Elapsed:   elapsed,
		Histogram: e.store.Snapshot(),
	}
	if r, ok := st.(interface{ HTMStats() htm.Stats }); ok {
		stats := r.HTMStats()
		e.logger.Debug("transactions", "aborts", stats.Aborts,
			"conflicts", stats.Conflicts, "fallbacks", stats.Fallbacks)
	}
	e.logger.Debug("run complete", "strategy", kind, "elapsed", elapsed)
	return res, nil
}

// best runs kind e.repeat times and keeps the fastest result. Every
// repetition is checked against ref when ref is non-nil.
func (e *Experiment) best(ctx context.Context, kind hist.Kind, ref hist.Histogram) (Result, error) {
	var best Result
	for i := range e.repeat {
		res, err := e.Run(ctx, kind)
		if err != nil {
			return Result{}, err
		}
		if ref != nil && !res.Histogram.Equal(ref) {
			return res, &MismatchError{Kind: kind, Diff: ref.Diff(res.Histogram)}
		}
		if i == 0 || res.Elapsed < best.Elapsed {
			best = res
		}
	}
	return best, nil
}

// Report is the outcome of Compare for one source.
type Report struct {
	Size      int
	Reference hist.Histogram
	Results   []Result
}

// Result returns the result for kind, if it ran successfully.
func (r *Report) Result(kind hist.Kind) (Result, bool) {
	for _, res := range r.Results {
		if res.Kind == kind {
			return res, true
		}
	}
	return Result{}, false
}

// Compare runs the Sequential reference and then each of kinds (all
// available kinds when empty) on a freshly reset store. Failures of one
// strategy do not stop the others; all of them are joined into the
// returned error. A nil Report means the reference itself failed.
func (e *Experiment) Compare(ctx context.Context, kinds ...hist.Kind) (*Report, error) {
	if len(kinds) == 0 {
		kinds = hist.Available()
	}

	ref, err := e.best(ctx, hist.Sequential, nil)
	if err != nil {
		return nil, fmt.Errorf("experiment: reference run: %w", err)
	}
	report := &Report{
		Size:      e.src.Len(),
		Reference: ref.Histogram,
		Results:   []Result{ref},
	}

	var errs []error
	for _, kind := range kinds {
		if kind == hist.Sequential {
			continue
		}
		res, err := e.best(ctx, kind, ref.Histogram)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report.Results = append(report.Results, res)
	}
	return report, errors.Join(errs...)
}
