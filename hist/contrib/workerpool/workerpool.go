// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool runs the blocks of a partition on fresh goroutines
// and guarantees they are all joined before Run returns.
//
// Unlike a persistent pool, nothing outlives a call: block 0 runs on the
// calling goroutine, every other block gets a goroutine of its own, and
// the deferred join runs on every exit path, including panics raised by
// the caller's own block.
//
// Usage:
//
//	m := workerpool.New()
//	err := m.Run(hist.Partition(n, w), func(b hist.Block) error {
//	    strategy.Apply(store, src, b)
//	    return nil
//	})
package workerpool

import (
	"errors"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-lumahist/hist"
)

// Manager spawns and joins the workers of successive runs. A Manager may
// be shared, but runs through it are expected to be sequential.
type Manager struct {
	lockThreads bool

	spawned atomic.Int64
	runs    atomic.Int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithLockedThreads controls whether each spawned worker is wired to its
// own OS thread for its lifetime. Enabled by default.
func WithLockedThreads(lock bool) Option {
	return func(m *Manager) {
		m.lockThreads = lock
	}
}

// New creates a Manager.
func New(opts ...Option) *Manager {
	m := &Manager{lockThreads: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Spawned returns the number of worker goroutines started so far.
func (m *Manager) Spawned() int64 {
	return m.spawned.Load()
}

// Runs returns the number of completed calls to Run.
func (m *Manager) Runs() int64 {
	return m.runs.Load()
}

// Run executes fn once per block and returns after every spawned worker
// has been joined. Errors are wrapped in *BlockError and panics are
// recovered into *PanicError. The caller's failure and the first worker
// failure are both reported.
//
// Writes made by fn happen before Run returns.
func (m *Manager) Run(blocks []hist.Block, fn func(hist.Block) error) (err error) {
	if len(blocks) == 0 {
		return nil
	}

	var g errgroup.Group
	defer func() {
		err = errors.Join(err, g.Wait())
		m.runs.Add(1)
	}()

	for i, b := range blocks[1:] {
		m.spawned.Add(1)
		g.Go(func() error {
			if m.lockThreads {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
			}
			return call(i+1, b, fn)
		})
	}

	return call(0, blocks[0], fn)
}

// call runs fn on one block, converting a panic into a *PanicError.
func call(index int, b hist.Block, fn func(hist.Block) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				Index: index,
				Block: b,
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	if err := fn(b); err != nil {
		return &BlockError{Index: index, Block: b, Err: err}
	}
	return nil
}
