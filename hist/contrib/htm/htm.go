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

// Package htm provides a minimal hardware transactional memory primitive:
// an add to a 64-bit word executed inside an x86 RTM transaction.
//
// Transactions are never guaranteed to commit, so every Region carries a
// fallback lock. A transaction reads the lock word before touching memory;
// taking the lock therefore aborts every in-flight transaction of the
// region, and the fallback path is mutually exclusive with the
// transactional one. Callers never see the retries.
//
// Support is detected at init:
//
//	if htm.Supported() {
//	    r := htm.NewRegion()
//	    r.Add(&counter, 1)
//	}
//
// Setting LUMAHIST_NO_HTM disables it regardless of the CPU.
package htm

import (
	"errors"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// ErrUnsupported is the panic value of Add on machines without usable
// transactional memory.
var ErrUnsupported = errors.New("htm: hardware transactional memory not supported")

// MaxRetries is the number of transactional attempts before an update
// takes the fallback lock.
const MaxRetries = 8

// RTM abort status bits, as left in EAX by an aborted XBEGIN.
const (
	statusCommitted = 0xffffffff
	abortExplicit   = 1 << 0
	abortRetry      = 1 << 1
	abortConflict   = 1 << 2
	abortCapacity   = 1 << 3

	// lockBusyCode is the XABORT argument used when the fallback lock is
	// held at transaction start.
	lockBusyCode = 0xff
)

// supported is set by init() in htm_*.go files.
var supported bool

// Supported reports whether transactions can be used on this machine.
func Supported() bool {
	return supported
}

// NoHTMEnv checks if the LUMAHIST_NO_HTM environment variable is set.
func NoHTMEnv() bool {
	val := os.Getenv("LUMAHIST_NO_HTM")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// Stats counts the slow paths taken by a region.
type Stats struct {
	// Aborts is the number of transactions that did not commit.
	Aborts uint64
	// Conflicts is the subset of Aborts caused by a memory conflict.
	Conflicts uint64
	// Fallbacks is the number of updates applied under the fallback lock.
	Fallbacks uint64
}

// Region is one transactional domain: updates through the same Region
// are atomic with respect to each other.
type Region struct {
	lock uint32
	_    cpu.CacheLinePad

	aborts    atomic.Uint64
	conflicts atomic.Uint64
	fallbacks atomic.Uint64
}

// NewRegion returns a region with its fallback lock released.
func NewRegion() *Region {
	return &Region{}
}

// Add adds delta to *addr atomically with respect to every other Add on
// the same region. It panics with ErrUnsupported if Supported is false.
func (r *Region) Add(addr *uint64, delta uint64) {
	if !supported {
		panic(ErrUnsupported)
	}
	for range MaxRetries {
		r.waitUnlocked()
		status := xadd(addr, delta, &r.lock)
		if status == statusCommitted {
			return
		}
		r.aborts.Add(1)
		if status&abortConflict != 0 {
			r.conflicts.Add(1)
		}
		if !retryable(status) {
			break
		}
	}
	r.fallback(addr, delta)
}

// Stats returns a snapshot of the region's counters.
func (r *Region) Stats() Stats {
	return Stats{
		Aborts:    r.aborts.Load(),
		Conflicts: r.conflicts.Load(),
		Fallbacks: r.fallbacks.Load(),
	}
}

// retryable reports whether another attempt may commit.
func retryable(status uint32) bool {
	if status&abortExplicit != 0 {
		return status>>24 == lockBusyCode
	}
	return status&abortRetry != 0 && status&abortCapacity == 0
}

func (r *Region) waitUnlocked() {
	for atomic.LoadUint32(&r.lock) != 0 {
		runtime.Gosched()
	}
}

// fallback applies the update under the region lock. Writing the lock
// word aborts every transaction that has already read it.
func (r *Region) fallback(addr *uint64, delta uint64) {
	for !atomic.CompareAndSwapUint32(&r.lock, 0, 1) {
		runtime.Gosched()
	}
	*addr += delta
	atomic.StoreUint32(&r.lock, 0)
	r.fallbacks.Add(1)
}
