// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"fmt"

	"github.com/ajroetker/go-lumahist/hist"
)

// BlockError is a failure returned by the function run for one block.
type BlockError struct {
	Index int
	Block hist.Block
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("workerpool: block %d [%d, %d): %v", e.Index, e.Block.Start, e.Block.End, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered while running one block.
type PanicError struct {
	Index int
	Block hist.Block
	Value any
	Stack string
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("workerpool: block %d [%d, %d) panicked: %v", p.Index, p.Block.Start, p.Block.End, p.Value)
}

// Unwrap returns the panic value if it is an error.
func (p *PanicError) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}
