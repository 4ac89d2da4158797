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

// Package bitmap provides the immutable RGB pixel buffers that histogram
// runs read from.
//
// A Bitmap is built once and then only read, so it can be shared by any
// number of goroutines without synchronization:
//
//	bmp, err := bitmap.New(1 << 20)
//	if err != nil {
//	    return err
//	}
//	for i := range bmp.Len() {
//	    p := bmp.At(i)
//	    _ = p.R
//	}
package bitmap

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrNegativeSize is returned when a bitmap is requested with fewer than
// zero pixels.
var ErrNegativeSize = errors.New("bitmap: negative size")

// Pixel is one element of a bitmap: three 8-bit channels.
type Pixel struct {
	R, G, B uint8
}

// Gray returns a pixel with all three channels set to v.
func Gray(v uint8) Pixel {
	return Pixel{R: v, G: v, B: v}
}

// Bitmap is a flat, read-only buffer of pixels.
type Bitmap struct {
	pixels []Pixel
}

// New synthesizes a bitmap of n pixels where pixel i has every channel
// set to i % 255.
func New(n int) (*Bitmap, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeSize, n)
	}
	pixels := make([]Pixel, n)
	for i := range pixels {
		pixels[i] = Gray(uint8(i % 255))
	}
	return &Bitmap{pixels: pixels}, nil
}

// FromPixels creates a bitmap holding a copy of pixels.
func FromPixels(pixels []Pixel) *Bitmap {
	owned := make([]Pixel, len(pixels))
	copy(owned, pixels)
	return &Bitmap{pixels: owned}
}

// Len returns the number of pixels.
func (b *Bitmap) Len() int {
	return len(b.pixels)
}

// At returns pixel i. It panics if i is out of range, like a slice index.
func (b *Bitmap) At(i int) Pixel {
	return b.pixels[i]
}

// Pixels returns the underlying pixels. Callers must not modify them.
func (b *Bitmap) Pixels() []Pixel {
	return b.pixels
}

// Bytes returns the memory footprint of the pixel data.
func (b *Bitmap) Bytes() int {
	return len(b.pixels) * int(unsafe.Sizeof(Pixel{}))
}
