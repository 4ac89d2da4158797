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

package bitmap

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	for _, n := range []int{0, 1, 254, 255, 256, 1000} {
		bmp, err := New(n)
		if err != nil {
			t.Fatalf("New(%d): %v", n, err)
		}
		if bmp.Len() != n {
			t.Errorf("New(%d).Len() = %d", n, bmp.Len())
		}
		for i := range n {
			want := Gray(uint8(i % 255))
			if got := bmp.At(i); got != want {
				t.Fatalf("New(%d).At(%d) = %v, want %v", n, i, got, want)
			}
		}
		if bmp.Bytes() != 3*n {
			t.Errorf("New(%d).Bytes() = %d, want %d", n, bmp.Bytes(), 3*n)
		}
	}
}

func TestNewNegative(t *testing.T) {
	_, err := New(-1)
	if !errors.Is(err, ErrNegativeSize) {
		t.Errorf("New(-1) error = %v, want ErrNegativeSize", err)
	}
}

func TestFromPixelsCopies(t *testing.T) {
	src := []Pixel{{1, 2, 3}, {4, 5, 6}}
	bmp := FromPixels(src)
	src[0] = Pixel{}

	if got := bmp.At(0); got != (Pixel{1, 2, 3}) {
		t.Errorf("At(0) = %v after caller mutation, want {1 2 3}", got)
	}
	if bmp.Len() != 2 {
		t.Errorf("Len() = %d, want 2", bmp.Len())
	}
}
