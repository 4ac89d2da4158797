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
	"sync"
	"testing"

	"github.com/ajroetker/go-lumahist/hist/bitmap"
)

var testSizes = []int{0, 1, 199, 200, 1000, 4096, 100003}

// runParallel applies st to every block of the partition concurrently.
func runParallel(st Strategy, store *Store, src Source, workers int) {
	var wg sync.WaitGroup
	for _, b := range Partition(src.Len(), workers) {
		wg.Go(func() {
			st.Apply(store, src, b)
		})
	}
	wg.Wait()
}

func allStrategies(t *testing.T) []Strategy {
	t.Helper()
	var out []Strategy
	for _, k := range Available() {
		for _, f := range []Family{DirectIncrement, LocalAggregate} {
			st, err := NewStrategy(k, f)
			if err != nil {
				t.Fatalf("NewStrategy(%s, %s): %v", k, f, err)
			}
			out = append(out, st)
		}
	}
	return out
}

func TestStrategiesMatchSequential(t *testing.T) {
	for _, n := range testSizes {
		bmp, err := bitmap.New(n)
		if err != nil {
			t.Fatal(err)
		}

		ref := NewStore()
		seq, _ := NewStrategy(Sequential, DirectIncrement)
		seq.Apply(ref, bmp, Block{0, n})
		want := ref.Snapshot()
		if want.Total() != uint64(n) {
			t.Fatalf("sequential total = %d, want %d", want.Total(), n)
		}

		for _, st := range allStrategies(t) {
			if !st.Kind().Parallel() {
				continue
			}
			t.Run(fmt.Sprintf("%s/%s/n=%d", st.Kind(), st.Family(), n), func(t *testing.T) {
				store := NewStore()
				runParallel(st, store, bmp, 8)
				got := store.Snapshot()
				if !got.Equal(want) {
					t.Errorf("histogram differs from sequential (-want +got):\n%s", want.Diff(got))
				}
			})
		}
	}
}

func TestStrategiesContended(t *testing.T) {
	// Every pixel lands in the same bucket.
	pixels := make([]bitmap.Pixel, 50000)
	for i := range pixels {
		pixels[i] = bitmap.Gray(128)
	}
	src := bitmap.FromPixels(pixels)
	bucket := Classify(bitmap.Gray(128))

	for _, st := range allStrategies(t) {
		if !st.Kind().Parallel() || st.Family() != DirectIncrement {
			continue
		}
		t.Run(st.Kind().String(), func(t *testing.T) {
			store := NewStore()
			runParallel(st, store, src, 16)
			if got := store.Snapshot()[bucket]; got != uint64(len(pixels)) {
				t.Errorf("bucket %d = %d, want %d", bucket, got, len(pixels))
			}
		})
	}
}

func TestSequentialScenario(t *testing.T) {
	bmp, err := bitmap.New(1000)
	if err != nil {
		t.Fatal(err)
	}

	// Buckets of pixels 0..9 and 990..999, computed by hand from the
	// luminance weights.
	first := []int{0, 1, 2, 3, 4, 4, 6, 6, 8, 9}
	last := []int{225, 226, 226, 228, 229, 229, 231, 232, 232, 234}
	for i, want := range first {
		if got := Classify(bmp.At(i)); got != want {
			t.Errorf("pixel %d in bucket %d, want %d", i, got, want)
		}
	}
	for i, want := range last {
		if got := Classify(bmp.At(990 + i)); got != want {
			t.Errorf("pixel %d in bucket %d, want %d", 990+i, got, want)
		}
	}

	store := NewStore()
	seq, _ := NewStrategy(Sequential, DirectIncrement)
	seq.Apply(store, bmp, Block{0, bmp.Len()})
	h := store.Snapshot()

	if h.Total() != 1000 {
		t.Errorf("Total() = %d, want 1000", h.Total())
	}
	wantLow := []uint64{4, 4, 4, 4, 8, 0, 8, 0, 4, 8}
	wantHigh := []uint64{4, 8, 0, 4, 8, 0, 4, 8, 0, 4}
	for i, want := range wantLow {
		if h[i] != want {
			t.Errorf("bucket %d = %d, want %d", i, h[i], want)
		}
	}
	for i, want := range wantHigh {
		if h[225+i] != want {
			t.Errorf("bucket %d = %d, want %d", 225+i, h[225+i], want)
		}
	}
}

func TestNewStrategy(t *testing.T) {
	for _, k := range Kinds {
		st, err := NewStrategy(k, DefaultFamily(k))
		if !Supported(k) {
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("NewStrategy(%s) error = %v, want ErrUnsupported", k, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewStrategy(%s): %v", k, err)
		}
		if st.Kind() != k || st.Family() != DefaultFamily(k) {
			t.Errorf("NewStrategy(%s) = %s/%s", k, st.Kind(), st.Family())
		}
	}

	if _, err := NewStrategy(Kind(42), DirectIncrement); err == nil {
		t.Error("NewStrategy(Kind(42)) succeeded")
	}
	if _, err := NewStrategy(Atomic, Family(7)); err == nil {
		t.Error("NewStrategy(Atomic, Family(7)) succeeded")
	}
}

func TestAvailable(t *testing.T) {
	got := Available()
	if len(got) < 3 || got[0] != Sequential {
		t.Fatalf("Available() = %v, want Sequential first and at least 3 kinds", got)
	}
	for _, k := range got {
		if !Supported(k) {
			t.Errorf("Available() includes unsupported %s", k)
		}
	}
	if Supported(Kind(-1)) {
		t.Error("Supported(Kind(-1)) = true")
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"sequential":    Sequential,
		"seq":           Sequential,
		"Mutex":         Locking,
		"locking":       Locking,
		"atomic":        Atomic,
		" tm ":          Transactional,
		"transactional": Transactional,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseKind("spinlock"); err == nil {
		t.Error("ParseKind(spinlock) succeeded")
	}
	for _, k := range Kinds {
		if got, err := ParseKind(k.String()); err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
}

func TestParseFamily(t *testing.T) {
	for _, f := range []Family{DirectIncrement, LocalAggregate} {
		if got, err := ParseFamily(f.String()); err != nil || got != f {
			t.Errorf("ParseFamily(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseFamily("batched"); err == nil {
		t.Error("ParseFamily(batched) succeeded")
	}
}

func BenchmarkStrategies(b *testing.B) {
	bmp, err := bitmap.New(1 << 20)
	if err != nil {
		b.Fatal(err)
	}
	for _, k := range Available() {
		for _, f := range []Family{DirectIncrement, LocalAggregate} {
			st, err := NewStrategy(k, f)
			if err != nil {
				b.Fatal(err)
			}
			workers := ResolveWorkers(bmp.Len(), 8)
			if !k.Parallel() {
				workers = 1
			}
			b.Run(fmt.Sprintf("%s/%s", k, f), func(b *testing.B) {
				store := NewStore()
				for b.Loop() {
					store.Reset()
					runParallel(st, store, bmp, workers)
				}
			})
		}
	}
}
