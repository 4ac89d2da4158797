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

// Command lumahist compares luminance histogram strategies on a synthetic
// bitmap.
//
// Usage:
//
//	lumahist --bitmap-size 10000000 --nthreads 8
//	lumahist --bitmap-size 1000 --print-histogram
//	lumahist --config sweep.toml --raw
//	lumahist info
//
// Every strategy runs on the same bitmap and its histogram is checked
// against the sequential reference. A mismatch exits with status 2; any
// other failure exits with status 1.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ajroetker/go-lumahist/hist/experiment"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if experiment.IsMismatch(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
