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

	"github.com/ajroetker/go-lumahist/hist"
	"github.com/ajroetker/go-lumahist/hist/bitmap"
)

// Sweep synthesizes one bitmap per size and runs Compare over each. It
// keeps going after a failed size; the reports of the sizes that ran are
// returned together with the joined error.
func Sweep(ctx context.Context, sizes []int, kinds []hist.Kind, opts ...Option) ([]*Report, error) {
	var (
		reports []*Report
		errs    []error
	)
	for _, n := range sizes {
		if err := ctx.Err(); err != nil {
			return reports, errors.Join(append(errs, err)...)
		}
		bmp, err := bitmap.New(n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report, err := New(bmp, opts...).Compare(ctx, kinds...)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("size %d: %w", n, err))
		}
	}
	return reports, errors.Join(errs...)
}
