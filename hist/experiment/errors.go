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
	"errors"
	"fmt"

	"github.com/ajroetker/go-lumahist/hist"
)

// RunError reports that a run failed inside one of its workers.
type RunError struct {
	Kind hist.Kind
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("experiment: %s run failed: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// MismatchError reports a histogram that differs from the sequential
// reference, which means the strategy's synchronization is broken.
type MismatchError struct {
	Kind hist.Kind
	// Diff is the reference-to-result diff (-want +got).
	Diff string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("experiment: %s histogram differs from sequential reference (-want +got):\n%s", e.Kind, e.Diff)
}

// IsMismatch reports whether err contains a *MismatchError.
func IsMismatch(err error) bool {
	var me *MismatchError
	return errors.As(err, &me)
}
