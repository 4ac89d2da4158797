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
	"fmt"

	"github.com/ajroetker/go-lumahist/hist/contrib/htm"
)

// transactional publishes each update inside a hardware transaction. All
// buckets of a store share one elision region, so the fallback path
// behaves like a global lock around the increment.
type transactional struct {
	family Family
	region *htm.Region
}

func newTransactional(family Family) (Strategy, error) {
	if !htm.Supported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, Transactional)
	}
	return &transactional{family: family, region: htm.NewRegion()}, nil
}

func (*transactional) Kind() Kind { return Transactional }
func (t *transactional) Family() Family { return t.family }

func (t *transactional) Apply(store *Store, src Source, b Block) {
	visit(t.family, src, b, func(bucket int, n uint64) {
		t.region.Add(store.counter(bucket), n)
	})
}

// HTMStats returns the abort and fallback counts of the strategy's region.
func (t *transactional) HTMStats() htm.Stats {
	return t.region.Stats()
}
