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
	"github.com/samber/lo"

	"github.com/ajroetker/go-lumahist/hist/contrib/htm"
)

// Supported reports whether NewStrategy can build kind on this machine.
func Supported(kind Kind) bool {
	if kind == Transactional {
		return htm.Supported()
	}
	return kind >= Sequential && kind <= Transactional
}

// Available returns the supported kinds in run order.
func Available() []Kind {
	return lo.Filter(Kinds, func(k Kind, _ int) bool {
		return Supported(k)
	})
}
