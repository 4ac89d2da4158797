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

//go:build amd64

package htm

import "github.com/klauspost/cpuid/v2"

func init() {
	if NoHTMEnv() {
		return
	}
	// Microcode updates that disable TSX keep the RTM bit but make every
	// transaction abort; treat those parts as unsupported.
	supported = cpuid.CPU.Supports(cpuid.RTM) && !cpuid.CPU.Supports(cpuid.RTM_ALWAYS_ABORT)
}

// xadd runs *addr += delta inside an RTM transaction that also reads
// *lock. It returns statusCommitted or the abort status from EAX.
//
//go:noescape
func xadd(addr *uint64, delta uint64, lock *uint32) uint32
