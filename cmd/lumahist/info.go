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

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"unsafe"

	"github.com/klauspost/cpuid/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"

	"github.com/ajroetker/go-lumahist/hist"
	"github.com/ajroetker/go-lumahist/hist/contrib/htm"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the CPU features and strategies available on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "cpu\t%s\n", cpuid.CPU.BrandName)
			fmt.Fprintf(tw, "cpus\t%d\n", availableCPUs())
			fmt.Fprintf(tw, "cache line\t%d bytes\n", unsafe.Sizeof(cpu.CacheLinePad{}))
			fmt.Fprintf(tw, "htm\t%s\n", htmStatus())
			names := lo.Map(hist.Available(), func(k hist.Kind, _ int) string {
				return k.String()
			})
			fmt.Fprintf(tw, "strategies\t%s\n", strings.Join(names, ", "))
			return tw.Flush()
		},
	}
}

func htmStatus() string {
	switch {
	case htm.Supported():
		return "supported"
	case htm.NoHTMEnv():
		return "disabled by LUMAHIST_NO_HTM"
	case cpuid.CPU.Supports(cpuid.RTM_ALWAYS_ABORT):
		return "disabled by microcode (RTM always aborts)"
	default:
		return "unsupported"
	}
}
