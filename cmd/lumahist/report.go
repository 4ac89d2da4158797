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
	"io"
	"strings"
	"text/tabwriter"
	"unsafe"

	"github.com/dustin/go-humanize"

	"github.com/ajroetker/go-lumahist/hist"
	"github.com/ajroetker/go-lumahist/hist/bitmap"
	"github.com/ajroetker/go-lumahist/hist/experiment"
)

// writeReport prints a table of the runs for one bitmap.
func writeReport(w io.Writer, r *experiment.Report) {
	fmt.Fprintf(w, "bitmap: %s pixels (%s)\n",
		humanize.Comma(int64(r.Size)), humanize.Bytes(uint64(r.Size)*uint64(unsafe.Sizeof(bitmap.Pixel{}))))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tFAMILY\tWORKERS\tELAPSED")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", res.Kind, res.Family, res.Workers, res.Elapsed)
	}
	tw.Flush()
}

// writeRaw prints "size t1 t2 ..." with one elapsed time in seconds per
// requested kind, in request order. Kinds that failed print "-".
func writeRaw(w io.Writer, r *experiment.Report, kinds []hist.Kind) {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", r.Size)
	for _, k := range rawOrder(kinds) {
		if res, ok := r.Result(k); ok {
			fmt.Fprintf(&b, " %g", res.Elapsed.Seconds())
		} else {
			b.WriteString(" -")
		}
	}
	fmt.Fprintln(w, b.String())
}

// rawOrder puts Sequential first, since it always runs as the reference.
func rawOrder(kinds []hist.Kind) []hist.Kind {
	out := []hist.Kind{hist.Sequential}
	for _, k := range kinds {
		if k != hist.Sequential {
			out = append(out, k)
		}
	}
	return out
}

func writeHistogram(w io.Writer, h hist.Histogram) {
	var b strings.Builder
	b.WriteString("Histogram:")
	for _, n := range h {
		fmt.Fprintf(&b, " %d", n)
	}
	fmt.Fprintln(w, b.String())
}
