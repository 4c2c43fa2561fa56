// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package detection

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/methyl/sigset"
)

// byProbe sorts a Pvals by probe name.
type byProbe sigset.Pvals

func (b *byProbe) Len() int           { return len(b.Probes) }
func (b *byProbe) Less(i, j int) bool { return b.Probes[i] < b.Probes[j] }
func (b *byProbe) Swap(i, j int) {
	b.Probes[i], b.Probes[j] = b.Probes[j], b.Probes[i]
	b.P[i], b.P[j] = b.P[j], b.P[i]
}

// merge concatenates the per-design p-values, labeled by the probe names of
// the corresponding matrices, and sorts the result by probe name.  A probe
// name that occurs more than once is an error.
func merge(ss *sigset.SigSet, parts [len(sigset.Designs)][]float64) (*sigset.Pvals, error) {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	pv := &sigset.Pvals{
		Probes: make([]string, 0, n),
		P:      make([]float64, 0, n),
	}
	for i, d := range sigset.Designs {
		if len(parts[i]) == 0 {
			continue
		}
		pv.Probes = append(pv.Probes, ss.Matrix(d).Probes...)
		pv.P = append(pv.P, parts[i]...)
	}
	sort.Stable((*byProbe)(pv))
	for i := 1; i < len(pv.Probes); i++ {
		if pv.Probes[i] == pv.Probes[i-1] {
			return nil, errors.E(errors.Integrity,
				fmt.Sprintf("%s: probe %s appears more than once", ss.Name, pv.Probes[i]))
		}
	}
	return pv, nil
}
