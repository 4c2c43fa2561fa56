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
	"sort"

	"github.com/grailbio/base/errors"
)

// ECDF is the empirical cumulative distribution function of a sample:
// Eval(x) is the fraction of sample values <= x.
type ECDF struct {
	sorted []float64
}

// NewECDF builds the ECDF of vals.  vals is not modified.  It is an error for
// vals to be empty.
func NewECDF(vals []float64) (*ECDF, error) {
	if len(vals) == 0 {
		return nil, errors.E(errors.Precondition, "empty background reference")
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	return &ECDF{sorted: sorted}, nil
}

// Eval returns F(x).  Queries below the smallest sample value give 0 and
// queries at or above the largest give 1.
func (e *ECDF) Eval(x float64) float64 {
	n := len(e.sorted)
	// Number of sample values <= x.
	rank := sort.Search(n, func(i int) bool { return e.sorted[i] > x })
	return float64(rank) / float64(n)
}

// Len returns the sample size.
func (e *ECDF) Len() int { return len(e.sorted) }
