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

// Package sigset holds the per-sample signal set of an Infinium methylation
// array: the (M, U) intensities of every probe, grouped by design type, plus
// the background references that detection p-values are computed against.
//
// A SigSet is treated as an immutable value.  Computations that produce new
// per-probe data (e.g. detection p-values) return a copy via WithPval rather
// than modifying the receiver.
package sigset

import (
	"fmt"
	"math"
	"sort"

	"github.com/grailbio/base/errors"
)

// Design is an Infinium probe design type.  It determines which fluorescence
// channel carries the methylated (M) and unmethylated (U) signal.
type Design uint8

const (
	// IR is Infinium-I, red channel: M and U are both read from Red.
	IR Design = iota
	// IG is Infinium-I, green channel: M and U are both read from Green.
	IG
	// II is Infinium-II: M is read from Green and U from Red.
	II
)

// Designs lists the design types in canonical order.
var Designs = [...]Design{IR, IG, II}

var designNames = [...]string{"IR", "IG", "II"}

func (d Design) String() string {
	if int(d) < len(designNames) {
		return designNames[d]
	}
	return fmt.Sprintf("Design(%d)", d)
}

// ParseDesign parses "IR", "IG" or "II".
func ParseDesign(s string) (Design, error) {
	for i, name := range designNames {
		if s == name {
			return Design(i), nil
		}
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown design type %q", s))
}

// Matrix is a two-column (M, U) intensity matrix whose rows are labeled by
// probe name.  Probes, M and U have the same length.
type Matrix struct {
	Probes []string
	M      []float64
	U      []float64
}

// Len returns the number of rows.  A nil matrix has zero rows.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Probes)
}

// Row returns the probe name and the (M, U) pair of row i.
func (m *Matrix) Row(i int) (probe string, mVal, uVal float64) {
	return m.Probes[i], m.M[i], m.U[i]
}

// NegControls holds the two channels of the negative-control probes.
type NegControls struct {
	G []float64
	R []float64
}

// OOB holds the out-of-band signal of each channel.
type OOB struct {
	G []float64
	R []float64
}

// Pvals is a probe-labeled p-value vector, sorted ascending by probe name.
type Pvals struct {
	Probes []string
	P      []float64
}

// Len returns the number of probes.
func (p *Pvals) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Probes)
}

// Get returns the p-value of the given probe.
func (p *Pvals) Get(probe string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	i := sort.SearchStrings(p.Probes, probe)
	if i < len(p.Probes) && p.Probes[i] == probe {
		return p.P[i], true
	}
	return 0, false
}

// FractionBelow returns the fraction of probes whose p-value is strictly
// below the threshold, or 0 for an empty vector.
func (p *Pvals) FractionBelow(threshold float64) float64 {
	if p.Len() == 0 {
		return 0
	}
	n := 0
	for _, v := range p.P {
		if v < threshold {
			n++
		}
	}
	return float64(n) / float64(len(p.P))
}

// SigSet is the signal set of one sample.
type SigSet struct {
	Name string

	IR *Matrix
	IG *Matrix
	II *Matrix

	// Background references.  Either may be nil; estimators that need a
	// missing reference fail.
	Neg *NegControls
	OOB *OOB

	// Pval is nil until a detection estimator populates it.
	Pval *Pvals
}

// Matrix returns the matrix of the given design type.
func (s *SigSet) Matrix(d Design) *Matrix {
	switch d {
	case IR:
		return s.IR
	case IG:
		return s.IG
	case II:
		return s.II
	}
	panic(d)
}

// NumProbes returns the total number of probes across the three design types.
func (s *SigSet) NumProbes() int {
	return s.IR.Len() + s.IG.Len() + s.II.Len()
}

// WithPval returns a shallow copy of s with the p-value slot set to p.
func (s *SigSet) WithPval(p *Pvals) *SigSet {
	c := *s
	c.Pval = p
	return &c
}

// Validate checks that s is a well-formed signal set: every matrix has
// equal-length columns and all intensities are finite and non-negative.
// Probe uniqueness across design types is checked when results are merged.
func (s *SigSet) Validate() error {
	if s == nil {
		return errors.E(errors.Invalid, "nil signal set")
	}
	for _, d := range Designs {
		m := s.Matrix(d)
		if m == nil {
			continue
		}
		if len(m.M) != len(m.Probes) || len(m.U) != len(m.Probes) {
			return errors.E(errors.Invalid, fmt.Sprintf("%s: %s matrix has %d probes, %d M values, %d U values",
				s.Name, d, len(m.Probes), len(m.M), len(m.U)))
		}
		for i := range m.Probes {
			if !validIntensity(m.M[i]) || !validIntensity(m.U[i]) {
				return errors.E(errors.Invalid, fmt.Sprintf("%s: probe %s has invalid intensity (M=%v, U=%v)",
					s.Name, m.Probes[i], m.M[i], m.U[i]))
			}
		}
	}
	if s.Neg != nil {
		if err := checkIntensities(s.Name, "negative control G", s.Neg.G); err != nil {
			return err
		}
		if err := checkIntensities(s.Name, "negative control R", s.Neg.R); err != nil {
			return err
		}
	}
	if s.OOB != nil {
		if err := checkIntensities(s.Name, "out-of-band G", s.OOB.G); err != nil {
			return err
		}
		if err := checkIntensities(s.Name, "out-of-band R", s.OOB.R); err != nil {
			return err
		}
	}
	return nil
}

func validIntensity(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func checkIntensities(name, what string, vals []float64) error {
	for i, v := range vals {
		if !validIntensity(v) {
			return errors.E(errors.Invalid, fmt.Sprintf("%s: %s value %d is invalid: %v", name, what, i, v))
		}
	}
	return nil
}
