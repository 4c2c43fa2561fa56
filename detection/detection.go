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
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/methyl/sigset"
)

// Method selects a detection p-value estimator.
type Method uint8

const (
	// NegECDF scores against the empirical CDF of each negative-control
	// channel.
	NegECDF Method = iota
	// NegNormal scores against a per-channel normal fit of the negative
	// controls.
	NegNormal
	// NegNormalGS scores M+U against one normal fit of both negative-control
	// channels pooled.  It is a best-effort emulation of GenomeStudio.
	NegNormalGS
	// NegNormalSum scores M+U against the per-channel normal fits with
	// location and scale summed over the two allele channels.
	NegNormalSum
	// OOBECDF scores against the empirical CDF of each out-of-band channel.
	OOBECDF
)

// Methods lists all estimators.
var Methods = [...]Method{NegECDF, NegNormal, NegNormalGS, NegNormalSum, OOBECDF}

var methodInfo = [...]struct {
	name string
	fit  func(*sigset.SigSet) (model, error)
}{
	NegECDF:      {"negecdf", fitNegECDF},
	NegNormal:    {"negnorm", fitNegNormal},
	NegNormalGS:  {"negnormgs", fitNegNormalGS},
	NegNormalSum: {"negnormsum", fitNegNormalSum},
	OOBECDF:      {"oobecdf", fitOOBECDF},
}

func (m Method) String() string {
	if int(m) < len(methodInfo) {
		return methodInfo[m].name
	}
	return fmt.Sprintf("Method(%d)", m)
}

// ParseMethod parses a method name as returned by Method.String.  Matching
// is case-insensitive.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown detection method %q", s))
}

// Opts controls how estimators run.
type Opts struct {
	// Parallelism bounds the number of design types scored concurrently.
	// 0 scores all of them at once.
	Parallelism int
}

// DefaultOpts is used when Compute is passed nil options.
var DefaultOpts = Opts{
	Parallelism: 0,
}

// PnegECDF computes detection p-values with the NegECDF estimator.
func PnegECDF(ss *sigset.SigSet) (*sigset.SigSet, error) { return Compute(ss, NegECDF, nil) }

// PnegNormal computes detection p-values with the NegNormal estimator.
func PnegNormal(ss *sigset.SigSet) (*sigset.SigSet, error) { return Compute(ss, NegNormal, nil) }

// PnegNormalGS computes detection p-values with the NegNormalGS estimator.
func PnegNormalGS(ss *sigset.SigSet) (*sigset.SigSet, error) { return Compute(ss, NegNormalGS, nil) }

// PnegNormalSum computes detection p-values with the NegNormalSum estimator.
func PnegNormalSum(ss *sigset.SigSet) (*sigset.SigSet, error) { return Compute(ss, NegNormalSum, nil) }

// POOBECDF computes detection p-values with the OOBECDF estimator.
func POOBECDF(ss *sigset.SigSet) (*sigset.SigSet, error) { return Compute(ss, OOBECDF, nil) }

// Compute returns a copy of ss whose p-value slot holds one detection
// p-value per probe, sorted by probe name.  The background model is fitted
// once and shared by the three design types.  On error no p-values are
// returned.
//
// Errors:
//   errors.Invalid       ss is nil or malformed
//   errors.Precondition  the background reference the method needs is
//                        missing or too small to fit
//   errors.Integrity     a probe name appears in more than one design type
func Compute(ss *sigset.SigSet, method Method, opts *Opts) (*sigset.SigSet, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if int(method) >= len(methodInfo) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("unknown detection method %d", method))
	}
	if err := ss.Validate(); err != nil {
		return nil, err
	}
	bg, err := methodInfo[method].fit(ss)
	if err != nil {
		return nil, err
	}
	log.Debug.Printf("%s: %s background %v", ss.Name, method, bg)

	var parts [len(sigset.Designs)][]float64
	scoreOne := func(i int) error {
		d := sigset.Designs[i]
		if mat := ss.Matrix(d); mat.Len() > 0 {
			parts[i] = bg.score(d, mat)
		}
		return nil
	}
	if opts.Parallelism > 0 {
		err = traverse.Limit(opts.Parallelism).Each(len(parts), scoreOne)
	} else {
		err = traverse.Each(len(parts), scoreOne)
	}
	if err != nil {
		return nil, err
	}
	pv, err := merge(ss, parts)
	if err != nil {
		return nil, err
	}
	log.Debug.Printf("%s: %s scored %d probes", ss.Name, method, pv.Len())
	return ss.WithPval(pv), nil
}
