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

	"github.com/grailbio/base/errors"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Normal is a fitted normal background: location Mu and scale Sigma.
type Normal struct {
	Mu    float64
	Sigma float64
}

// Survival returns 1 - Phi(x; Mu, Sigma), the upper-tail probability of x.
// A zero Sigma is a point mass at Mu.
func (n Normal) Survival(x float64) float64 {
	if n.Sigma == 0 {
		if x >= n.Mu {
			return 0
		}
		return 1
	}
	return distuv.Normal{Mu: n.Mu, Sigma: n.Sigma}.Survival(x)
}

// Sum returns the background of the sum of a channel with background n and
// a channel with background o, with locations and scales added.
func (n Normal) Sum(o Normal) Normal {
	return Normal{Mu: n.Mu + o.Mu, Sigma: n.Sigma + o.Sigma}
}

func (n Normal) String() string {
	return fmt.Sprintf("N(%.4g, %.4g)", n.Mu, n.Sigma)
}

// requireSpread checks that vals has enough points for a standard deviation.
func requireSpread(what string, vals []float64) error {
	if len(vals) < 2 {
		return errors.E(errors.Precondition,
			fmt.Sprintf("insufficient background: %s has %d value(s), need at least 2", what, len(vals)))
	}
	return nil
}

// fitChannelNormal fits one channel: location is the median, scale the
// sample standard deviation.
func fitChannelNormal(what string, vals []float64) (Normal, error) {
	if err := requireSpread(what, vals); err != nil {
		return Normal{}, err
	}
	mu, err := stats.Median(vals)
	if err != nil {
		return Normal{}, errors.E(err, what)
	}
	sigma, err := stats.StandardDeviationSample(vals)
	if err != nil {
		return Normal{}, errors.E(err, what)
	}
	return Normal{Mu: mu, Sigma: sigma}, nil
}

// fitPooledNormal fits the union of g and r: location is the mean, scale
// the sample standard deviation.  Each channel must on its own have enough
// points for a standard deviation.
func fitPooledNormal(g, r []float64) (Normal, error) {
	if err := requireSpread("negative control G", g); err != nil {
		return Normal{}, err
	}
	if err := requireSpread("negative control R", r); err != nil {
		return Normal{}, err
	}
	pooled := make([]float64, 0, len(g)+len(r))
	pooled = append(pooled, g...)
	pooled = append(pooled, r...)
	mu, err := stats.Mean(pooled)
	if err != nil {
		return Normal{}, err
	}
	sigma, err := stats.StandardDeviationSample(pooled)
	if err != nil {
		return Normal{}, err
	}
	return Normal{Mu: mu, Sigma: sigma}, nil
}
