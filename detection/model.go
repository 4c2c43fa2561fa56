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
	"math"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/methyl/sigset"
)

// channel is a fluorescence channel.
type channel uint8

const (
	green channel = iota
	red
)

// alleleChannels returns the channels carrying the M and U alleles of the
// given design type.
func alleleChannels(d sigset.Design) (m, u channel) {
	switch d {
	case sigset.IR:
		return red, red
	case sigset.IG:
		return green, green
	case sigset.II:
		return green, red
	}
	panic(d)
}

// model is a fitted background.  score returns one p-value per row of mat,
// in row order.
type model interface {
	score(d sigset.Design, mat *sigset.Matrix) []float64
	String() string
}

// ecdfModel scores each allele against the ECDF of its channel and keeps
// the better of the two.
type ecdfModel struct {
	ch [2]*ECDF // indexed by channel
}

func fitECDFModel(what string, g, r []float64) (model, error) {
	fg, err := NewECDF(g)
	if err != nil {
		return nil, errors.E(err, what, "G")
	}
	fr, err := NewECDF(r)
	if err != nil {
		return nil, errors.E(err, what, "R")
	}
	return &ecdfModel{ch: [2]*ECDF{green: fg, red: fr}}, nil
}

func (e *ecdfModel) String() string {
	return fmt.Sprintf("ECDF(G: %d values, R: %d values)", e.ch[green].Len(), e.ch[red].Len())
}

func (e *ecdfModel) score(d sigset.Design, mat *sigset.Matrix) []float64 {
	mCh, uCh := alleleChannels(d)
	fm, fu := e.ch[mCh], e.ch[uCh]
	p := make([]float64, mat.Len())
	for i := range p {
		p[i] = 1 - math.Max(fm.Eval(mat.M[i]), fu.Eval(mat.U[i]))
	}
	return p
}

// normalModel scores against a per-channel normal fit.  Infinium-I probes
// compare the larger allele to their single channel; Infinium-II probes
// take the better of the two channel-specific tail probabilities.
type normalModel struct {
	ch [2]Normal
}

func (n *normalModel) String() string {
	return fmt.Sprintf("G=%v R=%v", n.ch[green], n.ch[red])
}

func (n *normalModel) score(d sigset.Design, mat *sigset.Matrix) []float64 {
	mCh, uCh := alleleChannels(d)
	p := make([]float64, mat.Len())
	for i := range p {
		if mCh == uCh {
			p[i] = n.ch[mCh].Survival(math.Max(mat.M[i], mat.U[i]))
		} else {
			p[i] = math.Min(n.ch[mCh].Survival(mat.M[i]), n.ch[uCh].Survival(mat.U[i]))
		}
	}
	return p
}

// pooledModel scores the total signal M+U against one background shared by
// all design types.
type pooledModel struct {
	bg Normal
}

func (pm *pooledModel) String() string { return "pooled=" + pm.bg.String() }

func (pm *pooledModel) score(_ sigset.Design, mat *sigset.Matrix) []float64 {
	return scoreTotal(pm.bg, mat)
}

// sumModel scores the total signal M+U against the sum of the two allele
// channels' backgrounds.
type sumModel struct {
	ch [2]Normal
}

func (s *sumModel) String() string {
	return fmt.Sprintf("G=%v R=%v (summed)", s.ch[green], s.ch[red])
}

func (s *sumModel) score(d sigset.Design, mat *sigset.Matrix) []float64 {
	mCh, uCh := alleleChannels(d)
	return scoreTotal(s.ch[mCh].Sum(s.ch[uCh]), mat)
}

func scoreTotal(bg Normal, mat *sigset.Matrix) []float64 {
	p := make([]float64, mat.Len())
	for i := range p {
		p[i] = bg.Survival(mat.M[i] + mat.U[i])
	}
	return p
}

func fitNegECDF(ss *sigset.SigSet) (model, error) {
	if ss.Neg == nil {
		return nil, errors.E(errors.Precondition, ss.Name, "no negative controls")
	}
	return fitECDFModel("negative control", ss.Neg.G, ss.Neg.R)
}

func fitOOBECDF(ss *sigset.SigSet) (model, error) {
	if ss.OOB == nil {
		return nil, errors.E(errors.Precondition, ss.Name, "no out-of-band signal")
	}
	return fitECDFModel("out-of-band", ss.OOB.G, ss.OOB.R)
}

func fitNegChannels(ss *sigset.SigSet) ([2]Normal, error) {
	var ch [2]Normal
	if ss.Neg == nil {
		return ch, errors.E(errors.Precondition, ss.Name, "no negative controls")
	}
	var err error
	if ch[green], err = fitChannelNormal("negative control G", ss.Neg.G); err != nil {
		return ch, err
	}
	if ch[red], err = fitChannelNormal("negative control R", ss.Neg.R); err != nil {
		return ch, err
	}
	return ch, nil
}

func fitNegNormal(ss *sigset.SigSet) (model, error) {
	ch, err := fitNegChannels(ss)
	if err != nil {
		return nil, err
	}
	return &normalModel{ch: ch}, nil
}

func fitNegNormalSum(ss *sigset.SigSet) (model, error) {
	ch, err := fitNegChannels(ss)
	if err != nil {
		return nil, err
	}
	return &sumModel{ch: ch}, nil
}

func fitNegNormalGS(ss *sigset.SigSet) (model, error) {
	if ss.Neg == nil {
		return nil, errors.E(errors.Precondition, ss.Name, "no negative controls")
	}
	bg, err := fitPooledNormal(ss.Neg.G, ss.Neg.R)
	if err != nil {
		return nil, err
	}
	return &pooledModel{bg: bg}, nil
}
