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
package sigset

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// signalTsvRow is a single row of a signal TSV file.
type signalTsvRow struct {
	Probe  string  `tsv:"Probe"`  // Probe name
	Design string  `tsv:"Design"` // IR, IG or II
	M      float64 `tsv:"M"`      // Methylated intensity
	U      float64 `tsv:"U"`      // Unmethylated intensity
}

// negControlTsvRow is a single row of a negative-control TSV file.
type negControlTsvRow struct {
	G float64 `tsv:"G"` // Green channel
	R float64 `tsv:"R"` // Red channel
}

// oobTsvRow is a single row of an out-of-band TSV file.
type oobTsvRow struct {
	Channel string  `tsv:"Channel"` // G or R
	Value   float64 `tsv:"Value"`
}

func newTsvReader(r io.Reader) *tsv.Reader {
	reader := tsv.NewReader(r)
	reader.HasHeaderRow = true
	reader.UseHeaderNames = true
	reader.Comment = '#'
	return reader
}

// ReadSignalTSV reads a signal TSV with columns Probe, Design, M and U, and
// returns the IR, IG and II matrices in file order.
func ReadSignalTSV(r io.Reader) (ir, ig, ii *Matrix, err error) {
	var mats [len(Designs)]Matrix
	reader := newTsvReader(r)
	for line := 2; ; line++ {
		var row signalTsvRow
		if err = reader.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, nil, errors.Wrapf(err, "signal row %d", line)
		}
		d, err := ParseDesign(row.Design)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "signal row %d (probe %s)", line, row.Probe)
		}
		m := &mats[d]
		m.Probes = append(m.Probes, row.Probe)
		m.M = append(m.M, row.M)
		m.U = append(m.U, row.U)
	}
	return &mats[IR], &mats[IG], &mats[II], nil
}

// ReadNegControlsTSV reads a negative-control TSV with columns G and R.
func ReadNegControlsTSV(r io.Reader) (*NegControls, error) {
	neg := &NegControls{}
	reader := newTsvReader(r)
	for line := 2; ; line++ {
		var row negControlTsvRow
		if err := reader.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "negative control row %d", line)
		}
		neg.G = append(neg.G, row.G)
		neg.R = append(neg.R, row.R)
	}
	return neg, nil
}

// ReadOOBTSV reads an out-of-band TSV with columns Channel (G or R) and
// Value.  The two channels may have different lengths.
func ReadOOBTSV(r io.Reader) (*OOB, error) {
	oob := &OOB{}
	reader := newTsvReader(r)
	for line := 2; ; line++ {
		var row oobTsvRow
		if err := reader.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "out-of-band row %d", line)
		}
		switch row.Channel {
		case "G":
			oob.G = append(oob.G, row.Value)
		case "R":
			oob.R = append(oob.R, row.Value)
		default:
			return nil, errors.Errorf("out-of-band row %d: unknown channel %q", line, row.Channel)
		}
	}
	return oob, nil
}

// WritePvalsTSV writes p as a TSV with columns Probe and Pval.
func WritePvalsTSV(p *Pvals, w io.Writer) (err error) {
	outTSV := tsv.NewWriter(w)
	outTSV.WriteString("Probe\tPval")
	if err = outTSV.EndLine(); err != nil {
		return
	}
	for i := 0; i < p.Len(); i++ {
		outTSV.WriteString(p.Probes[i])
		outTSV.WriteString(strconv.FormatFloat(p.P[i], 'g', -1, 64))
		if err = outTSV.EndLine(); err != nil {
			return
		}
	}
	return outTSV.Flush()
}

// Paths names the files a signal set is loaded from.  Neg and OOB are
// optional.  Paths ending in ".gz" are gunzipped.
type Paths struct {
	Signal string
	Neg    string
	OOB    string
}

// Load reads a signal set from the given paths.  The set is named after
// the signal path.
func Load(ctx context.Context, paths Paths) (*SigSet, error) {
	ss := &SigSet{Name: paths.Signal}
	err := readFile(ctx, paths.Signal, func(r io.Reader) (err error) {
		ss.IR, ss.IG, ss.II, err = ReadSignalTSV(r)
		return
	})
	if err != nil {
		return nil, err
	}
	if paths.Neg != "" {
		if err = readFile(ctx, paths.Neg, func(r io.Reader) (err error) {
			ss.Neg, err = ReadNegControlsTSV(r)
			return
		}); err != nil {
			return nil, err
		}
	}
	if paths.OOB != "" {
		if err = readFile(ctx, paths.OOB, func(r io.Reader) (err error) {
			ss.OOB, err = ReadOOBTSV(r)
			return
		}); err != nil {
			return nil, err
		}
	}
	log.Debug.Printf("%s: loaded %d IR, %d IG, %d II probes", ss.Name, ss.IR.Len(), ss.IG.Len(), ss.II.Len())
	if err = ss.Validate(); err != nil {
		return nil, err
	}
	return ss, nil
}

// WritePvals writes p to path, gzipped if path ends in ".gz".
func WritePvals(ctx context.Context, path string, p *Pvals) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if !strings.HasSuffix(path, ".gz") {
		return WritePvalsTSV(p, out.Writer(ctx))
	}
	gz := gzip.NewWriter(out.Writer(ctx))
	if err = WritePvalsTSV(p, gz); err != nil {
		return err
	}
	return gz.Close()
}

func readFile(ctx context.Context, path string, fn func(r io.Reader) error) (err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	var r io.Reader = in.Reader(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return errors.Wrapf(err, "gunzip %s", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	if err = fn(r); err != nil {
		return errors.Wrap(err, path)
	}
	return nil
}
