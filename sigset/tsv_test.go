package sigset_test

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/methyl/sigset"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

const signalTSV = `Probe	Design	M	U
cg03	IR	50	5
cg01	IG	3.5	4
rs01	II	100	20
cg02	IR	7	8
`

const negTSV = `G	R
10	8
12	9
11	7
`

const oobTSV = `Channel	Value
G	1
R	2
G	3.25
`

func TestReadSignalTSV(t *testing.T) {
	ir, ig, ii, err := sigset.ReadSignalTSV(strings.NewReader(signalTSV))
	assert.NoError(t, err)
	expect.EQ(t, *ir, sigset.Matrix{Probes: []string{"cg03", "cg02"}, M: []float64{50, 7}, U: []float64{5, 8}})
	expect.EQ(t, *ig, sigset.Matrix{Probes: []string{"cg01"}, M: []float64{3.5}, U: []float64{4}})
	expect.EQ(t, *ii, sigset.Matrix{Probes: []string{"rs01"}, M: []float64{100}, U: []float64{20}})

	_, _, _, err = sigset.ReadSignalTSV(strings.NewReader("Probe\tDesign\tM\tU\ncg01\tIX\t1\t2\n"))
	assert.HasSubstr(t, err.Error(), "IX")
	_, _, _, err = sigset.ReadSignalTSV(strings.NewReader("Probe\tDesign\tM\tU\ncg01\tIR\tabc\t2\n"))
	expect.NotNil(t, err)
}

func TestReadBackgroundTSV(t *testing.T) {
	neg, err := sigset.ReadNegControlsTSV(strings.NewReader(negTSV))
	assert.NoError(t, err)
	expect.EQ(t, *neg, sigset.NegControls{G: []float64{10, 12, 11}, R: []float64{8, 9, 7}})

	oob, err := sigset.ReadOOBTSV(strings.NewReader(oobTSV))
	assert.NoError(t, err)
	expect.EQ(t, *oob, sigset.OOB{G: []float64{1, 3.25}, R: []float64{2}})

	_, err = sigset.ReadOOBTSV(strings.NewReader("Channel\tValue\nB\t1\n"))
	assert.HasSubstr(t, err.Error(), "unknown channel")
}

func TestWritePvalsTSV(t *testing.T) {
	var buf bytes.Buffer
	p := &sigset.Pvals{Probes: []string{"cg01", "cg02"}, P: []float64{0.25, 1e-20}}
	assert.NoError(t, sigset.WritePvalsTSV(p, &buf))
	expect.EQ(t, buf.String(), "Probe\tPval\ncg01\t0.25\ncg02\t1e-20\n")
}

func writeGzip(t *testing.T, path, data string) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(data))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	assert.NoError(t, ioutil.WriteFile(path, buf.Bytes(), 0644))
}

func TestLoad(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	signalPath := filepath.Join(tmpdir, "signal.tsv.gz")
	negPath := filepath.Join(tmpdir, "neg.tsv")
	oobPath := filepath.Join(tmpdir, "oob.tsv")
	writeGzip(t, signalPath, signalTSV)
	assert.NoError(t, ioutil.WriteFile(negPath, []byte(negTSV), 0644))
	assert.NoError(t, ioutil.WriteFile(oobPath, []byte(oobTSV), 0644))

	ss, err := sigset.Load(ctx, sigset.Paths{Signal: signalPath, Neg: negPath, OOB: oobPath})
	assert.NoError(t, err)
	expect.EQ(t, ss.Name, signalPath)
	expect.EQ(t, ss.NumProbes(), 4)
	expect.EQ(t, ss.Neg.R, []float64{8, 9, 7})
	expect.EQ(t, ss.OOB.G, []float64{1, 3.25})
	expect.Nil(t, ss.Pval)

	ss, err = sigset.Load(ctx, sigset.Paths{Signal: signalPath})
	assert.NoError(t, err)
	expect.Nil(t, ss.Neg)
	expect.Nil(t, ss.OOB)

	_, err = sigset.Load(ctx, sigset.Paths{Signal: filepath.Join(tmpdir, "missing.tsv")})
	expect.NotNil(t, err)

	outPath := filepath.Join(tmpdir, "pval.tsv.gz")
	p := &sigset.Pvals{Probes: []string{"cg01"}, P: []float64{0.5}}
	assert.NoError(t, sigset.WritePvals(ctx, outPath, p))
	data, err := ioutil.ReadFile(outPath)
	assert.NoError(t, err)
	gz, err := gzip.NewReader(bytes.NewReader(data))
	assert.NoError(t, err)
	plain, err := ioutil.ReadAll(gz)
	assert.NoError(t, err)
	expect.EQ(t, string(plain), "Probe\tPval\ncg01\t0.5\n")
}
