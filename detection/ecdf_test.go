package detection

import (
	"math"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestECDF(t *testing.T) {
	vals := []float64{8, 9, 7, 8, 10}
	f, err := NewECDF(vals)
	require.NoError(t, err)
	// The input must not be reordered.
	expect.EQ(t, vals, []float64{8, 9, 7, 8, 10})

	for _, test := range []struct {
		x, want float64
	}{
		{-1, 0},
		{6.99, 0},
		{7, 0.2},
		{7.5, 0.2},
		{8, 0.6},
		{9, 0.8},
		{10, 1},
		{1e9, 1},
		{math.Inf(1), 1},
	} {
		assert.Equal(t, test.want, f.Eval(test.x), "F(%v)", test.x)
	}
	expect.EQ(t, f.Len(), 5)
}

func TestECDFEmpty(t *testing.T) {
	_, err := NewECDF(nil)
	assert.True(t, errors.Is(errors.Precondition, err), "got %v", err)
}

func TestNormalSurvival(t *testing.T) {
	n := Normal{Mu: 8, Sigma: 1.5}
	assert.InDelta(t, 0.5, n.Survival(8), 1e-15)
	assert.InDelta(t, 0.158655, n.Survival(9.5), 1e-6)
	assert.InDelta(t, 0.841345, n.Survival(6.5), 1e-6)
	assert.Equal(t, 0.0, n.Survival(1e6))

	point := Normal{Mu: 3}
	expect.EQ(t, point.Survival(2.9), 1.0)
	expect.EQ(t, point.Survival(3), 0.0)
	expect.EQ(t, point.Survival(4), 0.0)

	expect.EQ(t, n.Sum(Normal{Mu: 2, Sigma: 0.5}), Normal{Mu: 10, Sigma: 2})
}

func TestFitChannelNormal(t *testing.T) {
	n, err := fitChannelNormal("R", []float64{8, 9, 7, 8, 10})
	require.NoError(t, err)
	expect.EQ(t, n.Mu, 8.0)
	assert.InDelta(t, math.Sqrt(1.3), n.Sigma, 1e-12)

	_, err = fitChannelNormal("R", []float64{8})
	assert.True(t, errors.Is(errors.Precondition, err), "got %v", err)
	_, err = fitChannelNormal("R", nil)
	assert.True(t, errors.Is(errors.Precondition, err), "got %v", err)
}

func TestFitPooledNormal(t *testing.T) {
	n, err := fitPooledNormal([]float64{10, 12, 11, 9, 10}, []float64{8, 9, 7, 8, 10})
	require.NoError(t, err)
	assert.InDelta(t, 9.4, n.Mu, 1e-12)
	// Sum of squared deviations from 9.4 is 20.4 over 10 values.
	assert.InDelta(t, math.Sqrt(20.4/9), n.Sigma, 1e-12)

	_, err = fitPooledNormal([]float64{10}, []float64{8})
	assert.True(t, errors.Is(errors.Precondition, err), "got %v", err)
}
