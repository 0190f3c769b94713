package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	t.Run("ZeroRadius", func(t *testing.T) {
		_, err := New(3, 2, 0)
		assert.Error(t, err)
	})
	t.Run("NegativeRadius", func(t *testing.T) {
		_, err := New(3, 2, -1.5)
		assert.Error(t, err)
	})
	t.Run("EmptyGrid", func(t *testing.T) {
		_, err := New(0, 2, 1.5)
		assert.Error(t, err)
	})
}

func TestFilter_RowStochastic(t *testing.T) {
	f, err := New(7, 5, 2.3)
	require.NoError(t, err)

	for e := 0; e < f.Len(); e++ {
		sum := 0.0
		for ee := 0; ee < f.Len(); ee++ {
			w := f.Weight(e, ee)
			assert.GreaterOrEqual(t, w, 0.0)
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "row %d", e)
	}
}

func TestFilter_SelfWeightMaximal(t *testing.T) {
	// Distance zero gives the largest falloff value, so each element's
	// own weight dominates its row, including at the domain boundary
	// where the neighborhood is clipped.
	f, err := New(6, 4, 1.8)
	require.NoError(t, err)

	for e := 0; e < f.Len(); e++ {
		self := f.Weight(e, e)
		assert.Greater(t, self, 0.0)
		for ee := 0; ee < f.Len(); ee++ {
			assert.LessOrEqual(t, f.Weight(e, ee), self+1e-15, "row %d col %d", e, ee)
		}
	}
}

func TestFilter_SubUnitRadiusIsIdentity(t *testing.T) {
	f, err := New(4, 3, 0.9)
	require.NoError(t, err)

	x := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 0.15, 0.25}
	y, err := f.Apply(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, x, y, 1e-15)
}

func TestFilter_KnownWeights(t *testing.T) {
	// 3x1 strip with radius 1.5: the middle element sees both
	// neighbors at distance 1 with raw weight (1.5-1)/1.5 = 1/3 of the
	// self weight 1, so the row is (0.2, 0.6, 0.2) after normalization.
	f, err := New(3, 1, 1.5)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, f.Weight(1, 0), 1e-12)
	assert.InDelta(t, 0.6, f.Weight(1, 1), 1e-12)
	assert.InDelta(t, 0.2, f.Weight(1, 2), 1e-12)

	// Corner element: one neighbor only, weights 1 and 1/3 normalized.
	assert.InDelta(t, 0.75, f.Weight(0, 0), 1e-12)
	assert.InDelta(t, 0.25, f.Weight(0, 1), 1e-12)
	assert.InDelta(t, 0.0, f.Weight(0, 2), 1e-12)
}

func TestFilter_ApplyAverages(t *testing.T) {
	// A constant field is a fixed point of any row-stochastic operator.
	f, err := New(5, 4, 2.0)
	require.NoError(t, err)

	x := make([]float64, f.Len())
	for i := range x {
		x[i] = 0.7
	}
	y, err := f.Apply(x)
	require.NoError(t, err)
	for i, v := range y {
		assert.InDelta(t, 0.7, v, 1e-12, "element %d", i)
	}
}

func TestFilter_TransposeAdjoint(t *testing.T) {
	// <F x, v> must equal <x, F^T v>.
	f, err := New(4, 3, 1.7)
	require.NoError(t, err)

	n := f.Len()
	x := make([]float64, n)
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = math.Sin(float64(i) + 1)
		v[i] = math.Cos(2*float64(i) - 1)
	}
	fx, err := f.Apply(x)
	require.NoError(t, err)
	ftv, err := f.ApplyTranspose(v)
	require.NoError(t, err)

	lhs, rhs := 0.0, 0.0
	for i := 0; i < n; i++ {
		lhs += fx[i] * v[i]
		rhs += x[i] * ftv[i]
	}
	assert.InDelta(t, lhs, rhs, 1e-12)
}

func TestFilter_DimensionMismatch(t *testing.T) {
	f, err := New(3, 2, 1.5)
	require.NoError(t, err)

	if _, err := f.Apply(make([]float64, 5)); err == nil {
		t.Error("Apply accepted a short vector")
	}
	if _, err := f.ApplyTranspose(make([]float64, 7)); err == nil {
		t.Error("ApplyTranspose accepted a long vector")
	}
}
