package solver

import (
	"errors"
	"testing"

	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// csrFromDense builds a CSR matrix from a row-major dense slice.
func csrFromDense(n int, data []float64) *sparse.CSR {
	dok := sparse.NewDOK(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := data[i*n+j]; v != 0 {
				dok.Set(i, j, v)
			}
		}
	}
	return dok.ToCSR()
}

// spd4 is a small symmetric positive-definite test system.
var spd4 = []float64{
	4, 1, 0, 0,
	1, 3, 1, 0,
	0, 1, 2, 1,
	0, 0, 1, 5,
}

func TestSolve_Validation(t *testing.T) {
	K := csrFromDense(4, spd4)
	t.Run("WrongLoadLength", func(t *testing.T) {
		_, err := Solve(K, []float64{1, 2}, Cholesky)
		assert.Error(t, err)
	})
	t.Run("UnknownMethod", func(t *testing.T) {
		_, err := Solve(K, make([]float64, 4), Method(99))
		assert.Error(t, err)
	})
}

func TestSolve_MethodsAgree(t *testing.T) {
	K := csrFromDense(4, spd4)
	f := []float64{1, -2, 3, 0.5}

	uChol, err := Solve(K, f, Cholesky)
	require.NoError(t, err)
	uCG, err := Solve(K, f, CG)
	require.NoError(t, err)
	uAuto, err := Solve(K, f, Auto)
	require.NoError(t, err)

	assert.InDeltaSlice(t, uChol, uCG, 1e-10)
	assert.InDeltaSlice(t, uChol, uAuto, 1e-14)
}

func TestSolve_Residual(t *testing.T) {
	K := csrFromDense(4, spd4)
	f := []float64{2, 0, -1, 4}

	for name, m := range map[string]Method{"Cholesky": Cholesky, "CG": CG} {
		t.Run(name, func(t *testing.T) {
			u, err := Solve(K, f, m)
			require.NoError(t, err)
			r := make([]float64, 4)
			mulVec(K, u, r)
			assert.InDeltaSlice(t, f, r, 1e-9)
		})
	}
}

func TestSolve_SingularMatrix(t *testing.T) {
	// Zero diagonal block: singular, both methods must refuse.
	singular := []float64{
		1, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 1,
	}
	K := csrFromDense(4, singular)
	f := []float64{1, 1, 1, 1}

	for name, m := range map[string]Method{"Cholesky": Cholesky, "CG": CG} {
		t.Run(name, func(t *testing.T) {
			_, err := Solve(K, f, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSingular), "got %v, want ErrSingular", err)
		})
	}
}

func TestSolve_IndefiniteMatrix(t *testing.T) {
	indefinite := []float64{
		1, 0, 0, 0,
		0, -2, 0, 0,
		0, 0, 3, 0,
		0, 0, 0, 4,
	}
	K := csrFromDense(4, indefinite)
	f := []float64{1, 1, 1, 1}

	for name, m := range map[string]Method{"Cholesky": Cholesky, "CG": CG} {
		t.Run(name, func(t *testing.T) {
			_, err := Solve(K, f, m)
			assert.True(t, errors.Is(err, ErrSingular), "got %v, want ErrSingular", err)
		})
	}
}

func TestSolve_ZeroLoad(t *testing.T) {
	K := csrFromDense(4, spd4)
	u, err := Solve(K, make([]float64, 4), CG)
	require.NoError(t, err)
	for i, v := range u {
		assert.Zero(t, v, "u[%d]", i)
	}
}
