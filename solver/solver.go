// Package solver solves the symmetric positive-definite linear systems
// produced by stiffness assembly.
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingular reports a stiffness matrix that is singular or not
	// positive definite, typically caused by a non-positive element
	// modulus reaching assembly.
	ErrSingular = errors.New("solver: matrix is singular or not positive definite")

	// ErrNoConvergence reports that the iterative solver exhausted its
	// iteration budget before reaching the residual tolerance.
	ErrNoConvergence = errors.New("solver: conjugate gradient did not converge")
)

// Method selects the linear solver.
type Method int

const (
	// Auto uses Cholesky up to autoThreshold DOFs and CG beyond it.
	Auto Method = iota
	// Cholesky densifies the system and factorizes it. Exact, and the
	// factorization doubles as a positive-definiteness check, but the
	// dense matrix limits it to moderate meshes.
	Cholesky
	// CG runs Jacobi-preconditioned conjugate gradients directly on
	// the sparse matrix.
	CG
)

const (
	autoThreshold = 6000

	// cgTol is the relative residual tolerance. It is kept tight so
	// finite-difference gradient verification is not limited by solver
	// noise.
	cgTol = 1e-12
)

// Solve computes u with K*u = f for a symmetric positive-definite K.
// A system that is not positive definite surfaces as ErrSingular.
func Solve(K *sparse.CSR, f []float64, m Method) ([]float64, error) {
	n, c := K.Dims()
	if n != c {
		return nil, fmt.Errorf("solver: matrix is %dx%d, want square", n, c)
	}
	if len(f) != n {
		return nil, fmt.Errorf("solver: load vector has %d entries, want %d", len(f), n)
	}
	switch m {
	case Cholesky:
		return solveCholesky(K, f)
	case CG:
		return solveCG(K, f)
	case Auto:
		if n <= autoThreshold {
			return solveCholesky(K, f)
		}
		return solveCG(K, f)
	default:
		return nil, fmt.Errorf("solver: unknown method %d", m)
	}
}

func solveCholesky(K *sparse.CSR, f []float64) ([]float64, error) {
	n, _ := K.Dims()
	sym := mat.NewSymDense(n, nil)
	K.DoNonZero(func(i, j int, v float64) {
		if i <= j {
			sym.SetSym(i, j, v)
		}
	})

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, ErrSingular
	}
	u := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(u, mat.NewVecDense(n, append([]float64(nil), f...))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return u.RawVector().Data, nil
}

func solveCG(K *sparse.CSR, f []float64) ([]float64, error) {
	n, _ := K.Dims()

	// Jacobi preconditioner. A non-positive diagonal already rules out
	// positive definiteness.
	diag := make([]float64, n)
	K.DoNonZero(func(i, j int, v float64) {
		if i == j {
			diag[i] = v
		}
	})
	for _, d := range diag {
		if d <= 0 {
			return nil, ErrSingular
		}
	}

	normf := math.Sqrt(floats.Dot(f, f))
	u := make([]float64, n)
	if normf == 0 {
		return u, nil
	}

	r := append([]float64(nil), f...)
	z := make([]float64, n)
	for i := range z {
		z[i] = r[i] / diag[i]
	}
	p := append([]float64(nil), z...)
	kp := make([]float64, n)
	rz := floats.Dot(r, z)

	maxIter := 20 * n
	for iter := 0; iter < maxIter; iter++ {
		mulVec(K, p, kp)
		pkp := floats.Dot(p, kp)
		if pkp <= 0 {
			// Negative curvature: the matrix is not positive
			// definite.
			return nil, ErrSingular
		}
		alpha := rz / pkp
		floats.AddScaled(u, alpha, p)
		floats.AddScaled(r, -alpha, kp)
		if math.Sqrt(floats.Dot(r, r)) <= cgTol*normf {
			return u, nil
		}
		for i := range z {
			z[i] = r[i] / diag[i]
		}
		rzNext := floats.Dot(r, z)
		beta := rzNext / rz
		rz = rzNext
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
	}
	return nil, ErrNoConvergence
}

// mulVec computes y = K*x using the sparse structure.
func mulVec(K *sparse.CSR, x, y []float64) {
	for i := range y {
		y[i] = 0
	}
	K.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
}
