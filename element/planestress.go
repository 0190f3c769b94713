package element

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Constitutive returns the 3x3 plane-stress constitutive matrix for a
// unit-modulus isotropic material with Poisson ratio nu, in the
// engineering-strain convention (sxx, syy, sxy).
func Constitutive(nu float64) *mat.SymDense {
	s := 1.0 / (1.0 - nu*nu)
	return mat.NewSymDense(3, []float64{
		s, s * nu, 0,
		s * nu, s, 0,
		0, 0, 0.5 * s * (1.0 - nu),
	})
}

// PlaneStressStiffness computes the 8x8 stiffness matrix of a unit-modulus
// bilinear plane-stress quadrilateral of width dx and height dy, using a
// 2x2 Gauss quadrature over the reference square [-1,1]^2.
//
// The DOF ordering is bottom-left, bottom-right, top-left, top-right with
// u before v at each corner, matching mesh.Grid.ElemDOFs.
//
// The element is assumed rectangular and axis-aligned; on a uniform
// rectangular mesh the same matrix is shared by every element. The result
// is wrong for skewed or non-uniform elements, so callers must guarantee
// mesh uniformity.
func PlaneStressStiffness(nu, dx, dy float64) (*mat.SymDense, error) {
	if nu <= 0 || nu >= 0.5 {
		return nil, fmt.Errorf("element: Poisson ratio must lie in (0, 0.5), got %g", nu)
	}
	if dx <= 0 || dy <= 0 {
		return nil, fmt.Errorf("element: element dimensions must be positive, got %gx%g", dx, dy)
	}

	gauss := []float64{-1.0 / math.Sqrt(3.0), 1.0 / math.Sqrt(3.0)}
	C := Constitutive(nu)

	// Metric terms of the rectangular mapping from [-1,1]^2.
	xi := 2.0 / dx
	eta := 2.0 / dy
	area := 1.0 / (xi * eta)

	ke := mat.NewDense(8, 8, nil)
	var cb, btcb mat.Dense
	for _, x := range gauss {
		for _, y := range gauss {
			B := strainDisplacement(x, y, xi, eta)
			cb.Mul(C, B)
			btcb.Mul(B.T(), &cb)
			btcb.Scale(area, &btcb)
			ke.Add(ke, &btcb)
		}
	}

	// The quadrature accumulates an exactly symmetric matrix up to
	// floating-point roundoff; average the halves when packing.
	sym := mat.NewSymDense(8, nil)
	for i := 0; i < 8; i++ {
		for j := i; j < 8; j++ {
			sym.SetSym(i, j, 0.5*(ke.At(i, j)+ke.At(j, i)))
		}
	}
	return sym, nil
}

// strainDisplacement evaluates the 3x8 B operator at reference point
// (x, y) for the bilinear shape functions, with metric terms xi = 2/dx
// and eta = 2/dy converting reference derivatives to physical ones.
func strainDisplacement(x, y, xi, eta float64) *mat.Dense {
	nx := [4]float64{
		0.25 * xi * (y - 1.0),
		0.25 * xi * (1.0 - y),
		0.25 * xi * (-1.0 - y),
		0.25 * xi * (1.0 + y),
	}
	ny := [4]float64{
		0.25 * eta * (x - 1.0),
		0.25 * eta * (-1.0 - x),
		0.25 * eta * (1.0 - x),
		0.25 * eta * (1.0 + x),
	}
	return mat.NewDense(3, 8, []float64{
		nx[0], 0, nx[1], 0, nx[2], 0, nx[3], 0,
		0, ny[0], 0, ny[1], 0, ny[2], 0, ny[3],
		ny[0], nx[0], ny[1], nx[1], ny[2], nx[2], ny[3], nx[3],
	})
}
