// Package assembly builds the global sparse stiffness matrix for a
// structured plane-stress mesh from a shared element stiffness kernel.
package assembly

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/structopt/topo2d/mesh"
)

// Assembler scatters per-element stiffness contributions into the global
// system. The grid, the unit-modulus element kernel and the fixed-DOF set
// are captured once at construction; Assemble is then a pure function of
// the per-element modulus.
type Assembler struct {
	grid  *mesh.Grid
	kelem *mat.SymDense
	fixed []bool
}

// New creates an assembler for the grid and shared element kernel.
func New(g *mesh.Grid, kelem *mat.SymDense) *Assembler {
	return &Assembler{grid: g, kelem: kelem, fixed: g.FixedMask()}
}

// Assemble builds the boundary-eliminated global stiffness matrix for the
// given per-element effective modulus. Each element contributes its DOF
// block of E[e]*kelem; overlapping contributions accumulate additively.
//
// Fixed DOFs are eliminated by the identity row/column technique: their
// rows and columns receive no element contributions and their diagonal is
// set to one, decoupling them from the interior system while preserving
// the matrix dimensions. With a load vector that is zero at fixed DOFs
// the solved boundary displacements are exactly zero.
//
// A non-positive modulus is not rejected here: it produces a matrix that
// is not positive definite, which the solver reports as a singularity.
func (a *Assembler) Assemble(E []float64) (*sparse.CSR, error) {
	ne := a.grid.NumElems()
	if len(E) != ne {
		return nil, fmt.Errorf("assembly: expected %d element moduli, got %d", ne, len(E))
	}

	n := a.grid.NumDOFs()
	K := sparse.NewDOK(n, n)
	for e := 0; e < ne; e++ {
		dofs := a.grid.ElemDOFs(e)
		for r := 0; r < 8; r++ {
			row := dofs[r]
			if a.fixed[row] {
				continue
			}
			for c := 0; c < 8; c++ {
				col := dofs[c]
				if a.fixed[col] {
					continue
				}
				v := E[e] * a.kelem.At(r, c)
				if v != 0 {
					K.Set(row, col, K.At(row, col)+v)
				}
			}
		}
	}
	for d, fx := range a.fixed {
		if fx {
			K.Set(d, d, 1.0)
		}
	}
	return K.ToCSR(), nil
}
