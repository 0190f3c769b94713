package mesh

import "fmt"

// Grid is an implicit structured mesh of Nx*Ny rectangular bilinear
// elements spanning the physical domain [0,Lx] x [0,Ly]. Element (i,j)
// occupies column i (from the left) and row j (from the bottom). Nodes
// carry two displacement degrees of freedom each, numbered consecutively
// (u then v) in row-major node order, so the DOF layout matches the
// element traversal order used during assembly.
//
// A Grid is immutable after construction.
type Grid struct {
	Nx, Ny int     // elements per direction
	Lx, Ly float64 // physical dimensions
}

// NewGrid validates the mesh resolution and physical dimensions.
func NewGrid(nx, ny int, lx, ly float64) (*Grid, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("mesh: grid must have at least 1x1 elements, got %dx%d", nx, ny)
	}
	if lx <= 0 || ly <= 0 {
		return nil, fmt.Errorf("mesh: domain dimensions must be positive, got %gx%g", lx, ly)
	}
	return &Grid{Nx: nx, Ny: ny, Lx: lx, Ly: ly}, nil
}

// NumElems returns the number of elements in the mesh.
func (g *Grid) NumElems() int { return g.Nx * g.Ny }

// NumNodes returns the number of mesh nodes.
func (g *Grid) NumNodes() int { return (g.Nx + 1) * (g.Ny + 1) }

// NumDOFs returns the total number of displacement degrees of freedom.
func (g *Grid) NumDOFs() int { return 2 * g.NumNodes() }

// ElemWidth returns the width of every element.
func (g *Grid) ElemWidth() float64 { return g.Lx / float64(g.Nx) }

// ElemHeight returns the height of every element.
func (g *Grid) ElemHeight() float64 { return g.Ly / float64(g.Ny) }

// ElemArea returns the area of every element.
func (g *Grid) ElemArea() float64 { return g.ElemWidth() * g.ElemHeight() }

func (g *Grid) node(i, j int) int { return i + j*(g.Nx+1) }

// UDOF returns the horizontal displacement DOF of node (i,j).
func (g *Grid) UDOF(i, j int) int { return 2 * g.node(i, j) }

// VDOF returns the vertical displacement DOF of node (i,j).
func (g *Grid) VDOF(i, j int) int { return 2*g.node(i, j) + 1 }

// ElemDOFs returns the 8 global DOF indices of element e in the corner
// order bottom-left, bottom-right, top-left, top-right, u before v at
// each corner. This ordering is the shape-function convention of the
// element stiffness kernel and must not be permuted.
func (g *Grid) ElemDOFs(e int) [8]int {
	i := e % g.Nx
	j := e / g.Nx
	return [8]int{
		g.UDOF(i, j), g.VDOF(i, j),
		g.UDOF(i+1, j), g.VDOF(i+1, j),
		g.UDOF(i, j+1), g.VDOF(i, j+1),
		g.UDOF(i+1, j+1), g.VDOF(i+1, j+1),
	}
}

// FixedDOFs returns the DOF indices clamped to zero displacement: both
// components of every node on the left edge of the domain.
func (g *Grid) FixedDOFs() []int {
	dofs := make([]int, 0, 2*(g.Ny+1))
	for j := 0; j <= g.Ny; j++ {
		dofs = append(dofs, g.UDOF(0, j), g.VDOF(0, j))
	}
	return dofs
}

// FixedMask returns a NumDOFs-length mask that is true at fixed DOFs.
func (g *Grid) FixedMask() []bool {
	mask := make([]bool, g.NumDOFs())
	for _, d := range g.FixedDOFs() {
		mask[d] = true
	}
	return mask
}

// PointLoad builds a load vector with force components (fx, fy) applied
// at node (i,j). Entries at fixed DOFs are forced to zero so the load is
// consistent with the boundary elimination performed during assembly.
func (g *Grid) PointLoad(i, j int, fx, fy float64) ([]float64, error) {
	if i < 0 || i > g.Nx || j < 0 || j > g.Ny {
		return nil, fmt.Errorf("mesh: node (%d,%d) outside grid of %dx%d elements", i, j, g.Nx, g.Ny)
	}
	f := make([]float64, g.NumDOFs())
	f[g.UDOF(i, j)] = fx
	f[g.VDOF(i, j)] = fy
	for _, d := range g.FixedDOFs() {
		f[d] = 0
	}
	return f, nil
}
