// Package topo implements the finite-element analysis and adjoint
// sensitivity engine for 2D plane-stress topology optimization: structural
// compliance of a density-parameterized design and its exact gradient with
// respect to every density variable, in the form a gradient-based
// constrained optimizer consumes.
package topo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/structopt/topo2d/assembly"
	"github.com/structopt/topo2d/element"
	"github.com/structopt/topo2d/filter"
	"github.com/structopt/topo2d/mesh"
	"github.com/structopt/topo2d/solver"
)

// Analysis is the compliance-minimization problem for a rectangular
// plane-stress domain clamped along its left edge and loaded by a
// downward point force at the bottom-right corner.
//
// Everything stored on Analysis is immutable after New: the mesh, the
// filter operator, the shared element kernel, the assembler and the load
// vector. Each evaluation builds its own transient state (filtered
// densities, stiffness matrix, displacement field), so evaluations never
// observe results from a prior call.
type Analysis struct {
	cfg   Config
	grid  *mesh.Grid
	flt   *filter.Filter
	kelem *mat.SymDense
	asm   *assembly.Assembler
	f     []float64
}

var _ Problem = (*Analysis)(nil)

// New validates the configuration and precomputes the immutable problem
// data: DOF numbering, density filter, element stiffness kernel and load
// vector.
func New(cfg Config) (*Analysis, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	grid, err := mesh.NewGrid(cfg.NxElems, cfg.NyElems, cfg.Lx, cfg.Ly)
	if err != nil {
		return nil, err
	}
	flt, err := filter.New(cfg.NxElems, cfg.NyElems, cfg.FilterRadius)
	if err != nil {
		return nil, err
	}
	kelem, err := element.PlaneStressStiffness(cfg.PoissonRatio, grid.ElemWidth(), grid.ElemHeight())
	if err != nil {
		return nil, err
	}
	f, err := grid.PointLoad(cfg.NxElems, 0, 0, -cfg.LoadMagnitude)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		cfg:   cfg,
		grid:  grid,
		flt:   flt,
		kelem: kelem,
		asm:   assembly.New(grid, kelem),
		f:     f,
	}, nil
}

// NumVars returns the number of design variables (one per element).
func (a *Analysis) NumVars() int { return a.grid.NumElems() }

// Bounds returns the box constraints and starting point: densities in
// [MinDensity, 1], starting from 0.95 everywhere.
func (a *Analysis) Bounds() (lb, ub, x0 []float64) {
	n := a.NumVars()
	lb = make([]float64, n)
	ub = make([]float64, n)
	x0 = make([]float64, n)
	for i := 0; i < n; i++ {
		lb[i] = a.cfg.MinDensity
		ub[i] = 1.0
		x0[i] = 0.95
	}
	return lb, ub, x0
}

// state holds the transient results of one analysis: the filtered density
// and the displacement field solving K(xfilter)*u = f. It is created
// fresh per evaluation and discarded afterward.
type state struct {
	xfilter []float64
	u       []float64
}

// analyze runs one forward solve: filter the densities, form the SIMP
// modulus, assemble the stiffness matrix and solve for displacements.
func (a *Analysis) analyze(x []float64) (*state, error) {
	if len(x) != a.NumVars() {
		return nil, fmt.Errorf("topo: expected %d design variables, got %d", a.NumVars(), len(x))
	}
	xfilter, err := a.flt.Apply(x)
	if err != nil {
		return nil, err
	}
	E := make([]float64, len(xfilter))
	for e, xf := range xfilter {
		E[e] = a.cfg.E0 * math.Pow(xf, a.cfg.Penalty)
	}
	K, err := a.asm.Assemble(E)
	if err != nil {
		return nil, err
	}
	u, err := solver.Solve(K, a.f, a.cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("topo: analysis failed: %w", err)
	}
	return &state{xfilter: xfilter, u: u}, nil
}

// compliance is 0.5*f^T*u, the strain energy stored in the loaded
// structure. Lower is stiffer.
func (a *Analysis) compliance(st *state) float64 {
	return 0.5 * floats.Dot(a.f, st.u)
}

// mass returns the material mass (element area times density sum).
func (a *Analysis) mass(x []float64) float64 {
	return a.grid.ElemArea() * floats.Sum(x)
}

// massGrad is constant: the element area, independent of x.
func (a *Analysis) massGrad() []float64 {
	g := make([]float64, a.NumVars())
	for i := range g {
		g[i] = a.grid.ElemArea()
	}
	return g
}

// Compliance evaluates the compliance objective at x.
func (a *Analysis) Compliance(x []float64) (float64, error) {
	st, err := a.analyze(x)
	if err != nil {
		return 0, err
	}
	return a.compliance(st), nil
}

// Mass evaluates the material mass at x.
func (a *Analysis) Mass(x []float64) (float64, error) {
	if len(x) != a.NumVars() {
		return 0, fmt.Errorf("topo: expected %d design variables, got %d", a.NumVars(), len(x))
	}
	return a.mass(x), nil
}

// Filtered returns the filtered density field F*x, the quantity an
// external observer would render as the current material layout.
func (a *Analysis) Filtered(x []float64) ([]float64, error) {
	return a.flt.Apply(x)
}

// EvalObjCon evaluates the compliance objective and the volume
// constraint VolumeFraction*Lx*Ly - mass(x), feasible when >= 0.
func (a *Analysis) EvalObjCon(x []float64) (float64, []float64, error) {
	st, err := a.analyze(x)
	if err != nil {
		return 0, nil, err
	}
	con := []float64{a.cfg.VolumeFraction*a.cfg.Lx*a.cfg.Ly - a.mass(x)}
	return a.compliance(st), con, nil
}

// EvalObjConGradient evaluates the compliance gradient and the single
// constraint Jacobian row at x.
//
// The governing equations are self-adjoint and the objective is exactly
// 0.5*f^T*u, so the adjoint variable is 0.5*u and no second solve is
// needed: d(compliance)/dxfilter[e] = -0.5 * u_e^T*kelem*u_e * dE/dxfilter
// with dE/dxfilter = E0*p*xfilter^(p-1), pulled back through the linear
// filter by F^T. Changing the objective definition breaks this shortcut
// and would require an explicit adjoint solve.
func (a *Analysis) EvalObjConGradient(x []float64) ([]float64, [][]float64, error) {
	st, err := a.analyze(x)
	if err != nil {
		return nil, nil, err
	}

	dcdxf := make([]float64, a.NumVars())
	var ue [8]float64
	for e := range dcdxf {
		dofs := a.grid.ElemDOFs(e)
		for i, d := range dofs {
			ue[i] = st.u[d]
		}
		quad := 0.0
		for i := 0; i < 8; i++ {
			for j := 0; j < 8; j++ {
				quad += ue[i] * a.kelem.At(i, j) * ue[j]
			}
		}
		dEdxf := a.cfg.E0 * a.cfg.Penalty * math.Pow(st.xfilter[e], a.cfg.Penalty-1)
		dcdxf[e] = -0.5 * quad * dEdxf
	}

	g, err := a.flt.ApplyTranspose(dcdxf)
	if err != nil {
		return nil, nil, err
	}

	conGrad := a.massGrad()
	floats.Scale(-1, conGrad)
	return g, [][]float64{conGrad}, nil
}
