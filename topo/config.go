package topo

import (
	"fmt"

	"github.com/structopt/topo2d/solver"
)

// Config describes a topology-optimization analysis problem. All fields
// are fixed at construction; the engine never mutates them mid-run.
//
// Zero values of the material and SIMP parameters are replaced by the
// conventional defaults below; the mesh resolution, physical dimensions
// and filter radius have no sensible defaults and must be set.
type Config struct {
	// Mesh resolution in elements per direction.
	NxElems, NyElems int

	// Physical dimensions of the rectangular domain.
	Lx, Ly float64

	// FilterRadius is the density filter radius in element widths.
	FilterRadius float64

	// Penalty is the SIMP penalization exponent p (default 3). Values
	// above one bias intermediate densities toward 0 or 1.
	Penalty float64

	// E0 is the solid-material Young's modulus (default 1).
	E0 float64

	// PoissonRatio is the material Poisson ratio (default 0.3). It must
	// lie strictly between 0 and 0.5.
	PoissonRatio float64

	// VolumeFraction limits the material volume to this fraction of the
	// domain area (default 0.4).
	VolumeFraction float64

	// MinDensity is the lower box-constraint bound on design variables
	// (default 1e-3). A positive floor keeps the element modulus, and
	// with it the stiffness matrix, nonsingular.
	MinDensity float64

	// LoadMagnitude is the downward point load applied at the
	// bottom-right corner node (default 1e3).
	LoadMagnitude float64

	// Solver selects the linear-solve method (default solver.Auto).
	Solver solver.Method
}

// withDefaults returns a copy with zero-valued optional fields replaced.
func (c Config) withDefaults() Config {
	if c.Penalty == 0 {
		c.Penalty = 3
	}
	if c.E0 == 0 {
		c.E0 = 1
	}
	if c.PoissonRatio == 0 {
		c.PoissonRatio = 0.3
	}
	if c.VolumeFraction == 0 {
		c.VolumeFraction = 0.4
	}
	if c.MinDensity == 0 {
		c.MinDensity = 1e-3
	}
	if c.LoadMagnitude == 0 {
		c.LoadMagnitude = 1e3
	}
	return c
}

// validate rejects configurations the engine cannot analyze. Mesh and
// filter geometry are further validated by their own constructors.
func (c Config) validate() error {
	if c.Penalty < 1 {
		return fmt.Errorf("topo: SIMP penalty must be >= 1, got %g", c.Penalty)
	}
	if c.E0 <= 0 {
		return fmt.Errorf("topo: Young's modulus must be positive, got %g", c.E0)
	}
	if c.PoissonRatio <= 0 || c.PoissonRatio >= 0.5 {
		return fmt.Errorf("topo: Poisson ratio must lie in (0, 0.5), got %g", c.PoissonRatio)
	}
	if c.VolumeFraction <= 0 || c.VolumeFraction > 1 {
		return fmt.Errorf("topo: volume fraction must lie in (0, 1], got %g", c.VolumeFraction)
	}
	if c.MinDensity <= 0 || c.MinDensity >= 1 {
		return fmt.Errorf("topo: minimum density must lie in (0, 1), got %g", c.MinDensity)
	}
	if c.LoadMagnitude <= 0 {
		return fmt.Errorf("topo: load magnitude must be positive, got %g", c.LoadMagnitude)
	}
	return nil
}
