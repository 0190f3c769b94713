package topo

import (
	"fmt"
	"math"
)

// CheckGradients verifies the analytic gradients of p at x against
// central finite differences with step h, returning the worst relative
// error over all variables, for the objective and every constraint.
// Optimization drivers typically run this once on a small problem before
// trusting the gradients.
func CheckGradients(p Problem, x []float64, h float64) (float64, error) {
	if h <= 0 {
		return 0, fmt.Errorf("topo: finite-difference step must be positive, got %g", h)
	}
	g, jac, err := p.EvalObjConGradient(x)
	if err != nil {
		return 0, err
	}
	if len(g) != len(x) {
		return 0, fmt.Errorf("topo: objective gradient has %d entries, want %d", len(g), len(x))
	}

	xp := append([]float64(nil), x...)
	worst := 0.0
	for i := range x {
		xp[i] = x[i] + h
		objP, conP, err := p.EvalObjCon(xp)
		if err != nil {
			return 0, err
		}
		xp[i] = x[i] - h
		objM, conM, err := p.EvalObjCon(xp)
		if err != nil {
			return 0, err
		}
		xp[i] = x[i]

		worst = math.Max(worst, relErr((objP-objM)/(2*h), g[i]))
		for k := range conP {
			worst = math.Max(worst, relErr((conP[k]-conM[k])/(2*h), jac[k][i]))
		}
	}
	return worst, nil
}

// relErr compares a finite-difference estimate with an analytic value,
// falling back to absolute error near zero.
func relErr(fd, an float64) float64 {
	diff := math.Abs(fd - an)
	scale := math.Max(math.Abs(fd), math.Abs(an))
	if scale < 1e-10 {
		return diff
	}
	return diff / scale
}
