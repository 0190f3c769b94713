package topo

// Problem is the contract an optimization driver consumes. It exposes the
// design-variable box constraints with a starting point, and evaluation of
// the objective, constraints and their gradients. The driver itself (for
// example a trust-region or interior-point method) lives outside this
// module.
type Problem interface {
	// Bounds returns per-variable lower and upper bounds and an initial
	// point. The returned slices are owned by the caller.
	Bounds() (lb, ub, x0 []float64)

	// EvalObjCon evaluates the objective and the inequality constraints
	// at x. Constraints are feasible when >= 0.
	EvalObjCon(x []float64) (obj float64, con []float64, err error)

	// EvalObjConGradient evaluates the objective gradient and the
	// constraint Jacobian rows at x.
	EvalObjConGradient(x []float64) (g []float64, a [][]float64, err error)
}
