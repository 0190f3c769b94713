// Package filter builds the density filter operator used to regularize
// topology-optimization design variables. The operator is a sparse,
// row-stochastic matrix mapping raw element densities to spatially
// smoothed ones; smoothing suppresses sub-radius oscillation
// (checkerboarding) in the optimized layout.
package filter

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
)

// Filter is the immutable density filter operator for an nx*ny element
// grid. Weights fall off linearly with element center distance, reaching
// zero at the filter radius, and every row is normalized to sum to one so
// filtered densities never leave the convex hull of their neighbors.
type Filter struct {
	n int
	w *sparse.CSR
}

// New builds the filter operator for an nx*ny grid with the given radius
// measured in element widths. The radius must be positive; a radius below
// one leaves only the self-weight, making the filter the identity.
func New(nx, ny int, radius float64) (*Filter, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("filter: grid must have at least 1x1 elements, got %dx%d", nx, ny)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("filter: radius must be positive, got %g", radius)
	}

	n := nx * ny
	ri := int(math.Ceil(radius))
	dok := sparse.NewDOK(n, n)

	type entry struct {
		col int
		w   float64
	}
	var row []entry

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			row = row[:0]
			sum := 0.0
			// Candidates within the bounding box of the radius,
			// clipped at the grid boundary. The element itself is
			// always included at distance zero.
			for jj := max(0, j-ri); jj < min(ny, j+ri+1); jj++ {
				for ii := max(0, i-ri); ii < min(nx, i+ri+1); ii++ {
					r := math.Hypot(float64(i-ii), float64(j-jj))
					if r < radius {
						w := (radius - r) / radius
						row = append(row, entry{col: ii + jj*nx, w: w})
						sum += w
					}
				}
			}
			for _, e := range row {
				dok.Set(i+j*nx, e.col, e.w/sum)
			}
		}
	}
	return &Filter{n: n, w: dok.ToCSR()}, nil
}

// Len returns the number of design variables the filter operates on.
func (f *Filter) Len() int { return f.n }

// Weight returns the normalized weight of element ee on the filtered
// density of element e.
func (f *Filter) Weight(e, ee int) float64 { return f.w.At(e, ee) }

// Apply computes the filtered density F*x.
func (f *Filter) Apply(x []float64) ([]float64, error) {
	if len(x) != f.n {
		return nil, fmt.Errorf("filter: expected %d densities, got %d", f.n, len(x))
	}
	y := make([]float64, f.n)
	f.w.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
	return y, nil
}

// ApplyTranspose computes F^T*v, the chain-rule pullback of a gradient
// with respect to filtered densities onto the raw densities.
func (f *Filter) ApplyTranspose(v []float64) ([]float64, error) {
	if len(v) != f.n {
		return nil, fmt.Errorf("filter: expected %d values, got %d", f.n, len(v))
	}
	y := make([]float64, f.n)
	f.w.DoNonZero(func(i, j int, w float64) {
		y[j] += w * v[i]
	})
	return y, nil
}
