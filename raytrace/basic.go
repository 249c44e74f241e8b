package raytrace

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GefestLAB/pyrex/internal/rootfind"
	"github.com/GefestLAB/pyrex/medium"
)

// Basic traces rays by integrating the ray equations numerically on a
// depth grid. It supports any profile.
type Basic struct{}

// Name identifies the method.
func (Basic) Name() string { return "basic" }

// Supports reports true for every profile.
func (Basic) Supports(medium.Profile) bool { return true }

// Trace solves the boundary-value problem between from and to.
func (Basic) Trace(p medium.Profile, from, to r3.Vec, opts ...Option) (*RayTrace, error) {
	cfg := newConfig(opts)
	zLow, zHigh := orderDepths(from, to)
	eng := &basicEngine{p: p, cfg: cfg, zLow: zLow, zHigh: zHigh}

	return solve(eng, p, from, to, cfg), nil
}

type basicEngine struct {
	p           medium.Profile
	cfg         config
	zLow, zHigh float64
}

func (e *basicEngine) directRho(s float64) float64 {
	return legIntegral(displacementIntegrand(e.p, s), leg{e.zLow, e.zHigh}, e.cfg)
}

func (e *basicEngine) indirectRho(s float64) (float64, float64, bool) {
	zTurn, clamped := e.turningDepth(s)
	f := displacementIntegrand(e.p, s)
	rho := legIntegral(f, leg{e.zLow, zTurn}, e.cfg) + legIntegral(f, leg{e.zHigh, zTurn}, e.cfg)

	return rho, zTurn, clamped
}

func (e *basicEngine) lengths(s float64, legs []leg) (float64, float64) {
	var length, tof float64
	for _, l := range legs {
		length += legIntegral(lengthIntegrand(e.p, s), l, e.cfg)
		tof += legIntegral(flightTimeIntegrand(e.p, s), l, e.cfg)
	}

	return length, tof
}

// depthTol is the absolute tolerance (m) for turning-depth solves.
const depthTol = 1e-9

// turningDepth finds where the ray runs horizontal. Rays too shallow to
// turn inside the medium clamp to the surface and reflect there.
func (e *basicEngine) turningDepth(s float64) (float64, bool) {
	if s <= e.p.Index(0) {
		return 0, true
	}

	z, err := rootfind.Brent(func(z float64) float64 {
		return e.p.Index(z) - s
	}, e.zLow, 0, depthTol, e.cfg.maxIter)
	if err != nil {
		// A monotone profile always brackets; treat anything else as a
		// surface bounce.
		return 0, true
	}

	return z, false
}

const (
	// nearFactor scales the depth step into the width of the substituted
	// zone at the top of each leg.
	nearFactor = 5

	// nearPoints samples the substituted zone.
	nearPoints = 64
)

// legIntegral integrates f in depth from the leg bottom up to proximity
// short of its top. The last stretch runs in the substituted variable
// t = sqrt(top−z), which stays well conditioned when f carries the inverse
// square-root singularity of a ray turning point.
func legIntegral(f func(float64) float64, l leg, cfg config) float64 {
	width := l.top - l.bottom
	if width <= cfg.proximity {
		return 0
	}

	near := math.Min(width, nearFactor*cfg.dz)
	split := l.top - near

	var total float64
	if split > l.bottom {
		n := int((split-l.bottom)/cfg.dz) + 2
		grid := make([]float64, n)
		floats.Span(grid, l.bottom, split)
		vals := make([]float64, n)
		for i, z := range grid {
			vals[i] = f(z)
		}
		total += integrate.Trapezoidal(grid, vals)
	}

	tLo := math.Sqrt(cfg.proximity)
	tHi := math.Sqrt(near)
	if tHi <= tLo {
		return total
	}
	grid := make([]float64, nearPoints)
	floats.Span(grid, tLo, tHi)
	vals := make([]float64, nearPoints)
	for i, t := range grid {
		vals[i] = 2 * t * f(l.top-t*t)
	}
	total += integrate.Trapezoidal(grid, vals)

	return total
}

// The ray integrands, all per unit depth with ds = dz/cos(theta(z)) and
// sin(theta(z)) = s/n(z). Depths past the turning point report +Inf so a
// stray evaluation poisons the integral instead of going negative.

func displacementIntegrand(p medium.Profile, s float64) func(float64) float64 {
	return func(z float64) float64 {
		n := p.Index(z)
		d := n*n - s*s
		if d <= 0 {
			return math.Inf(1)
		}

		return s / math.Sqrt(d)
	}
}

func lengthIntegrand(p medium.Profile, s float64) func(float64) float64 {
	return func(z float64) float64 {
		n := p.Index(z)
		d := n*n - s*s
		if d <= 0 {
			return math.Inf(1)
		}

		return n / math.Sqrt(d)
	}
}

func flightTimeIntegrand(p medium.Profile, s float64) func(float64) float64 {
	return func(z float64) float64 {
		n := p.Index(z)
		d := n*n - s*s
		if d <= 0 {
			return math.Inf(1)
		}

		return n * n / (medium.C * math.Sqrt(d))
	}
}

func attenuationIntegrand(p medium.Profile, s, f float64) func(float64) float64 {
	return func(z float64) float64 {
		n := p.Index(z)
		d := n*n - s*s
		if d <= 0 {
			return math.Inf(1)
		}

		return n / (math.Sqrt(d) * p.AttenuationLength(z, f))
	}
}
