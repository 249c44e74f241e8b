// Package raytrace solves the two-point boundary-value problem for radio
// rays in a stratified medium: given a source and a receiver, it finds
// every launch angle whose ray, bent by the depth-varying refractive
// index, connects the two points. For any geometry at most two branches
// admit a solution: a direct ray, plus one that passes over the shallower
// endpoint and returns to it after turning in the firn or reflecting off
// the surface. Each solution is exposed as a Path carrying geometric
// length, time of flight, frequency-dependent attenuation and the
// propagation operator applied to signals.
//
// Two methods implement the solve. [Basic] integrates the ray equations
// numerically on a depth grid and supports any profile. [Analytic]
// evaluates closed-form integrals, exact at ray turning points, valid only
// for exponential ice profiles; it refuses other media with
// [ErrUnsupportedMedium]. Both solve eagerly inside Trace, so the returned
// RayTrace and its Paths are immutable and safe to share.
package raytrace

import (
	"errors"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GefestLAB/pyrex/medium"
)

// ErrUnsupportedMedium is returned by a method asked to trace through a
// profile outside its validity assumptions.
var ErrUnsupportedMedium = errors.New("raytrace: medium not supported by this method")

// Kind labels the topology of a solved ray path.
type Kind int

const (
	// Direct rays travel monotonically in depth from source to receiver.
	Direct Kind = iota
	// Reflected rays bounce once off the surface.
	Reflected
	// Indirect rays turn over inside the medium before descending to the
	// receiver.
	Indirect
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Reflected:
		return "reflected"
	case Indirect:
		return "indirect"
	}

	return "unknown"
}

// Method is a ray-tracing strategy.
type Method interface {
	// Name identifies the method.
	Name() string

	// Supports reports whether the method can trace through the profile.
	Supports(p medium.Profile) bool

	// Trace solves the boundary-value problem between from and to.
	Trace(p medium.Profile, from, to r3.Vec, opts ...Option) (*RayTrace, error)
}

// For selects the most capable method for the profile: Analytic where its
// closed forms apply, Basic otherwise.
func For(p medium.Profile) Method {
	if (Analytic{}).Supports(p) {
		return Analytic{}
	}

	return Basic{}
}

// Option adjusts solver configuration.
type Option func(*config)

type config struct {
	dz        float64
	tol       float64
	maxIter   int
	proximity float64
	logger    *slog.Logger
}

func newConfig(opts []Option) config {
	cfg := config{
		dz:        1,
		tol:       1e-12,
		maxIter:   100,
		proximity: 1e-6,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	return cfg
}

// WithDepthStep sets the depth grid step (m) for numeric ray integrals.
func WithDepthStep(dz float64) Option {
	return func(cfg *config) {
		if dz > 0 {
			cfg.dz = dz
		}
	}
}

// WithAngularTolerance sets the bracket width (rad) at which angle solves
// stop.
func WithAngularTolerance(tol float64) Option {
	return func(cfg *config) {
		if tol > 0 {
			cfg.tol = tol
		}
	}
}

// WithMaxIterations caps root-finder iterations per branch. Exhausting the
// budget drops the branch; it does not fail the trace.
func WithMaxIterations(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxIter = n
		}
	}
}

// WithTurningProximity sets how far (m) numeric depth integrals stop short
// of the singular turning depth.
func WithTurningProximity(d float64) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.proximity = d
		}
	}
}

// WithLogger routes solver diagnostics, emitted at Debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// RayTrace is a solved boundary-value query: the endpoints, the branch
// envelope parameters and every found path. Immutable after Trace.
type RayTrace struct {
	from, to     r3.Vec
	rho          float64
	maxAngle     float64
	directRMax   float64
	indirectRMax float64
	solutions    []*Path
}

// From returns the source point.
func (rt *RayTrace) From() r3.Vec { return rt.from }

// To returns the receiver point.
func (rt *RayTrace) To() r3.Vec { return rt.to }

// Rho returns the horizontal source-receiver separation (m).
func (rt *RayTrace) Rho() float64 { return rt.rho }

// Exists reports whether any path connects the endpoints. False is the
// normal outcome for receivers in the geometric shadow, not a fault.
func (rt *RayTrace) Exists() bool { return len(rt.solutions) > 0 }

// Solutions returns the found paths, direct path first. The slice is owned
// by the RayTrace and must not be modified.
func (rt *RayTrace) Solutions() []*Path { return rt.solutions }

// MaxAngle returns the largest launch angle (rad, from vertical at the
// deeper endpoint) the solver searches.
func (rt *RayTrace) MaxAngle() float64 { return rt.maxAngle }

// DirectRMax returns the largest horizontal separation a direct ray can
// cover between the trace depths; +Inf when direct rays reach any
// separation.
func (rt *RayTrace) DirectRMax() float64 { return rt.directRMax }

// IndirectRMax returns the largest horizontal separation reachable by rays
// that turn over or reflect; beyond it lies the shadow zone.
func (rt *RayTrace) IndirectRMax() float64 { return rt.indirectRMax }

func orderDepths(from, to r3.Vec) (zLow, zHigh float64) {
	if from.Z <= to.Z {
		return from.Z, to.Z
	}

	return to.Z, from.Z
}
