package raytrace

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GefestLAB/pyrex/internal/rootfind"
	"github.com/GefestLAB/pyrex/medium"
)

// engine abstracts how one method evaluates the ray integrals. Angles
// enter as the Snell invariant s = n(zLow)·sin(theta), conserved along the
// whole ray.
type engine interface {
	// directRho is the horizontal displacement of the one-way leg between
	// the trace depths.
	directRho(s float64) float64

	// indirectRho is the displacement of the up-and-over ray: both legs
	// to the turning depth, which clamps to the surface for rays shallow
	// enough to reflect there.
	indirectRho(s float64) (rho, zTurn float64, clamped bool)

	// lengths returns geometric path length and time of flight along the
	// given legs of a solved ray.
	lengths(s float64, legs []leg) (length, tof float64)
}

// leg is a monotone-depth section of a ray, integrated bottom-up. The top
// is the depth nearest the turning point or the shallow endpoint.
type leg struct {
	bottom, top float64
}

// peakStep is the finite-difference half step (rad) used when locating the
// peak of the indirect displacement curve.
const peakStep = 1e-6

// capSin keeps angle searches fractionally below horizontal when the Snell
// bound degenerates, as it does in a uniform medium.
const capSin = 1 - 1e-12

func solve(eng engine, p medium.Profile, from, to r3.Vec, cfg config) *RayTrace {
	rt := &RayTrace{
		from: from,
		to:   to,
		rho:  math.Hypot(to.X-from.X, to.Y-from.Y),
	}

	// Rays are confined to the medium; a point above the surface connects
	// to nothing.
	if from.Z > 0 || to.Z > 0 {
		return rt
	}

	zLow, zHigh := orderDepths(from, to)
	nLow := p.Index(zLow)

	ratio := p.Index(zHigh) / nLow
	rt.maxAngle = math.Asin(math.Min(ratio, capSin))

	if ratio >= 1 {
		rt.directRMax = math.Inf(1)
	} else {
		// The bounding ray turns exactly at the shallow depth, where its
		// displacement integrand is singular.
		rt.directRMax = eng.directRho(math.Min(nLow*math.Sin(rt.maxAngle), p.Index(zHigh)))
	}

	indirect := func(th float64) float64 {
		rho, _, _ := eng.indirectRho(nLow * math.Sin(th))
		return rho
	}
	peak, rMax := findPeak(indirect, rt.maxAngle, cfg)
	rt.indirectRMax = rMax

	if rt.rho < rt.directRMax {
		curve := func(th float64) float64 {
			return eng.directRho(nLow*math.Sin(th)) - rt.rho
		}
		th, err := rootfind.Brent(curve, 0, rt.maxAngle, cfg.tol, cfg.maxIter)
		if err != nil {
			cfg.logger.Debug("direct branch dropped", "err", err, "rho", rt.rho)
		} else {
			s := nLow * math.Sin(th)
			rt.solutions = append(rt.solutions, buildPath(eng, p, cfg, from, to, rt.rho, Direct, s, zLow, zHigh, 0))
		}
	}

	if rt.rho <= rt.indirectRMax {
		curve := func(th float64) float64 {
			return indirect(th) - rt.rho
		}

		// The displacement curve rises from zero to its peak and falls
		// back toward the direct bound, so each side holds at most one
		// root. The falling side only matters once the separation is out
		// of direct reach.
		brackets := [][2]float64{{0, peak}}
		if rt.rho >= rt.directRMax && peak < rt.maxAngle {
			brackets = append(brackets, [2]float64{peak, rt.maxAngle})
		}

		for _, b := range brackets {
			th, err := rootfind.Brent(curve, b[0], b[1], cfg.tol, cfg.maxIter)
			if err != nil {
				cfg.logger.Debug("indirect branch dropped", "err", err, "rho", rt.rho)
				continue
			}
			s := nLow * math.Sin(th)
			_, zTurn, clamped := eng.indirectRho(s)
			kind := Indirect
			if clamped {
				kind = Reflected
			}
			rt.solutions = append(rt.solutions, buildPath(eng, p, cfg, from, to, rt.rho, kind, s, zLow, zHigh, zTurn))
		}
	}

	return rt
}

// findPeak locates the maximum of the indirect displacement curve by
// bisecting on the sign of a centered finite-difference slope. Monotone
// curves resolve to the nearer search bound.
func findPeak(rho func(float64) float64, maxAngle float64, cfg config) (peak, rMax float64) {
	lo := 2 * peakStep
	hi := maxAngle - 2*peakStep
	if hi <= lo {
		return maxAngle, rho(maxAngle)
	}

	slope := func(th float64) float64 {
		return rho(th+peakStep) - rho(th-peakStep)
	}

	switch {
	case slope(lo) <= 0:
		peak = lo
	case slope(hi) >= 0:
		peak = maxAngle
	default:
		th, err := rootfind.Brent(slope, lo, hi, peakStep, cfg.maxIter)
		if err != nil {
			cfg.logger.Debug("indirect peak search exhausted its budget", "peak", th)
		}
		peak = th
	}

	return peak, rho(peak)
}

func buildPath(eng engine, p medium.Profile, cfg config, from, to r3.Vec, rho float64, kind Kind, s, zLow, zHigh, zTurn float64) *Path {
	var legs []leg
	if kind == Direct {
		legs = []leg{{zLow, zHigh}}
	} else {
		legs = []leg{{zLow, zTurn}, {zHigh, zTurn}}
	}

	length, tof := eng.lengths(s, legs)

	thetaDeep := math.Asin(math.Min(1, s/p.Index(zLow)))
	thetaShallow := math.Asin(math.Min(1, s/p.Index(zHigh)))
	fromDeep := from.Z <= to.Z

	// Zenith angles of the propagation direction at each endpoint. Direct
	// rays from the deeper point travel upward at both ends; up-and-over
	// rays arrive heading back down.
	var launch, receive float64
	switch {
	case kind == Direct && fromDeep:
		launch, receive = thetaDeep, thetaShallow
	case kind == Direct:
		launch, receive = math.Pi-thetaShallow, math.Pi-thetaDeep
	case fromDeep:
		launch, receive = thetaDeep, math.Pi-thetaShallow
	default:
		launch, receive = thetaShallow, math.Pi-thetaDeep
	}

	var ux, uy float64
	if rho > 0 {
		ux = (to.X - from.X) / rho
		uy = (to.Y - from.Y) / rho
	}

	fres := complex(1, 0)
	if kind == Reflected {
		fres = surfaceReflectance(p, s)
	}

	return &Path{
		profile:  p,
		cfg:      cfg,
		kind:     kind,
		s:        s,
		legs:     legs,
		launch:   launch,
		receive:  receive,
		emitted:  r3.Vec{X: math.Sin(launch) * ux, Y: math.Sin(launch) * uy, Z: math.Cos(launch)},
		received: r3.Vec{X: math.Sin(receive) * ux, Y: math.Sin(receive) * uy, Z: math.Cos(receive)},
		length:   length,
		tof:      tof,
		fresnel:  fres,
	}
}
