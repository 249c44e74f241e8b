package raytrace

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GefestLAB/pyrex/medium"
	"github.com/GefestLAB/pyrex/signal"
)

// Path is one physically realizable ray between the trace endpoints.
// Paths are built by Trace and immutable afterwards.
type Path struct {
	profile medium.Profile
	cfg     config
	kind    Kind
	s       float64
	legs    []leg

	launch   float64
	receive  float64
	emitted  r3.Vec
	received r3.Vec
	length   float64
	tof      float64
	fresnel  complex128
}

// Kind returns the path topology.
func (p *Path) Kind() Kind { return p.kind }

// LaunchAngle returns the zenith angle (rad) of the ray leaving the
// source: 0 points straight up, pi straight down.
func (p *Path) LaunchAngle() float64 { return p.launch }

// ReceiveAngle returns the zenith angle (rad) of the propagation direction
// at the receiver.
func (p *Path) ReceiveAngle() float64 { return p.receive }

// PathLength returns the geometric ray length (m).
func (p *Path) PathLength() float64 { return p.length }

// TimeOfFlight returns the travel time (s) along the ray.
func (p *Path) TimeOfFlight() float64 { return p.tof }

// EmittedDirection returns the unit propagation direction at the source.
func (p *Path) EmittedDirection() r3.Vec { return p.emitted }

// ReceivedDirection returns the unit propagation direction at the
// receiver.
func (p *Path) ReceivedDirection() r3.Vec { return p.received }

// Fresnel returns the surface reflection coefficient applied to the field
// amplitude, 1 for paths that never touch the surface. Under total
// internal reflection the coefficient is complex with unit magnitude.
func (p *Path) Fresnel() complex128 { return p.fresnel }

// AttenuationAt returns the amplitude attenuation factor accumulated
// along the ray at frequency f (Hz): the exponential of minus the
// arc-length integral of the inverse attenuation length. The factor lies
// in (0, 1] and approaches 1 as the path shortens.
func (p *Path) AttenuationAt(f float64) float64 {
	f = math.Abs(f)

	var exponent float64
	for _, l := range p.legs {
		exponent += legIntegral(attenuationIntegrand(p.profile, p.s, f), l, p.cfg)
	}

	return math.Exp(-exponent)
}

// Attenuation returns the attenuation factor at each frequency.
func (p *Path) Attenuation(fs []float64) []float64 {
	out := make([]float64, len(fs))
	for i, f := range fs {
		out[i] = p.AttenuationAt(f)
	}

	return out
}

// Propagate applies the path to a signal in place: the trace is filtered
// by the attenuation spectrum and, for reflected paths, the surface
// Fresnel coefficient, then delayed by the time of flight. Geometric 1/R
// falloff is not applied here; it belongs to the emission model's viewing
// distance.
func (p *Path) Propagate(s *signal.Signal) error {
	filtered, err := s.FilterFrequencies(func(f float64) complex128 {
		resp := complex(p.AttenuationAt(f), 0)
		if p.fresnel == 1 {
			return resp
		}
		// Conjugate on the negative-frequency side keeps the filtered
		// trace real.
		if f < 0 {
			return resp * cmplx.Conj(p.fresnel)
		}
		return resp * p.fresnel
	})
	if err != nil {
		return err
	}

	s.ShiftTime(p.tof)

	return s.SetValues(filtered.Values())
}

// surfaceReflectance is the s-polarization amplitude reflection
// coefficient for a ray striking the surface from below.
func surfaceReflectance(p medium.Profile, s float64) complex128 {
	ni := p.Index(0)
	sinI := s / ni
	cosI := complex(math.Sqrt(math.Max(0, 1-sinI*sinI)), 0)

	// Snell into air: sin of the transmitted angle equals s; past unity
	// the cosine goes imaginary and the ray is totally reflected.
	cosT := cmplx.Sqrt(complex(1-s*s, 0))

	niCosI := complex(ni, 0) * cosI

	return (niCosI - cosT) / (niCosI + cosT)
}
