package medium

import "math"

// Uniform is a degenerate profile with the same index at every depth. It is
// the constant-asymptote reference case and the natural medium for geometry
// tests, where ray paths must reduce to straight lines.
type Uniform struct {
	// N is the refractive index, at least 1.
	N float64
	// Atten is the attenuation length in metres at every depth and
	// frequency; zero or negative means lossless.
	Atten float64
}

// Index returns the constant index.
func (u Uniform) Index(z float64) float64 { return u.N }

// IndexGradient is identically zero.
func (u Uniform) IndexGradient(z float64) float64 { return 0 }

// AttenuationLength returns the constant attenuation length, or +Inf for a
// lossless medium and at f = 0.
func (u Uniform) AttenuationLength(z, f float64) float64 {
	if u.Atten <= 0 || f == 0 {
		return math.Inf(1)
	}

	return u.Atten
}
