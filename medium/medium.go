// Package medium models horizontally stratified propagation media: the
// mapping from depth to refractive index and to frequency-dependent
// attenuation length. Profiles are immutable values, safe to share between
// any number of ray traces and signal propagations.
package medium

// C is the wave-speed constant (m/s) used by every propagation formula in
// this module. The parameterizations were fitted against this rounded value,
// so time-of-flight and pulse shapes are only reproducible with it.
const C = 3e8

// Profile describes a stratified medium. Depth z is in metres and negative
// below the surface; frequency f is in Hz and callers pass magnitudes.
type Profile interface {
	// Index returns the refractive index at depth z. At least 1 everywhere,
	// non-increasing in z inside the valid range, constant asymptote outside.
	Index(z float64) float64

	// IndexGradient returns the analytic derivative d(index)/dz at depth z.
	IndexGradient(z float64) float64

	// AttenuationLength returns the distance (m) over which amplitude at
	// frequency f falls by a factor 1/e at depth z. Positive; +Inf where the
	// medium is lossless (in particular at f = 0).
	AttenuationLength(z, f float64) float64
}
