package testutil

import (
	"math"
	"math/rand"
)

// UniformTimes generates n sample times starting at t0 with spacing dt.
func UniformTimes(t0, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = t0 + dt*float64(i)
	}
	return out
}

// SineValues samples a sine of the given frequency and amplitude at the
// provided times.
func SineValues(times []float64, freqHz, amplitude float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = amplitude * math.Sin(2*math.Pi*freqHz*t)
	}
	return out
}

// CosineValues samples a cosine of the given frequency and amplitude at the
// provided times.
func CosineValues(times []float64, freqHz, amplitude float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = amplitude * math.Cos(2*math.Pi*freqHz*t)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
