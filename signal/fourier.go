package signal

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/GefestLAB/pyrex/spectrum"
)

// Spectrum returns the two-sided discrete Fourier transform of the values:
// DC first, positive-frequency bins, then negative-frequency bins in the
// upper half. The transform is cached until the values are mutated; the
// returned slice is a copy and safe to modify. Fails with [ErrNonUniform]
// on degenerate sampling.
func (s *Signal) Spectrum() ([]complex128, error) {
	if _, err := s.uniformDt(); err != nil {
		return nil, err
	}

	if s.spec == nil {
		if err := s.computeSpectrum(); err != nil {
			return nil, err
		}
	}

	out := make([]complex128, len(s.spec))
	copy(out, s.spec)

	return out, nil
}

func (s *Signal) computeSpectrum() error {
	if err := s.ensurePlan(); err != nil {
		return err
	}

	trace := make([]complex128, len(s.values))
	for i, v := range s.values {
		trace[i] = complex(v, 0)
	}

	if err := s.plan.Forward(trace, trace); err != nil {
		return fmt.Errorf("signal: forward FFT failed: %w", err)
	}

	s.spec = trace

	return nil
}

// Frequencies returns the frequency (Hz) of each spectrum bin in standard
// DFT order: 0, positive bins up, then negative bins. Bin spacing is
// 1/(N*dt).
func (s *Signal) Frequencies() ([]float64, error) {
	dt, err := s.uniformDt()
	if err != nil {
		return nil, err
	}

	n := len(s.times)
	step := 1 / (float64(n) * dt)
	out := make([]float64, n)

	for k := 0; k <= (n-1)/2; k++ {
		out[k] = float64(k) * step
	}
	for k := (n-1)/2 + 1; k < n; k++ {
		out[k] = float64(k-n) * step
	}

	return out, nil
}

// Envelope returns the magnitude of the analytic signal: the spectrum with
// negative-frequency content zeroed and positive content doubled, inverse
// transformed. Useful for locating pulse arrival without carrier phase.
func (s *Signal) Envelope() ([]float64, error) {
	analytic, err := s.Spectrum()
	if err != nil {
		return nil, err
	}

	n := len(analytic)
	for k := 1; k < n; k++ {
		switch {
		case n%2 == 0 && k == n/2:
			// Nyquist bin is shared between the halves; keep it.
		case k < (n+1)/2:
			analytic[k] *= 2
		default:
			analytic[k] = 0
		}
	}

	if err := s.ensurePlan(); err != nil {
		return nil, err
	}

	if err := s.plan.Inverse(analytic, analytic); err != nil {
		return nil, fmt.Errorf("signal: inverse FFT failed: %w", err)
	}

	return spectrum.Magnitude(analytic), nil
}

// Resample returns a new Signal with n samples spanning the same time
// window, obtained by zero-padding or truncating the spectrum and inverse
// transforming (band-limited interpolation). The value type carries over.
func (s *Signal) Resample(n int) (*Signal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: resample to %d samples", ErrShape, n)
	}

	src, err := s.Spectrum()
	if err != nil {
		return nil, err
	}

	oldN := len(src)
	if n == oldN {
		return s.Copy(), nil
	}

	dst := make([]complex128, n)
	m := oldN
	if n < m {
		m = n
	}

	posCount := (m + 1) / 2 // DC plus positive bins below the shared bin
	negCount := (m - 1) / 2 // strictly negative bins
	for k := 0; k < posCount; k++ {
		dst[k] = src[k]
	}
	for k := 1; k <= negCount; k++ {
		dst[n-k] = src[oldN-k]
	}

	if m%2 == 0 {
		h := m / 2
		if n > oldN {
			// Upsampling: split the old Nyquist bin across +/-h so the
			// result stays real.
			dst[h] = src[h] / 2
			dst[n-h] = src[h] / 2
		} else {
			// Downsampling: the old +/-h bins alias onto the new Nyquist.
			dst[h] = src[h] + src[oldN-h]
		}
	}

	out, err := inverseReal(dst)
	if err != nil {
		return nil, err
	}

	scale := float64(n) / float64(oldN)
	for i := range out {
		out[i] *= scale
	}

	times := make([]float64, n)
	if n == 1 {
		times[0] = s.times[0]
	} else {
		floats.Span(times, s.times[0], s.times[len(s.times)-1])
	}

	return &Signal{times: times, values: out, vtype: s.vtype}, nil
}

// FilterFrequencies multiplies the spectrum bin-wise by response evaluated
// at each bin frequency and returns the inverse transform as a new Signal.
// This is the general mechanism for bandpass responses and path
// attenuation; responses may be complex (phase-shifting).
func (s *Signal) FilterFrequencies(response func(f float64) complex128) (*Signal, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: nil frequency response", ErrShape)
	}

	spec, err := s.Spectrum()
	if err != nil {
		return nil, err
	}

	freqs, err := s.Frequencies()
	if err != nil {
		return nil, err
	}

	for k := range spec {
		spec[k] *= response(freqs[k])
	}

	values, err := inverseReal(spec)
	if err != nil {
		return nil, err
	}

	times := make([]float64, len(s.times))
	copy(times, s.times)

	return &Signal{times: times, values: values, vtype: s.vtype}, nil
}

// inverseReal inverse transforms a spectrum and keeps the real part.
func inverseReal(spec []complex128) ([]float64, error) {
	plan, err := newPlan(len(spec))
	if err != nil {
		return nil, err
	}

	if err := plan.Inverse(spec, spec); err != nil {
		return nil, fmt.Errorf("signal: inverse FFT failed: %w", err)
	}

	out := make([]float64, len(spec))
	for i, c := range spec {
		out[i] = real(c)
	}

	return out, nil
}
