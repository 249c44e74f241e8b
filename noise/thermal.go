package noise

import (
	"fmt"
	"math"

	"github.com/GefestLAB/pyrex/signal"
)

// ThermalOption configures [Generator.Thermal].
type ThermalOption func(*thermalConfig)

type thermalConfig struct {
	rms         float64
	hasRMS      bool
	temperature float64
	resistance  float64
	nFreqs      int
	amplitude   func(f float64) float64
}

// WithRMSVoltage sets the target RMS voltage (V) directly instead of
// deriving it from temperature and resistance.
func WithRMSVoltage(v float64) ThermalOption {
	return func(cfg *thermalConfig) {
		cfg.rms = v
		cfg.hasRMS = true
	}
}

// WithTemperature sets the noise temperature (K).
func WithTemperature(kelvin float64) ThermalOption {
	return func(cfg *thermalConfig) {
		cfg.temperature = kelvin
	}
}

// WithResistance sets the source resistance (ohm).
func WithResistance(ohms float64) ThermalOption {
	return func(cfg *thermalConfig) {
		cfg.resistance = ohms
	}
}

// WithFrequencyCount overrides the number of tones in the comb. The default
// matches the transform bin spacing of the time window.
func WithFrequencyCount(n int) ThermalOption {
	return func(cfg *thermalConfig) {
		cfg.nFreqs = n
	}
}

// WithAmplitudeFunc shapes the comb with a per-frequency relative
// amplitude, for noise that has already passed through a known response.
func WithAmplitudeFunc(fn func(f float64) float64) ThermalOption {
	return func(cfg *thermalConfig) {
		cfg.amplitude = fn
	}
}

// Thermal returns band-limited thermal noise over [fMin, fMax): a comb of
// tones at evenly spaced frequencies, fMax excluded, with uniformly random
// phases. The trace is scaled to an RMS of sqrt(4 kB T R bandwidth), or to
// the RMS voltage given explicitly. The returned signal is
// function-backed, so re-gridding it re-evaluates the same tone sum rather
// than interpolating.
func (g *Generator) Thermal(times []float64, fMin, fMax float64, opts ...ThermalOption) (*signal.Signal, error) {
	if fMin < 0 || fMax <= fMin {
		return nil, fmt.Errorf("%w: [%v, %v)", ErrBand, fMin, fMax)
	}

	var cfg thermalConfig
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	rms := cfg.rms
	if !cfg.hasRMS {
		if cfg.temperature <= 0 || cfg.resistance <= 0 {
			return nil, fmt.Errorf("%w: provide an RMS voltage, or a temperature and resistance", ErrAmplitude)
		}
		rms = math.Sqrt(4 * boltzmann * cfg.temperature * cfg.resistance * (fMax - fMin))
	}

	nFreqs := cfg.nFreqs
	if nFreqs < 1 {
		span := 0.0
		if len(times) > 1 {
			span = times[len(times)-1] - times[0]
		}
		nFreqs = int((fMax - fMin) * span)
		if nFreqs < 1 {
			nFreqs = 1
		}
	}

	df := (fMax - fMin) / float64(nFreqs)
	freqs := make([]float64, nFreqs)
	amps := make([]float64, nFreqs)
	phases := make([]float64, nFreqs)
	for k := range freqs {
		freqs[k] = fMin + float64(k)*df
		amps[k] = 1
		if cfg.amplitude != nil {
			amps[k] = cfg.amplitude(freqs[k])
		}
		phases[k] = 2 * math.Pi * g.rng.Float64()
	}

	norm := rms * math.Sqrt(2/float64(nFreqs))
	fn := func(t float64) float64 {
		sum := 0.0
		for k, f := range freqs {
			if f == 0 {
				continue
			}
			sum += amps[k] * math.Cos(2*math.Pi*f*t+phases[k])
		}

		return norm * sum
	}

	return signal.FromFunc(times, fn, signal.Voltage)
}
