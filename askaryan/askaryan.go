// Package askaryan synthesizes the radio pulse emitted by a particle
// shower in ice through charge asymmetry, as observed at a given angle
// from the shower axis.
//
// Two parameterizations are provided. [ZHS] builds the pulse in the
// frequency domain following Zas, Halzen and Stanev, Phys. Rev. D 45, 362
// (1992), equations 20 and 21. [ARVZ] follows the semi-analytic
// convolution method of Alvarez-Muniz, Romero-Wolf and Zas, Phys. Rev. D
// 84, 103003 (2011): the longitudinal charge profile of the shower is
// convolved with a parameterized form factor on the retarded-time grid,
// and the field is the time derivative of the resulting vector potential.
//
// Both models return electric-field signals in V/m on the caller's time
// grid, which must be uniformly sampled.
package askaryan

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/GefestLAB/pyrex/signal"
)

var (
	ErrGeometry = errors.New("askaryan: invalid observation geometry")
	ErrSampling = errors.New("askaryan: invalid sample times")
)

// Shower carries the energy content of a neutrino-induced cascade, split
// into the components that develop with different longitudinal profiles.
type Shower struct {
	EMEnergy  float64 // electromagnetic shower energy (GeV)
	HadEnergy float64 // hadronic shower energy (GeV)
}

// Option configures pulse synthesis.
type Option func(*config)

type config struct {
	distance float64
	t0       float64
	logger   *slog.Logger
}

func newConfig(opts []Option) config {
	cfg := config{
		distance: 1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	return cfg
}

// WithViewingDistance sets the distance R (m) from the shower vertex to
// the observation point along the ray. The field amplitude scales as 1/R.
// Default 1 m.
func WithViewingDistance(r float64) Option {
	return func(cfg *config) {
		if r > 0 {
			cfg.distance = r
		}
	}
}

// WithPulseOffset sets the time (s) at which the shower occurs, shifting
// where the pulse lands on the time grid. Default 0.
func WithPulseOffset(t0 float64) Option {
	return func(cfg *config) {
		cfg.t0 = t0
	}
}

// WithLogger routes diagnostic output, emitted at Debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// gridTol is the allowed relative deviation of sample spacing.
const gridTol = 1e-6

// checkGrid validates a uniformly sampled time grid and returns its
// spacing.
func checkGrid(times []float64) (float64, error) {
	if len(times) < 2 {
		return 0, fmt.Errorf("%w: need at least two samples", ErrSampling)
	}

	dt := times[1] - times[0]
	if dt <= 0 {
		return 0, fmt.Errorf("%w: non-increasing sample times", ErrSampling)
	}
	for i := 2; i < len(times); i++ {
		step := times[i] - times[i-1]
		if math.Abs(step-dt) > gridTol*dt {
			return 0, fmt.Errorf("%w: non-uniform spacing at index %d", ErrSampling, i)
		}
	}

	return dt, nil
}

// checkAngle validates the observation angle and returns its magnitude.
func checkAngle(viewingAngle float64) (float64, error) {
	theta := math.Abs(viewingAngle)
	if theta > math.Pi {
		return 0, fmt.Errorf("%w: viewing angle %v rad exceeds pi", ErrGeometry, viewingAngle)
	}

	return theta, nil
}

// zhsRefFreq is the parameterization reference frequency (Hz).
const zhsRefFreq = 500e6

// ZHS returns the Askaryan field pulse of an electromagnetic shower of
// the given energy (GeV), observed at viewingAngle (rad) from the shower
// axis in ice of refractive index n at the vertex. The spectrum follows
// the ZHS parameterization near the Cherenkov cone and is inverse
// transformed onto the caller's time grid.
func ZHS(times []float64, energy, viewingAngle, n float64, opts ...Option) (*signal.Signal, error) {
	cfg := newConfig(opts)

	if _, err := checkAngle(viewingAngle); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: refractive index %v below 1", ErrGeometry, n)
	}

	if energy == 0 {
		return signal.NewEmpty(times, signal.Field)
	}

	dt, err := checkGrid(times)
	if err != nil {
		return nil, err
	}

	thetaC := math.Acos(1 / n)
	cone := 2.4 * math.Pi / 180

	count := len(times)
	spec := make([]complex128, count)
	for k := range spec {
		f := binFreq(k, count, dt)
		ratio := math.Abs(f) / zhsRefFreq

		// Field amplitude at the Cherenkov angle, eq. 20, in V/m/MHz,
		// then converted to V/m/Hz and scaled to the viewing distance.
		amp := 1.1e-7 * (energy / 1e3) * ratio / (1 + 0.4*ratio*ratio)
		amp *= 1e-6 / cfg.distance

		// Gaussian falloff away from the cone, eq. 21. Higher
		// frequencies see a narrower cone.
		off := (viewingAngle - thetaC) * ratio / cone
		amp *= math.Exp(-0.5 * off * off)

		// Linear phase places the pulse at t0; the 1/dt keeps the
		// time-domain amplitude independent of the sampling rate.
		phase := -2 * math.Pi * f * (cfg.t0 - times[0])
		amp /= dt

		spec[k] = complex(amp*math.Cos(phase), amp*math.Sin(phase))
	}

	pulse, err := signal.FromSpectrum(times[0], dt, spec, signal.Field)
	if err != nil {
		return nil, err
	}

	// Rebuild on the caller's exact grid so later additions align.
	return signal.New(times, pulse.Values(), signal.Field)
}

// binFreq returns the frequency (Hz) of transform bin k in standard DFT
// order.
func binFreq(k, n int, dt float64) float64 {
	step := 1 / (float64(n) * dt)
	if k <= (n-1)/2 {
		return float64(k) * step
	}

	return float64(k-n) * step
}
