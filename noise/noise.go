// Package noise generates random voltage waveforms for detector studies:
// white Gaussian traces and band-limited thermal noise built as a comb of
// equal-amplitude tones with random phases.
package noise

import (
	"errors"
	"math/rand/v2"

	"github.com/GefestLAB/pyrex/signal"
)

// boltzmann is the Boltzmann constant (J/K).
const boltzmann = 1.38e-23

var (
	ErrBand      = errors.New("noise: invalid frequency band")
	ErrAmplitude = errors.New("noise: noise amplitude undetermined")
)

// Generator produces random waveforms from a dedicated random stream, so
// concurrent simulations don't contend on a shared source.
type Generator struct {
	rng *rand.Rand
}

// Option configures a [Generator].
type Option func(*config)

type config struct {
	seed    uint64
	hasSeed bool
}

// WithSeed fixes the random stream for reproducible waveforms.
func WithSeed(seed uint64) Option {
	return func(cfg *config) {
		cfg.seed = seed
		cfg.hasSeed = true
	}
}

// New creates a noise generator. Without [WithSeed] each generator draws an
// independent random stream.
func New(opts ...Option) *Generator {
	var cfg config
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.hasSeed {
		return &Generator{rng: rand.New(rand.NewPCG(cfg.seed, 0))}
	}

	return &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Gaussian returns a voltage trace of independent normal samples with
// standard deviation sigma on the given time grid.
func (g *Generator) Gaussian(times []float64, sigma float64) (*signal.Signal, error) {
	values := make([]float64, len(times))
	for i := range values {
		values[i] = g.rng.NormFloat64() * sigma
	}

	return signal.New(times, values, signal.Voltage)
}
