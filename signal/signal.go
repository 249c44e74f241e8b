// Package signal implements the waveform type the simulation is built
// around: a real-valued trace at uniformly spaced sample times together
// with its discrete Fourier dual. The spectrum is computed lazily and
// cached until the trace values are mutated; pulse synthesis, band
// filtering, medium attenuation and resampling all operate through the
// frequency domain.
//
// Signals are mutable but confined: the only mutating operations are
// [Signal.Add], [Signal.Scale], [Signal.SetValues] and [Signal.ShiftTime],
// plus propagation applied by a ray path. Every derivation
// ([Signal.Resample], [Signal.WithTimes], [Signal.FilterFrequencies],
// [Signal.Copy]) returns a new Signal sharing no mutable state with its
// source.
package signal

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/interp"
)

var (
	// ErrShape is returned for malformed construction input: mismatched
	// times/values lengths, empty traces, or sample times that are not
	// strictly increasing.
	ErrShape = errors.New("signal: shape mismatch")

	// ErrAlignment is returned when two signals cannot be combined because
	// their sample times or value types differ. Reconcile sample grids with
	// [Signal.WithTimes] first.
	ErrAlignment = errors.New("signal: misaligned signals")

	// ErrNonUniform is returned by Fourier-domain operations when the
	// sample spacing is not uniform or cannot be determined.
	ErrNonUniform = errors.New("signal: non-uniform sample spacing")
)

// ValueType tags the physical quantity a Signal carries, constraining unit
// handling downstream.
type ValueType int

// Value types. Undefined combines freely with any other type.
const (
	Undefined ValueType = iota
	Voltage
	Field
	Power
)

// String returns the lowercase name of the value type.
func (vt ValueType) String() string {
	switch vt {
	case Voltage:
		return "voltage"
	case Field:
		return "field"
	case Power:
		return "power"
	default:
		return "undefined"
	}
}

// relative tolerance for the uniform-spacing check; linspace-built grids
// are not exactly uniform in floating point
const uniformTol = 1e-6

// Signal is a real-valued trace sampled at strictly increasing times.
type Signal struct {
	times  []float64
	values []float64
	vtype  ValueType

	// generator behind a function-backed signal; cleared once the values
	// are mutated away from what it produced
	source func(t float64) float64

	plan *algofft.Plan[complex128]
	spec []complex128 // cached two-sided DFT of values; nil when dirty
}

// New constructs a Signal from explicit sample times and values. The input
// slices are copied. Returns [ErrShape] if the lengths differ, the trace is
// empty, or the times are not strictly increasing.
func New(times, values []float64, vt ValueType) (*Signal, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d sample times, %d values", ErrShape, len(times), len(values))
	}

	if err := checkTimes(times); err != nil {
		return nil, err
	}

	s := &Signal{
		times:  make([]float64, len(times)),
		values: make([]float64, len(values)),
		vtype:  vt,
	}
	copy(s.times, times)
	copy(s.values, values)

	return s, nil
}

// NewEmpty constructs a zero-valued Signal over the given sample times.
func NewEmpty(times []float64, vt ValueType) (*Signal, error) {
	if err := checkTimes(times); err != nil {
		return nil, err
	}

	s := &Signal{
		times:  make([]float64, len(times)),
		values: make([]float64, len(times)),
		vtype:  vt,
	}
	copy(s.times, times)

	return s, nil
}

// FromFunc samples fn at the given times. The generator is retained, so
// [Signal.WithTimes] re-evaluates it exactly instead of interpolating, until
// the first value mutation detaches it.
func FromFunc(times []float64, fn func(t float64) float64, vt ValueType) (*Signal, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil generator function", ErrShape)
	}

	if err := checkTimes(times); err != nil {
		return nil, err
	}

	s := &Signal{
		times:  make([]float64, len(times)),
		values: make([]float64, len(times)),
		vtype:  vt,
		source: fn,
	}
	copy(s.times, times)
	for i, t := range s.times {
		s.values[i] = fn(t)
	}

	return s, nil
}

// FromSpectrum constructs a Signal from a two-sided complex spectrum: the
// values are the real part of the inverse transform, the sample times start
// at t0 with spacing dt, and the spectrum cache is seeded so no forward
// transform is needed later.
func FromSpectrum(t0, dt float64, spec []complex128, vt ValueType) (*Signal, error) {
	n := len(spec)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty spectrum", ErrShape)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: non-positive sample spacing %v", ErrShape, dt)
	}

	plan, err := newPlan(n)
	if err != nil {
		return nil, err
	}

	trace := make([]complex128, n)
	if err := plan.Inverse(trace, spec); err != nil {
		return nil, fmt.Errorf("signal: inverse FFT failed: %w", err)
	}

	s := &Signal{
		times:  make([]float64, n),
		values: make([]float64, n),
		vtype:  vt,
		plan:   plan,
		spec:   make([]complex128, n),
	}
	for i := range s.times {
		s.times[i] = t0 + dt*float64(i)
	}
	for i, c := range trace {
		s.values[i] = real(c)
	}
	copy(s.spec, spec)

	return s, nil
}

// checkTimes validates a sample-time grid: non-empty and strictly
// increasing.
func checkTimes(times []float64) error {
	if len(times) == 0 {
		return fmt.Errorf("%w: empty sample times", ErrShape)
	}

	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return fmt.Errorf("%w: sample times not strictly increasing at index %d", ErrShape, i)
		}
	}

	return nil
}

// Len returns the number of samples.
func (s *Signal) Len() int { return len(s.values) }

// Times returns the sample times. The slice is live; treat it as read-only
// and use [Signal.ShiftTime] to move the trace in time.
func (s *Signal) Times() []float64 { return s.times }

// Values returns the sample values. The slice is live; treat it as
// read-only and mutate through [Signal.SetValues], [Signal.Scale] or
// [Signal.Add] so the cached spectrum stays consistent.
func (s *Signal) Values() []float64 { return s.values }

// Type returns the value-type tag.
func (s *Signal) Type() ValueType { return s.vtype }

// Dt returns the sample spacing, or 0 when the trace has fewer than 2
// samples.
func (s *Signal) Dt() float64 {
	if len(s.times) < 2 {
		return 0
	}

	return s.times[1] - s.times[0]
}

// Copy returns a deep copy. The copy owns its own transform plan and cache.
func (s *Signal) Copy() *Signal {
	out := &Signal{
		times:  make([]float64, len(s.times)),
		values: make([]float64, len(s.values)),
		vtype:  s.vtype,
		source: s.source,
	}
	copy(out.times, s.times)
	copy(out.values, s.values)

	if s.spec != nil {
		out.spec = make([]complex128, len(s.spec))
		copy(out.spec, s.spec)
	}

	return out
}

// ShiftTime moves every sample time by offset. The cached spectrum stays
// valid: the transform depends only on the values and the spacing.
func (s *Signal) ShiftTime(offset float64) {
	for i := range s.times {
		s.times[i] += offset
	}
}

// Scale multiplies every sample value by factor in place.
func (s *Signal) Scale(factor float64) {
	vecmath.ScaleBlock(s.values, s.values, factor)
	s.invalidate()
}

// SetValues replaces the sample values in place. Returns [ErrShape] when
// the length differs from the existing trace.
func (s *Signal) SetValues(values []float64) error {
	if len(values) != len(s.values) {
		return fmt.Errorf("%w: %d values for a %d-sample trace", ErrShape, len(values), len(s.values))
	}

	copy(s.values, values)
	s.invalidate()

	return nil
}

// Add accumulates other into s in place. The sample times must be exactly
// identical and the value types compatible (Undefined merges with
// anything); otherwise [ErrAlignment] is returned and s is unchanged.
func (s *Signal) Add(other *Signal) error {
	if other == nil {
		return nil
	}

	if len(other.times) != len(s.times) {
		return fmt.Errorf("%w: %d samples vs %d", ErrAlignment, len(s.times), len(other.times))
	}
	for i := range s.times {
		if s.times[i] != other.times[i] {
			return fmt.Errorf("%w: sample times differ at index %d", ErrAlignment, i)
		}
	}

	merged, err := mergeTypes(s.vtype, other.vtype)
	if err != nil {
		return err
	}

	s.vtype = merged
	vecmath.AddBlockInPlace(s.values, other.values)
	s.invalidate()

	return nil
}

// mergeTypes reconciles the value types of two signals being combined.
func mergeTypes(a, b ValueType) (ValueType, error) {
	switch {
	case a == b:
		return a, nil
	case a == Undefined:
		return b, nil
	case b == Undefined:
		return a, nil
	}

	return Undefined, fmt.Errorf("%w: cannot combine %v with %v", ErrAlignment, a, b)
}

// WithTimes evaluates the signal at an arbitrary new time grid and returns
// the result as a new Signal. Function-backed signals re-evaluate their
// generator; everything else is piecewise-linear interpolation, exactly
// zero outside the original time window. The new times must be strictly
// increasing.
func (s *Signal) WithTimes(newTimes []float64) (*Signal, error) {
	if err := checkTimes(newTimes); err != nil {
		return nil, err
	}

	if s.source != nil {
		return FromFunc(newTimes, s.source, s.vtype)
	}

	values := make([]float64, len(newTimes))

	switch {
	case len(s.times) == 1:
		for i, t := range newTimes {
			if t == s.times[0] {
				values[i] = s.values[0]
			}
		}
	default:
		var pl interp.PiecewiseLinear
		if err := pl.Fit(s.times, s.values); err != nil {
			return nil, fmt.Errorf("signal: interpolation setup failed: %w", err)
		}

		lo, hi := s.times[0], s.times[len(s.times)-1]
		for i, t := range newTimes {
			if t < lo || t > hi {
				continue
			}
			values[i] = pl.Predict(t)
		}
	}

	return New(newTimes, values, s.vtype)
}

// invalidate drops the cached spectrum and detaches any generator function,
// which no longer describes the mutated values.
func (s *Signal) invalidate() {
	s.spec = nil
	s.source = nil
}

// uniformDt returns the sample spacing after verifying the grid is uniform
// within tolerance. Fourier-domain operations call this to fail fast on
// degenerate sampling.
func (s *Signal) uniformDt() (float64, error) {
	if len(s.times) < 2 {
		return 0, fmt.Errorf("%w: %d samples is too short to determine spacing", ErrNonUniform, len(s.times))
	}

	dt := s.times[1] - s.times[0]
	for i := 2; i < len(s.times); i++ {
		step := s.times[i] - s.times[i-1]
		if math.Abs(step-dt) > uniformTol*math.Abs(dt) {
			return 0, fmt.Errorf("%w: spacing %v at index %d, expected %v", ErrNonUniform, step, i, dt)
		}
	}

	return dt, nil
}

// ensurePlan creates the transform plan for this trace length on first use.
func (s *Signal) ensurePlan() error {
	if s.plan != nil {
		return nil
	}

	plan, err := newPlan(len(s.values))
	if err != nil {
		return err
	}

	s.plan = plan

	return nil
}

func newPlan(n int) (*algofft.Plan[complex128], error) {
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("signal: failed to create FFT plan: %w", err)
	}

	return plan, nil
}
