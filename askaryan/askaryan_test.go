package askaryan

import (
	"errors"
	"math"
	"testing"

	"github.com/GefestLAB/pyrex/internal/testutil"
	"github.com/GefestLAB/pyrex/signal"
)

// iceIndex is the refractive index of deep antarctic ice.
const iceIndex = 1.78

// peakAbs returns the index and magnitude of the largest sample.
func peakAbs(values []float64) (int, float64) {
	idx := 0
	peak := 0.0
	for i, v := range values {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
			idx = i
		}
	}

	return idx, peak
}

func TestZHSZeroEnergy(t *testing.T) {
	times := testutil.UniformTimes(0, 1e-9, 64)

	pulse, err := ZHS(times, 0, 0.5, iceIndex)
	if err != nil {
		t.Fatalf("ZHS() error = %v", err)
	}

	if pulse.Type() != signal.Field {
		t.Fatalf("Type() = %v, want %v", pulse.Type(), signal.Field)
	}
	for i, v := range pulse.Values() {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0 for a zero-energy shower", i, v)
		}
	}
}

func TestZHSEnergyScaling(t *testing.T) {
	times := testutil.UniformTimes(0, 1e-9, 128)
	theta := math.Acos(1 / iceIndex)

	one, err := ZHS(times, 1e3, theta, iceIndex)
	if err != nil {
		t.Fatalf("ZHS(1 TeV) error = %v", err)
	}
	two, err := ZHS(times, 2e3, theta, iceIndex)
	if err != nil {
		t.Fatalf("ZHS(2 TeV) error = %v", err)
	}

	want := make([]float64, len(times))
	for i, v := range one.Values() {
		want[i] = 2 * v
	}
	testutil.RequireSliceNearlyEqual(t, two.Values(), want, 1e-15)
}

func TestZHSDistanceScaling(t *testing.T) {
	times := testutil.UniformTimes(0, 1e-9, 128)
	theta := math.Acos(1 / iceIndex)

	near, err := ZHS(times, 1e4, theta, iceIndex)
	if err != nil {
		t.Fatalf("ZHS() error = %v", err)
	}
	far, err := ZHS(times, 1e4, theta, iceIndex, WithViewingDistance(2))
	if err != nil {
		t.Fatalf("ZHS(2 m) error = %v", err)
	}

	want := make([]float64, len(times))
	for i, v := range near.Values() {
		want[i] = v / 2
	}
	testutil.RequireSliceNearlyEqual(t, far.Values(), want, 1e-18)
}

func TestZHSConeFalloff(t *testing.T) {
	times := testutil.UniformTimes(0, 1e-9, 256)
	thetaC := math.Acos(1 / iceIndex)
	deg := math.Pi / 180

	var peaks []float64
	for _, off := range []float64{0, 2 * deg, 5 * deg} {
		pulse, err := ZHS(times, 1e4, thetaC+off, iceIndex)
		if err != nil {
			t.Fatalf("ZHS(%.1f deg off cone) error = %v", off/deg, err)
		}
		_, peak := peakAbs(pulse.Values())
		peaks = append(peaks, peak)
	}

	if peaks[0] <= peaks[1] || peaks[1] <= peaks[2] {
		t.Fatalf("peak amplitudes %v do not fall off away from the cone", peaks)
	}
	if peaks[2] <= 0 {
		t.Fatal("pulse vanished 5 degrees off cone")
	}
}

func TestZHSPulseOffset(t *testing.T) {
	times := testutil.UniformTimes(0, 1e-9, 256)

	pulse, err := ZHS(times, 1e4, math.Acos(1/iceIndex), iceIndex, WithPulseOffset(20e-9))
	if err != nil {
		t.Fatalf("ZHS() error = %v", err)
	}

	idx, peak := peakAbs(pulse.Values())
	if peak == 0 {
		t.Fatal("pulse has no signal")
	}
	if idx != 20 {
		t.Fatalf("peak at sample %d, want 20", idx)
	}
}

func TestZHSKeepsCallerGrid(t *testing.T) {
	times := testutil.UniformTimes(3e-9, 1e-9, 32)

	pulse, err := ZHS(times, 1e3, 0.9, iceIndex)
	if err != nil {
		t.Fatalf("ZHS() error = %v", err)
	}

	got := pulse.Times()
	for i := range times {
		if got[i] != times[i] {
			t.Fatalf("time %d = %v, want %v exactly", i, got[i], times[i])
		}
	}
}

func TestZHSValidation(t *testing.T) {
	good := testutil.UniformTimes(0, 1e-9, 32)
	ragged := []float64{0, 1e-9, 3e-9, 4e-9}

	tests := []struct {
		name  string
		times []float64
		angle float64
		n     float64
		want  error
	}{
		{"angle beyond pi", good, 3.5, iceIndex, ErrGeometry},
		{"index below one", good, 0.5, 0.5, ErrGeometry},
		{"single sample", []float64{0}, 0.5, iceIndex, ErrSampling},
		{"non-uniform grid", ragged, 0.5, iceIndex, ErrSampling},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ZHS(tt.times, 1e3, tt.angle, tt.n)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ZHS() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func BenchmarkZHS(b *testing.B) {
	times := testutil.UniformTimes(0, 1e-9, 1024)
	theta := math.Acos(1/iceIndex) + 0.01

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ZHS(times, 1e5, theta, iceIndex); err != nil {
			b.Fatal(err)
		}
	}
}
