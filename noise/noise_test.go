package noise

import (
	"math"
	"testing"

	"github.com/GefestLAB/pyrex/internal/testutil"
	"github.com/GefestLAB/pyrex/signal"
)

func TestGaussianReproducible(t *testing.T) {
	times := testutil.UniformTimes(0, 1e-9, 100)

	a, err := New(WithSeed(12)).Gaussian(times, 1)
	if err != nil {
		t.Fatalf("Gaussian() error = %v", err)
	}
	b, err := New(WithSeed(12)).Gaussian(times, 1)
	if err != nil {
		t.Fatalf("Gaussian() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, a.Values(), b.Values(), 0)

	c, err := New(WithSeed(13)).Gaussian(times, 1)
	if err != nil {
		t.Fatalf("Gaussian() error = %v", err)
	}

	diff, err := testutil.MaxAbsDiff(a.Values(), c.Values())
	if err != nil {
		t.Fatalf("MaxAbsDiff() error = %v", err)
	}
	if diff == 0 {
		t.Fatal("different seeds produced identical traces")
	}
}

func TestGaussianStatistics(t *testing.T) {
	const sigma = 2.0
	times := testutil.UniformTimes(0, 1e-9, 10000)

	s, err := New(WithSeed(1)).Gaussian(times, sigma)
	if err != nil {
		t.Fatalf("Gaussian() error = %v", err)
	}

	var sum, sumSq float64
	for _, v := range s.Values() {
		sum += v
		sumSq += v * v
	}
	n := float64(s.Len())
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)

	if math.Abs(mean) > 0.1 {
		t.Fatalf("sample mean = %v, want within 0.1 of 0", mean)
	}
	if math.Abs(std-sigma)/sigma > 0.05 {
		t.Fatalf("sample std = %v, want within 5%% of %v", std, sigma)
	}
}

func TestGaussianValueType(t *testing.T) {
	s, err := New(WithSeed(1)).Gaussian(testutil.UniformTimes(0, 1e-9, 4), 1)
	if err != nil {
		t.Fatalf("Gaussian() error = %v", err)
	}

	if s.Type() != signal.Voltage {
		t.Fatalf("Type() = %v, want voltage", s.Type())
	}
}

func TestGaussianInvalidTimes(t *testing.T) {
	if _, err := New(WithSeed(1)).Gaussian([]float64{1, 0}, 1); err == nil {
		t.Fatal("Gaussian() on decreasing times expected an error")
	}
}
