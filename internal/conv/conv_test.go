package conv

import (
	"errors"
	"testing"

	"github.com/GefestLAB/pyrex/internal/testutil"
)

func TestDirectKnownResult(t *testing.T) {
	got, err := Direct([]float64{1, 2, 3}, []float64{4, 5})
	if err != nil {
		t.Fatalf("Direct() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, []float64{4, 13, 22, 15}, 1e-12)
}

func TestDirectWithImpulseKernel(t *testing.T) {
	input := testutil.DeterministicNoise(1, 1, 50)

	got, err := Direct(input, []float64{1})
	if err != nil {
		t.Fatalf("Direct() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, input, 1e-12)
}

func TestDirectVectorizedKernelPath(t *testing.T) {
	// A kernel past the vectorization threshold, checked against the
	// hand-computed result.
	a := []float64{1, -1}
	b := []float64{1, 2, 3, 4, 5}

	got, err := Direct(a, b)
	if err != nil {
		t.Fatalf("Direct() error = %v", err)
	}

	want := []float64{1, 1, 1, 1, 1, -5}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestDirectEmptyOperands(t *testing.T) {
	if _, err := Direct(nil, []float64{1}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Direct(nil, k) error = %v, want ErrEmptyInput", err)
	}
	if _, err := Direct([]float64{1}, nil); !errors.Is(err, ErrEmptyKernel) {
		t.Fatalf("Direct(a, nil) error = %v, want ErrEmptyKernel", err)
	}
}

func TestOverlapAddMatchesDirect(t *testing.T) {
	input := testutil.DeterministicNoise(7, 1, 500)
	kernel := testutil.DeterministicNoise(8, 0.5, 120)

	want, err := Direct(input, kernel)
	if err != nil {
		t.Fatalf("Direct() error = %v", err)
	}

	oa, err := NewOverlapAdd(kernel, 0)
	if err != nil {
		t.Fatalf("NewOverlapAdd() error = %v", err)
	}

	got, err := oa.Process(input)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(got) != len(input)+len(kernel)-1 {
		t.Fatalf("Process() length = %d, want %d", len(got), len(input)+len(kernel)-1)
	}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
}

func TestOverlapAddExplicitBlockSize(t *testing.T) {
	input := testutil.DeterministicNoise(2, 1, 300)
	kernel := testutil.DeterministicNoise(3, 1, 70)

	want, err := Direct(input, kernel)
	if err != nil {
		t.Fatalf("Direct() error = %v", err)
	}

	// A block size smaller than the input forces multiple tail folds.
	oa, err := NewOverlapAdd(kernel, 64)
	if err != nil {
		t.Fatalf("NewOverlapAdd() error = %v", err)
	}

	got, err := oa.Process(input)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
}

func TestConvolveAutoSelect(t *testing.T) {
	long := testutil.DeterministicNoise(4, 1, 400)
	short := testutil.DeterministicNoise(5, 1, 20)
	mid := testutil.DeterministicNoise(6, 1, 100)

	tests := []struct {
		name string
		a, b []float64
	}{
		{"short kernel direct path", long, short},
		{"long kernel fft path", long, mid},
		{"swapped operands", mid, long},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := Direct(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Direct() error = %v", err)
			}

			got, err := Convolve(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Convolve() error = %v", err)
			}

			testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
		})
	}
}

func TestConvolveCommutes(t *testing.T) {
	a := testutil.DeterministicNoise(10, 1, 150)
	b := testutil.DeterministicNoise(11, 1, 90)

	ab, err := Convolve(a, b)
	if err != nil {
		t.Fatalf("Convolve(a, b) error = %v", err)
	}
	ba, err := Convolve(b, a)
	if err != nil {
		t.Fatalf("Convolve(b, a) error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, ab, ba, 1e-9)
}

func BenchmarkConvolve(b *testing.B) {
	input := testutil.DeterministicNoise(1, 1, 4096)
	kernel := testutil.DeterministicNoise(2, 1, 256)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Convolve(input, kernel); err != nil {
			b.Fatal(err)
		}
	}
}
