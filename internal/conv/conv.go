// Package conv provides linear convolution for synthesizing radiated
// waveforms from longitudinal shower profiles. Short kernels run in the
// time domain; long ones go through FFT-based overlap-add.
package conv

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

var (
	ErrEmptyInput  = errors.New("conv: empty input")
	ErrEmptyKernel = errors.New("conv: empty kernel")
)

// directThreshold is the kernel length above which FFT convolution wins.
const directThreshold = 64

// Convolve returns the full linear convolution of a and b, of length
// len(a)+len(b)-1, choosing the algorithm from the operand sizes.
func Convolve(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	if len(b) > len(a) {
		a, b = b, a
	}

	if len(b) <= directThreshold {
		return Direct(a, b)
	}

	oa, err := NewOverlapAdd(b, 0)
	if err != nil {
		return nil, err
	}

	return oa.Process(a)
}

// Direct performs O(N*M) time-domain convolution. Suitable for short
// kernels; the inner loop is vectorized once the kernel is long enough to
// pay for it.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	n, m := len(a), len(b)
	out := make([]float64, n+m-1)

	const simdThreshold = 4
	if m < simdThreshold {
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				out[i+j] += a[i] * b[j]
			}
		}
		return out, nil
	}

	scaled := make([]float64, m)
	for i := 0; i < n; i++ {
		vecmath.ScaleBlock(scaled, b, a[i])
		vecmath.AddBlockInPlace(out[i:i+m], scaled)
	}

	return out, nil
}

// OverlapAdd is a reusable FFT convolver: the kernel transform is computed
// once, input blocks are transformed, multiplied, and folded back with
// overlapping tails added.
type OverlapAdd struct {
	kernelFFT []complex128

	kernelLen int
	blockSize int
	fftSize   int

	plan *algofft.Plan[complex128]

	inBlock  []complex128
	outBlock []complex128
}

// NewOverlapAdd prepares a convolver for the given kernel. A blockSize of 0
// picks one sized to the kernel.
func NewOverlapAdd(kernel []float64, blockSize int) (*OverlapAdd, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	kernelLen := len(kernel)
	if blockSize <= 0 {
		blockSize = nextPowerOf2(kernelLen)
		if blockSize < 256 {
			blockSize = 256
		}
	}

	fftSize := nextPowerOf2(blockSize + kernelLen - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	oa := &OverlapAdd{
		kernelFFT: make([]complex128, fftSize),
		kernelLen: kernelLen,
		blockSize: blockSize,
		fftSize:   fftSize,
		plan:      plan,
		inBlock:   make([]complex128, fftSize),
		outBlock:  make([]complex128, fftSize),
	}

	padded := make([]complex128, fftSize)
	for i, v := range kernel {
		padded[i] = complex(v, 0)
	}
	if err := plan.Forward(oa.kernelFFT, padded); err != nil {
		return nil, fmt.Errorf("conv: kernel FFT failed: %w", err)
	}

	return oa, nil
}

// Process convolves input with the prepared kernel and returns the full
// linear convolution.
func (oa *OverlapAdd) Process(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	outputLen := len(input) + oa.kernelLen - 1
	output := make([]float64, outputLen)

	numBlocks := (len(input) + oa.blockSize - 1) / oa.blockSize
	for blockIdx := 0; blockIdx < numBlocks; blockIdx++ {
		start := blockIdx * oa.blockSize
		end := start + oa.blockSize
		if end > len(input) {
			end = len(input)
		}

		for i := range oa.inBlock {
			oa.inBlock[i] = 0
		}
		for i, v := range input[start:end] {
			oa.inBlock[i] = complex(v, 0)
		}

		if err := oa.plan.Forward(oa.inBlock, oa.inBlock); err != nil {
			return nil, fmt.Errorf("conv: forward FFT failed: %w", err)
		}

		for i := range oa.outBlock {
			oa.outBlock[i] = oa.inBlock[i] * oa.kernelFFT[i]
		}

		if err := oa.plan.Inverse(oa.outBlock, oa.outBlock); err != nil {
			return nil, fmt.Errorf("conv: inverse FFT failed: %w", err)
		}

		// Each block contributes blockLen+kernelLen-1 samples; tails
		// past the block boundary add onto the next block's head.
		resultLen := (end - start) + oa.kernelLen - 1
		for i := 0; i < resultLen && start+i < outputLen; i++ {
			output[start+i] += real(oa.outBlock[i])
		}
	}

	return output, nil
}

// FFTSize returns the transform length used per block.
func (oa *OverlapAdd) FFTSize() int { return oa.fftSize }

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
