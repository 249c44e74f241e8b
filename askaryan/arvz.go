package askaryan

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/GefestLAB/pyrex/internal/conv"
	"github.com/GefestLAB/pyrex/medium"
	"github.com/GefestLAB/pyrex/signal"
)

// Longitudinal shower profile constants for ice.
const (
	iceDensity = 0.92 // g/cm^3

	emCritEnergy = 7.86e-2 // GeV
	emRadLength  = 36.08   // g/cm^2

	hadCritEnergy  = 17.006e-2 // GeV
	hadRadLength   = 39.562    // g/cm^2
	hadIntLength   = 113.03    // g/cm^2
	hadScaleFactor = 0.11842

	elementaryCharge = 1.602e-19 // C
)

// maxDivider bounds the internal sampling refinement.
const maxDivider = 1000

// ARVZ returns the Askaryan field pulse of the given shower observed at
// viewingAngle (rad) from the shower axis in ice of refractive index n at
// the vertex. The electromagnetic and hadronic components are synthesized
// separately, each as the time derivative of the vector potential obtained
// by convolving the component's longitudinal charge profile with the
// parameterized form factor, and summed. The derivative leaves the final
// sample of the returned trace zero.
func ARVZ(times []float64, shower Shower, viewingAngle, n float64, opts ...Option) (*signal.Signal, error) {
	cfg := newConfig(opts)

	theta, err := checkAngle(viewingAngle)
	if err != nil {
		return nil, err
	}
	if n <= 1 {
		return nil, fmt.Errorf("%w: refractive index %v leaves no Cherenkov cone", ErrGeometry, n)
	}

	dt, err := checkGrid(times)
	if err != nil {
		return nil, err
	}

	em := showerSignal(times, dt, shower.EMEnergy, emProfile, theta, n, cfg)
	had := showerSignal(times, dt, shower.HadEnergy, hadProfile, theta, n, cfg)

	values := make([]float64, len(times))
	for i := range em {
		values[i] = em[i] + had[i]
	}

	return signal.New(times, values, signal.Field)
}

// showerSignal computes the field trace of a single shower component. The
// returned slice is one sample shorter than times; the caller pads.
func showerSignal(times []float64, dt, energy float64, profile func(z, energy float64) float64, theta, n float64, cfg config) []float64 {
	out := make([]float64, len(times)-1)
	if energy == 0 {
		return out
	}

	// Conversion factor from longitudinal position to retarded time
	// (s/m). Observation exactly on the cone is nudged off by a
	// negligible amount to keep the grids finite.
	retard := 1 - n*math.Cos(theta)
	if math.Abs(retard) < 1e-9 {
		retard = math.Copysign(1e-9, retard)
	}
	zToT := retard / medium.C

	// Refine the internal step until it resolves the shower maximum. The
	// cap keeps the working grids bounded when the retardation nearly
	// vanishes on the cone.
	maxLen := maxShowerLength(energy)
	refine := math.Abs(10 * dt / maxLen / zToT)
	divider := maxDivider
	if refine < maxDivider {
		divider = int(refine) + 1
	}
	if divider != 1 {
		cfg.logger.Debug("refining internal sampling for shower convolution",
			"zStep", dt/zToT, "divider", divider)
	}
	dz := dt / float64(divider) / zToT

	// Sample the charge profile out well past the shower maximum.
	nQ := int(math.Abs(2.5 * maxLen / dz))
	if nQ == 0 {
		return out
	}

	zGrid := make([]float64, nQ)
	charge := make([]float64, nQ)
	allZero := true
	zStep := math.Abs(dz)
	for k := range charge {
		zGrid[k] = float64(k) * zStep
		charge[k] = profile(zGrid[k], energy)
		if charge[k] != 0 {
			allZero = false
		}
	}
	if allZero {
		return out
	}

	// Size the form-factor grid so the full convolution, trimmed and
	// strided by the divider, lands back on the caller's grid. The
	// tolerance keeps a window around zero where the form factor peaks.
	const tTol = 10e-9
	tStart := times[0] - cfg.t0
	stride := dz * zToT
	nExtraBeg := int((tStart+tTol)/stride) + 1
	nExtraEnd := int((tTol-tStart)/stride) + 1 + nQ - len(times)*divider
	nRAC := len(times)*divider + 1 - nQ + nExtraBeg + nExtraEnd
	if nRAC < 1 {
		cfg.logger.Debug("form-factor window collapsed", "points", nRAC)
		return out
	}

	formFactor := make([]float64, nRAC)
	for j := range formFactor {
		t := tStart + float64(j-nExtraBeg)*stride
		formFactor[j] = rac(t, energy)
	}

	convolved, err := conv.Convolve(charge, formFactor)
	if err != nil {
		return out
	}

	if nExtraBeg > 0 {
		if nExtraBeg > len(convolved) {
			cfg.logger.Debug("pulse entirely before the sample window")
			return out
		}
		convolved = convolved[nExtraBeg:]
	} else {
		convolved = append(make([]float64, -nExtraBeg), convolved...)
	}
	if nExtraEnd > 0 {
		if nExtraEnd > len(convolved) {
			cfg.logger.Debug("pulse entirely after the sample window")
			return out
		}
		convolved = convolved[:len(convolved)-nExtraEnd]
	} else {
		convolved = append(convolved, make([]float64, -nExtraEnd)...)
	}

	// Stride back down to the caller's sampling rate.
	potential := make([]float64, 0, len(times))
	for i := 0; i < len(convolved); i += divider {
		potential = append(potential, convolved[i])
	}

	// Total excess charge along the shower, on the magnitude grid; the
	// sign of zToT is absorbed below through its absolute value.
	lq := integrate.Trapezoidal(zGrid, charge)
	sinThetaC := math.Sqrt(1 - 1/(n*n))
	norm := -math.Sin(theta) / sinThetaC / (lq * math.Abs(zToT) * float64(divider))

	// Field is the derivative of the vector potential, scaled to the
	// viewing distance. The dt of the derivative and the dt omitted from
	// the potential normalization cancel.
	for i := 0; i+1 < len(potential); i++ {
		out[i] = (potential[i+1] - potential[i]) * norm / cfg.distance
	}

	return out
}

// rac is the parameterized form factor: viewing distance times the vector
// potential at the Cherenkov angle (V*s), eq. 16 of the ARVZ paper. The
// same form is used for both shower components.
func rac(t, energy float64) float64 {
	ta := math.Abs(t) * 1e9
	if t >= 0 {
		return -4.5e-17 * energy * (math.Exp(-ta/0.057) + math.Pow(1+2.87*ta, -3))
	}

	return -4.5e-17 * energy * (math.Exp(-ta/0.030) + math.Pow(1+3.05*ta, -3.5))
}

// emProfile is the Greisen longitudinal charge profile (C) of an
// electromagnetic shower of the given energy (GeV) at depth z (m).
func emProfile(z, energy float64) float64 {
	if energy <= emCritEnergy || z <= 0 {
		return 0
	}

	x := 100 * z * iceDensity / emRadLength
	logRatio := math.Log(energy / emCritEnergy)
	age := 3 * x / (x + 2*logRatio)

	return 0.31 * math.Exp(x*(1-1.5*math.Log(age))) / math.Sqrt(logRatio) * elementaryCharge
}

// hadProfile is the Gaisser-Hillas longitudinal charge profile (C) of a
// hadronic shower of the given energy (GeV) at depth z (m).
func hadProfile(z, energy float64) float64 {
	if energy <= hadCritEnergy || z <= 0 {
		return 0
	}

	x := 100 * z * iceDensity
	eRatio := energy / hadCritEnergy
	xMax := hadRadLength * math.Log(eRatio)
	if xMax <= hadIntLength {
		// Too close to threshold for the parameterization's shape term.
		return 0
	}

	shape := math.Pow(x/(xMax-hadIntLength), xMax/hadIntLength)
	decay := math.Exp((xMax-x)/hadIntLength - 1)

	return hadScaleFactor * eRatio * (xMax - hadIntLength) / xMax * shape * decay * elementaryCharge
}

// maxShowerLength is the depth (m) of shower maximum for an
// electromagnetic cascade, also used to bound the internal z-step for
// hadronic components.
func maxShowerLength(energy float64) float64 {
	xMax := emRadLength * math.Log(energy/emCritEnergy) / math.Ln2

	return 0.01 * xMax / iceDensity
}
