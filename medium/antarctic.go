package medium

import "math"

// Default profile parameters for South Pole ice: deep asymptotic index,
// surface index contrast, and the exponential rate (1/m) of the density
// transition in the firn.
const (
	defaultDeepIndex = 1.78
	defaultContrast  = 0.43
	defaultRate      = 0.0132
)

// AntarcticIce is an exponential-profile ice model,
//
//	n(z) = n0 - k*exp(a*z)   for z <= 0,
//
// with index 1 above the surface. Attenuation length follows the two-piece
// log-frequency fit to South Pole radio measurements with its fixed break at
// 1 GHz; the fit is value-continuous but not slope-continuous across the
// break, which is retained from the source measurements rather than
// smoothed.
type AntarcticIce struct {
	n0 float64
	k  float64
	a  float64
}

// IceOption adjusts the profile parameters of an [AntarcticIce].
type IceOption func(*AntarcticIce)

// WithIndexProfile overrides the exponential index profile parameters:
// deep asymptotic index n0, surface contrast k (surface index is n0-k), and
// exponential rate a in 1/m.
func WithIndexProfile(n0, k, a float64) IceOption {
	return func(ice *AntarcticIce) {
		ice.n0 = n0
		ice.k = k
		ice.a = a
	}
}

// NewAntarcticIce returns a South Pole ice profile with the standard
// parameters unless overridden by options.
func NewAntarcticIce(opts ...IceOption) AntarcticIce {
	ice := AntarcticIce{
		n0: defaultDeepIndex,
		k:  defaultContrast,
		a:  defaultRate,
	}

	for _, opt := range opts {
		opt(&ice)
	}

	return ice
}

// Parameters returns the exponential profile parameters (n0, k, a).
func (ice AntarcticIce) Parameters() (n0, k, a float64) {
	return ice.n0, ice.k, ice.a
}

// Index returns the refractive index at depth z. Above the surface the
// index is that of air.
func (ice AntarcticIce) Index(z float64) float64 {
	if z > 0 {
		return 1
	}

	return ice.n0 - ice.k*math.Exp(ice.a*z)
}

// IndexGradient returns d(index)/dz at depth z; zero above the surface.
func (ice AntarcticIce) IndexGradient(z float64) float64 {
	if z > 0 {
		return 0
	}

	return -ice.k * ice.a * math.Exp(ice.a*z)
}

// DepthWithIndex inverts the index profile: the depth at which the ice
// reaches index n. Indices at or below the surface value map to the surface;
// indices at or above the deep asymptote are never attained and map to -Inf.
func (ice AntarcticIce) DepthWithIndex(n float64) float64 {
	switch {
	case n >= ice.n0:
		return math.Inf(-1)
	case n <= ice.n0-ice.k:
		return 0
	}

	return math.Log((ice.n0-n)/ice.k) / ice.a
}

// Temperature returns the ice temperature (K) at depth z, from the cubic
// fit to South Pole borehole measurements.
func (ice AntarcticIce) Temperature(z float64) float64 {
	zKm := -0.001 * z
	celsius := -51.07 + zKm*(2.677+zKm*(-0.01591+zKm*1.83415))

	return celsius + 273.15
}

// AttenuationLength returns the amplitude attenuation length (m) at depth z
// and frequency f (Hz). The underlying fit is piecewise in log-frequency
// with a fixed break at 1 GHz: value-continuous, slope-discontinuous.
// f = 0 yields +Inf (no loss at DC).
func (ice AntarcticIce) AttenuationLength(z, f float64) float64 {
	t := ice.Temperature(z) - 273.15
	fGHz := f * 1e-9

	a, b := attenCoefficients(t, fGHz)

	return 1 / math.Exp(a+b*math.Log(fGHz))
}

// attenCoefficients computes the coefficients of the log-linear attenuation
// model ln(1/L) = a + b*ln(f_GHz) by interpolating between the measured
// anchor frequencies 100 kHz, 1 GHz and 3.16 GHz at ice temperature t (C).
func attenCoefficients(t, fGHz float64) (a, b float64) {
	w0 := math.Log(1e-4)
	w1 := 0.0
	w2 := math.Log(3.16)

	b0 := -6.74890 + t*(0.026709-t*8.84e-4)
	b1 := -6.22121 - t*(0.070927+t*1.773e-3)
	b2 := -4.09468 - t*(0.002213+t*3.32e-4)

	if fGHz < 1 {
		a = (b1*w0 - b0*w1) / (w0 - w1)
		b = (b1 - b0) / (w1 - w0)
	} else {
		a = (b2*w1 - b1*w2) / (w1 - w2)
		b = (b2 - b1) / (w2 - w1)
	}

	return a, b
}
