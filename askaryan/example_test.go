package askaryan_test

import (
	"fmt"
	"math"

	"github.com/GefestLAB/pyrex/askaryan"
)

func ExampleZHS() {
	times := make([]float64, 256)
	for i := range times {
		times[i] = float64(i) * 1e-9
	}

	pulse, err := askaryan.ZHS(times, 1e5, math.Acos(1/1.78), 1.78,
		askaryan.WithViewingDistance(100),
		askaryan.WithPulseOffset(50e-9),
	)
	if err != nil {
		fmt.Println("error")
		return
	}

	peak := 0
	values := pulse.Values()
	for i, v := range values {
		if math.Abs(v) > math.Abs(values[peak]) {
			peak = i
		}
	}
	fmt.Println(pulse.Type(), "pulse, peak at sample", peak)
	// Output: field pulse, peak at sample 50
}
