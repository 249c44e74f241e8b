package raytrace

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GefestLAB/pyrex/internal/testutil"
	"github.com/GefestLAB/pyrex/medium"
)

func TestAnalyticVertical(t *testing.T) {
	ice := medium.NewAntarcticIce()

	rt, err := Analytic{}.Trace(ice, r3.Vec{Z: -100}, r3.Vec{Z: -50})
	if err != nil {
		t.Fatalf("Trace() error = %v", err)
	}
	sols := rt.Solutions()
	if len(sols) != 2 {
		t.Fatalf("Solutions() returned %d paths, want 2", len(sols))
	}

	direct := sols[0]
	if direct.Kind() != Direct {
		t.Fatalf("first solution Kind() = %v, want %v", direct.Kind(), Direct)
	}
	testutil.RequireNearlyEqual(t, direct.LaunchAngle(), 0, 1e-12)

	// Closed forms carry no grid standoff, so the vertical ray is exact.
	testutil.RequireNearlyEqual(t, direct.PathLength(), 50, 1e-12)

	n0, k, a := ice.Parameters()
	wantTof := (n0*50 - k/a*(math.Exp(a*(-50))-math.Exp(a*(-100)))) / medium.C
	testutil.RequireNearlyEqual(t, direct.TimeOfFlight(), wantTof, 1e-15)

	bounce := sols[1]
	if bounce.Kind() != Reflected {
		t.Fatalf("second solution Kind() = %v, want %v", bounce.Kind(), Reflected)
	}
	testutil.RequireNearlyEqual(t, bounce.LaunchAngle(), 0, 1e-12)
	testutil.RequireNearlyEqual(t, bounce.PathLength(), 150, 1e-12)
	if bounce.TimeOfFlight() <= direct.TimeOfFlight() {
		t.Fatal("surface bounce should be slower than the direct ray")
	}
}

func TestAnalyticAgreesWithBasic(t *testing.T) {
	ice := medium.NewAntarcticIce()
	from := r3.Vec{Z: -150}
	to := r3.Vec{X: 100, Z: -30}

	basic, err := Basic{}.Trace(ice, from, to)
	if err != nil {
		t.Fatalf("Basic.Trace() error = %v", err)
	}
	analytic, err := Analytic{}.Trace(ice, from, to)
	if err != nil {
		t.Fatalf("Analytic.Trace() error = %v", err)
	}

	nb := basic.Solutions()
	na := analytic.Solutions()
	if len(nb) != 2 || len(na) != 2 {
		t.Fatalf("solution counts differ: basic %d, analytic %d, want 2 each", len(nb), len(na))
	}
	testutil.RequireNearlyEqual(t, basic.DirectRMax(), analytic.DirectRMax(), 0.2)
	testutil.RequireNearlyEqual(t, basic.IndirectRMax(), analytic.IndirectRMax(), 0.2)

	for i := range nb {
		pb, pa := nb[i], na[i]
		if pb.Kind() != pa.Kind() {
			t.Fatalf("path %d kinds differ: basic %v, analytic %v", i, pb.Kind(), pa.Kind())
		}
		testutil.RequireNearlyEqual(t, pb.LaunchAngle(), pa.LaunchAngle(), 5e-4)
		testutil.RequireNearlyEqual(t, pb.ReceiveAngle(), pa.ReceiveAngle(), 5e-4)
		testutil.RequireNearlyEqual(t, pb.PathLength(), pa.PathLength(), 0.5)
		testutil.RequireNearlyEqual(t, pb.TimeOfFlight(), pa.TimeOfFlight(), 5e-9)
		testutil.RequireNearlyEqual(t, pb.AttenuationAt(200e6), pa.AttenuationAt(200e6), 1e-3)
	}
}

func TestAnalyticDeepWideGeometry(t *testing.T) {
	ice := medium.NewAntarcticIce()

	rt, err := Analytic{}.Trace(ice, r3.Vec{Z: -1000}, r3.Vec{X: 400, Z: -100})
	if err != nil {
		t.Fatalf("Trace() error = %v", err)
	}
	if !rt.Exists() {
		t.Fatal("Trace() found no solutions for a deep source in direct range")
	}

	direct := rt.Solutions()[0]
	if direct.Kind() != Direct {
		t.Fatalf("first solution Kind() = %v, want %v", direct.Kind(), Direct)
	}

	euclid := math.Hypot(400, 900)
	if direct.PathLength() < euclid {
		t.Fatalf("PathLength() = %v, below the straight-line distance %v", direct.PathLength(), euclid)
	}
	if direct.PathLength() > 1.02*euclid {
		t.Fatalf("PathLength() = %v, too far above the straight-line distance %v", direct.PathLength(), euclid)
	}
	if direct.LaunchAngle() <= 0 || direct.LaunchAngle() >= math.Pi/2 {
		t.Fatalf("LaunchAngle() = %v, want an upward oblique ray", direct.LaunchAngle())
	}
}
