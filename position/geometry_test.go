package position

import (
	"math"
	"testing"
)

func TestHasLineOfSightClearPath(t *testing.T) {
	// Two satellites well above the surface on the same side of Earth.
	p1 := Vec3{X: EarthRadiusM + 550000, Y: 0, Z: 0}
	p2 := Vec3{X: EarthRadiusM + 550000, Y: 1000000, Z: 0}
	if !HasLineOfSight(p1, p2) {
		t.Fatal("expected clear line of sight between nearby satellites")
	}
}

func TestHasLineOfSightBlockedByEarth(t *testing.T) {
	// Antipodal satellites; the segment passes through the planet.
	p1 := Vec3{X: EarthRadiusM + 550000, Y: 0, Z: 0}
	p2 := Vec3{X: -(EarthRadiusM + 550000), Y: 0, Z: 0}
	if HasLineOfSight(p1, p2) {
		t.Fatal("expected Earth to block antipodal line of sight")
	}
}

func TestHasLineOfSightGrazing(t *testing.T) {
	// Both endpoints high enough that the chord clears the surface.
	alt := 2 * EarthRadiusM
	p1 := Vec3{X: alt, Y: 0, Z: 0}
	p2 := Vec3{X: 0, Y: alt, Z: 0}
	if !HasLineOfSight(p1, p2) {
		t.Fatal("expected chord at 2 Earth radii to clear the surface")
	}
}

func TestElevationDegreesOverhead(t *testing.T) {
	observer := Vec3{X: EarthRadiusM, Y: 0, Z: 0}
	target := Vec3{X: EarthRadiusM + 550000, Y: 0, Z: 0}
	got := ElevationDegrees(observer, target)
	if math.Abs(got-90) > 1e-6 {
		t.Fatalf("overhead elevation = %v, want 90", got)
	}
}

func TestElevationDegreesHorizon(t *testing.T) {
	observer := Vec3{X: EarthRadiusM, Y: 0, Z: 0}
	// Target straight along the local horizontal.
	target := Vec3{X: EarthRadiusM, Y: 1000000, Z: 0}
	got := ElevationDegrees(observer, target)
	if math.Abs(got) > 1e-6 {
		t.Fatalf("horizon elevation = %v, want 0", got)
	}
}

func TestDistanceToSymmetric(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: -4, Y: 5, Z: 6}
	if d1, d2 := a.DistanceTo(b), b.DistanceTo(a); d1 != d2 {
		t.Fatalf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestGeodeticToECEFEquatorPrimeMeridian(t *testing.T) {
	x, y, z := GeodeticToECEF(0, 0, 0)
	if math.Abs(x-EarthRadiusM) > 1e-6 || math.Abs(y) > 1e-6 || math.Abs(z) > 1e-6 {
		t.Fatalf("got (%v, %v, %v), want (%v, 0, 0)", x, y, z, EarthRadiusM)
	}
}

func TestGeodeticToECEFNorthPole(t *testing.T) {
	x, y, z := GeodeticToECEF(90, 0, 0)
	if math.Abs(z-EarthRadiusM) > 1e-6 {
		t.Fatalf("north pole z = %v, want %v", z, EarthRadiusM)
	}
	if math.Abs(x) > 1e-3 || math.Abs(y) > 1e-3 {
		t.Fatalf("north pole x, y = %v, %v, want ~0", x, y)
	}
}
