package attendance_test

import (
	"math"
	"testing"

	"github.com/GeoAttend/GA-Backend/internal/attendance"
)

func TestDistanceMeters_ZeroForSamePoint(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{12.9716, 77.5946},
		{-33.8688, 151.2093},
		{90, 0},
	}
	for _, p := range points {
		if d := attendance.DistanceMeters(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("distance(%v, %v) to itself = %f, want 0", p[0], p[1], d)
		}
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := [2]float64{12.9716, 77.5946}
	b := [2]float64{13.0827, 80.2707}

	ab := attendance.DistanceMeters(a[0], a[1], b[0], b[1])
	ba := attendance.DistanceMeters(b[0], b[1], a[0], a[1])
	if math.Abs(ab-ba) > 1e-6 {
		t.Errorf("distance not symmetric: a->b=%f b->a=%f", ab, ba)
	}
}

func TestDistanceMeters_OneDegreeLongitudeAtEquator(t *testing.T) {
	// One degree of arc on a 6,371 km sphere is about 111,195 m.
	const want = 111195.0

	got := attendance.DistanceMeters(0, 0, 0, 1)
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("distance (0,0)-(0,1) = %f, want %f ±1%%", got, want)
	}
}

func TestDistanceMeters_AntipodalIsFinite(t *testing.T) {
	// Antipodal points push the Haversine argument against 1.0; rounding
	// must not produce NaN.
	got := attendance.DistanceMeters(0, 0, 0, 180)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("antipodal distance is not finite: %f", got)
	}

	// Half the circumference of the sphere.
	want := math.Pi * 6371000.0
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("antipodal distance = %f, want %f ±1%%", got, want)
	}
}
