package geo

import (
	"math"
	"testing"
)

func TestHaversineIdenticalPoints(t *testing.T) {
	d := Haversine(39.916, 116.397, 39.916, 116.397)
	if d != 0 {
		t.Errorf("Expected zero distance for identical points, got %f", d)
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := Haversine(59.913, 10.752, 63.430, 10.395)
	b := Haversine(63.430, 10.395, 59.913, 10.752)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("Expected symmetric distances, got %f and %f", a, b)
	}
}

func TestHaversineNonNegative(t *testing.T) {
	points := [][4]float64{
		{0, 0, 0, 0},
		{-90, 0, 90, 0},
		{39.916, 116.397, 39.917, 116.398},
		{12.5, -70.1, -33.9, 151.2},
	}
	for _, p := range points {
		if d := Haversine(p[0], p[1], p[2], p[3]); d < 0 {
			t.Errorf("Expected non-negative distance for %v, got %f", p, d)
		}
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Oslo to Trondheim, roughly 392 km
	d := Haversine(59.913, 10.752, 63.430, 10.395)
	if d < 380 || d > 405 {
		t.Errorf("Expected Oslo-Trondheim distance around 392 km, got %f", d)
	}
}

func TestHaversineMonotonic(t *testing.T) {
	// Moving the second point further along the same meridian must increase
	// the distance.
	near := Haversine(39.916, 116.397, 39.926, 116.397)
	far := Haversine(39.916, 116.397, 39.956, 116.397)
	if near >= far {
		t.Errorf("Expected distance to grow with separation, got near=%f far=%f", near, far)
	}
}
