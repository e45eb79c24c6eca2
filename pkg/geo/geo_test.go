package geo

import (
	"errors"
	"math"
	"testing"
)

func TestHaversine_KnownDistance(t *testing.T) {
	paris := Coordinate{Lat: 48.8566, Lng: 2.3522}
	london := Coordinate{Lat: 51.5074, Lng: -0.1278}

	km, err := Haversine(paris, london)
	if err != nil {
		t.Fatalf("Haversine() error = %v", err)
	}
	if km < 343 || km > 344.5 {
		t.Errorf("Paris-London = %.2f km, want ~343-344", km)
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	a := Coordinate{Lat: 35.6762, Lng: 139.6503}
	b := Coordinate{Lat: -33.8688, Lng: 151.2093}

	d1, err := Haversine(a, b)
	if err != nil {
		t.Fatalf("Haversine(a, b) error = %v", err)
	}
	d2, err := Haversine(b, a)
	if err != nil {
		t.Fatalf("Haversine(b, a) error = %v", err)
	}
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("Haversine not symmetric: %v vs %v", d1, d2)
	}
}

func TestHaversine_SamePoint(t *testing.T) {
	p := Coordinate{Lat: 40.4168, Lng: -3.7038}
	km, err := Haversine(p, p)
	if err != nil {
		t.Fatalf("Haversine() error = %v", err)
	}
	if km != 0 {
		t.Errorf("Haversine(p, p) = %v, want 0", km)
	}
}

func TestHaversine_InvalidCoordinate(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinate
	}{
		{"latitude too high", Coordinate{Lat: 91, Lng: 0}, Coordinate{}},
		{"latitude too low", Coordinate{Lat: -90.5, Lng: 0}, Coordinate{}},
		{"longitude too high", Coordinate{}, Coordinate{Lat: 0, Lng: 180.1}},
		{"longitude too low", Coordinate{}, Coordinate{Lat: 0, Lng: -181}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Haversine(tt.a, tt.b)
			var invalid *InvalidCoordinateError
			if !errors.As(err, &invalid) {
				t.Errorf("Haversine() error = %v, want InvalidCoordinateError", err)
			}
		})
	}
}

func TestValidate_Boundary(t *testing.T) {
	// 边界值本身是合法的
	for _, c := range []Coordinate{
		{Lat: 90, Lng: 180},
		{Lat: -90, Lng: -180},
		{Lat: 0, Lng: 0},
	} {
		if err := c.Validate(); err != nil {
			t.Errorf("Validate(%v) = %v, want nil", c, err)
		}
	}
}
