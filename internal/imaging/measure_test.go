package imaging

import (
	"errors"
	"math"
	"testing"
)

func TestMeasureDistance(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   float64
	}{
		{"3-4-5 triangle", []Point{{0, 0}, {3, 4}}, 5},
		{"horizontal", []Point{{0, 50}, {100, 50}}, 100},
		{"vertical", []Point{{50, 100}, {50, 0}}, 100},
		{"diagonal", []Point{{0, 0}, {100, 100}}, 100 * math.Sqrt2},
		{"same point", []Point{{7, 7}, {7, 7}}, 0},
		{"negative coordinates", []Point{{-3, -4}, {0, 0}}, 5},
		{"fractional", []Point{{0.5, 0.5}, {1.5, 0.5}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MeasureDistance(tt.points)
			if err != nil {
				t.Fatalf("MeasureDistance failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("distance: got %.6f, want %.6f", got, tt.want)
			}
		})
	}
}

func TestMeasureDistance_Symmetric(t *testing.T) {
	a, b := Point{12, -3}, Point{-8, 40}

	ab, err := MeasureDistance([]Point{a, b})
	if err != nil {
		t.Fatalf("MeasureDistance failed: %v", err)
	}
	ba, err := MeasureDistance([]Point{b, a})
	if err != nil {
		t.Fatalf("MeasureDistance failed: %v", err)
	}
	if ab != ba {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestMeasureDistance_InvalidPoints(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
	}{
		{"none", nil},
		{"one point", []Point{{1, 1}}},
		{"three points", []Point{{0, 0}, {1, 1}, {2, 2}}},
		{"NaN coordinate", []Point{{math.NaN(), 0}, {1, 1}}},
		{"infinite coordinate", []Point{{0, 0}, {1, math.Inf(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MeasureDistance(tt.points)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name       string
		p0, p1     Point
		wantDX     float64
		wantDY     float64
		wantAngle  float64
		wantLength float64
	}{
		{"horizontal right", Point{0, 50}, Point{100, 50}, 100, 0, 0, 100},
		{"horizontal left", Point{100, 50}, Point{0, 50}, -100, 0, 180, 100},
		{"vertical down", Point{50, 0}, Point{50, 100}, 0, 100, 90, 100},
		{"vertical up", Point{50, 100}, Point{50, 0}, 0, -100, -90, 100},
		{"3-4-5 triangle", Point{0, 0}, Point{3, 4}, 3, 4, 53.1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Measure(tt.p0, tt.p1)

			if result.DeltaX != tt.wantDX {
				t.Errorf("DeltaX: got %v, want %v", result.DeltaX, tt.wantDX)
			}
			if result.DeltaY != tt.wantDY {
				t.Errorf("DeltaY: got %v, want %v", result.DeltaY, tt.wantDY)
			}
			if math.Abs(result.Distance-tt.wantLength) > 1e-9 {
				t.Errorf("Distance: got %.2f, want %.2f", result.Distance, tt.wantLength)
			}
			if math.Abs(result.AngleDegrees-tt.wantAngle) > 0.05 {
				t.Errorf("AngleDegrees: got %.1f, want %.1f", result.AngleDegrees, tt.wantAngle)
			}
		})
	}
}
