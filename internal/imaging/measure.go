package imaging

import (
	"fmt"
	"math"
)

// Point represents a 2D point
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceResult contains measurement information
type DistanceResult struct {
	Distance     float64 `json:"distance"`
	DeltaX       float64 `json:"delta_x"`
	DeltaY       float64 `json:"delta_y"`
	AngleDegrees float64 `json:"angle_degrees"`
}

// MeasureDistance returns the Euclidean distance between exactly two points.
// Any other point count is rejected with ErrInvalidInput.
func MeasureDistance(points []Point) (float64, error) {
	if len(points) != 2 {
		return 0, fmt.Errorf("must supply exactly two points, got %d: %w", len(points), ErrInvalidInput)
	}
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return 0, fmt.Errorf("point (%v,%v) is not finite: %w", p.X, p.Y, ErrInvalidInput)
		}
	}
	return Measure(points[0], points[1]).Distance, nil
}

// Measure calculates the distance and direction from p0 to p1
func Measure(p0, p1 Point) DistanceResult {
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y

	// Angle in degrees (0 = horizontal right, 90 = down)
	angle := math.Atan2(dy, dx) * 180 / math.Pi

	return DistanceResult{
		Distance:     math.Hypot(dx, dy),
		DeltaX:       dx,
		DeltaY:       dy,
		AngleDegrees: math.Round(angle*10) / 10,
	}
}
