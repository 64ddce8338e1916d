package analyzer

import "math"

// Point is a pixel-space coordinate.
type Point struct {
	X float64
	Y float64
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// AngleFromVertical returns how far the segment p1→p2 leans from the vertical
// axis, in degrees within [0, 180]. Image y grows downward, so a segment
// pointing straight up the image yields 0, as does a zero-length segment.
func AngleFromVertical(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	if dx == 0 && dy == 0 {
		// atan2(+0, -0) is π, not 0
		return 0
	}
	return math.Abs(degrees(math.Atan2(dx, -dy)))
}

// SlopeAngle returns the deviation of the segment p1→p2 from horizontal, in
// degrees within [0, 90]. The result does not depend on point order.
func SlopeAngle(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	angle := math.Abs(degrees(math.Atan2(dy, dx)))
	if angle > 90 {
		angle = 180 - angle
	}
	return angle
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
