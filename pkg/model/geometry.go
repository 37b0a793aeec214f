package model

import "math"

// Point is a position in canvas coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

// Contains reports strict containment of (x, y).
func (r Rect) Contains(x, y float64) bool {
	return x > r.X && x < r.X+r.W && y > r.Y && y < r.Y+r.H
}

// Distance returns the euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// Intersection returns the crossing point of the infinite lines through
// (x1,y1)-(x2,y2) and (x3,y3)-(x4,y4). ok is false for parallel lines.
func Intersection(x1, y1, x2, y2, x3, y3, x4, y4 float64) (p Point, ok bool) {
	d := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if d == 0 {
		return Point{X: math.NaN(), Y: math.NaN()}, false
	}
	a := x1*y2 - y1*x2
	b := x3*y4 - y3*x4
	return Point{
		X: (a*(x3-x4) - (x1-x2)*b) / d,
		Y: (a*(y3-y4) - (y1-y2)*b) / d,
	}, true
}

// PCase returns the parameter t of (x, y) along the segment (x1,y1)-(x2,y2),
// assuming the point lies on the segment's line: 0 at the start, 1 at the end.
// The axis with the larger extent is used so vertical and horizontal
// segments are both well defined.
func PCase(x, y, x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	if math.Abs(dx) >= math.Abs(dy) {
		if dx == 0 {
			return math.NaN()
		}
		return (x - x1) / dx
	}
	return (y - y1) / dy
}

// PDistance returns the distance from (x, y) to the segment (x1,y1)-(x2,y2).
func PDistance(x, y, x1, y1, x2, y2 float64) float64 {
	a := x - x1
	b := y - y1
	c := x2 - x1
	d := y2 - y1

	lenSq := c*c + d*d
	param := -1.0
	if lenSq != 0 {
		param = (a*c + b*d) / lenSq
	}

	var xx, yy float64
	switch {
	case param < 0:
		xx, yy = x1, y1
	case param > 1:
		xx, yy = x2, y2
	default:
		xx = x1 + param*c
		yy = y1 + param*d
	}
	return Distance(x, y, xx, yy)
}

// PDistanceLine returns the distance from (x, y) to the infinite line
// through (x1,y1)-(x2,y2).
func PDistanceLine(x, y, x1, y1, x2, y2 float64) float64 {
	l := Distance(x1, y1, x2, y2)
	if l == 0 {
		return Distance(x, y, x1, y1)
	}
	return math.Abs((y2-y1)*x-(x2-x1)*y+x2*y1-y2*x1) / l
}

// CrossZPos reports whether (x, y) lies on the positive side of the
// directed line (x1,y1)->(x2,y2), by the sign of the cross product's z.
func CrossZPos(x, y, x1, y1, x2, y2 float64) bool {
	return (x2-x1)*(y-y1)-(y2-y1)*(x-x1) > 0
}
