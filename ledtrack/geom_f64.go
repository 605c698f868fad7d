package ledtrack

import (
	"image"
	"math"
)

type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// Center returns the center of the rectangle.
func (r Rectangle) Center() Point {
	return Point{
		X: r.X + r.Width/2.0,
		Y: r.Y + r.Height/2.0,
	}
}

// Area returns the rectangle area in square pixels.
func (r Rectangle) Area() float64 {
	return r.Width * r.Height
}

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

// perpendicularDistance returns the distance from p to the infinite line
// through a and b. Returns the distance to a when a and b coincide.
func perpendicularDistance(p, a, b Point) float64 {
	abX := b.X - a.X
	abY := b.Y - a.Y
	lineLen := math.Hypot(abX, abY)
	if lineLen < 1e-9 {
		return euclideanDistance(p, a)
	}
	// Cross product magnitude over segment length.
	return math.Abs(abX*(a.Y-p.Y)-(a.X-p.X)*abY) / lineLen
}

// projectOnAxis returns the scalar projection of p onto the axis from origin
// towards dir. Used to order points along the pattern's principal axis.
func projectOnAxis(p, origin, dir Point) float64 {
	return (p.X-origin.X)*(dir.X-origin.X) + (p.Y-origin.Y)*(dir.Y-origin.Y)
}
