package ledtrack

import (
	"math"
	"testing"
)

const (
	eps = 0.00001
)

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	correctAnswer := 181.57367
	answer := euclideanDistance(p1, p2)
	if math.Abs(answer-correctAnswer) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, correctAnswer)
	}
}

func TestPerpendicularDistance(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 10, Y: 0}
	p := Point{X: 5, Y: 3}
	correctAnswer := 3.0
	answer := perpendicularDistance(p, a, b)
	if math.Abs(answer-correctAnswer) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, correctAnswer)
	}

	// Diagonal line y = x: distance of (0, 2) is sqrt(2).
	b = Point{X: 10, Y: 10}
	p = Point{X: 0, Y: 2}
	correctAnswer = math.Sqrt2
	answer = perpendicularDistance(p, a, b)
	if math.Abs(answer-correctAnswer) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, correctAnswer)
	}
}

func TestPerpendicularDistanceDegenerateLine(t *testing.T) {
	a := Point{X: 4, Y: 3}
	p := Point{X: 0, Y: 0}
	// Coincident line points fall back to point distance.
	answer := perpendicularDistance(p, a, a)
	if math.Abs(answer-5.0) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, 5.0)
	}
}

func TestProjectOnAxis(t *testing.T) {
	origin := Point{X: 100, Y: 100}
	dir := Point{X: 200, Y: 100}
	// Projections must grow monotonically along the axis.
	pa := projectOnAxis(Point{X: 110, Y: 105}, origin, dir)
	pb := projectOnAxis(Point{X: 150, Y: 95}, origin, dir)
	pc := projectOnAxis(Point{X: 190, Y: 102}, origin, dir)
	if !(pa < pb && pb < pc) {
		t.Errorf("projections not ordered: %v, %v, %v", pa, pb, pc)
	}
}

func TestRectangleCenterArea(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	center := r.Center()
	if math.Abs(center.X-25.0) > eps || math.Abs(center.Y-40.0) > eps {
		t.Errorf("Wrong center: %v", center)
	}
	if math.Abs(r.Area()-1200.0) > eps {
		t.Errorf("Wrong area: %v, correct answer: %v", r.Area(), 1200.0)
	}
}
