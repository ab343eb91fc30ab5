// Package layout computes 2D positions for sibling nodes relative to a parent
// anchor. All strategies are pure arithmetic: position is a function of index
// and sibling count only, never of time or randomness, so repeated builds of
// the same payload place every node identically.
package layout

import (
	"math"

	"github.com/xkilldash9x/recongraph/api/schemas"
)

// Layout constants shared by the strategies. Spacing is the horizontal gap
// between siblings, BaseY the vertical drop below the parent, and ArcOffset
// the maximum height of the parabolic bow.
const (
	Spacing    = 250.0
	BaseY      = 150.0
	ArcOffset  = 50.0
	RingRadius = 180.0
)

// Row spreads siblings horizontally at a fixed vertical offset below the
// parent, with the row centered under the parent anchor.
func Row(parent schemas.Position, index, total int, spacing float64) schemas.Position {
	return schemas.Position{
		X: parent.X + rowStart(total, spacing) + float64(index)*spacing,
		Y: parent.Y + BaseY,
	}
}

// Arc spreads siblings like Row but bows the row upward: the vertical offset
// follows y = baseY - maxOffset*t^2 with t remapped linearly to [-1, 1]
// across the siblings. A single sibling sits at t = 0 (the arc's apex).
func Arc(parent schemas.Position, index, total int, spacing float64) schemas.Position {
	t := 0.0
	if total > 1 {
		t = float64(index)/float64(total-1)*2 - 1
	}
	return schemas.Position{
		X: parent.X + rowStart(total, spacing) + float64(index)*spacing,
		Y: parent.Y + BaseY - ArcOffset*t*t,
	}
}

// Ring fans siblings in a full circle around the parent. A single sibling
// sits at angle 0.
func Ring(parent schemas.Position, index, total int, radius float64) schemas.Position {
	angle := 0.0
	if total > 0 {
		angle = 2 * math.Pi * float64(index) / float64(total)
	}
	return schemas.Position{
		X: parent.X + radius*math.Cos(angle),
		Y: parent.Y + radius*math.Sin(angle),
	}
}

// rowStart centers a row of the given width under the parent.
func rowStart(total int, spacing float64) float64 {
	return -(float64(total-1) * spacing) / 2
}
