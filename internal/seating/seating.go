// Package seating scores desk placements on the testing center floor.
// When a walk-in needs a desk, the center prefers the open desk that is
// least visible to students already seated: visibility falls off with
// distance and with how far outside an occupied desk's facing direction
// the candidate sits.
package seating

import (
	"math"

	"github.com/avereth/testing-center/internal/model"
)

func rotatePoint(x, y, theta float64) (float64, float64) {
	return x*math.Cos(theta) - y*math.Sin(theta),
		x*math.Sin(theta) + y*math.Cos(theta)
}

// visibilityFactor scores how well the occupied origin desk can see the
// target desk, in [0, 1].  The score decays exponentially with distance
// and linearly with the angle off the origin's facing direction.
func visibilityFactor(origin, target *model.Seat) float64 {
	dx := target.X - origin.X
	dy := target.Y - origin.Y
	distanceFactor := math.Exp(-math.Hypot(dx, dy))

	rx, ry := rotatePoint(dx, dy, target.Angle)
	relativeAngle := math.Abs(math.Atan2(ry, rx))
	angleFactor := (math.Pi - relativeAngle) / math.Pi
	return distanceFactor * angleFactor
}

// seatVisibility is the worst-case visibility of the desk at seatIdx from
// any occupied desk.
func seatVisibility(seatIdx int, seats []model.Seat) float64 {
	highest := 0.0
	seat := seats[seatIdx]
	for i := range seats {
		if !seats[i].Occupied || i == seatIdx {
			continue
		}
		highest = math.Max(highest, visibilityFactor(&seats[i], &seat))
	}
	return highest
}

// LeastVisibleSeat returns the index of the unoccupied desk with the
// lowest visibility score, or -1 when every desk is occupied.
func LeastVisibleSeat(seats []model.Seat) int {
	best := -1
	lowest := math.MaxFloat64
	for i := range seats {
		if seats[i].Occupied {
			continue
		}
		if v := seatVisibility(i, seats); v < lowest {
			best = i
			lowest = v
		}
	}
	return best
}
