package seating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avereth/testing-center/internal/model"
)

func TestLeastVisibleSeat_AllFree(t *testing.T) {
	seats := []model.Seat{
		{Name: "A0", X: 0, Y: 0},
		{Name: "A1", X: 1, Y: 0},
	}
	// With nobody seated every desk scores zero; the first wins.
	assert.Equal(t, 0, LeastVisibleSeat(seats))
}

func TestLeastVisibleSeat_PrefersDistance(t *testing.T) {
	// One student seated at the origin facing +X.  The far desk should be
	// preferred over the adjacent one.
	seats := []model.Seat{
		{Name: "A0", X: 0, Y: 0, Occupied: true},
		{Name: "A1", X: 1, Y: 0},
		{Name: "B5", X: 8, Y: 8},
	}
	assert.Equal(t, 2, LeastVisibleSeat(seats))
}

func TestLeastVisibleSeat_AllOccupied(t *testing.T) {
	seats := []model.Seat{
		{Name: "A0", Occupied: true},
		{Name: "A1", X: 1, Occupied: true},
	}
	assert.Equal(t, -1, LeastVisibleSeat(seats))
}

func TestLeastVisibleSeat_FillsRoomOneByOne(t *testing.T) {
	seats := []model.Seat{
		{Name: "A0", X: 0, Y: 0, Angle: math.Pi / 4},
		{Name: "A1", X: 1, Y: 1, Angle: math.Pi / 4},
		{Name: "A2", X: 2, Y: 2, Angle: math.Pi / 4},
	}
	taken := 0
	for {
		i := LeastVisibleSeat(seats)
		if i == -1 {
			break
		}
		assert.False(t, seats[i].Occupied)
		seats[i].Occupied = true
		taken++
	}
	assert.Equal(t, len(seats), taken)
}
