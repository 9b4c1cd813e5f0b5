package entity

import (
	"gridsnake/game/types"

	"github.com/pkg/errors"
)

// ErrNoSpaceAvailable is returned when every candidate cell is taken
var ErrNoSpaceAvailable = errors.New("no free cell for food")

// samplesPerCell bounds the rejection sampling before falling back to a scan
const samplesPerCell = 4

// Food is the single apple on the board
type Food struct {
	board    types.Board
	rng      Rand
	position types.Cell
	placed   bool
}

func NewFood(board types.Board, rng Rand) *Food {
	return &Food{
		board: board,
		rng:   rng,
	}
}

// Relocate moves the food to a random cell that is neither the board center nor
// in excluded. On ErrNoSpaceAvailable the previous position is kept.
func (f *Food) Relocate(excluded []types.Cell) error {
	taken := make(map[types.Cell]bool, len(excluded)+1)
	for _, c := range excluded {
		taken[c] = true
	}
	taken[f.board.Center()] = true

	for i := 0; i < samplesPerCell*f.board.Cells(); i++ {
		c := types.Cell{
			X: f.rng.Intn(f.board.Width),
			Y: f.rng.Intn(f.board.Height),
		}
		if !taken[c] {
			f.set(c)
			return nil
		}
	}

	// Crowded board: pick uniformly among whatever is left
	free := make([]types.Cell, 0, f.board.Cells())
	for y := 0; y < f.board.Height; y++ {
		for x := 0; x < f.board.Width; x++ {
			c := types.Cell{X: x, Y: y}
			if !taken[c] {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return ErrNoSpaceAvailable
	}
	f.set(free[f.rng.Intn(len(free))])
	return nil
}

func (f *Food) set(c types.Cell) {
	f.position = c
	f.placed = true
}

// Position implements types.Occupant
func (f *Food) Position() types.Cell {
	return f.position
}

// Placed reports whether the food has been put on the board yet
func (f *Food) Placed() bool {
	return f.placed
}
