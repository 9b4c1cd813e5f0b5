package types

// Default dimensions, in pixels, and tick rate
const (
	ScreenWidth  = 640
	ScreenHeight = 480
	GridSize     = 20
	Speed        = 12 // Ticks per second
)

// Cell is a grid position in cell units
type Cell struct {
	X, Y int
}

// Occupant is anything that sits on a single board cell
type Occupant interface {
	Position() Cell
}

// Direction represents a cardinal heading
type Direction int

const (
	None Direction = iota
	Up
	Right
	Down
	Left
)

// Directions lists the four real headings in enum order
var Directions = [4]Direction{Up, Right, Down, Left}

// Vector returns the unit step for d
func (d Direction) Vector() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the heading pointing the other way. None has no opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Right:
		return Left
	case Down:
		return Up
	case Left:
		return Right
	default:
		return None
	}
}

// TurnLeft returns the heading after a 90 degree counter-clockwise turn
func (d Direction) TurnLeft() Direction {
	switch d {
	case Up:
		return Left
	case Right:
		return Up
	case Down:
		return Right
	case Left:
		return Down
	default:
		return d
	}
}

// TurnRight returns the heading after a 90 degree clockwise turn
func (d Direction) TurnRight() Direction {
	switch d {
	case Up:
		return Right
	case Right:
		return Down
	case Down:
		return Left
	case Left:
		return Up
	default:
		return d
	}
}

// Valid reports whether d is one of the four real headings
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "none"
	}
}

// Board is the toroidal grid, measured in cells
type Board struct {
	Width  int
	Height int
}

// NewBoard derives the cell grid from pixel dimensions and cell size.
func NewBoard(screenWidth, screenHeight, gridSize int) Board {
	return Board{
		Width:  screenWidth / gridSize,
		Height: screenHeight / gridSize,
	}
}

// Wrap moves c one cell along d. Leaving one edge re-enters at the opposite one.
func (b Board) Wrap(c Cell, d Direction) Cell {
	dx, dy := d.Vector()
	return Cell{
		X: mod(c.X+dx, b.Width),
		Y: mod(c.Y+dy, b.Height),
	}
}

// Center returns the board's middle cell, where every round starts
func (b Board) Center() Cell {
	return Cell{X: b.Width / 2, Y: b.Height / 2}
}

// Cells returns the number of cells on the board
func (b Board) Cells() int {
	return b.Width * b.Height
}

func (b Board) Contains(c Cell) bool {
	return c.X >= 0 && c.X < b.Width && c.Y >= 0 && c.Y < b.Height
}

// Distance is the Manhattan distance between two cells taking wraparound into account
func (b Board) Distance(p1, p2 Cell) int {
	dx := abs(p2.X - p1.X)
	dy := abs(p2.Y - p1.Y)

	if dx > b.Width/2 {
		dx = b.Width - dx
	}
	if dy > b.Height/2 {
		dy = b.Height - dy
	}

	return dx + dy
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
