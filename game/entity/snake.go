package entity

import (
	"gridsnake/game/types"
)

// Rand is the subset of a random source the entities draw from
type Rand interface {
	Intn(n int) int
}

// State of the snake between ticks
type State int

const (
	Running State = iota
	JustReset
)

// Snake is the player-controlled body. Positions[0] is the head.
type Snake struct {
	board         types.Board
	rng           Rand
	positions     []types.Cell
	length        int
	direction     types.Direction
	nextDirection types.Direction // None when nothing is buffered
	lastRemoved   types.Cell
	hasRemoved    bool
	collideFrom   int
	state         State
}

type SnakeOption func(*Snake)

// WithCollisionFrom sets the first body index compared against the head.
// 1 is a true self-intersection check; 4 mimics the old behaviour.
func WithCollisionFrom(index int) SnakeOption {
	return func(s *Snake) {
		if index >= 1 {
			s.collideFrom = index
		}
	}
}

func NewSnake(board types.Board, rng Rand, opts ...SnakeOption) *Snake {
	s := &Snake{
		board:       board,
		rng:         rng,
		collideFrom: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	s.state = Running
	return s
}

// Reset puts the snake back to its starting state: one cell at the center,
// a random heading and no buffered turn.
func (s *Snake) Reset() {
	s.length = 1
	s.positions = append(s.positions[:0], s.board.Center())
	s.direction = types.Direction(s.rng.Intn(4) + 1)
	s.nextDirection = types.None
	s.hasRemoved = false
	s.state = JustReset
}

// BufferDirection queues d for the next commit. Reversals are ignored.
func (s *Snake) BufferDirection(d types.Direction) bool {
	if !d.Valid() || d == s.direction.Opposite() {
		return false
	}
	s.nextDirection = d
	return true
}

// CommitDirection adopts the buffered heading, if any
func (s *Snake) CommitDirection() {
	if s.nextDirection != types.None {
		s.direction = s.nextDirection
		s.nextDirection = types.None
	}
	s.state = Running
}

// Advance moves the head one cell and trims the tail down to the target length
func (s *Snake) Advance() {
	head := s.board.Wrap(s.Head(), s.direction)
	s.positions = append(s.positions, types.Cell{})
	copy(s.positions[1:], s.positions)
	s.positions[0] = head

	s.hasRemoved = false
	if len(s.positions) > s.length {
		s.lastRemoved = s.positions[len(s.positions)-1]
		s.hasRemoved = true
		s.positions = s.positions[:s.length]
	}
}

// Grow extends the target length; the body catches up on the next Advance
func (s *Snake) Grow() {
	s.length++
}

// CollidesWithSelf reports whether the head shares a cell with its own body
func (s *Snake) CollidesWithSelf() bool {
	head := s.Head()
	for i := s.collideFrom; i < len(s.positions); i++ {
		if s.positions[i] == head {
			return true
		}
	}
	return false
}

// Occupies reports whether any segment sits on c
func (s *Snake) Occupies(c types.Cell) bool {
	for _, p := range s.positions {
		if p == c {
			return true
		}
	}
	return false
}

func (s *Snake) Head() types.Cell {
	return s.positions[0]
}

// Position implements types.Occupant
func (s *Snake) Position() types.Cell {
	return s.Head()
}

// Positions returns a copy of the body, head first
func (s *Snake) Positions() []types.Cell {
	out := make([]types.Cell, len(s.positions))
	copy(out, s.positions)
	return out
}

// LastRemoved returns the tail cell dropped by the most recent Advance
func (s *Snake) LastRemoved() (types.Cell, bool) {
	return s.lastRemoved, s.hasRemoved
}

func (s *Snake) Len() int                       { return len(s.positions) }
func (s *Snake) Length() int                    { return s.length }
func (s *Snake) Direction() types.Direction     { return s.direction }
func (s *Snake) NextDirection() types.Direction { return s.nextDirection }
func (s *Snake) State() State                   { return s.state }
