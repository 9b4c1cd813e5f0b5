package game

import (
	"context"
	"time"

	"gridsnake/game/entity"
	"gridsnake/game/manager"
	"gridsnake/game/types"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// ErrQuitRequested ends the tick loop. It is a normal exit, not a failure.
var ErrQuitRequested = errors.New("quit requested")

// Frame is an immutable snapshot handed to render sinks after every tick
type Frame struct {
	Tick           uint64
	Round          string
	Board          types.Board
	Snake          []types.Cell // Head first
	Direction      types.Direction
	Length         int
	Food           types.Cell
	LastRemoved    types.Cell
	HasLastRemoved bool
	Clear          bool // Body changed discontinuously, redraw everything
	Won            bool // Previous round ended with a full board
}

// Head returns the snake's head cell. The zero Frame has no snake; sinks
// check Empty before calling it.
func (f Frame) Head() types.Cell {
	return f.Snake[0]
}

// Empty reports whether f carries no snake, as with the zero Frame
func (f Frame) Empty() bool {
	return len(f.Snake) == 0
}

type Options struct {
	Board         types.Board
	Rand          entity.Rand
	CollisionFrom int                   // First body index checked against the head, default 1
	Stats         *manager.StateManager // Optional
	NewRoundID    func() string         // Defaults to a random UUID
}

// Game owns the snake and the food and advances them one tick at a time
type Game struct {
	board      types.Board
	snake      *entity.Snake
	food       *entity.Food
	stats      *manager.StateManager
	newRoundID func() string
	round      string
	tick       uint64
}

func NewGame(opts Options) (*Game, error) {
	if opts.Board.Width <= 0 || opts.Board.Height <= 0 {
		return nil, errors.Errorf("invalid board %dx%d", opts.Board.Width, opts.Board.Height)
	}
	if opts.Rand == nil {
		opts.Rand = NewRand(0)
	}
	if opts.Stats == nil {
		opts.Stats = manager.NewStateManager()
	}
	if opts.NewRoundID == nil {
		opts.NewRoundID = uuid.NewString
	}

	var snakeOpts []entity.SnakeOption
	if opts.CollisionFrom > 0 {
		snakeOpts = append(snakeOpts, entity.WithCollisionFrom(opts.CollisionFrom))
	}

	g := &Game{
		board:      opts.Board,
		snake:      entity.NewSnake(opts.Board, opts.Rand, snakeOpts...),
		food:       entity.NewFood(opts.Board, opts.Rand),
		stats:      opts.Stats,
		newRoundID: opts.NewRoundID,
	}
	if err := g.food.Relocate(g.snake.Positions()); err != nil {
		return nil, errors.Wrap(err, "placing initial food")
	}
	g.startRound()
	return g, nil
}

// NewRand returns a PCG-backed source. A zero seed is replaced by the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// Step runs a single tick: input, turn, move, eat, bite.
func (g *Game) Step(events []Event) (Frame, error) {
	for _, ev := range events {
		switch ev.Kind {
		case EventQuit:
			return Frame{}, ErrQuitRequested
		case EventDirection:
			if g.snake.BufferDirection(ev.Dir) {
				glog.V(1).Infof("tick %d: buffered %v", g.tick, ev.Dir)
			}
		}
	}

	g.tick++
	g.stats.Tick()
	g.snake.CommitDirection()
	g.snake.Advance()

	won := false
	if overlaps(g.snake, g.food) {
		g.snake.Grow()
		err := g.food.Relocate(g.snake.Positions())
		switch {
		case errors.Is(err, entity.ErrNoSpaceAvailable):
			glog.Infof("round %s: board full at length %d", g.round, g.snake.Length())
			won = true
		case err != nil:
			return Frame{}, err
		default:
			glog.V(1).Infof("round %s: food eaten, length %d, food now at %v",
				g.round, g.snake.Length(), g.food.Position())
		}
	}

	redraw := false
	if won || g.snake.CollidesWithSelf() {
		if err := g.newRound(won); err != nil {
			return Frame{}, err
		}
		redraw = true
	}

	f := g.frame(redraw)
	f.Won = won
	if glog.V(2) {
		glog.Infof("tick %d: head %v dir %v length %d food %v",
			f.Tick, f.Head(), f.Direction, f.Length, f.Food)
	}
	return f, nil
}

// Frame returns the current state as a full-redraw snapshot
func (g *Game) Frame() Frame {
	return g.frame(true)
}

func (g *Game) frame(redraw bool) Frame {
	f := Frame{
		Tick:      g.tick,
		Round:     g.round,
		Board:     g.board,
		Snake:     g.snake.Positions(),
		Direction: g.snake.Direction(),
		Length:    g.snake.Length(),
		Food:      g.food.Position(),
		Clear:     redraw,
	}
	if !redraw {
		f.LastRemoved, f.HasLastRemoved = g.snake.LastRemoved()
	}
	return f
}

func (g *Game) newRound(won bool) error {
	rec := g.stats.EndRound(g.snake.Length(), won)
	glog.Infof("round %s over: length %d after %d ticks", rec.ID, rec.Length, rec.Ticks)

	g.snake.Reset()
	if err := g.food.Relocate(g.snake.Positions()); err != nil {
		return errors.Wrap(err, "placing food for new round")
	}
	g.startRound()
	return nil
}

func (g *Game) startRound() {
	g.round = g.newRoundID()
	g.stats.StartRound(g.round)
	glog.Infof("round %s started, heading %v, food at %v", g.round, g.snake.Direction(), g.food.Position())
}

// Finish closes the round in progress so it shows up in the statistics
func (g *Game) Finish() manager.RoundRecord {
	return g.stats.EndRound(g.snake.Length(), false)
}

// Run drives Step from the clock until quit or cancellation. Quit returns nil.
func (g *Game) Run(ctx context.Context, input InputSource, sink RenderSink, clock Clock) error {
	if err := sink.Render(g.Frame()); err != nil {
		return errors.Wrap(err, "rendering initial frame")
	}

	for {
		if err := clock.Wait(ctx); err != nil {
			return err
		}

		f, err := g.Step(input.Poll())
		if errors.Is(err, ErrQuitRequested) {
			glog.Infof("quit requested at tick %d", g.tick)
			return nil
		}
		if err != nil {
			return err
		}

		if err := sink.Render(f); err != nil {
			return errors.Wrapf(err, "rendering tick %d", f.Tick)
		}
	}
}

func (g *Game) Snake() *entity.Snake         { return g.snake }
func (g *Game) Food() *entity.Food           { return g.food }
func (g *Game) Board() types.Board           { return g.board }
func (g *Game) Round() string                { return g.round }
func (g *Game) Tick() uint64                 { return g.tick }
func (g *Game) Stats() *manager.StateManager { return g.stats }

func overlaps(a, b types.Occupant) bool {
	return a.Position() == b.Position()
}
