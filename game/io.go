package game

import (
	"context"
	"time"

	"gridsnake/game/types"
)

type EventKind int

const (
	EventDirection EventKind = iota
	EventQuit
)

// Event is one discrete input: a quit request or a direction key
type Event struct {
	Kind EventKind
	Dir  types.Direction
}

func DirectionEvent(d types.Direction) Event {
	return Event{Kind: EventDirection, Dir: d}
}

func QuitEvent() Event {
	return Event{Kind: EventQuit}
}

// InputSource yields the events collected since the previous poll
type InputSource interface {
	Poll() []Event
}

// InputFunc adapts a plain function to InputSource
type InputFunc func() []Event

func (f InputFunc) Poll() []Event { return f() }

// TickLimit asks to quit once Max ticks have run. Max <= 0 never quits.
type TickLimit struct {
	Source InputSource // Optional
	Max    int

	polls int
}

func (l *TickLimit) Poll() []Event {
	l.polls++
	if l.Max > 0 && l.polls > l.Max {
		return []Event{QuitEvent()}
	}
	if l.Source == nil {
		return nil
	}
	return l.Source.Poll()
}

// RenderSink receives one frame per tick
type RenderSink interface {
	Render(Frame) error
}

// MultiSink renders every frame on each sink in order, stopping at the first error
type MultiSink []RenderSink

func (m MultiSink) Render(f Frame) error {
	for _, s := range m {
		if err := s.Render(f); err != nil {
			return err
		}
	}
	return nil
}

// Clock paces the tick loop
type Clock interface {
	// Wait blocks until the next tick is due or ctx is done
	Wait(ctx context.Context) error
	// SetRate changes the ticks per second; safe to call from any goroutine
	SetRate(tps int)
}

// TickerClock paces ticks with a time.Ticker. A rate of zero or less means
// Wait never blocks.
type TickerClock struct {
	ticker  *time.Ticker
	rate    int
	pending chan int // Latest requested rate, capacity 1
}

func NewTickerClock(tps int) *TickerClock {
	c := &TickerClock{pending: make(chan int, 1)}
	c.apply(tps)
	return c
}

func (c *TickerClock) Wait(ctx context.Context) error {
	select {
	case tps := <-c.pending:
		c.apply(tps)
	default:
	}

	if c.ticker == nil {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ticker.C:
		return nil
	}
}

func (c *TickerClock) SetRate(tps int) {
	for {
		select {
		case c.pending <- tps:
			return
		default:
			// Drop the stale request and retry
			select {
			case <-c.pending:
			default:
			}
		}
	}
}

// Rate returns the rate currently in effect
func (c *TickerClock) Rate() int {
	return c.rate
}

func (c *TickerClock) Stop() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *TickerClock) apply(tps int) {
	if tps == c.rate && (c.ticker != nil || tps <= 0) {
		return
	}
	c.rate = tps
	if tps <= 0 {
		c.Stop()
		return
	}
	interval := time.Second / time.Duration(tps)
	if c.ticker == nil {
		c.ticker = time.NewTicker(interval)
	} else {
		c.ticker.Reset(interval)
	}
}
