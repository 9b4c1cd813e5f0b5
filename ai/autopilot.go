package ai

import (
	"gridsnake/game"
	"gridsnake/game/types"

	"github.com/golang/glog"
)

// Autopilot steers the snake with a QLearning agent. It watches every frame
// as a render sink and answers each poll with the agent's next move.
type Autopilot struct {
	agent *QLearning
	human game.InputSource // Optional, its events follow the agent's

	observed   bool
	prev       State
	prevAction Action // The move the game commits, which a human may override
	heading    types.Direction
	prevLength int
	prevRound  string
	next       game.Event
	hasNext    bool
}

func NewAutopilot(agent *QLearning, human game.InputSource) *Autopilot {
	return &Autopilot{agent: agent, human: human}
}

// Render learns from the transition into f and picks the move for the next tick
func (a *Autopilot) Render(f game.Frame) error {
	if f.Empty() {
		return nil
	}
	state := StateFromFrame(f)

	if a.observed {
		outcome := Moved
		switch {
		case f.Won:
			outcome = Cleared
		case f.Round != a.prevRound:
			outcome = Died
		case f.Length > a.prevLength:
			outcome = Ate
		}
		reward := a.agent.Update(a.prev, a.prevAction, state, outcome)
		if outcome == Died || outcome == Cleared {
			glog.V(1).Infof("autopilot: round %s ended (%d games, total reward %.1f)",
				a.prevRound, a.agent.GamesPlayed, a.agent.TotalReward)
		} else if glog.V(2) {
			glog.Infof("autopilot: reward %.1f", reward)
		}
	}

	action := a.agent.GetAction(state)
	if action.Direction() == f.Direction.Opposite() {
		// The snake would ignore a reversal
		action = ActionFor(f.Direction)
	}

	a.observed = true
	a.prev = state
	a.prevAction = action
	a.prevLength = f.Length
	a.prevRound = f.Round
	a.heading = f.Direction
	a.next = game.DirectionEvent(action.Direction())
	a.hasNext = true
	return nil
}

// Poll returns the agent's move followed by whatever the wrapped source has,
// so a human can still quit or override. The agent learns from the move the
// game ends up committing, not from its own suggestion.
func (a *Autopilot) Poll() []game.Event {
	var events []game.Event
	if a.hasNext {
		events = append(events, a.next)
		a.hasNext = false
	}
	if a.human != nil {
		events = append(events, a.human.Poll()...)
	}
	if a.observed {
		a.prevAction = ActionFor(committed(a.heading, events))
	}
	return events
}

// committed mirrors the snake's buffering: the latest direction that does
// not reverse heading wins, otherwise heading is kept.
func committed(heading types.Direction, events []game.Event) types.Direction {
	next := heading
	for _, ev := range events {
		if ev.Kind == game.EventDirection && ev.Dir.Valid() && ev.Dir != heading.Opposite() {
			next = ev.Dir
		}
	}
	return next
}

func (a *Autopilot) Agent() *QLearning {
	return a.agent
}

// StateFromFrame extracts the agent's view of f
func StateFromFrame(f game.Frame) State {
	head := f.Head()

	var s State
	s.RelativeFoodDir[0] = sign(wrappedDelta(head.X, f.Food.X, f.Board.Width))
	s.RelativeFoodDir[1] = sign(wrappedDelta(head.Y, f.Food.Y, f.Board.Height))
	s.FoodDistance = f.Board.Distance(head, f.Food)

	// The tail cell frees up on the next advance unless the snake is growing
	body := f.Snake[1:]
	if f.Length == len(f.Snake) && len(body) > 0 {
		body = body[:len(body)-1]
	}
	occupied := make(map[types.Cell]bool, len(body))
	for _, c := range body {
		occupied[c] = true
	}
	for i, d := range types.Directions {
		s.DangerDirs[i] = occupied[f.Board.Wrap(head, d)]
	}
	return s
}

// wrappedDelta is the shortest signed offset from a to b on a ring of size n
func wrappedDelta(a, b, n int) int {
	d := b - a
	if d > n/2 {
		d -= n
	} else if d < -n/2 {
		d += n
	}
	return d
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
