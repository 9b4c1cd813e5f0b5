package ai

import (
	"testing"

	"gridsnake/game"
	"gridsnake/game/types"

	"golang.org/x/exp/rand"
)

func TestAutopilotPassesHumanInput(t *testing.T) {
	human := game.InputFunc(func() []game.Event { return []game.Event{game.QuitEvent()} })
	ap := NewAutopilot(greedyAgent(), human)

	events := ap.Poll()
	if len(events) != 1 || events[0].Kind != game.EventQuit {
		t.Fatalf("expected only the human quit before any frame, got %v", events)
	}

	f := game.Frame{
		Board:     types.Board{Width: 10, Height: 10},
		Snake:     []types.Cell{{X: 5, Y: 5}},
		Direction: types.Up,
		Length:    1,
		Food:      types.Cell{X: 5, Y: 2},
	}
	if err := ap.Render(f); err != nil {
		t.Fatalf("Render: %v", err)
	}
	events = ap.Poll()
	if len(events) != 2 || events[0].Kind != game.EventDirection || events[1].Kind != game.EventQuit {
		t.Fatalf("expected agent move then quit, got %v", events)
	}

	// The move is consumed by the poll
	if events = ap.Poll(); len(events) != 1 {
		t.Errorf("expected the move to be used once, got %v", events)
	}
}

func TestAutopilotAvoidsReversal(t *testing.T) {
	agent := greedyAgent()
	f := game.Frame{
		Board:     types.Board{Width: 10, Height: 10},
		Snake:     []types.Cell{{X: 5, Y: 5}, {X: 4, Y: 5}},
		Direction: types.Right,
		Length:    2,
		Food:      types.Cell{X: 1, Y: 5},
	}
	s := StateFromFrame(f)
	agent.QTable[agent.getStateKey(s)] = map[Action]float64{Up: 0, Right: 0, Down: 0, Left: 5}

	ap := NewAutopilot(agent, nil)
	ap.Render(f)
	events := ap.Poll()
	if len(events) != 1 || events[0].Dir != types.Right {
		t.Errorf("expected the reversal to become a straight move, got %v", events)
	}
}

func TestAutopilotDrivesGame(t *testing.T) {
	g, err := game.NewGame(game.Options{
		Board: types.Board{Width: 12, Height: 10},
		Rand:  game.NewRand(77),
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	ap := NewAutopilot(NewQLearning(rand.New(rand.NewSource(77))), nil)

	if err := ap.Render(g.Frame()); err != nil {
		t.Fatal(err)
	}
	best := 1
	for i := 0; i < 3000; i++ {
		f, err := g.Step(ap.Poll())
		if err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		if err := ap.Render(f); err != nil {
			t.Fatal(err)
		}
		best = max(best, f.Length)
	}

	if ap.Agent().GamesPlayed != g.Stats().GamesPlayed() {
		t.Errorf("agent saw %d rounds end, game recorded %d", ap.Agent().GamesPlayed, g.Stats().GamesPlayed())
	}
	if best < 2 {
		t.Error("expected the autopilot to eat at least once")
	}
	if len(ap.Agent().QTable) == 0 {
		t.Error("expected the agent to learn some states")
	}
}

func TestAutopilotLearnsFromOverriddenMove(t *testing.T) {
	agent := greedyAgent()
	board := types.Board{Width: 10, Height: 10}
	f := game.Frame{
		Round:     "r1",
		Board:     board,
		Snake:     []types.Cell{{X: 5, Y: 5}},
		Direction: types.Up,
		Length:    1,
		Food:      types.Cell{X: 5, Y: 2},
	}
	s := StateFromFrame(f)
	agent.QTable[agent.getStateKey(s)] = map[Action]float64{Up: 5, Right: 0, Down: 0, Left: 0}

	human := game.InputFunc(func() []game.Event { return []game.Event{game.DirectionEvent(types.Right)} })
	ap := NewAutopilot(agent, human)
	ap.Render(f)

	events := ap.Poll()
	if len(events) != 2 || events[0].Dir != types.Up || events[1].Dir != types.Right {
		t.Fatalf("expected agent up then human right, got %v", events)
	}

	// The human's key wins, so the snake moves right
	next := f
	next.Tick = 1
	next.Snake = []types.Cell{{X: 6, Y: 5}}
	next.Direction = types.Right
	ap.Render(next)

	if got := agent.Value(s, Up); got != 5 {
		t.Errorf("the suggested but untaken move should be untouched, got %v", got)
	}
	if got := agent.Value(s, Right); got >= 0 {
		t.Errorf("the taken move away from food should be penalised, got %v", got)
	}
}

func TestCommittedDirection(t *testing.T) {
	tests := []struct {
		name   string
		events []game.Event
		want   types.Direction
	}{
		{"no input keeps heading", nil, types.Up},
		{"latest wins", []game.Event{game.DirectionEvent(types.Left), game.DirectionEvent(types.Right)}, types.Right},
		{"reversal dropped", []game.Event{game.DirectionEvent(types.Right), game.DirectionEvent(types.Down)}, types.Right},
		{"quit ignored", []game.Event{game.DirectionEvent(types.Left), game.QuitEvent()}, types.Left},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := committed(types.Up, tt.events); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAutopilotSkipsEmptyFrame(t *testing.T) {
	ap := NewAutopilot(greedyAgent(), nil)
	if err := ap.Render(game.Frame{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if events := ap.Poll(); len(events) != 0 {
		t.Errorf("expected no move without a snake, got %v", events)
	}
}
