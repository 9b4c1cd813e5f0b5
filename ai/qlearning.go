package ai

import (
	"fmt"
	"math"

	"gridsnake/game/types"

	"golang.org/x/exp/rand"
)

type State struct {
	RelativeFoodDir [2]int  // Sign of the shortest wrapped offset from head to food (x, y)
	FoodDistance    int     // Wrapped manhattan distance to food
	DangerDirs      [4]bool // Body in the neighbouring cell (up, right, down, left)
}

type Action int

const (
	Up Action = iota
	Right
	Down
	Left
)

// ActionFor maps a heading onto the action that keeps it
func ActionFor(d types.Direction) Action {
	return Action(d - types.Up)
}

func (a Action) Direction() types.Direction {
	return types.Up + types.Direction(a)
}

// Outcome is what happened to the snake between two states
type Outcome int

const (
	Moved Outcome = iota
	Ate
	Died
	Cleared // Filled the board
)

type QTable map[string]map[Action]float64

type QLearning struct {
	QTable       QTable
	LearningRate float64
	Discount     float64
	Epsilon      float64
	TotalReward  float64
	GamesPlayed  int

	rng *rand.Rand
}

func NewQLearning(rng *rand.Rand) *QLearning {
	return &QLearning{
		QTable:       make(QTable),
		LearningRate: 0.1,
		Discount:     0.9,
		Epsilon:      0.1,
		rng:          rng,
	}
}

func (q *QLearning) getStateKey(s State) string {
	return fmt.Sprintf("%d,%d|%d%d%d%d", s.RelativeFoodDir[0], s.RelativeFoodDir[1],
		boolToInt(s.DangerDirs[0]), boolToInt(s.DangerDirs[1]),
		boolToInt(s.DangerDirs[2]), boolToInt(s.DangerDirs[3]))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (q *QLearning) GetAction(state State) Action {
	// Exploration: random action
	if q.Epsilon > 0 && q.rng.Float64() < q.Epsilon {
		return Action(q.rng.Intn(4))
	}

	// Exploitation: best known action
	return q.getBestAction(state)
}

// getBestAction breaks ties in action order so choices are reproducible
func (q *QLearning) getBestAction(state State) Action {
	values := q.values(q.getStateKey(state))

	bestAction := Up
	bestValue := math.Inf(-1)
	for action := Up; action <= Left; action++ {
		if values[action] > bestValue {
			bestValue = values[action]
			bestAction = action
		}
	}
	return bestAction
}

// values returns the row for key, creating it on first use
func (q *QLearning) values(key string) map[Action]float64 {
	row, exists := q.QTable[key]
	if !exists {
		row = make(map[Action]float64, 4)
		for a := Up; a <= Left; a++ {
			row[a] = 0
		}
		q.QTable[key] = row
	}
	return row
}

// Reward scores a transition: closer to food is good, eating is better,
// hitting the body is worst.
func Reward(state, nextState State, outcome Outcome) float64 {
	switch outcome {
	case Ate, Cleared:
		return 1.0
	case Died:
		return -1.0
	}

	distanceChange := nextState.FoodDistance - state.FoodDistance
	if distanceChange < 0 {
		return 0.5
	} else if distanceChange > 0 {
		return -0.3
	}
	return 0
}

func (q *QLearning) Update(state State, action Action, nextState State, outcome Outcome) float64 {
	reward := Reward(state, nextState, outcome)

	// A finished round has no future
	maxNextQ := 0.0
	if outcome != Died && outcome != Cleared {
		maxNextQ = math.Inf(-1)
		for _, value := range q.values(q.getStateKey(nextState)) {
			maxNextQ = math.Max(maxNextQ, value)
		}
	} else {
		q.GamesPlayed++
	}

	// Q-learning update formula
	row := q.values(q.getStateKey(state))
	currentQ := row[action]
	row[action] = currentQ + q.LearningRate*(reward+q.Discount*maxNextQ-currentQ)

	q.TotalReward += reward
	return reward
}

func (q *QLearning) Value(state State, action Action) float64 {
	return q.values(q.getStateKey(state))[action]
}
