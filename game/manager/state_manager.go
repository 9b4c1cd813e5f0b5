package manager

import (
	"sort"
	"time"
)

// maxHistory bounds the number of finished rounds kept in memory
const maxHistory = 200

// RoundRecord describes one finished round
type RoundRecord struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time
	Length    int // Snake length when the round ended
	Ticks     int
	Won       bool // Board filled up
}

// StateManager keeps per-session round statistics
type StateManager struct {
	current     RoundRecord
	active      bool
	history     []RoundRecord
	gamesPlayed int
	highScore   int
	totalLength int
	now         func() time.Time
}

func NewStateManager() *StateManager {
	return &StateManager{
		history: make([]RoundRecord, 0),
		now:     time.Now,
	}
}

// StartRound opens a new round. Any round still open is dropped.
func (sm *StateManager) StartRound(id string) {
	sm.current = RoundRecord{
		ID:        id,
		StartTime: sm.now(),
	}
	sm.active = true
}

// Tick counts one simulation step against the open round
func (sm *StateManager) Tick() {
	if sm.active {
		sm.current.Ticks++
	}
}

// EndRound closes the open round and returns its record
func (sm *StateManager) EndRound(length int, won bool) RoundRecord {
	rec := sm.current
	rec.EndTime = sm.now()
	rec.Length = length
	rec.Won = won
	sm.active = false

	sm.gamesPlayed++
	sm.totalLength += length
	if length > sm.highScore {
		sm.highScore = length
	}

	if len(sm.history) >= maxHistory {
		sm.history = sm.history[1:]
	}
	sm.history = append(sm.history, rec)
	return rec
}

// Current returns the open round
func (sm *StateManager) Current() RoundRecord {
	return sm.current
}

func (sm *StateManager) GamesPlayed() int {
	return sm.gamesPlayed
}

// HighScore is the longest snake of the session
func (sm *StateManager) HighScore() int {
	return sm.highScore
}

// AverageLength over every finished round, not only the retained history
func (sm *StateManager) AverageLength() float64 {
	if sm.gamesPlayed == 0 {
		return 0
	}
	return float64(sm.totalLength) / float64(sm.gamesPlayed)
}

// MedianLength over the retained history
func (sm *StateManager) MedianLength() float64 {
	if len(sm.history) == 0 {
		return 0
	}

	lengths := make([]int, len(sm.history))
	for i, rec := range sm.history {
		lengths[i] = rec.Length
	}
	sort.Ints(lengths)

	mid := len(lengths) / 2
	if len(lengths)%2 == 0 {
		return float64(lengths[mid-1]+lengths[mid]) / 2
	}
	return float64(lengths[mid])
}

// History returns a copy of the retained rounds, oldest first
func (sm *StateManager) History() []RoundRecord {
	out := make([]RoundRecord, len(sm.history))
	copy(out, sm.history)
	return out
}
