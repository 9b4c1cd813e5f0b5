package ui

import (
	"context"
	"fmt"

	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	maxScores     = 200 // Maximum number of rounds to show in graph
	borderPadding = 10
	statsWidth    = 160 // Stats panel to the right of the board
)

var borderColor = rl.Color{R: 93, G: 216, B: 228, A: 255}

// Renderer owns the raylib window. It draws every frame in full and reads
// the keyboard, so it serves as both render sink and input source.
type Renderer struct {
	stats *manager.StateManager // Optional, feeds the stats panel

	cellSize       int32
	screenWidth    int32
	screenHeight   int32
	graphHeight    int32
	graphWidth     int32
	gameWidth      int32
	statsPanel     int32
	totalGridWidth int32
	offsetX        int32
	offsetY        int32
}

// NewRenderer opens a window sized for board at gridSize pixels per cell
func NewRenderer(board types.Board, gridSize int, stats *manager.StateManager) *Renderer {
	width := int32(board.Width*gridSize) + borderPadding*2 + statsWidth
	height := int32(board.Height*gridSize) + borderPadding*2

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(width, height, "Snake")

	r := &Renderer{stats: stats}
	r.UpdateDimensions()
	return r
}

func (r *Renderer) UpdateDimensions() {
	r.screenWidth = int32(rl.GetScreenWidth())
	r.screenHeight = int32(rl.GetScreenHeight())

	r.statsPanel = min(statsWidth, r.screenWidth/3)
	r.gameWidth = r.screenWidth - r.statsPanel

	r.graphWidth = r.statsPanel - 20
	r.graphHeight = r.screenHeight / 5
}

// Poll drains raylib's key queue. Closing the window or pressing Escape quits.
func (r *Renderer) Poll() []game.Event {
	var events []game.Event
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		switch key {
		case rl.KeyUp, rl.KeyW:
			events = append(events, game.DirectionEvent(types.Up))
		case rl.KeyDown, rl.KeyS:
			events = append(events, game.DirectionEvent(types.Down))
		case rl.KeyLeft, rl.KeyA:
			events = append(events, game.DirectionEvent(types.Left))
		case rl.KeyRight, rl.KeyD:
			events = append(events, game.DirectionEvent(types.Right))
		case rl.KeyQ:
			events = append(events, game.QuitEvent())
		}
	}
	if rl.WindowShouldClose() {
		events = append(events, game.QuitEvent())
	}
	return events
}

// Render redraws the whole window for f. EndDrawing blocks until the
// target frame time, which is what paces the tick loop.
func (r *Renderer) Render(f game.Frame) error {
	if f.Empty() {
		return nil
	}
	if rl.IsWindowResized() {
		r.UpdateDimensions()
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	availableWidth := r.gameWidth - borderPadding*2
	availableHeight := r.screenHeight - borderPadding*2
	r.cellSize = max(1, min(availableWidth/int32(f.Board.Width), availableHeight/int32(f.Board.Height)))
	r.totalGridWidth = r.cellSize * int32(f.Board.Width)
	totalGridHeight := r.cellSize * int32(f.Board.Height)
	r.offsetX = borderPadding
	r.offsetY = (r.screenHeight - totalGridHeight) / 2

	rl.DrawRectangleLines(r.offsetX-1, r.offsetY-1, r.totalGridWidth+2, totalGridHeight+2, borderColor)

	r.drawCell(f.Food, rl.Red)
	for i := len(f.Snake) - 1; i > 0; i-- {
		r.drawCell(f.Snake[i], rl.Green)
	}
	r.drawCell(f.Head(), rl.Lime)
	r.drawHeading(f.Head(), f.Direction)

	fontSize := max(10, min(r.screenHeight/30, r.statsPanel/10))
	if f.Won {
		text := "Board cleared!"
		width := rl.MeasureText(text, fontSize*2)
		rl.DrawText(text, r.offsetX+(r.totalGridWidth-width)/2, r.offsetY+totalGridHeight/2, fontSize*2, rl.Yellow)
	}
	r.drawStatsPanel(f, fontSize)

	rl.EndDrawing()
	return nil
}

// Close destroys the window
func (r *Renderer) Close() {
	rl.CloseWindow()
}

func (r *Renderer) drawCell(c types.Cell, color rl.Color) {
	rl.DrawRectangle(
		r.offsetX+int32(c.X)*r.cellSize,
		r.offsetY+int32(c.Y)*r.cellSize,
		r.cellSize, r.cellSize, color)
	rl.DrawRectangleLines(
		r.offsetX+int32(c.X)*r.cellSize,
		r.offsetY+int32(c.Y)*r.cellSize,
		r.cellSize, r.cellSize, borderColor)
}

// drawHeading puts a small triangle on the head pointing where it moves
func (r *Renderer) drawHeading(head types.Cell, dir types.Direction) {
	headX := float32(r.offsetX + int32(head.X)*r.cellSize)
	headY := float32(r.offsetY + int32(head.Y)*r.cellSize)
	cell := float32(r.cellSize)
	half := cell / 2

	var a, b, c rl.Vector2
	switch dir {
	case types.Right:
		a = rl.Vector2{X: headX + cell, Y: headY + half}
		b = rl.Vector2{X: headX + half, Y: headY}
		c = rl.Vector2{X: headX + half, Y: headY + cell}
	case types.Left:
		a = rl.Vector2{X: headX, Y: headY + half}
		b = rl.Vector2{X: headX + half, Y: headY + cell}
		c = rl.Vector2{X: headX + half, Y: headY}
	case types.Down:
		a = rl.Vector2{X: headX + half, Y: headY + cell}
		b = rl.Vector2{X: headX + cell, Y: headY + half}
		c = rl.Vector2{X: headX, Y: headY + half}
	case types.Up:
		a = rl.Vector2{X: headX + half, Y: headY}
		b = rl.Vector2{X: headX, Y: headY + half}
		c = rl.Vector2{X: headX + cell, Y: headY + half}
	default:
		return
	}
	// Counter-clockwise winding, raylib culls the rest
	rl.DrawTriangle(a, b, c, rl.Yellow)
}

func (r *Renderer) drawStatsPanel(f game.Frame, fontSize int32) {
	statsX := r.gameWidth + 5
	statsY := int32(10)
	lineHeight := fontSize + 4

	rl.DrawRectangle(statsX-5, 0, r.statsPanel+5, r.screenHeight, rl.DarkGray)

	lines := []string{
		fmt.Sprintf("Length: %d", f.Length),
		fmt.Sprintf("Tick: %d", f.Tick),
	}
	if r.stats != nil {
		lines = append(lines,
			fmt.Sprintf("Best: %d", r.stats.HighScore()),
			fmt.Sprintf("Games: %d", r.stats.GamesPlayed()),
			fmt.Sprintf("Avg: %.2f", r.stats.AverageLength()),
			fmt.Sprintf("Median: %.1f", r.stats.MedianLength()),
		)
	}
	for _, line := range lines {
		rl.DrawText(line, statsX, statsY, fontSize, rl.White)
		statsY += lineHeight
	}

	if r.stats != nil {
		r.drawPerformanceGraph(statsX, fontSize)
	}
}

// drawPerformanceGraph plots the final length of recent rounds
func (r *Renderer) drawPerformanceGraph(graphX, fontSize int32) {
	graphY := r.screenHeight - r.graphHeight - fontSize*2
	rl.DrawRectangleLines(graphX, graphY, r.graphWidth, r.graphHeight, rl.White)
	rl.DrawText("Rounds", graphX, graphY-fontSize-5, fontSize, rl.White)

	history := r.stats.History()
	if len(history) < 2 {
		return
	}

	maxLength := 1
	for _, rec := range history {
		maxLength = max(maxLength, rec.Length)
	}

	point := func(i int) (int32, int32) {
		x := graphX + int32(float32(r.graphWidth)*float32(i)/float32(maxScores))
		y := graphY + r.graphHeight - int32(float32(r.graphHeight)*float32(history[i].Length)/float32(maxLength))
		return x, y
	}
	for i := 1; i < len(history); i++ {
		x1, y1 := point(i - 1)
		x2, y2 := point(i)
		rl.DrawLine(x1, y1, x2, y2, rl.Green)
	}

	// Dashed average line
	avgY := graphY + r.graphHeight - int32(float32(r.graphHeight)*float32(r.stats.AverageLength())/float32(maxLength))
	for x := graphX; x < graphX+r.graphWidth; x += 5 {
		rl.DrawLine(x, avgY, x+2, avgY, rl.Yellow)
	}
}

// FrameClock paces ticks with raylib's target frame rate. The wait itself
// happens inside EndDrawing, so Wait only applies rate changes.
type FrameClock struct {
	pending chan int
}

func NewFrameClock(tps int) *FrameClock {
	rl.SetTargetFPS(int32(tps))
	return &FrameClock{pending: make(chan int, 1)}
}

func (c *FrameClock) Wait(ctx context.Context) error {
	select {
	case tps := <-c.pending:
		rl.SetTargetFPS(int32(tps))
	default:
	}
	return ctx.Err()
}

// SetRate may be called from any goroutine; raylib is only touched in Wait
func (c *FrameClock) SetRate(tps int) {
	for {
		select {
		case c.pending <- tps:
			return
		default:
			select {
			case <-c.pending:
			default:
			}
		}
	}
}
