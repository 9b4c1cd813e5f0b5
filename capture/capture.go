package capture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gridsnake/game"
	"gridsnake/game/types"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const borderR, borderG, borderB = 93, 216, 228

// Recorder is a render sink that saves selected frames as PNG files named
// <round>-<tick>.png. Reset frames are always saved; otherwise every Nth tick.
type Recorder struct {
	dir      string
	every    uint64
	cellSize int
	saved    int
	disabled bool
}

// NewRecorder creates dir if needed. every <= 0 keeps only reset frames.
func NewRecorder(dir string, every, cellSize int) (*Recorder, error) {
	if cellSize <= 0 {
		return nil, errors.Errorf("invalid cell size %d", cellSize)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "creating capture directory %s", dir)
	}
	r := &Recorder{dir: dir, cellSize: cellSize}
	if every > 0 {
		r.every = uint64(every)
	}
	return r, nil
}

// Render never fails the game: a write error is logged once and capture
// stops.
func (r *Recorder) Render(f game.Frame) error {
	if r.disabled || !r.wants(f) {
		return nil
	}

	path := filepath.Join(r.dir, fmt.Sprintf("%s-%06d.png", f.Round, f.Tick))
	if err := imaging.Save(Draw(f, r.cellSize), path); err != nil {
		glog.Warningf("capture disabled: saving %s: %v", path, err)
		r.disabled = true
		return nil
	}
	r.saved++
	glog.V(2).Infof("captured %s", path)
	return nil
}

func (r *Recorder) wants(f game.Frame) bool {
	return f.Clear || (r.every > 0 && f.Tick%r.every == 0)
}

// Saved returns the number of frames written so far
func (r *Recorder) Saved() int {
	return r.saved
}

func (r *Recorder) Disabled() bool {
	return r.disabled
}

// Draw renders f at cellSize pixels per cell
func Draw(f game.Frame, cellSize int) image.Image {
	width := f.Board.Width * cellSize
	height := f.Board.Height * cellSize

	dc := gg.NewContext(width, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	// Grid
	dc.SetRGB255(30, 30, 30)
	dc.SetLineWidth(1)
	for x := 0; x <= width; x += cellSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(height))
		dc.Stroke()
	}
	for y := 0; y <= height; y += cellSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}

	fillCell(dc, f.Food, cellSize, 255, 0, 0)
	for i := len(f.Snake) - 1; i > 0; i-- {
		fillCell(dc, f.Snake[i], cellSize, 0, 160, 0)
	}
	if !f.Empty() {
		fillCell(dc, f.Head(), cellSize, 0, 255, 0)
	}

	// Border
	dc.SetRGB255(borderR, borderG, borderB)
	dc.SetLineWidth(2)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Stroke()

	return dc.Image()
}

// fillCell paints c and outlines it in the border colour
func fillCell(dc *gg.Context, c types.Cell, cellSize, r, g, b int) {
	x, y, size := float64(c.X*cellSize), float64(c.Y*cellSize), float64(cellSize)
	dc.SetRGB255(r, g, b)
	dc.DrawRectangle(x, y, size, size)
	dc.Fill()

	// Half-pixel inset keeps the 1px outline on whole pixels
	dc.SetRGB255(borderR, borderG, borderB)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x+0.5, y+0.5, size-1, size-1)
	dc.Stroke()
}
