package capture

import (
	"os"
	"path/filepath"
	"testing"

	"gridsnake/game"
	"gridsnake/game/types"

	"github.com/disintegration/imaging"
)

func testFrame(tick uint64, clear bool) game.Frame {
	return game.Frame{
		Tick:   tick,
		Round:  "r1",
		Board:  types.Board{Width: 8, Height: 6},
		Snake:  []types.Cell{{X: 3, Y: 2}, {X: 2, Y: 2}},
		Length: 2,
		Food:   types.Cell{X: 6, Y: 4},
		Clear:  clear,
	}
}

func TestRecorderSelectsFrames(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, 2, 10)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	for tick := uint64(0); tick <= 5; tick++ {
		if err := r.Render(testFrame(tick, tick == 0 || tick == 3)); err != nil {
			t.Fatalf("Render tick %d: %v", tick, err)
		}
	}

	want := []string{"r1-000000.png", "r1-000002.png", "r1-000003.png", "r1-000004.png"}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(want) || r.Saved() != len(want) {
		t.Fatalf("expected %d captures, got %d files (saved %d)", len(want), len(entries), r.Saved())
	}
	for i, e := range entries {
		if e.Name() != want[i] {
			t.Errorf("capture %d: expected %s, got %s", i, want[i], e.Name())
		}
	}
}

func TestRecorderResetFramesOnly(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, 0, 4)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	for tick := uint64(1); tick <= 10; tick++ {
		r.Render(testFrame(tick, tick == 7))
	}
	if r.Saved() != 1 {
		t.Errorf("expected only the reset frame, saved %d", r.Saved())
	}
}

func TestCapturedImageContents(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, 1, 10)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	f := testFrame(1, false)
	if err := r.Render(f); err != nil {
		t.Fatalf("Render: %v", err)
	}

	img, err := imaging.Open(filepath.Join(dir, "r1-000001.png"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 60 {
		t.Fatalf("expected 80x60 image, got %v", b)
	}

	tests := []struct {
		name    string
		cell    types.Cell
		r, g, b uint32
	}{
		{"head", f.Snake[0], 0, 255, 0},
		{"body", f.Snake[1], 0, 160, 0},
		{"food", f.Food, 255, 0, 0},
		{"empty", types.Cell{X: 1, Y: 4}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, _ := img.At(tt.cell.X*10+5, tt.cell.Y*10+5).RGBA()
			if r>>8 != tt.r || g>>8 != tt.g || b>>8 != tt.b {
				t.Errorf("expected (%d,%d,%d), got (%d,%d,%d)", tt.r, tt.g, tt.b, r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestRecorderDisablesOnWriteError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r, err := NewRecorder(dir, 1, 4)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	if err := r.Render(testFrame(1, false)); err != nil {
		t.Errorf("write errors should not stop the game, got %v", err)
	}
	if !r.Disabled() || r.Saved() != 0 {
		t.Error("expected capture to be disabled after a failed write")
	}
}

func TestNewRecorderRejectsBadInput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRecorder(filepath.Join(file, "sub"), 1, 4); err == nil {
		t.Error("expected an error when the directory cannot be created")
	}
	if _, err := NewRecorder(t.TempDir(), 1, 0); err == nil {
		t.Error("expected an error for a zero cell size")
	}
}

func TestDrawOutlinesCells(t *testing.T) {
	f := testFrame(1, false)
	img := Draw(f, 10)

	for _, c := range []types.Cell{f.Snake[0], f.Snake[1], f.Food} {
		r, g, b, _ := img.At(c.X*10, c.Y*10+5).RGBA()
		if r>>8 != borderR || g>>8 != borderG || b>>8 != borderB {
			t.Errorf("cell %v: expected border colour on its edge, got (%d,%d,%d)", c, r>>8, g>>8, b>>8)
		}
	}
}

func TestDrawEmptyFrame(t *testing.T) {
	img := Draw(game.Frame{Board: types.Board{Width: 4, Height: 3}}, 5)
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 15 {
		t.Errorf("expected 20x15 image, got %v", b)
	}
}
