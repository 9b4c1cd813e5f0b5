package terminal

import (
	"fmt"

	"gridsnake/game"
	"gridsnake/game/types"

	"github.com/gdamore/tcell/v2"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Each board cell takes two columns so cells look square
const cellWidth = 2

const (
	bodyGlyph   = '█'
	foodGlyph   = '●'
	borderGlyph = '░'
)

var (
	defStyle    = tcell.StyleDefault.Background(tcell.ColorDefault).Foreground(tcell.ColorDefault)
	borderStyle = defStyle.Foreground(tcell.NewRGBColor(93, 216, 228))
	snakeStyle  = defStyle.Foreground(tcell.ColorGreen)
	headStyle   = defStyle.Foreground(tcell.ColorLime)
	foodStyle   = defStyle.Foreground(tcell.ColorRed)
)

// Frontend draws frames into a tcell screen and turns key presses into game
// events. It is both a game.RenderSink and a game.InputSource.
type Frontend struct {
	screen  tcell.Screen
	redraw  bool // Set by resize events
	stopped bool
}

// New initialises screen and takes ownership of it until Close
func New(screen tcell.Screen) (*Frontend, error) {
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "initialising terminal")
	}
	screen.SetStyle(defStyle)
	screen.HideCursor()
	screen.Clear()
	return &Frontend{screen: screen, redraw: true}, nil
}

// Poll drains the pending terminal events without blocking
func (f *Frontend) Poll() []game.Event {
	var events []game.Event
	for f.screen.HasPendingEvent() {
		switch ev := f.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if e, ok := keyEvent(ev); ok {
				events = append(events, e)
			}
		case *tcell.EventResize:
			f.screen.Sync()
			f.redraw = true
		case nil:
			// Screen finalised
			return append(events, game.QuitEvent())
		}
	}
	return events
}

func keyEvent(ev *tcell.EventKey) (game.Event, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return game.DirectionEvent(types.Up), true
	case tcell.KeyDown:
		return game.DirectionEvent(types.Down), true
	case tcell.KeyLeft:
		return game.DirectionEvent(types.Left), true
	case tcell.KeyRight:
		return game.DirectionEvent(types.Right), true
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return game.QuitEvent(), true
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModCtrl != 0 && ev.Rune() == 'c' {
			return game.QuitEvent(), true
		}
		switch ev.Rune() {
		case 'k', 'w':
			return game.DirectionEvent(types.Up), true
		case 'j', 's':
			return game.DirectionEvent(types.Down), true
		case 'h', 'a':
			return game.DirectionEvent(types.Left), true
		case 'l', 'd':
			return game.DirectionEvent(types.Right), true
		case 'q':
			return game.QuitEvent(), true
		}
	}
	return game.Event{}, false
}

// Render paints fr. Only the moved head, the vacated tail and the food are
// touched unless fr asks for a full redraw.
func (f *Frontend) Render(fr game.Frame) error {
	if f.stopped {
		return errors.New("terminal closed")
	}
	if fr.Empty() {
		return nil
	}

	if fr.Clear || f.redraw {
		f.screen.Clear()
		f.drawBorder(fr.Board)
		for i := len(fr.Snake) - 1; i > 0; i-- {
			f.setCell(fr.Snake[i], bodyGlyph, snakeStyle)
		}
		f.redraw = false
	} else {
		if fr.HasLastRemoved {
			f.setCell(fr.LastRemoved, ' ', defStyle)
		}
		if len(fr.Snake) > 1 {
			f.setCell(fr.Snake[1], bodyGlyph, snakeStyle)
		}
	}
	f.setCell(fr.Food, foodGlyph, foodStyle)
	f.setCell(fr.Head(), bodyGlyph, headStyle)
	f.drawStatus(fr)

	f.screen.Show()
	return nil
}

// Close restores the terminal
func (f *Frontend) Close() {
	if f.stopped {
		return
	}
	f.stopped = true
	f.screen.Fini()
	glog.V(1).Info("terminal closed")
}

// setCell draws board cell c inside the border
func (f *Frontend) setCell(c types.Cell, glyph rune, style tcell.Style) {
	x, y := screenPos(c)
	if glyph == foodGlyph {
		f.screen.SetContent(x, y, glyph, nil, style)
		f.screen.SetContent(x+1, y, ' ', nil, defStyle)
		return
	}
	for i := 0; i < cellWidth; i++ {
		f.screen.SetContent(x+i, y, glyph, nil, style)
	}
}

func screenPos(c types.Cell) (int, int) {
	return 1 + c.X*cellWidth, 1 + c.Y
}

func (f *Frontend) drawBorder(b types.Board) {
	right := 1 + b.Width*cellWidth
	bottom := 1 + b.Height
	for x := 0; x <= right; x++ {
		f.screen.SetContent(x, 0, borderGlyph, nil, borderStyle)
		f.screen.SetContent(x, bottom, borderGlyph, nil, borderStyle)
	}
	for y := 1; y < bottom; y++ {
		f.screen.SetContent(0, y, borderGlyph, nil, borderStyle)
		f.screen.SetContent(right, y, borderGlyph, nil, borderStyle)
	}
}

func (f *Frontend) drawStatus(fr game.Frame) {
	y := fr.Board.Height + 2
	status := fmt.Sprintf(" length %-4d tick %-8d", fr.Length, fr.Tick)
	if fr.Won {
		status += " board cleared!"
	}
	// Pad to wipe the previous line
	status = fmt.Sprintf("%-40s", status)
	for i, r := range status {
		f.screen.SetContent(i, y, r, nil, defStyle)
	}
}
