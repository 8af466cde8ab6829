// Package term renders the world into a terminal through tcell. Each cell
// stands for Scale x Scale pixels; shapes are drawn as cell backgrounds.
package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/input"
	"github.com/pondhero/platformer/internal/render"
)

// Surface is a render.Surface over a tcell.Screen.
type Surface struct {
	render.Offsets

	screen tcell.Screen
	scale  int
}

// Open initializes the controlling terminal.
func Open(scale int) (*Surface, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("term: new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("term: init screen: %w", err)
	}
	screen.HideCursor()
	return New(screen, scale), nil
}

// New wraps an initialized screen.
func New(screen tcell.Screen, scale int) *Surface {
	if scale < 1 {
		scale = 1
	}
	return &Surface{screen: screen, scale: scale}
}

func (s *Surface) Screen() tcell.Screen { return s.screen }

// Close restores the terminal.
func (s *Surface) Close() { s.screen.Fini() }

// Show flushes the frame to the terminal.
func (s *Surface) Show() { s.screen.Show() }

func (s *Surface) Clear(c render.Color) {
	s.screen.Fill(' ', tcell.StyleDefault.Background(toTcell(c)))
}

func (s *Surface) Image(img render.Image, pos geom.Point, tint render.Color) {
	if img.Empty() {
		return
	}
	r := geom.R(pos.X, pos.Y, img.Source.W, img.Source.H)
	s.Rect(r, modulate(img.Tint, tint))
}

func (s *Surface) Rect(r geom.Rect, c render.Color) {
	if c.A == 0 {
		return
	}
	cells := s.cells(r)
	bg := toTcell(c)
	for y := cells.Y; y < cells.Bottom(); y++ {
		for x := cells.X; x < cells.Right(); x++ {
			s.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(bg))
		}
	}
}

// HollowRect marks the border cells of r, keeping their background.
func (s *Surface) HollowRect(r geom.Rect, c render.Color) {
	cells := s.cells(r)
	if cells.W <= 0 || cells.H <= 0 {
		return
	}
	for y := cells.Y; y < cells.Bottom(); y++ {
		for x := cells.X; x < cells.Right(); x++ {
			if y == cells.Y || y == cells.Bottom()-1 || x == cells.X || x == cells.Right()-1 {
				s.outline(x, y, c)
			}
		}
	}
}

func (s *Surface) outline(x, y int, c render.Color) {
	_, _, style, _ := s.screen.GetContent(x, y)
	s.screen.SetContent(x, y, '·', nil, style.Foreground(toTcell(c)))
}

// cells maps a pixel rect (offset applied) to the covered cell range,
// clipped to the screen.
func (s *Surface) cells(r geom.Rect) geom.Rect {
	r = r.Translate(s.Offset())
	w, h := s.screen.Size()

	left := geom.Clamp(geom.FloorDiv(r.X, s.scale), 0, w)
	right := geom.Clamp(geom.CeilDiv(r.Right(), s.scale), 0, w)
	top := geom.Clamp(geom.FloorDiv(r.Y, s.scale), 0, h)
	bottom := geom.Clamp(geom.CeilDiv(r.Bottom(), s.scale), 0, h)
	return geom.R(left, top, right-left, bottom-top)
}

func toTcell(c render.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func modulate(a, b render.Color) render.Color {
	mul := func(x, y uint8) uint8 { return uint8(uint16(x) * uint16(y) / 0xff) }
	return render.Color{R: mul(a.R, b.R), G: mul(a.G, b.G), B: mul(a.B, b.B), A: mul(a.A, b.A)}
}

// Keymap binds terminal keys to actions.
var Keymap = map[rune]input.Action{
	'a': input.Left, 'h': input.Left,
	'd': input.Right, 'l': input.Right,
	'w': input.Up, 'k': input.Up,
	's': input.Down, 'j': input.Down,
	' ': input.Jump, 'z': input.Jump,
	'x': input.Attack, 'f': input.Attack,
}

// Command is a non-gameplay key the driver reacts to.
type Command uint8

const (
	CmdNone Command = iota
	CmdQuit
	CmdReload
	CmdRestart
	CmdToggleColliders
)

// Translate applies a tcell event to st and reports any driver command.
func Translate(ev tcell.Event, st *input.State) Command {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return CmdNone
	}
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit
	case tcell.KeyLeft:
		st.Press(input.Left)
	case tcell.KeyRight:
		st.Press(input.Right)
	case tcell.KeyUp:
		st.Press(input.Up)
	case tcell.KeyDown:
		st.Press(input.Down)
	case tcell.KeyF1:
		return CmdToggleColliders
	case tcell.KeyF2, tcell.KeyF5:
		return CmdReload
	case tcell.KeyF9:
		return CmdRestart
	case tcell.KeyRune:
		r := key.Rune()
		if r == 'q' {
			return CmdQuit
		}
		if a, ok := Keymap[r]; ok {
			st.Press(a)
		}
	}
	return CmdNone
}

// Events pumps screen events into a channel until quit is closed.
func (s *Surface) Events(quit <-chan struct{}) <-chan tcell.Event {
	ch := make(chan tcell.Event, 64)
	go s.screen.ChannelEvents(ch, quit)
	return ch
}
