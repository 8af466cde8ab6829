// Package render defines the drawing capability the runtime renders into.
// Backends (terminal, headless recorder) implement Surface; components only
// see the interface.
package render

import (
	"fmt"

	"github.com/pondhero/platformer/internal/geom"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 0xff} }

// Hex parses a 0xRRGGBB value into an opaque color.
func Hex(v uint32) Color {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var (
	White = RGB(0xff, 0xff, 0xff)
	Black = RGB(0, 0, 0)
	Red   = RGB(0xff, 0, 0)
)

// Image is a region of a packed sprite sheet. The asset pipeline resolves
// sheets; the runtime only carries the reference.
type Image struct {
	Sheet  string
	Source geom.Rect
	// Tint is the dominant color, used by backends that cannot blit pixels.
	Tint Color
}

// Empty reports whether img references nothing drawable.
func (img Image) Empty() bool {
	return img.Sheet == "" || img.Source.W <= 0 || img.Source.H <= 0
}

// Surface accepts draw calls. Positions are in pixels relative to the
// current offset stack.
type Surface interface {
	Clear(c Color)
	Image(img Image, pos geom.Point, tint Color)
	Rect(r geom.Rect, c Color)
	HollowRect(r geom.Rect, c Color)
	PushOffset(p geom.Point)
	PopOffset()
}

// Offsets is an embeddable translation stack for Surface implementations.
type Offsets struct {
	stack []geom.Point
	cur   geom.Point
}

// PushOffset translates subsequent draws by p on top of the current offset.
func (o *Offsets) PushOffset(p geom.Point) {
	o.stack = append(o.stack, o.cur)
	o.cur = o.cur.Add(p)
}

// PopOffset restores the offset in effect before the matching push.
func (o *Offsets) PopOffset() {
	if len(o.stack) == 0 {
		panic("render: PopOffset without PushOffset")
	}
	o.cur = o.stack[len(o.stack)-1]
	o.stack = o.stack[:len(o.stack)-1]
}

// Offset returns the accumulated translation.
func (o *Offsets) Offset() geom.Point { return o.cur }
