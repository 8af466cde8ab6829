// Package spatial implements pixel-exact collision shapes and the Mover that
// integrates velocities against them.
package spatial

import (
	"errors"
	"fmt"

	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/render"
)

// Precondition violations; Collider panics with these (wrapped).
var (
	ErrWrongShape      = errors.New("spatial: wrong collider shape")
	ErrCellOutOfBounds = errors.New("spatial: cell out of bounds")
	ErrGridGrid        = errors.New("spatial: grid to grid overlap is not supported")
)

// Shape is the fixed variant of a Collider.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeRect
	ShapeGrid
)

func (s Shape) String() string {
	switch s {
	case ShapeRect:
		return "rect"
	case ShapeGrid:
		return "grid"
	}
	return "none"
}

var ColliderKind = ecs.RegisterKind[*Collider]("collider")

// DebugColor outlines colliders when they are made visible.
var DebugColor = render.Red

type grid struct {
	tile, cols, rows int
	cells            []bool
}

// Collider is a rectangle or an occupancy grid positioned relative to its
// entity, tagged with the categories in Mask.
type Collider struct {
	ecs.Base

	Mask Mask

	shape Shape
	rect  geom.Rect
	grid  grid
}

func (*Collider) Kind() ecs.KindID { return ColliderKind.ID() }

// NewRect returns a rectangle collider. Colliders are only queried, so they
// start inactive and invisible; making one visible draws its outline.
func NewRect(r geom.Rect) *Collider {
	c := &Collider{shape: ShapeRect, rect: r}
	c.SetActive(false)
	c.SetVisible(false)
	return c
}

// NewGrid returns an empty cols x rows grid of tileSize pixel cells.
func NewGrid(tileSize, cols, rows int) *Collider {
	if tileSize <= 0 || cols < 0 || rows < 0 {
		panic(fmt.Errorf("spatial: invalid grid %dx%d of %dpx", cols, rows, tileSize))
	}
	c := &Collider{
		shape: ShapeGrid,
		grid:  grid{tile: tileSize, cols: cols, rows: rows, cells: make([]bool, cols*rows)},
	}
	c.SetActive(false)
	c.SetVisible(false)
	return c
}

func (c *Collider) Shape() Shape { return c.shape }

func (c *Collider) Rect() geom.Rect {
	c.must(ShapeRect)
	return c.rect
}

func (c *Collider) SetRect(r geom.Rect) {
	c.must(ShapeRect)
	c.rect = r
}

// GridSize returns the tile size and dimensions of a grid collider.
func (c *Collider) GridSize() (tile, cols, rows int) {
	c.must(ShapeGrid)
	return c.grid.tile, c.grid.cols, c.grid.rows
}

func (c *Collider) Cell(x, y int) bool {
	return c.grid.cells[c.cellIndex(x, y)]
}

func (c *Collider) SetCell(x, y int, v bool) {
	c.grid.cells[c.cellIndex(x, y)] = v
}

// SetCells fills the w x h block of cells whose top-left cell is (x, y).
func (c *Collider) SetCells(x, y, w, h int, v bool) {
	for ty := y; ty < y+h; ty++ {
		for tx := x; tx < x+w; tx++ {
			c.SetCell(tx, ty, v)
		}
	}
}

// Bounds returns the world-space extent of the shape.
func (c *Collider) Bounds() geom.Rect {
	var r geom.Rect
	switch c.shape {
	case ShapeRect:
		r = c.rect
	case ShapeGrid:
		r = geom.R(0, 0, c.grid.tile*c.grid.cols, c.grid.tile*c.grid.rows)
	}
	return r.Translate(c.position())
}

// Check reports whether any other collider matching mask overlaps c when c
// is shifted by offset.
func (c *Collider) Check(mask Mask, offset geom.Point) bool {
	_, ok := c.First(mask, offset)
	return ok
}

// First returns the oldest other collider whose Mask contains every bit of
// mask and which overlaps c shifted by offset.
func (c *Collider) First(mask Mask, offset geom.Point) (*Collider, bool) {
	w := c.World()
	if w == nil {
		return nil, false
	}
	return ecs.Find(w, ColliderKind, func(o *Collider) bool {
		return o != c && o.Mask.Has(mask) && c.Overlaps(o, offset)
	})
}

// All calls fn for every other collider matching mask that overlaps c
// shifted by offset. fn may destroy colliders.
func (c *Collider) All(mask Mask, offset geom.Point, fn func(*Collider)) {
	w := c.World()
	if w == nil {
		return
	}
	ecs.Each(w, ColliderKind, func(o *Collider) {
		if o != c && o.Entity() != nil && o.Mask.Has(mask) && c.Overlaps(o, offset) {
			fn(o)
		}
	})
}

// Overlaps reports whether c, shifted by offset, shares a pixel with other.
// Both colliders must be attached. Grid against grid panics.
func (c *Collider) Overlaps(other *Collider, offset geom.Point) bool {
	switch {
	case c.shape == ShapeRect && other.shape == ShapeRect:
		return rectToRect(c, other, offset)
	case c.shape == ShapeRect && other.shape == ShapeGrid:
		return rectToGrid(c, other, offset)
	case c.shape == ShapeGrid && other.shape == ShapeRect:
		return rectToGrid(other, c, offset.Neg())
	case c.shape == ShapeGrid && other.shape == ShapeGrid:
		panic(ErrGridGrid)
	}
	return false
}

// Render draws the debug outline of the shape.
func (c *Collider) Render(s render.Surface) {
	s.PushOffset(c.position())
	defer s.PopOffset()

	switch c.shape {
	case ShapeRect:
		s.HollowRect(c.rect, DebugColor)
	case ShapeGrid:
		g := &c.grid
		for y := 0; y < g.rows; y++ {
			for x := 0; x < g.cols; x++ {
				if g.cells[x+y*g.cols] {
					s.HollowRect(geom.R(x*g.tile, y*g.tile, g.tile, g.tile), DebugColor)
				}
			}
		}
	}
}

func (c *Collider) position() geom.Point {
	if e := c.Entity(); e != nil {
		return e.Position
	}
	return geom.Point{}
}

func (c *Collider) must(s Shape) {
	if c.shape != s {
		panic(fmt.Errorf("%w: is %v, want %v", ErrWrongShape, c.shape, s))
	}
}

func (c *Collider) cellIndex(x, y int) int {
	c.must(ShapeGrid)
	if x < 0 || y < 0 || x >= c.grid.cols || y >= c.grid.rows {
		panic(fmt.Errorf("%w: (%d,%d) in %dx%d", ErrCellOutOfBounds, x, y, c.grid.cols, c.grid.rows))
	}
	return x + y*c.grid.cols
}

func rectToRect(a, b *Collider, offset geom.Point) bool {
	ar := a.rect.Translate(a.position().Add(offset))
	br := b.rect.Translate(b.position())
	return ar.Overlaps(br)
}

// rectToGrid tests the cells covered by a's rectangle, expressed in b's
// local space. The covered range is [floor(left), ceil(right)) so a rect
// ending exactly on a cell edge does not reach into the next cell.
func rectToGrid(a, b *Collider, offset geom.Point) bool {
	r := a.rect.Translate(a.position().Add(offset).Sub(b.position()))
	if r.Empty() {
		return false
	}
	g := &b.grid

	left := geom.Clamp(geom.FloorDiv(r.X, g.tile), 0, g.cols)
	right := geom.Clamp(geom.CeilDiv(r.Right(), g.tile), 0, g.cols)
	top := geom.Clamp(geom.FloorDiv(r.Y, g.tile), 0, g.rows)
	bottom := geom.Clamp(geom.CeilDiv(r.Bottom(), g.tile), 0, g.rows)

	for y := top; y < bottom; y++ {
		for x := left; x < right; x++ {
			if g.cells[x+y*g.cols] {
				return true
			}
		}
	}
	return false
}
