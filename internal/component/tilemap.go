package component

import (
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/render"
)

var TilemapKind = ecs.RegisterKind[*Tilemap]("tilemap")

// Tilemap draws a grid of tile images at its entity's position.
type Tilemap struct {
	ecs.Base

	tileW, tileH int
	cols, rows   int
	cells        []render.Image
}

func NewTilemap(tileW, tileH, cols, rows int) *Tilemap {
	return &Tilemap{tileW: tileW, tileH: tileH, cols: cols, rows: rows, cells: make([]render.Image, cols*rows)}
}

func (*Tilemap) Kind() ecs.KindID { return TilemapKind.ID() }

func (m *Tilemap) TileWidth() int  { return m.tileW }
func (m *Tilemap) TileHeight() int { return m.tileH }
func (m *Tilemap) Columns() int    { return m.cols }
func (m *Tilemap) Rows() int       { return m.rows }

func (m *Tilemap) Cell(x, y int) render.Image { return m.cells[x+y*m.cols] }

func (m *Tilemap) SetCell(x, y int, img render.Image) { m.cells[x+y*m.cols] = img }

func (m *Tilemap) SetCells(x, y, w, h int, img render.Image) {
	for ty := y; ty < y+h; ty++ {
		for tx := x; tx < x+w; tx++ {
			m.SetCell(tx, ty, img)
		}
	}
}

func (m *Tilemap) Render(s render.Surface) {
	s.PushOffset(m.Entity().Position)
	defer s.PopOffset()

	for y := 0; y < m.rows; y++ {
		for x := 0; x < m.cols; x++ {
			if img := m.cells[x+y*m.cols]; !img.Empty() {
				s.Image(img, geom.Pt(x*m.tileW, y*m.tileH), render.White)
			}
		}
	}
}
