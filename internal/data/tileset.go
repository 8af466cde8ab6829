package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/render"
)

// Tileset is a group of interchangeable tile images.
type Tileset struct {
	Name  string
	Tiles []render.Image
}

// TileAt picks the tile for cell (x, y) of a room. The choice looks random
// but is stable: the same cell always gets the same tile.
func (ts *Tileset) TileAt(seed uint32, x, y int) render.Image {
	if len(ts.Tiles) == 0 {
		return render.Image{}
	}
	return ts.Tiles[geom.Hash2(seed, x, y)%uint32(len(ts.Tiles))]
}

type tilesetFile struct {
	TileSize int `yaml:"tile_size"`
	Tilesets []struct {
		Name  string  `yaml:"name"`
		Sheet string  `yaml:"sheet"`
		Color color   `yaml:"color"`
		Tiles []point `yaml:"tiles"`
	} `yaml:"tilesets"`
}

// TilesetTable holds tilesets indexed by name.
type TilesetTable struct {
	TileSize int
	tilesets map[string]*Tileset
}

// LoadTilesetTable loads tilesets from a YAML file.
func LoadTilesetTable(path string) (*TilesetTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tilesets: %w", err)
	}
	return ParseTilesetTable(raw)
}

// ParseTilesetTable decodes tileset definitions. Each tile entry is the
// top-left pixel of a tile_size square on the sheet.
func ParseTilesetTable(raw []byte) (*TilesetTable, error) {
	var f tilesetFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse tilesets: %w", err)
	}
	if f.TileSize <= 0 {
		return nil, errors.New("tilesets: tile_size must be positive")
	}

	t := &TilesetTable{TileSize: f.TileSize, tilesets: make(map[string]*Tileset, len(f.Tilesets))}
	for _, rt := range f.Tilesets {
		if rt.Name == "" {
			return nil, errors.New("tileset without name")
		}
		if _, dup := t.tilesets[rt.Name]; dup {
			return nil, fmt.Errorf("tileset %q defined twice", rt.Name)
		}
		if len(rt.Tiles) == 0 {
			return nil, fmt.Errorf("tileset %q has no tiles", rt.Name)
		}
		sheet := rt.Sheet
		if sheet == "" {
			sheet = rt.Name
		}
		tint := render.Color(rt.Color)
		if tint.A == 0 {
			tint = render.White
		}

		ts := &Tileset{Name: rt.Name, Tiles: make([]render.Image, 0, len(rt.Tiles))}
		for _, p := range rt.Tiles {
			ts.Tiles = append(ts.Tiles, render.Image{
				Sheet:  sheet,
				Source: geom.R(p.X, p.Y, f.TileSize, f.TileSize),
				Tint:   tint,
			})
		}
		t.tilesets[ts.Name] = ts
	}
	return t, nil
}

// Get returns a tileset by name, or nil if not found.
func (t *TilesetTable) Get(name string) *Tileset {
	return t.tilesets[name]
}

// Count returns the number of loaded tilesets.
func (t *TilesetTable) Count() int {
	return len(t.tilesets)
}
