package data

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/pondhero/platformer/internal/geom"
)

// Cell is what a legend character places in a room cell.
type Cell struct {
	Tileset     string `yaml:"tileset"`
	Solid       bool   `yaml:"solid"`
	JumpThrough bool   `yaml:"jumpthrough"`
	Prefab      string `yaml:"prefab"`
}

// Room is one screen of the map, addressed by its Cell in the room grid.
type Room struct {
	Name string
	Cell geom.Point
	// Rows holds one legend rune per column.
	Rows   [][]rune
	Legend map[rune]Cell
}

// At returns the legend entry of column x, row y.
func (r *Room) At(x, y int) (Cell, bool) {
	c, ok := r.Legend[r.Rows[y][x]]
	return c, ok
}

type roomFile struct {
	Columns int             `yaml:"columns"`
	Rows    int             `yaml:"rows"`
	Empty   string          `yaml:"empty"`
	Legend  map[string]Cell `yaml:"legend"`
	Rooms   []struct {
		Name   string          `yaml:"name"`
		Cell   point           `yaml:"cell"`
		Legend map[string]Cell `yaml:"legend"`
		Rows   []string        `yaml:"rows"`
	} `yaml:"rooms"`
}

// RoomTable holds rooms indexed by cell. Every room has the same size.
type RoomTable struct {
	Columns int
	Rows    int
	rooms   map[geom.Point]*Room
	order   []*Room
}

// LoadRoomTable loads the room map from a YAML file.
func LoadRoomTable(path string) (*RoomTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms: %w", err)
	}
	return ParseRoomTable(raw)
}

// ParseRoomTable decodes the room map. A room legend extends and overrides
// the shared legend; the empty character (default '.') places nothing.
func ParseRoomTable(raw []byte) (*RoomTable, error) {
	var f roomFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse rooms: %w", err)
	}
	if f.Columns <= 0 || f.Rows <= 0 {
		return nil, errors.New("rooms: columns and rows must be positive")
	}
	empty := '.'
	if f.Empty != "" {
		empty, _ = utf8.DecodeRuneInString(f.Empty)
	}

	shared, err := legend(f.Legend)
	if err != nil {
		return nil, err
	}

	t := &RoomTable{Columns: f.Columns, Rows: f.Rows, rooms: make(map[geom.Point]*Room, len(f.Rooms))}
	for _, rr := range f.Rooms {
		cell := geom.Point(rr.Cell)
		name := rr.Name
		if name == "" {
			name = fmt.Sprintf("%dx%d", cell.X, cell.Y)
		}
		if _, dup := t.rooms[cell]; dup {
			return nil, fmt.Errorf("room %q: cell %v used twice", name, cell)
		}
		if len(rr.Rows) != f.Rows {
			return nil, fmt.Errorf("room %q: %d rows, want %d", name, len(rr.Rows), f.Rows)
		}

		own, err := legend(rr.Legend)
		if err != nil {
			return nil, fmt.Errorf("room %q: %w", name, err)
		}
		room := &Room{Name: name, Cell: cell, Rows: make([][]rune, f.Rows), Legend: make(map[rune]Cell, len(shared)+len(own))}
		for k, v := range shared {
			room.Legend[k] = v
		}
		for k, v := range own {
			room.Legend[k] = v
		}

		for y, line := range rr.Rows {
			row := []rune(line)
			if len(row) != f.Columns {
				return nil, fmt.Errorf("room %q row %d: %d columns, want %d", name, y, len(row), f.Columns)
			}
			for x, ch := range row {
				if ch == empty {
					continue
				}
				if _, ok := room.Legend[ch]; !ok {
					return nil, fmt.Errorf("room %q (%d,%d): %q not in legend", name, x, y, ch)
				}
			}
			room.Rows[y] = row
		}
		t.rooms[cell] = room
		t.order = append(t.order, room)
	}
	return t, nil
}

func legend(in map[string]Cell) (map[rune]Cell, error) {
	out := make(map[rune]Cell, len(in))
	for k, v := range in {
		if utf8.RuneCountInString(k) != 1 {
			return nil, fmt.Errorf("legend key %q must be a single character", k)
		}
		r, _ := utf8.DecodeRuneInString(k)
		out[r] = v
	}
	return out, nil
}

// Get returns the room at cell, or nil.
func (t *RoomTable) Get(cell geom.Point) *Room {
	return t.rooms[cell]
}

// Named returns the room called name, or nil.
func (t *RoomTable) Named(name string) *Room {
	for _, r := range t.order {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Count returns the number of loaded rooms.
func (t *RoomTable) Count() int {
	return len(t.order)
}

// Each visits rooms in file order.
func (t *RoomTable) Each(fn func(*Room)) {
	for _, r := range t.order {
		fn(r)
	}
}
