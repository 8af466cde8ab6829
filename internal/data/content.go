package data

import (
	"errors"
	"fmt"
)

// Paths locates the content files.
type Paths struct {
	Sprites  string
	Tilesets string
	Prefabs  string
	Rooms    string
}

// Content is every loaded table, cross-checked.
type Content struct {
	Sprites  *SpriteTable
	Tilesets *TilesetTable
	Prefabs  *PrefabTable
	Rooms    *RoomTable
}

// Load reads all tables and verifies that every reference between them
// resolves.
func Load(p Paths) (*Content, error) {
	var (
		c   Content
		err error
	)
	if c.Sprites, err = LoadSpriteTable(p.Sprites); err != nil {
		return nil, err
	}
	if c.Tilesets, err = LoadTilesetTable(p.Tilesets); err != nil {
		return nil, err
	}
	if c.Prefabs, err = LoadPrefabTable(p.Prefabs); err != nil {
		return nil, err
	}
	if c.Rooms, err = LoadRoomTable(p.Rooms); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every dangling reference.
func (c *Content) Validate() error {
	var errs []error

	c.Prefabs.Each(func(p *Prefab) {
		if p.Sprite == "" {
			return
		}
		s := c.Sprites.Get(p.Sprite)
		switch {
		case s == nil:
			errs = append(errs, fmt.Errorf("prefab %q: unknown sprite %q", p.Name, p.Sprite))
		case p.Animation != "" && s.Animation(p.Animation) < 0:
			errs = append(errs, fmt.Errorf("prefab %q: sprite %q has no animation %q", p.Name, p.Sprite, p.Animation))
		}
	})

	c.Rooms.Each(func(r *Room) {
		for ch, cell := range r.Legend {
			if cell.Tileset != "" && c.Tilesets.Get(cell.Tileset) == nil {
				errs = append(errs, fmt.Errorf("room %q legend %q: unknown tileset %q", r.Name, ch, cell.Tileset))
			}
			if cell.Prefab != "" && c.Prefabs.Get(cell.Prefab) == nil {
				errs = append(errs, fmt.Errorf("room %q legend %q: unknown prefab %q", r.Name, ch, cell.Prefab))
			}
		}
	})

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	return nil
}
