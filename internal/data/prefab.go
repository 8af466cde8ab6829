package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/spatial"
)

// MoverDef configures a Mover. Collide routes motion through the hitbox.
type MoverDef struct {
	Gravity  float64  `yaml:"gravity"`
	Friction float64  `yaml:"friction"`
	Speed    geom.Vec `yaml:"-"`
	Collide  bool     `yaml:"collide"`
}

// HurtableDef configures a Hurtable checking the hitbox against HurtBy.
type HurtableDef struct {
	HurtBy spatial.Mask
}

// Prefab is an entity template spawned by rooms and scripts.
type Prefab struct {
	Name      string
	Sprite    string
	Animation string
	Depth     int
	// Offset shifts the spawn position; ReloadOffset applies on top of it
	// when the room is reloaded after a fall.
	Offset       geom.Point
	ReloadOffset geom.Point
	Hitbox       *geom.Rect
	Mask         spatial.Mask
	Mover        *MoverDef
	Hurtable     *HurtableDef
	Script       string
	// Lifetime destroys the entity after that many seconds when positive.
	Lifetime float64
	// Focus marks the entity the camera follows.
	Focus bool
	// Unique skips the spawn while another entity of this prefab is alive.
	Unique bool
}

type prefabFile struct {
	Prefabs []struct {
		Name         string  `yaml:"name"`
		Sprite       string  `yaml:"sprite"`
		Animation    string  `yaml:"animation"`
		Depth        int     `yaml:"depth"`
		Offset       point   `yaml:"offset"`
		ReloadOffset point   `yaml:"reload_offset"`
		Hitbox       *rect   `yaml:"hitbox"`
		Mask         string  `yaml:"mask"`
		Script       string  `yaml:"script"`
		Lifetime     float64 `yaml:"lifetime"`
		Focus        bool    `yaml:"focus"`
		Unique       bool    `yaml:"unique"`
		Mover        *struct {
			MoverDef `yaml:",inline"`
			Speed    []float64 `yaml:"speed"`
		} `yaml:"mover"`
		Hurtable *struct {
			HurtBy string `yaml:"hurt_by"`
		} `yaml:"hurtable"`
	} `yaml:"prefabs"`
}

// PrefabTable holds prefabs indexed by name.
type PrefabTable struct {
	prefabs map[string]*Prefab
}

// LoadPrefabTable loads prefabs from a YAML file.
func LoadPrefabTable(path string) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefabs: %w", err)
	}
	return ParsePrefabTable(raw)
}

// ParsePrefabTable decodes prefab definitions.
func ParsePrefabTable(raw []byte) (*PrefabTable, error) {
	var f prefabFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prefabs: %w", err)
	}

	t := &PrefabTable{prefabs: make(map[string]*Prefab, len(f.Prefabs))}
	for _, rp := range f.Prefabs {
		if rp.Name == "" {
			return nil, errors.New("prefab without name")
		}
		if _, dup := t.prefabs[rp.Name]; dup {
			return nil, fmt.Errorf("prefab %q defined twice", rp.Name)
		}

		mask, err := spatial.ParseMask(rp.Mask)
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", rp.Name, err)
		}
		p := &Prefab{
			Name:         rp.Name,
			Sprite:       rp.Sprite,
			Animation:    rp.Animation,
			Depth:        rp.Depth,
			Offset:       geom.Point(rp.Offset),
			ReloadOffset: geom.Point(rp.ReloadOffset),
			Mask:         mask,
			Script:       rp.Script,
			Lifetime:     rp.Lifetime,
			Focus:        rp.Focus,
			Unique:       rp.Unique,
		}
		if rp.Hitbox != nil {
			hb := geom.Rect(*rp.Hitbox)
			p.Hitbox = &hb
		}
		if rp.Mover != nil {
			def := rp.Mover.MoverDef
			switch len(rp.Mover.Speed) {
			case 0:
			case 2:
				def.Speed = geom.V(rp.Mover.Speed[0], rp.Mover.Speed[1])
			default:
				return nil, fmt.Errorf("prefab %q: mover speed wants [x, y]", rp.Name)
			}
			if def.Collide && p.Hitbox == nil {
				return nil, fmt.Errorf("prefab %q: colliding mover needs a hitbox", rp.Name)
			}
			p.Mover = &def
		}
		if rp.Hurtable != nil {
			if p.Hitbox == nil {
				return nil, fmt.Errorf("prefab %q: hurtable needs a hitbox", rp.Name)
			}
			hurtBy, err := spatial.ParseMask(rp.Hurtable.HurtBy)
			if err != nil {
				return nil, fmt.Errorf("prefab %q hurtable: %w", rp.Name, err)
			}
			p.Hurtable = &HurtableDef{HurtBy: hurtBy}
		}
		t.prefabs[p.Name] = p
	}
	return t, nil
}

// Get returns a prefab by name, or nil if not found.
func (t *PrefabTable) Get(name string) *Prefab {
	return t.prefabs[name]
}

// Count returns the number of loaded prefabs.
func (t *PrefabTable) Count() int {
	return len(t.prefabs)
}

// Each visits prefabs in no particular order.
func (t *PrefabTable) Each(fn func(*Prefab)) {
	for _, p := range t.prefabs {
		fn(p)
	}
}
