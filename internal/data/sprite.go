package data

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/render"
)

// Frame is one image of an animation, shown for Duration seconds.
type Frame struct {
	Image    render.Image
	Duration float64
}

// Animation is a named looping frame sequence.
type Animation struct {
	Name   string
	Frames []Frame
}

// Duration returns the length of one loop in seconds.
func (a *Animation) Duration() float64 {
	var d float64
	for _, f := range a.Frames {
		d += f.Duration
	}
	return d
}

// Sprite is a set of animations sharing an origin (pivot) point.
type Sprite struct {
	Name       string
	Origin     geom.Point
	Animations []Animation
}

// Animation returns the index of the animation called name, or -1.
func (s *Sprite) Animation(name string) int {
	for i := range s.Animations {
		if s.Animations[i].Name == name {
			return i
		}
	}
	return -1
}

// point decodes "[x, y]".
type point geom.Point

func (p *point) UnmarshalYAML(n *yaml.Node) error {
	var xy []int
	if err := n.Decode(&xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("line %d: want [x, y], got %d values", n.Line, len(xy))
	}
	*p = point{X: xy[0], Y: xy[1]}
	return nil
}

// rect decodes "[x, y, w, h]".
type rect geom.Rect

func (r *rect) UnmarshalYAML(n *yaml.Node) error {
	var v []int
	if err := n.Decode(&v); err != nil {
		return err
	}
	if len(v) != 4 {
		return fmt.Errorf("line %d: want [x, y, w, h], got %d values", n.Line, len(v))
	}
	*r = rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
	return nil
}

// color decodes "#rrggbb".
type color render.Color

func (c *color) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := parseHex(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*c = color(render.Hex(v))
	return nil
}

// ParseColor decodes "#rrggbb".
func ParseColor(s string) (render.Color, error) {
	v, err := parseHex(s)
	if err != nil {
		return render.Color{}, err
	}
	return render.Hex(v), nil
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(v), nil
}

type spriteFile struct {
	Sprites []struct {
		Name       string `yaml:"name"`
		Sheet      string `yaml:"sheet"`
		Origin     point  `yaml:"origin"`
		Color      color  `yaml:"color"`
		Animations []struct {
			Name   string `yaml:"name"`
			Frames []struct {
				Source   rect    `yaml:"source"`
				Duration float64 `yaml:"duration"`
				Color    *color  `yaml:"color"`
			} `yaml:"frames"`
		} `yaml:"animations"`
	} `yaml:"sprites"`
}

// SpriteTable holds sprites indexed by name.
type SpriteTable struct {
	sprites map[string]*Sprite
}

// LoadSpriteTable loads sprite definitions from a YAML file.
func LoadSpriteTable(path string) (*SpriteTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sprites: %w", err)
	}
	return ParseSpriteTable(raw)
}

// ParseSpriteTable decodes sprite definitions.
func ParseSpriteTable(raw []byte) (*SpriteTable, error) {
	var f spriteFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sprites: %w", err)
	}

	t := &SpriteTable{sprites: make(map[string]*Sprite, len(f.Sprites))}
	for _, rs := range f.Sprites {
		if rs.Name == "" {
			return nil, errors.New("sprite without name")
		}
		if _, dup := t.sprites[rs.Name]; dup {
			return nil, fmt.Errorf("sprite %q defined twice", rs.Name)
		}
		sheet := rs.Sheet
		if sheet == "" {
			sheet = rs.Name
		}

		s := &Sprite{Name: rs.Name, Origin: geom.Point(rs.Origin)}
		for _, ra := range rs.Animations {
			if len(ra.Frames) == 0 {
				return nil, fmt.Errorf("sprite %q animation %q has no frames", rs.Name, ra.Name)
			}
			anim := Animation{Name: ra.Name, Frames: make([]Frame, 0, len(ra.Frames))}
			for i, rf := range ra.Frames {
				if rf.Duration <= 0 {
					return nil, fmt.Errorf("sprite %q animation %q frame %d: duration must be positive", rs.Name, ra.Name, i)
				}
				tint := render.Color(rs.Color)
				if rf.Color != nil {
					tint = render.Color(*rf.Color)
				}
				if tint.A == 0 {
					tint = render.White
				}
				anim.Frames = append(anim.Frames, Frame{
					Image:    render.Image{Sheet: sheet, Source: geom.Rect(rf.Source), Tint: tint},
					Duration: rf.Duration,
				})
			}
			s.Animations = append(s.Animations, anim)
		}
		t.sprites[s.Name] = s
	}
	return t, nil
}

// Get returns a sprite by name, or nil if not found.
func (t *SpriteTable) Get(name string) *Sprite {
	return t.sprites[name]
}

// Count returns the number of loaded sprites.
func (t *SpriteTable) Count() int {
	return len(t.sprites)
}
