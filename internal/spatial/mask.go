package spatial

import (
	"fmt"
	"strings"
)

// Mask is an open bitset of collision categories. Gameplay code may define
// further bits above the ones declared here.
type Mask uint32

const (
	Solid Mask = 1 << iota
	JumpThrough
	PlayerAttack
	Enemy
	Player
	Hazard
)

var maskNames = []struct {
	name string
	bit  Mask
}{
	{"solid", Solid},
	{"jumpthrough", JumpThrough},
	{"player_attack", PlayerAttack},
	{"enemy", Enemy},
	{"player", Player},
	{"hazard", Hazard},
}

// Has reports whether every bit of q is set in m.
func (m Mask) Has(q Mask) bool { return m&q == q }

func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	rest := m
	for _, n := range maskNames {
		if m&n.bit != 0 {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseMask turns names such as "enemy|hazard" (also comma separated) into
// a Mask. The empty string is the zero mask.
func ParseMask(s string) (Mask, error) {
	var m Mask
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' || r == ' ' }) {
		bit, ok := MaskNamed(f)
		if !ok {
			return 0, fmt.Errorf("spatial: unknown mask %q", f)
		}
		m |= bit
	}
	return m, nil
}

// MaskNamed returns the category bit called name.
func MaskNamed(name string) (Mask, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range maskNames {
		if n.name == name {
			return n.bit, true
		}
	}
	return 0, false
}
