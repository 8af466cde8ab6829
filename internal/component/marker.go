package component

import "github.com/pondhero/platformer/internal/core/ecs"

var (
	FocusKind = ecs.RegisterKind[*Focus]("focus")
	TagKind   = ecs.RegisterKind[*Tag]("tag")
)

// Focus marks the entity the camera follows between rooms.
type Focus struct {
	ecs.Base
}

func NewFocus() *Focus {
	f := &Focus{}
	f.SetActive(false)
	f.SetVisible(false)
	return f
}

func (*Focus) Kind() ecs.KindID { return FocusKind.ID() }

// Tag names the prefab an entity was spawned from.
type Tag struct {
	ecs.Base
	Name string
}

func NewTag(name string) *Tag {
	t := &Tag{Name: name}
	t.SetActive(false)
	t.SetVisible(false)
	return t
}

func (*Tag) Kind() ecs.KindID { return TagKind.ID() }

// Tagged returns the oldest live entity spawned from prefab name.
func Tagged(w *ecs.World, name string) (*ecs.Entity, bool) {
	t, ok := ecs.Find(w, TagKind, func(t *Tag) bool { return t.Name == name })
	if !ok {
		return nil, false
	}
	return t.Entity(), true
}
