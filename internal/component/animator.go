package component

import (
	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/data"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/render"
)

var AnimatorKind = ecs.RegisterKind[*Animator]("animator")

// Animator plays the animations of a sprite. The current frame is drawn
// with the sprite origin at the entity position plus Offset.
type Animator struct {
	ecs.Base

	Offset geom.Point
	Tint   render.Color

	sprite  *data.Sprite
	anim    int
	frame   int
	counter float64
}

func NewAnimator(sprite *data.Sprite) *Animator {
	return &Animator{sprite: sprite, Tint: render.White}
}

func (*Animator) Kind() ecs.KindID { return AnimatorKind.ID() }

func (a *Animator) Sprite() *data.Sprite { return a.sprite }

// Animation returns the playing animation, or nil.
func (a *Animator) Animation() *data.Animation {
	if a.sprite == nil || a.anim < 0 || a.anim >= len(a.sprite.Animations) {
		return nil
	}
	return &a.sprite.Animations[a.anim]
}

// Frame returns the index of the current frame.
func (a *Animator) Frame() int { return a.frame }

// Play switches to the named animation. Playing the current animation
// again only rewinds it when restart is set. Unknown names are ignored and
// reported with false.
func (a *Animator) Play(name string, restart bool) bool {
	if a.sprite == nil {
		return false
	}
	i := a.sprite.Animation(name)
	if i < 0 {
		return false
	}
	if a.anim != i || restart {
		a.anim = i
		a.frame = 0
		a.counter = 0
	}
	return true
}

func (a *Animator) Update(t *clock.Time) {
	anim := a.current()
	if anim == nil {
		return
	}

	a.counter += t.Delta
	for {
		d := anim.Frames[a.frame].Duration
		if d <= 0 || a.counter < d {
			break
		}
		a.counter -= d
		a.frame++
		if a.frame >= len(anim.Frames) {
			a.frame = 0
		}
	}
}

func (a *Animator) Render(s render.Surface) {
	anim := a.current()
	if anim == nil {
		return
	}
	pos := a.Entity().Position.Add(a.Offset).Sub(a.sprite.Origin)
	s.Image(anim.Frames[a.frame].Image, pos, a.Tint)
}

func (a *Animator) current() *data.Animation {
	anim := a.Animation()
	if anim == nil || a.frame < 0 || a.frame >= len(anim.Frames) {
		return nil
	}
	return anim
}
