package term

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/input"
	"github.com/pondhero/platformer/internal/render"
)

func newSim(t *testing.T, w, h, scale int) (*Surface, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	require.NoError(t, sim.Init())
	sim.SetSize(w, h)
	t.Cleanup(sim.Fini)
	return New(sim, scale), sim
}

func bgAt(s tcell.Screen, x, y int) tcell.Color {
	_, _, style, _ := s.GetContent(x, y)
	_, bg, _ := style.Decompose()
	return bg
}

func TestRectCoversScaledCells(t *testing.T) {
	s, sim := newSim(t, 10, 5, 4)
	s.Clear(render.Black)

	s.Rect(geom.R(4, 0, 8, 5), render.Red) // cells x [1,3), y [0,2)

	red := tcell.NewRGBColor(0xff, 0, 0)
	assert.Equal(t, red, bgAt(sim, 1, 0))
	assert.Equal(t, red, bgAt(sim, 2, 1))
	assert.NotEqual(t, red, bgAt(sim, 0, 0))
	assert.NotEqual(t, red, bgAt(sim, 3, 0))
	assert.NotEqual(t, red, bgAt(sim, 1, 2))
}

func TestOffsetsAndClipping(t *testing.T) {
	s, sim := newSim(t, 4, 4, 1)
	s.Clear(render.Black)

	s.PushOffset(geom.Pt(2, 2))
	s.Rect(geom.R(0, 0, 10, 10), render.White)
	s.PopOffset()

	white := tcell.NewRGBColor(0xff, 0xff, 0xff)
	assert.Equal(t, white, bgAt(sim, 3, 3))
	assert.Equal(t, white, bgAt(sim, 2, 2))
	assert.NotEqual(t, white, bgAt(sim, 1, 1))
}

func TestImageUsesModulatedTint(t *testing.T) {
	s, sim := newSim(t, 4, 4, 1)
	img := render.Image{Sheet: "player", Source: geom.R(0, 0, 1, 1), Tint: render.RGB(0xff, 0x80, 0x00)}

	s.Image(img, geom.Pt(1, 1), render.White)
	r, g, b := bgAt(sim, 1, 1).RGB()
	assert.Equal(t, []int32{0xff, 0x80, 0x00}, []int32{r, g, b})

	s.Image(render.Image{}, geom.Pt(0, 0), render.White)
	assert.NotEqual(t, bgAt(sim, 1, 1), bgAt(sim, 0, 0))
}

func TestHollowRectKeepsBackground(t *testing.T) {
	s, sim := newSim(t, 6, 6, 1)
	s.Rect(geom.R(0, 0, 6, 6), render.Black)
	s.HollowRect(geom.R(1, 1, 3, 3), render.Red)

	mainc, _, style, _ := sim.GetContent(1, 1)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, '·', mainc)
	assert.Equal(t, tcell.NewRGBColor(0xff, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0), bg)

	inner, _, _, _ := sim.GetContent(2, 2)
	assert.Equal(t, ' ', inner)
}

func TestTranslate(t *testing.T) {
	st := input.NewState()

	assert.Equal(t, CmdQuit, Translate(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), st))
	assert.Equal(t, CmdQuit, Translate(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), st))
	assert.Equal(t, CmdToggleColliders, Translate(tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone), st))
	assert.Equal(t, CmdReload, Translate(tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), st))
	assert.Equal(t, CmdReload, Translate(tcell.NewEventKey(tcell.KeyF2, 0, tcell.ModNone), st))
	assert.Equal(t, CmdRestart, Translate(tcell.NewEventKey(tcell.KeyF9, 0, tcell.ModNone), st))

	assert.Equal(t, CmdNone, Translate(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), st))
	assert.Equal(t, CmdNone, Translate(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), st))
	st.Step(0.016)
	assert.True(t, st.Pressed(input.Jump))
	assert.True(t, st.Held(input.Left))
	assert.False(t, st.Held(input.Right))
}

func TestEventsPump(t *testing.T) {
	s, sim := newSim(t, 4, 4, 1)
	quit := make(chan struct{})
	events := s.Events(quit)

	sim.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	ev := <-events
	key, ok := ev.(*tcell.EventKey)
	require.True(t, ok)
	assert.Equal(t, 'x', key.Rune())

	close(quit)
	for range events {
	}
}
