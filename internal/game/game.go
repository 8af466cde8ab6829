// Package game wires the world, the frame systems and a render backend
// into a runnable game.
package game

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/pondhero/platformer/internal/core/clock"
	"github.com/pondhero/platformer/internal/core/ecs"
	"github.com/pondhero/platformer/internal/core/event"
	coresys "github.com/pondhero/platformer/internal/core/system"
	"github.com/pondhero/platformer/internal/data"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/input"
	"github.com/pondhero/platformer/internal/level"
	"github.com/pondhero/platformer/internal/render"
	"github.com/pondhero/platformer/internal/render/term"
	"github.com/pondhero/platformer/internal/scripting"
	"github.com/pondhero/platformer/internal/system"
)

type Options struct {
	TickRate  time.Duration
	StartRoom geom.Point
	// Frames stops the game after that many ticks when positive.
	Frames        int
	Seed          uint32
	Recycle       bool
	Background    render.Color
	ShowColliders bool
}

// Game owns one world and runs it frame by frame. Single goroutine only.
type Game struct {
	log  *zap.Logger
	opts Options

	World   *ecs.World
	Clock   *clock.Time
	Bus     *event.Bus
	Input   *input.State
	Camera  *system.Camera
	Builder *level.Builder

	runner *coresys.Runner
	rooms  *system.RoomSystem
	render *system.RenderSystem

	frames int
	quit   bool
}

// New assembles a game drawing to surface. events carries terminal input
// and may be nil; scripts may be nil when no prefab names a behaviour.
func New(content *data.Content, scripts *scripting.Engine, surface render.Surface, events <-chan tcell.Event, opts Options, log *zap.Logger) *Game {
	g := &Game{
		log:    log,
		opts:   opts,
		World:  ecs.NewWorld(ecs.WithLogger(log), ecs.WithEntityRecycling(opts.Recycle)),
		Clock:  clock.New(),
		Bus:    event.NewBus(),
		Input:  input.NewState(),
		Camera: &system.Camera{},
		runner: coresys.NewRunner(),
	}

	builderOpts := []level.Option{
		level.WithBus(g.Bus),
		level.WithLogger(log),
		level.WithSeed(opts.Seed),
	}
	if scripts != nil {
		builderOpts = append(builderOpts, level.WithScripts(scripts))
		scripts.SetHost(scripting.Host{
			Clock: g.Clock,
			Input: g.Input,
			Bus:   g.Bus,
			Spawn: g.spawn,
		})
	}
	g.Builder = level.NewBuilder(content, builderOpts...)

	g.rooms = system.NewRoomSystem(g.World, g.Builder, g.Camera, g.Bus, log)
	g.render = system.NewRenderSystem(surface, g.World, g.Camera)
	g.render.Background = opts.Background
	g.render.ShowColliders = opts.ShowColliders

	g.runner.Register(system.NewInputSystem(events, g.Input, g.Command))
	g.runner.Register(system.NewEventSystem(g.Bus))
	g.runner.Register(system.NewWorldSystem(g.World, g.Clock, g.Camera))
	g.runner.Register(system.NewCameraSystem(g.Camera, g.World, g.Clock, g.Builder, g.rooms, g.Bus, log))
	g.runner.Register(g.render)
	g.runner.Register(g.rooms)

	event.Subscribe(g.Bus, func(ev event.RoomLoaded) {
		g.log.Info("entered room", zap.String("room", ev.Name), zap.Int("x", ev.Cell.X), zap.Int("y", ev.Cell.Y))
	})
	event.Subscribe(g.Bus, func(ev event.Hurt) {
		g.log.Debug("hurt", zap.Stringer("entity", ev.Entity), zap.Int("x", ev.At.X), zap.Int("y", ev.At.Y))
	})
	return g
}

func (g *Game) spawn(w *ecs.World, prefab string, pos geom.Point) (*ecs.Entity, error) {
	return g.Builder.Spawn(w, prefab, pos)
}

// LoadRoom empties the world and builds the room at cell right away.
func (g *Game) LoadRoom(cell geom.Point) error {
	return g.rooms.Load(system.RoomRequest{Cell: cell, Clear: true})
}

// Reload rebuilds the current room at the end of the frame.
func (g *Game) Reload() {
	g.rooms.Request(system.RoomRequest{Cell: g.Camera.Room, Clear: true})
}

// Restart rebuilds the start room at the end of the frame.
func (g *Game) Restart() {
	g.rooms.Request(system.RoomRequest{Cell: g.opts.StartRoom, Clear: true})
}

// ToggleColliders flips the collider overlay and reports the new state.
func (g *Game) ToggleColliders() bool {
	g.render.ShowColliders = !g.render.ShowColliders
	return g.render.ShowColliders
}

// Command applies a driver command.
func (g *Game) Command(cmd term.Command) {
	switch cmd {
	case term.CmdQuit:
		g.quit = true
	case term.CmdReload:
		g.Reload()
	case term.CmdRestart:
		g.Restart()
	case term.CmdToggleColliders:
		g.log.Debug("collider overlay", zap.Bool("on", g.ToggleColliders()))
	}
}

// Quit stops Run after the current frame.
func (g *Game) Quit() { g.quit = true }

// Done reports whether the game asked to stop.
func (g *Game) Done() bool { return g.quit }

// Frames returns the number of ticks run.
func (g *Game) Frames() int { return g.frames }

// Redraw presents the current state without advancing the simulation.
func (g *Game) Redraw() {
	g.runner.TickPhases(0, coresys.PhaseOutput)
}

// Tick runs every frame system once for dt of wall time.
func (g *Game) Tick(dt time.Duration) {
	g.runner.Tick(dt)
	g.frames++
	if g.opts.Frames > 0 && g.frames >= g.opts.Frames {
		g.quit = true
	}
}

// Run ticks at the configured rate until ctx is done, a quit command
// arrives or the frame budget is spent.
func (g *Game) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.opts.TickRate)
	defer ticker.Stop()

	g.log.Info("game loop started", zap.Duration("tick", g.opts.TickRate))
	for !g.quit {
		select {
		case <-ticker.C:
			g.Tick(g.opts.TickRate)
		case <-ctx.Done():
			g.log.Info("game loop cancelled", zap.Error(ctx.Err()))
			return nil
		}
	}
	g.log.Info("game loop stopped", zap.Int("frames", g.frames))
	return nil
}
