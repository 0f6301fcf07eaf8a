package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/hushmaze/audio"
	"github.com/lixenwraith/hushmaze/config"
	"github.com/lixenwraith/hushmaze/level"
	"github.com/lixenwraith/hushmaze/render"
	"github.com/lixenwraith/hushmaze/sound"
	"github.com/lixenwraith/hushmaze/spectate"
	"github.com/lixenwraith/hushmaze/vmath"
)

const (
	frameInterval = 16 * time.Millisecond // ~60 FPS
	maxFrameDt    = 0.1                   // Seconds; clamps stalls so agents do not teleport
	moveStep      = 0.5                   // World units per key press
)

const helpText = "arrows/hjkl move  g guide  n noise  p pause  r restart  q quit"

// game drives one terminal session; every method runs on the loop goroutine
type game struct {
	screen   tcell.Screen
	settings config.Settings
	backend  *audio.Engine
	server   *spectate.Server // nil when spectating is off

	level   *level.Level
	view    *render.View
	paused  bool
	escapes int
	status  string
}

func newGame(screen tcell.Screen, s config.Settings, backend *audio.Engine, server *spectate.Server) (*game, error) {
	g := &game{
		screen:   screen,
		settings: s,
		backend:  backend,
		server:   server,
		view:     render.NewView(),
	}
	if err := g.restart(); err != nil {
		return nil, err
	}
	return g, nil
}

// restart replaces the level; a fixed seed advances so each run gets a new maze
func (g *game) restart() error {
	if g.level != nil {
		if g.server != nil {
			g.server.Hub().Detach()
		}
		g.level.Close()
		if g.settings.Maze.Seed != 0 {
			g.settings.Maze.Seed++
		}
	}

	lvl, err := level.New(g.settings, g.backend)
	if err != nil {
		return fmt.Errorf("new level: %w", err)
	}
	if g.server != nil {
		g.server.Hub().Attach(lvl.Field.Router())
	}
	g.level = lvl
	g.paused = false
	log.Printf("hushmaze: level %dx%d started, %d stalkers", lvl.Grid.Width, lvl.Grid.Height, len(lvl.Stalkers()))
	return nil
}

// handleEvent returns false when the session should end
func (g *game) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		var delta vmath.Vec2
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			delta.Y = moveStep
		case tcell.KeyDown:
			delta.Y = -moveStep
		case tcell.KeyLeft:
			delta.X = -moveStep
		case tcell.KeyRight:
			delta.X = moveStep
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'k':
				delta.Y = moveStep
			case 'j':
				delta.Y = -moveStep
			case 'h':
				delta.X = -moveStep
			case 'l':
				delta.X = moveStep
			case 'g':
				if err := g.level.GuideToExit(); err != nil {
					g.status = err.Error()
				}
			case 'n':
				if _, err := g.level.EmitAt(g.level.Player(), sound.Item, 1); err != nil {
					g.status = err.Error()
				}
			case 'p':
				g.paused = !g.paused
				g.level.Pause(g.paused)
			case 'r':
				if err := g.restart(); err != nil {
					g.status = err.Error()
				}
			}
		}
		if delta != (vmath.Vec2{}) && !g.paused {
			g.level.MovePlayer(delta)
		}

	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

// step advances the simulation by dt and redraws
func (g *game) step(dt float64) error {
	if !g.paused {
		g.level.Update(min(dt, maxFrameDt))
		if g.level.Guide.Active() {
			g.level.Guide.Update(g.level.Player())
		}
		if g.level.AtExit() {
			g.escapes++
			g.status = fmt.Sprintf("escaped %d time(s)", g.escapes)
			if err := g.restart(); err != nil {
				return err
			}
		}
	}

	snap := g.level.Snapshot()
	if g.server != nil {
		g.server.Publish(snap)
	}

	g.screen.Clear()
	g.view.Draw(g.screen, snap)
	_, h := render.MapSize(snap.Grid)
	line := helpText
	if g.paused {
		line = "PAUSED  " + line
	}
	drawText(g.screen, 0, h+1, line)
	drawText(g.screen, 0, h+2, g.status)
	g.screen.Show()
	return nil
}

func drawText(screen tcell.Screen, x, y int, s string) {
	style := tcell.StyleDefault.Foreground(render.RgbStatusBar.Color())
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// run owns the screen until ctx ends or the player quits
func (g *game) run(ctx context.Context) error {
	defer recoverTerminal(g.screen)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		defer recoverTerminal(g.screen)
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			if !g.handleEvent(ev) {
				return nil
			}

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := g.step(dt); err != nil {
				return err
			}
		}
	}
}

// close releases the level and its hub subscriptions
func (g *game) close() {
	if g.server != nil {
		g.server.Hub().Detach()
	}
	g.level.Close()
}
