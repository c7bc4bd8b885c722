package main

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const (
	viewerW            = 640
	viewerH            = 480
	viewerStepsPerTick = 4
)

// viewerGame renders the front and back surface temperatures of the first
// wall element as scrolling traces while the simulation advances.
type viewerGame struct {
	run   *simulationRun
	front []float32
	back  []float32
	max   float32
	err   error
}

func newViewerGame(run *simulationRun) *viewerGame {
	return &viewerGame{run: run, max: 100}
}

func (g *viewerGame) Update() error {
	for i := 0; i < viewerStepsPerTick && !g.run.done(); i++ {
		if err := g.run.advance(); err != nil {
			g.err = err
			return err
		}
		front, back := g.run.out[0][0], g.run.out[0][1]
		g.front = append(g.front, front)
		g.back = append(g.back, back)
		if len(g.front) > viewerW {
			g.front = g.front[1:]
			g.back = g.back[1:]
		}
		if front > g.max {
			g.max = front
		}
		if back > g.max {
			g.max = back
		}
	}
	if g.run.done() {
		return ebiten.Termination
	}
	return nil
}

func (g *viewerGame) Draw(screen *ebiten.Image) {
	toY := func(t float32) int {
		y := viewerH - 1 - int(t/g.max*float32(viewerH-1))
		if y < 0 {
			y = 0
		}
		if y >= viewerH {
			y = viewerH - 1
		}
		return y
	}
	for x := range g.front {
		screen.Set(x, toY(g.front[x]), color.RGBA{255, 60, 60, 255})
		screen.Set(x, toY(g.back[x]), color.RGBA{60, 60, 255, 255})
	}
	if n := len(g.front); n > 0 {
		msg := fmt.Sprintf("t=%.0fs front=%.1f°C back=%.1f°C (scale 0-%.0f°C)",
			g.run.elapsed, g.front[n-1], g.back[n-1], g.max)
		ebitenutil.DebugPrint(screen, msg)
	}
}

func (g *viewerGame) Layout(_, _ int) (int, int) { return viewerW, viewerH }

// runViewer drives the simulation inside an ebiten window. A window closed
// by the user or a finished series both end the run cleanly.
func runViewer(run *simulationRun) error {
	game := newViewerGame(run)
	ebiten.SetWindowSize(viewerW, viewerH)
	ebiten.SetWindowTitle("Wall Heat Transfer")
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return game.err
}
