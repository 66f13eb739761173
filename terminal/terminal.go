package terminal

import (
	"time"

	"github.com/PrincetonUniversity/verletnet"
	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config holds the parameters of the terminal driver.
type Config struct {
	// Scale is the number of simulation units per cell, DefaultScale if zero.
	Scale r2.Vec

	// Interval is the time between frames, about 60 Hz if zero.
	Interval time.Duration

	// Step advances the simulation by one frame and draws it on e.
	Step func(in verletnet.Input, e verletnet.LineEmitter)

	// Reset rebuilds the simulation. It may be nil.
	Reset func()

	Style tcell.Style // style of the strokes
}

// Run runs an interactive simulation on s until Esc or Ctrl-C is pressed.
// The caller owns s and must have initialized it.
//
// The left mouse button drags the net, the right button cuts it,
// p pauses and resumes, n steps once while paused and r rebuilds the net.
func Run(n *verletnet.Net, s tcell.Screen, conf *Config) error {
	c := NewCanvas(0, 0, DefaultScale)
	if conf.Scale.X > 0 && conf.Scale.Y > 0 {
		c.Scale = conf.Scale
	}
	c.Resize(s.Size())

	interval := conf.Interval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}

	s.EnableMouse()
	defer s.DisableMouse()
	s.HideCursor()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var in verletnet.Input
	cursor := in.Pos
	var pause, step bool
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
					return nil
				case ev.Key() == tcell.KeyRune && ev.Rune() == 'p':
					pause = !pause
				case ev.Key() == tcell.KeyRune && ev.Rune() == 'n':
					if pause {
						step = true
					}
				case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
					if conf.Reset != nil {
						conf.Reset()
					}
				}

			case *tcell.EventMouse:
				x, y := ev.Position()
				cursor = c.ToSim(x, y)
				b := ev.Buttons()
				in.Down = b&tcell.Button1 != 0
				in.Cut = b&tcell.Button2 != 0

			case *tcell.EventResize:
				c.Resize(s.Size())
				s.Sync()
			}

		case <-ticker.C:
			in = in.Moved(cursor)
			if !pause || step {
				step = false
				conf.Step(in, c)
			} else {
				n.Draw(c)
			}
			Blit(s, c, conf.Style)
			s.Show()
		}
	}
}
