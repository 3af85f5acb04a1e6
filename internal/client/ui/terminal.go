// Package ui renders the session protocol's BoardUpdate frames to a
// terminal via tcell and turns keyboard or file input into Play commands,
// the terminal client frontend spec.md lists as an out-of-scope external
// collaborator (§1) but that a complete client binary still needs.
package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/pacd/pacd/internal/client"
	"github.com/pacd/pacd/internal/pnet"
)

// ErrQuit is returned by Run when the player quits voluntarily.
var ErrQuit = errors.New("ui: quit")

var glyphStyle = map[rune]tcell.Style{
	'#': tcell.StyleDefault.Foreground(tcell.ColorBlue),
	'.': tcell.StyleDefault.Foreground(tcell.ColorYellow),
	'@': tcell.StyleDefault.Foreground(tcell.ColorGreen),
	'C': tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	'M': tcell.StyleDefault.Foreground(tcell.ColorRed),
	'G': tcell.StyleDefault.Foreground(tcell.ColorAqua),
}

// Renderer draws BoardUpdate frames to a tcell screen.
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer initializes a full-screen tcell renderer.
func NewRenderer() (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	return &Renderer{screen: screen}, nil
}

// Close restores the terminal.
func (r *Renderer) Close() { r.screen.Fini() }

// Screen exposes the underlying tcell screen for a KeyboardSource.
func (r *Renderer) Screen() tcell.Screen { return r.screen }

// Draw renders one board update, plus a status line with the score and,
// on game-over, a banner.
func (r *Renderer) Draw(update client.BoardUpdate) {
	r.screen.Clear()

	width := int(update.Width)
	for i, glyph := range update.Tiles {
		x, y := i%width, i/width
		style, ok := glyphStyle[rune(glyph)]
		if !ok {
			style = tcell.StyleDefault
		}
		r.screen.SetContent(x, y, rune(glyph), nil, style)
	}

	status := fmt.Sprintf("Points: %d", update.Points)
	switch update.GameOver {
	case pnet.GameOverDeath:
		status += "  GAME OVER"
	case pnet.GameOverEndgame:
		status += "  THE END"
	}
	if update.Victory != 0 {
		status += "  LEVEL CLEAR"
	}
	for i, r2 := range status {
		r.screen.SetContent(i, int(update.Height)+1, r2, nil, tcell.StyleDefault)
	}

	r.screen.Show()
}

// KeyboardSource turns tcell key events into command bytes.
type KeyboardSource struct {
	screen tcell.Screen
}

// NewKeyboardSource wraps a renderer's screen as a CommandSource.
func NewKeyboardSource(r *Renderer) *KeyboardSource {
	return &KeyboardSource{screen: r.screen}
}

// Next blocks for the next keystroke and returns its uppercased rune.
func (k *KeyboardSource) Next() (byte, error) {
	for {
		ev := k.screen.PollEvent()
		switch e := ev.(type) {
		case *tcell.EventKey:
			var b byte
			switch e.Key() {
			case tcell.KeyUp:
				b = 'U'
			case tcell.KeyDown:
				b = 'D'
			case tcell.KeyLeft:
				b = 'L'
			case tcell.KeyRight:
				b = 'R'
			case tcell.KeyEscape, tcell.KeyCtrlC:
				b = 'Q'
			case tcell.KeyRune:
				r := e.Rune()
				if r >= 'a' && r <= 'z' {
					r -= 'a' - 'A'
				}
				b = byte(r)
			default:
				continue
			}
			return b, nil
		case nil:
			return 0, errors.New("ui: screen closed")
		}
	}
}

// Run drives one full client session: it spawns a receiver goroutine that
// draws every incoming BoardUpdate and tracks the latest tempo, then feeds
// commands from source to sess until the server ends the game or source
// yields 'Q'.
func Run(sess *client.Session, source CommandSource, render *Renderer, tempo *atomic.Int32) error {
	recvErr := make(chan error, 1)
	go func() {
		for {
			update, err := sess.ReceiveBoardUpdate()
			if err != nil {
				recvErr <- err
				return
			}
			if update.Tempo > 0 {
				tempo.Store(update.Tempo)
			}
			render.Draw(update)
			if update.GameOver == pnet.GameOverEndgame {
				recvErr <- nil
				return
			}
		}
	}()

	for {
		select {
		case err := <-recvErr:
			return err
		default:
		}

		cmd, err := source.Next()
		if err != nil {
			return err
		}
		if cmd == 'Q' {
			if err := sess.Play('Q'); err != nil {
				slog.Warn("sending quit command failed", "err", err)
			}
			return <-recvErr
		}
		if err := sess.Play(cmd); err != nil {
			return fmt.Errorf("sending command: %w", err)
		}
	}
}
