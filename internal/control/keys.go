// Package control maps single key presses to engine changes.
package control

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/audiospace/atomspace/internal/engine"
	"github.com/audiospace/atomspace/pkg/framework/debug"
)

// Target is the part of the engine the keyboard drives
type Target interface {
	Tempo() float64
	SetTempo(bpm float64)
	Voices() []engine.VoiceInfo
	ToggleVoice(index int) (bool, error)
	Trigger(index int) error
}

// Action is what one key does
type Action struct {
	Kind  ActionKind
	Delta float64 // tempo change in bpm
	Voice int     // voice index for ActionToggle
}

// ActionKind enumerates key actions
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionTempo
	ActionToggle
	ActionTrigger
	ActionHelp
	ActionQuit
)

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// Help lists the key bindings
const Help = "keys: +/- tempo ±1, ]/[ tempo ±10, 1-9 toggle voice, space trigger, h help, q quit"

// MapKey returns the action bound to b
func MapKey(b byte) Action {
	switch {
	case b == '+' || b == '=':
		return Action{Kind: ActionTempo, Delta: 1}
	case b == '-' || b == '_':
		return Action{Kind: ActionTempo, Delta: -1}
	case b == ']':
		return Action{Kind: ActionTempo, Delta: 10}
	case b == '[':
		return Action{Kind: ActionTempo, Delta: -10}
	case b >= '1' && b <= '9':
		return Action{Kind: ActionToggle, Voice: int(b - '1')}
	case b == ' ':
		return Action{Kind: ActionTrigger}
	case b == 'h' || b == '?':
		return Action{Kind: ActionHelp}
	case b == 'q' || b == 'Q' || b == keyCtrlC || b == keyEscape:
		return Action{Kind: ActionQuit}
	}
	return Action{}
}

// Controller applies key presses to a Target and echoes what changed
type Controller struct {
	target Target
	out    io.Writer
	logger *debug.Logger
}

// NewController creates a controller writing feedback to out
func NewController(target Target, out io.Writer, logger *debug.Logger) *Controller {
	if logger == nil {
		logger = debug.Default()
	}
	return &Controller{target: target, out: out, logger: logger}
}

// Apply performs an action and returns the feedback line, if any
func (c *Controller) Apply(a Action) string {
	switch a.Kind {
	case ActionTempo:
		c.target.SetTempo(c.target.Tempo() + a.Delta)
		return fmt.Sprintf("tempo %.0f bpm", c.target.Tempo())

	case ActionToggle:
		voices := c.target.Voices()
		if a.Voice >= len(voices) {
			return fmt.Sprintf("no voice %d", a.Voice+1)
		}
		active, err := c.target.ToggleVoice(a.Voice)
		if err != nil {
			return err.Error()
		}
		state := "off"
		if active {
			state = "on"
		}
		return fmt.Sprintf("voice %d (%s) %s", a.Voice+1, voices[a.Voice].Kind, state)

	case ActionTrigger:
		fired := 0
		for _, v := range c.target.Voices() {
			if c.target.Trigger(v.Index) == nil {
				fired++
			}
		}
		if fired == 0 {
			return "nothing to trigger"
		}
		return fmt.Sprintf("triggered %d", fired)

	case ActionHelp:
		return Help
	}
	return ""
}

// Run reads keys from r until q, EOF or ctx is done
func (c *Controller) Run(ctx context.Context, r io.Reader) error {
	keys := make(chan byte)
	errc := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()

	c.print(Help)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read keys: %w", err)
		case b := <-keys:
			a := MapKey(b)
			if a.Kind == ActionQuit {
				return nil
			}
			if msg := c.Apply(a); msg != "" {
				c.print(msg)
				c.logger.Debug("control: %s", msg)
			}
		}
	}
}

// print writes a line; raw terminals need an explicit carriage return
func (c *Controller) print(msg string) {
	fmt.Fprintf(c.out, "%s\r\n", msg)
}
