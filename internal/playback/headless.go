//go:build headless

package playback

import (
	"context"
	"errors"

	"github.com/audiospace/atomspace/pkg/framework/debug"
)

// ErrNoDevice is returned by headless builds, which have no audio output
var ErrNoDevice = errors.New("playback: built without audio output")

// Player is unavailable in headless builds
type Player struct{}

// NewPlayer always fails in headless builds
func NewPlayer(pump *Pump, sampleRate int, logger *debug.Logger) (*Player, error) {
	return nil, ErrNoDevice
}

// Play always fails in headless builds
func (p *Player) Play(ctx context.Context) error {
	return ErrNoDevice
}

// Close does nothing
func (p *Player) Close() error {
	return nil
}
