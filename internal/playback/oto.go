//go:build !headless

package playback

import (
	"context"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/audiospace/atomspace/pkg/framework/debug"
)

// Player owns the oto context and the player reading from a Pump
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	pump   *Pump
	logger *debug.Logger

	mu      sync.Mutex
	started bool
}

// NewPlayer opens the default output device as mono float32
func NewPlayer(pump *Pump, sampleRate int, logger *debug.Logger) (*Player, error) {
	if logger == nil {
		logger = debug.Default()
	}
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	return &Player{
		ctx:    ctx,
		player: ctx.NewPlayer(pump),
		pump:   pump,
		logger: logger,
	}, nil
}

// Play starts the pump and the device and blocks until ctx is done
func (p *Player) Play(ctx context.Context) error {
	p.pump.Fill()

	p.mu.Lock()
	if !p.started {
		p.player.Play()
		p.started = true
	}
	p.mu.Unlock()
	p.logger.Info("playback: started")

	p.pump.Run(ctx)

	st := p.pump.Stats()
	p.logger.Info("playback: stopped, %d underruns, %d overruns", st.Underruns, st.Overruns)
	return p.player.Err()
}

// Close stops the device player
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	p.started = false
	return err
}
