// Command atomhost runs an atom space patch: rendered to a WAV file, played
// on the local audio device, streamed to browsers or piped as raw samples.
//
// Configuration comes from ATOM_* environment variables; see
// internal/config. The patch is a Lua file named by ATOM_PATCH or the first
// argument.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/audiospace/atomspace/internal/config"
	"github.com/audiospace/atomspace/internal/control"
	"github.com/audiospace/atomspace/internal/engine"
	"github.com/audiospace/atomspace/internal/playback"
	"github.com/audiospace/atomspace/internal/stream"
	"github.com/audiospace/atomspace/pkg/framework/debug"
)

const renderChannels = 2

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "atomhost: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(os.Args) > 1 {
		cfg.PatchPath = os.Args[1]
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	patch, err := config.LoadPatch(cfg.PatchPath)
	if err != nil {
		return err
	}
	logger.Info("patch %q: %d voices", patch.Name, len(patch.Voices))

	eng, err := engine.New(cfg, patch, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cfg.Mode {
	case config.ModeRender:
		return renderFile(eng, cfg, logger)
	case config.ModePlay:
		return play(ctx, cancel, eng, cfg, logger)
	case config.ModeStream:
		return stream.NewServer(eng, cfg.Addr, logger).Run(ctx)
	case config.ModePipe:
		return pipe(ctx, eng)
	}
	return fmt.Errorf("unknown mode %q", cfg.Mode)
}

func newLogger(cfg config.Config) (*debug.Logger, io.Closer, error) {
	if cfg.LogFile == "" {
		logger := debug.New(os.Stderr, "atomhost", debug.DefaultFlags)
		logger.SetLevel(cfg.LogLevel)
		return logger, io.NopCloser(nil), nil
	}
	logger, closer, err := debug.NewFileLogger(cfg.LogFile, "atomhost", debug.DefaultFlags)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(cfg.LogLevel)
	return logger, closer, nil
}

func renderFile(eng *engine.Engine, cfg config.Config, logger *debug.Logger) error {
	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := eng.Render(f, renderChannels, cfg.Duration); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	logger.Info("wrote %s", cfg.Output)
	return nil
}

// pipe feeds a player reading raw float32 mono from stdout, for example
// ffplay -f f32le -ar 48000 -ac 1 -
func pipe(ctx context.Context, eng *engine.Engine) error {
	err := eng.Pipe(ctx, os.Stdout)
	if errors.Is(err, syscall.EPIPE) {
		return nil
	}
	return err
}

func play(ctx context.Context, cancel context.CancelFunc, eng *engine.Engine, cfg config.Config, logger *debug.Logger) error {
	pump := playback.NewPump(eng, cfg.Latency)
	player, err := playback.NewPlayer(pump, int(cfg.SampleRate), logger)
	if err != nil {
		return err
	}
	defer player.Close()

	if control.IsTerminal(os.Stdin) {
		restore, err := control.MakeRaw(os.Stdin)
		if err != nil {
			return err
		}
		defer restore()

		ctl := control.NewController(eng, os.Stdout, logger)
		go func() {
			if err := ctl.Run(ctx, os.Stdin); err != nil {
				logger.Error("control: %v", err)
			}
			cancel()
		}()
	}

	return player.Play(ctx)
}
