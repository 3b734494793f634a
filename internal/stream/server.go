package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/audiospace/atomspace/internal/engine"
	"github.com/audiospace/atomspace/pkg/framework/debug"
)

const (
	streamChannels  = 2
	shutdownTimeout = 5 * time.Second
)

// Server streams one engine over HTTP
type Server struct {
	eng         *engine.Engine
	broadcaster *Broadcaster
	webrtc      *WebRTCHandler
	http        *http.Server
	logger      *debug.Logger
}

// NewServer wires the broadcaster, the stream handlers and the API on addr
func NewServer(eng *engine.Engine, addr string, logger *debug.Logger) *Server {
	if logger == nil {
		logger = debug.Default()
	}
	format := Format{
		SampleRate:    int(eng.SampleRate()),
		Channels:      streamChannels,
		FrameDuration: engine.FrameDuration,
	}

	s := &Server{
		eng:         eng,
		broadcaster: NewBroadcaster(),
		logger:      logger,
	}
	s.webrtc = NewWebRTCHandler(s.broadcaster, format, logger)

	mux := http.NewServeMux()
	mux.Handle("/offer", s.webrtc)
	mux.Handle("/stream", NewWAVHandler(s.broadcaster, format, logger))
	NewAPI(eng, s.broadcaster, s.webrtc, logger).Register(mux)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run renders and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	go s.broadcaster.Run(ctx, s.eng.Frames(ctx, streamChannels))

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("stream: listening on %s", s.http.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.webrtc.Close()
	s.broadcaster.Close()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("stream: stopped after %d frames", s.broadcaster.Frames())
	return nil
}
