package fakedevice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/streammagic/internal/logging"
)

// Config holds the fake device server configuration
type Config struct {
	Addr    string        // Listen address, e.g. "127.0.0.1:8080"
	Latency time.Duration // Added to every response
}

// Server runs a Handler on a TCP listener
type Server struct {
	config   *Config
	handler  *Handler
	listener net.Listener
	http     *http.Server
}

// New creates a server for d. The listener is opened immediately so that Addr
// is valid before Start.
func New(config *Config, d *Device) (*Server, error) {
	listener, err := net.Listen("tcp", config.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", config.Addr, err)
	}

	h := NewHandler(d)
	var handler = h.Router()
	if config.Latency > 0 {
		handler = withLatency(config.Latency, handler)
	}

	return &Server{
		config:   config,
		handler:  h,
		listener: listener,
		http: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Addr returns the address the server is listening on
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Faults returns the fault registry of the served handler
func (s *Server) Faults() *FaultRegistry {
	return s.handler.Faults
}

// Start serves requests and blocks until ctx is done, SIGINT/SIGTERM arrives,
// or the server fails.
func (s *Server) Start(ctx context.Context) error {
	logging.Info("Starting fake StreamMagic device",
		zap.String("addr", s.Addr()),
		zap.String("model", s.handler.Device.Info().Model),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.http.Serve(s.listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping fake device...")
	case <-ctx.Done():
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down fake device...")
	if err := s.http.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return s.http.Close()
	}
	return nil
}

func withLatency(d time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return
		}
		next.ServeHTTP(w, r)
	})
}
