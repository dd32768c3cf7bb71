package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// conn is one live protocol connection
type conn interface {
	Close() error
	Keepalive() error
}

// dialFunc performs a single handshake attempt
type dialFunc[C conn] func(ctx context.Context) (C, error)

// SessionConfig controls handshake and keep-alive behavior
type SessionConfig struct {
	ConnectTimeout    time.Duration
	ConnectRetries    int
	RetryDelay        time.Duration
	KeepaliveInterval time.Duration
}

// session owns the single shared connection of a client. Concurrent
// connects collapse into one handshake.
type session[C conn] struct {
	config   SessionConfig
	protocol string
	dial     dialFunc[C]
	logger   *zap.Logger

	group singleflight.Group

	mu      sync.RWMutex
	current C
	live    bool
	stop    chan struct{}
	// epoch advances on Close; a handshake started in an older epoch is
	// discarded when it completes
	epoch uint64
}

func newSession[C conn](cfg SessionConfig, protocol string, dial dialFunc[C], logger *zap.Logger) *session[C] {
	if cfg.ConnectRetries < 1 {
		cfg.ConnectRetries = 1
	}
	return &session[C]{
		config:   cfg,
		protocol: protocol,
		dial:     dial,
		logger:   logger,
	}
}

// Connect establishes the connection unless one is already up
func (s *session[C]) Connect(ctx context.Context) error {
	_, err := s.get(ctx)
	return err
}

// IsConnected returns true while a connection is held
func (s *session[C]) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// get returns the live connection, dialing if needed. A caller whose ctx
// ends stops waiting but does not abort the shared handshake.
func (s *session[C]) get(ctx context.Context) (C, error) {
	s.mu.RLock()
	if s.live {
		c := s.current
		s.mu.RUnlock()
		return c, nil
	}
	s.mu.RUnlock()

	ch := s.group.DoChan("connect", func() (any, error) {
		s.mu.RLock()
		if s.live {
			c := s.current
			s.mu.RUnlock()
			return c, nil
		}
		epoch := s.epoch
		s.mu.RUnlock()

		c, err := s.dialWithRetry(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			s.logger.Info("remote storage disconnected during handshake, discarding connection",
				zap.String("protocol", s.protocol))
			if err := c.Close(); err != nil {
				s.logger.Debug("closing discarded connection", zap.Error(err))
			}
			return nil, fmt.Errorf("%w: disconnected during handshake", domain.ErrNotConnected)
		}
		s.current = c
		s.live = true
		s.stop = make(chan struct{})
		stop := s.stop
		s.mu.Unlock()

		if s.config.KeepaliveInterval > 0 {
			go s.keepalive(c, stop)
		}
		return c, nil
	})

	var zero C
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(C), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (s *session[C]) dialWithRetry(ctx context.Context) (C, error) {
	var zero C
	var lastErr error

	for attempt := 1; attempt <= s.config.ConnectRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(s.config.RetryDelay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		actx := ctx
		cancel := func() {}
		if s.config.ConnectTimeout > 0 {
			actx, cancel = context.WithTimeout(ctx, s.config.ConnectTimeout)
		}
		c, err := s.dial(actx)
		cancel()
		if err == nil {
			s.logger.Info("remote storage connected",
				zap.String("protocol", s.protocol),
				zap.Int("attempt", attempt))
			return c, nil
		}

		lastErr = err
		s.logger.Warn("remote storage handshake failed",
			zap.String("protocol", s.protocol),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.config.ConnectRetries),
			zap.Error(err))
	}

	return zero, fmt.Errorf("%w: %s host unreachable after %d attempts: %w",
		domain.ErrNotConnected, s.protocol, s.config.ConnectRetries, lastErr)
}

func (s *session[C]) keepalive(c C, stop <-chan struct{}) {
	ticker := time.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.Keepalive(); err != nil {
				s.logger.Warn("remote storage keep-alive failed, dropping connection",
					zap.String("protocol", s.protocol), zap.Error(err))
				s.drop(c)
				return
			}
		}
	}
}

// drop discards c if it is still the current connection, so the next
// operation reconnects.
func (s *session[C]) drop(c C) {
	s.mu.Lock()
	if !s.live || any(s.current) != any(c) {
		s.mu.Unlock()
		return
	}
	s.reset()
	s.mu.Unlock()

	if err := c.Close(); err != nil {
		s.logger.Debug("closing dropped connection", zap.Error(err))
	}
}

// reset clears the connection state. Caller holds mu.
func (s *session[C]) reset() {
	var zero C
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.current = zero
	s.live = false
}

// Close releases the connection and abandons any handshake in flight. Safe to
// call repeatedly; a later Connect dials again.
func (s *session[C]) Close() error {
	s.mu.Lock()
	s.epoch++
	if !s.live {
		s.mu.Unlock()
		return nil
	}
	c := s.current
	s.reset()
	s.mu.Unlock()

	s.logger.Info("remote storage disconnected", zap.String("protocol", s.protocol))
	return c.Close()
}

// do runs fn on the live connection. Transport failures drop the connection
// so the next call performs a fresh handshake; they are not retried here.
func (s *session[C]) do(ctx context.Context, fn func(C) error) error {
	c, err := s.get(ctx)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		if isConnectionLost(err) {
			s.drop(c)
		}
		return err
	}
	return nil
}

func isConnectionLost(err error) bool {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidPath) {
		return false
	}
	if errors.Is(err, sftp.ErrSSHFxConnectionLost) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
