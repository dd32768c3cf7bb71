package remote

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
)

type fakeConn struct {
	closed       atomic.Int32
	keepaliveErr error
}

func (c *fakeConn) Close() error {
	c.closed.Add(1)
	return nil
}

func (c *fakeConn) Keepalive() error { return c.keepaliveErr }

func fastSessionConfig() SessionConfig {
	return SessionConfig{
		ConnectTimeout: time.Second,
		ConnectRetries: 1,
		RetryDelay:     time.Millisecond,
	}
}

func TestSession_ConcurrentConnectDialsOnce(t *testing.T) {
	var dials atomic.Int32
	release := make(chan struct{})
	dial := func(ctx context.Context) (*fakeConn, error) {
		dials.Add(1)
		<-release
		return &fakeConn{}, nil
	}
	s := newSession(fastSessionConfig(), "test", dial, zap.NewNop())

	const callers = 50
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Connect(context.Background())
		}()
	}

	// Let the callers pile up behind the in-flight handshake
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
	}
	if got := dials.Load(); got != 1 {
		t.Errorf("dials = %d, want 1", got)
	}

	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := dials.Load(); got != 1 {
		t.Errorf("dials after reconnect on live session = %d, want 1", got)
	}
}

func TestSession_FailureResetsState(t *testing.T) {
	var dials atomic.Int32
	dial := func(ctx context.Context) (*fakeConn, error) {
		if dials.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return &fakeConn{}, nil
	}
	s := newSession(fastSessionConfig(), "test", dial, zap.NewNop())

	err := s.Connect(context.Background())
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("first Connect() error = %v, want ErrNotConnected", err)
	}
	if s.IsConnected() {
		t.Fatal("session reports connected after failed handshake")
	}

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}
	if !s.IsConnected() {
		t.Error("session not connected after successful handshake")
	}
}

func TestSession_RetriesHandshake(t *testing.T) {
	var dials atomic.Int32
	dial := func(ctx context.Context) (*fakeConn, error) {
		if dials.Add(1) < 3 {
			return nil, errors.New("timeout")
		}
		return &fakeConn{}, nil
	}
	cfg := fastSessionConfig()
	cfg.ConnectRetries = 3
	s := newSession(cfg, "test", dial, zap.NewNop())

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if got := dials.Load(); got != 3 {
		t.Errorf("dials = %d, want 3", got)
	}
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	fc := &fakeConn{}
	s := newSession(fastSessionConfig(), "test", func(ctx context.Context) (*fakeConn, error) {
		return fc, nil
	}, zap.NewNop())

	if err := s.Close(); err != nil {
		t.Errorf("Close() before connect error = %v", err)
	}
	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}
	if got := fc.closed.Load(); got != 1 {
		t.Errorf("underlying Close() calls = %d, want 1", got)
	}
}

func TestSession_CloseDuringHandshakeDiscardsConnection(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var dialed []*fakeConn
	var mu sync.Mutex
	dial := func(ctx context.Context) (*fakeConn, error) {
		c := &fakeConn{}
		mu.Lock()
		dialed = append(dialed, c)
		first := len(dialed) == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return c, nil
	}
	cfg := fastSessionConfig()
	cfg.KeepaliveInterval = time.Millisecond
	s := newSession(cfg, "test", dial, zap.NewNop())

	errs := make(chan error, 1)
	go func() { errs <- s.Connect(context.Background()) }()

	<-started
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	close(release)

	if err := <-errs; !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("Connect() error = %v, want ErrNotConnected", err)
	}
	if s.IsConnected() {
		t.Fatal("session live after Close")
	}
	mu.Lock()
	late := dialed[0]
	mu.Unlock()
	if late.closed.Load() != 1 {
		t.Errorf("late connection closed %d times, want 1", late.closed.Load())
	}

	// The session stays usable after an explicit reconnect
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() after Close error = %v", err)
	}
	if !s.IsConnected() {
		t.Error("IsConnected() = false after reconnect")
	}
	s.Close()
}

func TestSession_DoDropsLostConnection(t *testing.T) {
	var dials atomic.Int32
	s := newSession(fastSessionConfig(), "test", func(ctx context.Context) (*fakeConn, error) {
		dials.Add(1)
		return &fakeConn{}, nil
	}, zap.NewNop())
	ctx := context.Background()

	err := s.do(ctx, func(c *fakeConn) error { return io.ErrUnexpectedEOF })
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("do() error = %v", err)
	}
	if s.IsConnected() {
		t.Fatal("lost connection was kept")
	}

	if err := s.do(ctx, func(c *fakeConn) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if got := dials.Load(); got != 2 {
		t.Errorf("dials = %d, want 2", got)
	}

	appErr := errors.New("permission denied")
	if err := s.do(ctx, func(c *fakeConn) error { return appErr }); !errors.Is(err, appErr) {
		t.Fatal(err)
	}
	if !s.IsConnected() {
		t.Error("application error dropped the connection")
	}
}

func TestSession_KeepaliveFailureDropsConnection(t *testing.T) {
	fc := &fakeConn{keepaliveErr: errors.New("broken pipe")}
	cfg := fastSessionConfig()
	cfg.KeepaliveInterval = 5 * time.Millisecond
	s := newSession(cfg, "test", func(ctx context.Context) (*fakeConn, error) {
		return fc, nil
	}, zap.NewNop())

	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.IsConnected() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.IsConnected() {
		t.Fatal("connection still held after failed keep-alive")
	}
	if fc.closed.Load() != 1 {
		t.Errorf("closed = %d, want 1", fc.closed.Load())
	}
}

func TestSession_CallerContextCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	s := newSession(fastSessionConfig(), "test", func(ctx context.Context) (*fakeConn, error) {
		<-release
		return &fakeConn{}, nil
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Connect(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Connect() error = %v, want deadline exceeded", err)
	}
}
