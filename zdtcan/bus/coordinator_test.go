package bus

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/zdt-robotics/zdtcan/slcan"
)

// fakePort is a minimal slcan.Port implementation used only to let the
// Coordinator open a Transport without touching real hardware.
type fakePort struct {
	mu     sync.Mutex
	closed bool
}

func (p *fakePort) Read(b []byte) (int, error)  { return 0, nil }
func (p *fakePort) Write(b []byte) (int, error) { return len(b), nil }
func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
func (p *fakePort) SetReadTimeout(time.Duration) error { return nil }
func (p *fakePort) ResetInputBuffer() error            { return nil }

func newTestCoordinator() (*Coordinator, map[string]*fakePort) {
	opened := make(map[string]*fakePort)
	var mu sync.Mutex

	c := New(slog.New(slog.NewTextHandler(new(bytes.Buffer), nil)))
	c.openFunc = func(port string, baud int, logger *slog.Logger) (*slcan.Transport, error) {
		fp := &fakePort{}
		mu.Lock()
		opened[port] = fp
		mu.Unlock()
		return slcan.OpenWithPort(fp, logger)
	}
	return c, opened
}

func TestAcquireOpensOneTransportPerKey(t *testing.T) {
	c, opened := newTestCoordinator()
	key := Key{Port: "/dev/ttyFAKE0", Baud: 500000}

	h1, err := c.Acquire(key)
	if err != nil {
		t.Fatalf("Acquire 1 failed: %v", err)
	}
	h2, err := c.Acquire(key)
	if err != nil {
		t.Fatalf("Acquire 2 failed: %v", err)
	}
	h3, err := c.Acquire(key)
	if err != nil {
		t.Fatalf("Acquire 3 failed: %v", err)
	}

	if h1 != h2 || h2 != h3 {
		t.Error("expected the same handle for repeated Acquire on one key")
	}
	if len(opened) != 1 {
		t.Errorf("expected exactly one underlying transport opened, got %d", len(opened))
	}
	if c.RefCount(key) != 3 {
		t.Errorf("RefCount = %d, want 3", c.RefCount(key))
	}
}

func TestReleaseClosesOnlyOnLastReference(t *testing.T) {
	c, opened := newTestCoordinator()
	key := Key{Port: "/dev/ttyFAKE1", Baud: 500000}

	h1, _ := c.Acquire(key)
	_, _ = c.Acquire(key)
	_, _ = c.Acquire(key)

	if err := h1.Release(); err != nil {
		t.Fatalf("Release 1 failed: %v", err)
	}
	if err := h1.Release(); err != nil {
		t.Fatalf("Release 2 failed: %v", err)
	}

	fp := opened["/dev/ttyFAKE1"]
	if fp.closed {
		t.Fatal("transport closed before last reference released")
	}

	if err := h1.Release(); err != nil {
		t.Fatalf("Release 3 failed: %v", err)
	}
	if !fp.closed {
		t.Error("transport not closed after last reference released")
	}
	if c.RefCount(key) != 0 {
		t.Errorf("RefCount after full release = %d, want 0", c.RefCount(key))
	}
}

func TestDistinctKeysGetDistinctTransports(t *testing.T) {
	c, opened := newTestCoordinator()
	_, err := c.Acquire(Key{Port: "/dev/ttyFAKE2", Baud: 500000})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Acquire(Key{Port: "/dev/ttyFAKE3", Baud: 500000})
	if err != nil {
		t.Fatal(err)
	}
	if len(opened) != 2 {
		t.Errorf("expected 2 distinct transports, got %d", len(opened))
	}
}

func TestCloseAllClosesEveryEntry(t *testing.T) {
	c, opened := newTestCoordinator()
	c.Acquire(Key{Port: "/dev/ttyFAKE4", Baud: 500000})
	c.Acquire(Key{Port: "/dev/ttyFAKE5", Baud: 500000})

	if err := c.CloseAll(); err != nil {
		t.Fatalf("CloseAll failed: %v", err)
	}
	for port, fp := range opened {
		if !fp.closed {
			t.Errorf("port %s not closed by CloseAll", port)
		}
	}
}
