package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
)

type frame struct {
	kind int
	data []byte
}

type fakeConn struct {
	writes    chan frame
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{writes: make(chan frame, 16), closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) WriteMessage(kind int, data []byte) error {
	select {
	case <-f.closed:
		return errors.New("closed")
	default:
	}
	f.writes <- frame{kind: kind, data: data}
	return nil
}

func (f *fakeConn) SetReadLimit(int64) {}
func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) next(t *testing.T) frame {
	t.Helper()
	select {
	case fr := <-f.writes:
		return fr
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a write")
		return frame{}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := New("test")
	go h.Run(ctx)

	conns := []*fakeConn{newFakeConn(), newFakeConn()}
	for _, conn := range conns {
		go NewClient(h, conn).Run()
	}
	waitFor(t, "two clients", func() bool { return h.ClientCount() == 2 })

	if err := h.BroadcastJSON(map[string]int{"frame": 1}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}
	for i, conn := range conns {
		fr := conn.next(t)
		if fr.kind != websocket.TextMessage || string(fr.data) != `{"frame":1}` {
			t.Errorf("client %d: got (%d, %s)", i, fr.kind, fr.data)
		}
	}

	conns[0].Close()
	waitFor(t, "disconnect", func() bool { return h.ClientCount() == 1 })
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New("test")
	go h.Run(ctx)
	waitFor(t, "hub start", h.IsRunning)

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	waitFor(t, "client", func() bool { return h.ClientCount() == 1 })

	cancel()
	if fr := conn.next(t); fr.kind != websocket.CloseMessage {
		t.Errorf("expected close frame, got %d", fr.kind)
	}
	waitFor(t, "hub stop", func() bool { return !h.IsRunning() })

	if c := NewClient(h, newFakeConn()); c != nil {
		t.Error("expected nil client from a stopped hub")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := New("test")
	go h.Run(ctx)

	// Registered but never pumped, so its send buffer fills up.
	NewClient(h, newFakeConn())
	for i := 0; i < 100; i++ {
		h.Broadcast(Message{Data: []byte("{}")})
	}
	waitFor(t, "slow client drop", func() bool { return h.ClientCount() == 0 })
}

func TestHub_BroadcastJSONError(t *testing.T) {
	h := New("test")
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("expected an encoding error")
	}
}
