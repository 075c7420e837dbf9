package smp

import (
	"context"
	"testing"
	"time"

	"github.com/pion/transport/v3/test"
)

func TestManagerSingleSession(t *testing.T) {
	defer test.CheckRoutines(t)()
	report := test.TimeOut(10 * time.Second)
	defer report.Stop()

	_, p, done := newPeers(t, mustConfig(t), mustConfig(t))
	defer done()

	m := NewManager(p.tr)

	h, res, err := m.Start(context.Background(), p.info)
	if err != nil {
		t.Fatal(err)
	}
	if m.Active() != h {
		t.Fatal("active handler mismatch")
	}

	if _, _, err := m.Start(context.Background(), p.info); err != ErrPairingInProgress {
		t.Fatalf("expected ErrPairingInProgress, got %v", err)
	}

	m.Cancel()

	select {
	case r := <-res:
		expectKind(t, "peripheral", r.Err, Cancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not unblock the session")
	}

	if m.Active() != nil {
		t.Fatal("session still active")
	}

	// a finished session frees the link
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := m.Pair(ctx, p.info); !IsKind(err, Cancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}
}

func TestManagerPair(t *testing.T) {
	report := test.TimeOut(10 * time.Second)
	defer report.Stop()

	c, p, done := newPeers(t, mustConfig(t), mustConfig(t))
	defer done()

	cm, pm := NewManager(c.tr), NewManager(p.tr)

	ctx := context.Background()
	_, pres, err := pm.Start(ctx, p.info)
	if err != nil {
		t.Fatal(err)
	}

	ltk, err := cm.Pair(ctx, c.info)
	if err != nil {
		t.Fatal(err)
	}

	r := <-pres
	if r.Err != nil {
		t.Fatal(r.Err)
	}
	if r.LTK != ltk {
		t.Fatalf("ltk mismatch %v / %v", ltk, r.LTK)
	}

	if _, err := NewManager(c.tr).Pair(ctx, InitialInformations{}); err == nil {
		t.Fatal("empty session accepted")
	}
}
