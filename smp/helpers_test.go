package smp

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rigado/lesc"
	"github.com/rigado/lesc/l2cap"
)

var (
	centralAddr    = lesc.AddressWithType{Addr: lesc.NewAddr("11:22:33:44:55:66"), Type: lesc.AddrTypePublic}
	peripheralAddr = lesc.AddressWithType{Addr: lesc.NewAddr("c0:ff:ee:00:00:01"), Type: lesc.AddrTypeRandom}
)

// recorder keeps every PDU sent through it and can rewrite them on the way
// out.
type recorder struct {
	Transport

	mu     sync.Mutex
	sent   [][]byte
	tamper func(pdu []byte) []byte
}

func (r *recorder) Send(pdu []byte) error {
	cp := append([]byte(nil), pdu...)

	r.mu.Lock()
	if r.tamper != nil {
		cp = r.tamper(cp)
	}
	r.sent = append(r.sent, cp)
	r.mu.Unlock()

	return r.Transport.Send(cp)
}

func (r *recorder) count(code byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, p := range r.sent {
		if len(p) > 0 && p[0] == code {
			n++
		}
	}
	return n
}

func (r *recorder) sentPDU(pdu []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.sent {
		if bytes.Equal(p, pdu) {
			return true
		}
	}
	return false
}

// nthOf returns a tamper func flipping a bit in the n-th (from 1) PDU with
// the given code.
func nthOf(code byte, n int) func([]byte) []byte {
	seen := 0
	return func(p []byte) []byte {
		if p[0] != code {
			return p
		}
		seen++
		if seen == n {
			p[len(p)-1] ^= 0x01
		}
		return p
	}
}

// fakeUI answers prompts right away. A silent fakeUI never answers; with
// withhold set a displayed passkey is not typed into the peer.
type fakeUI struct {
	h    *Handler
	peer *Handler

	confirm       bool
	accept        bool
	cancelPasskey bool
	passkey       *uint32
	silent        bool
	withhold      bool

	mu     sync.Mutex
	calls  []string
	values []uint32
}

func (u *fakeUI) record(call string, d ConfirmationData) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, call)
	if d.HasValue {
		u.values = append(u.values, d.Value)
	}
}

func (u *fakeUI) DisplayPairingPrompt(d ConfirmationData) {
	u.record("prompt", d)
	if !u.silent {
		u.h.OnPairingPromptAccepted(u.accept)
	}
}

func (u *fakeUI) DisplayConfirmValue(d ConfirmationData) {
	u.record("confirm", d)
	if !u.silent {
		u.h.OnConfirmYesNo(u.confirm)
	}
}

func (u *fakeUI) DisplayEnterPasskeyDialog(d ConfirmationData) {
	u.record("enter", d)
	switch {
	case u.silent:
	case u.cancelPasskey:
		u.h.OnPasskeyEntryCancelled()
	case u.passkey != nil:
		_ = u.h.OnPasskeyEntry(*u.passkey)
	}
}

func (u *fakeUI) DisplayPasskey(d ConfirmationData) {
	u.record("display", d)
	if u.peer != nil && !u.withhold {
		_ = u.peer.OnPasskeyEntry(d.Value)
	}
}

func (u *fakeUI) Cancel(d ConfirmationData) {
	u.record("cancel", d)
}

func (u *fakeUI) called(call string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, c := range u.calls {
		if c == call {
			return true
		}
	}
	return false
}

// waitCalled polls until every ui has seen call, for at most five seconds.
func waitCalled(call string, uis ...*fakeUI) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		all := true
		for _, u := range uis {
			all = all && u.called(call)
		}
		if all {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func (u *fakeUI) shown() []uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]uint32(nil), u.values...)
}

var newHandlerHook func(*Handler)

type peer struct {
	info InitialInformations
	ui   *fakeUI
	tr   *recorder
	h    *Handler

	ltk LTK
	err error
}

func mustConfig(t *testing.T, opts ...lesc.Option) lesc.Config {
	t.Helper()
	c, err := lesc.NewConfig(append([]lesc.Option{lesc.OptTimeout(5 * time.Second)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newPeers(t *testing.T, cc, pc lesc.Config) (*peer, *peer, func()) {
	t.Helper()

	pipe := l2cap.NewPipe()

	c := &peer{
		ui: &fakeUI{confirm: true, accept: true},
		tr: &recorder{Transport: pipe.Central()},
	}
	c.info = NewInitialInformations(RoleCentral, centralAddr, peripheralAddr, cc)
	c.info.UI = c.ui
	c.info.RemoteName = "peripheral"

	p := &peer{
		ui: &fakeUI{confirm: true, accept: true},
		tr: &recorder{Transport: pipe.Peripheral()},
	}
	p.info = NewInitialInformations(RolePeripheral, peripheralAddr, centralAddr, pc)
	p.info.UI = p.ui
	p.info.RemoteName = "central"

	return c, p, func() { _ = pipe.Close() }
}

func runPeers(t *testing.T, c, p *peer) {
	t.Helper()

	var err error
	if c.h, err = NewHandler(c.tr, c.info); err != nil {
		t.Fatal(err)
	}
	if p.h, err = NewHandler(p.tr, p.info); err != nil {
		t.Fatal(err)
	}

	c.ui.h, c.ui.peer = c.h, p.h
	p.ui.h, p.ui.peer = p.h, c.h

	if newHandlerHook != nil {
		newHandlerHook(c.h)
		newHandlerHook(p.h)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.ltk, c.err = c.h.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		p.ltk, p.err = p.h.Run(ctx)
	}()
	wg.Wait()
}

func expectKind(t *testing.T, who string, err error, k Kind) *Failure {
	t.Helper()

	f, ok := AsFailure(err)
	if !ok {
		t.Fatalf("%s: expected a failure of kind %v, got %v", who, k, err)
	}
	if f.Kind != k {
		t.Fatalf("%s: expected kind %v, got %v", who, k, f)
	}
	return f
}

func expectPaired(t *testing.T, c, p *peer) {
	t.Helper()

	if c.err != nil {
		t.Fatalf("central: %v", c.err)
	}
	if p.err != nil {
		t.Fatalf("peripheral: %v", p.err)
	}
	if c.ltk != p.ltk {
		t.Fatalf("ltk mismatch\ncentral    %v\nperipheral %v", c.ltk, p.ltk)
	}
	if c.ltk == (LTK{}) {
		t.Fatal("zero ltk")
	}
}
