package smp

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/lesc"
)

// ErrPairingInProgress is returned when a link already has an active session.
var ErrPairingInProgress = errors.New("pairing already in progress")

// Result is the outcome of a session started by a Manager.
type Result struct {
	LTK LTK
	Err error
}

type session struct {
	h      *Handler
	cancel context.CancelFunc
}

// Manager owns the SMP channel of one link and runs at most one pairing
// session on it at a time. Each session runs on its own goroutine.
type Manager struct {
	t   Transport
	log lesc.Logger

	mu     sync.Mutex
	active *session
}

func NewManager(t Transport) *Manager {
	return &Manager{
		t:   t,
		log: lesc.GetLogger().ChildLogger(map[string]interface{}{"smp": "manager"}),
	}
}

// Start begins a session. The returned Handler takes the user's answers; the
// channel yields exactly one Result.
func (m *Manager) Start(ctx context.Context, info InitialInformations) (*Handler, <-chan Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, nil, ErrPairingInProgress
	}

	h, err := NewHandler(m.t, info)
	if err != nil {
		return nil, nil, err
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &session{h: h, cancel: cancel}
	m.active = s

	res := make(chan Result, 1)
	go func() {
		defer cancel()

		ltk, err := h.Run(sctx)

		m.mu.Lock()
		if m.active == s {
			m.active = nil
		}
		m.mu.Unlock()

		res <- Result{LTK: ltk, Err: err}
	}()

	m.log.Debugf("started %v session with %v", info.MyRole, info.RemoteAddress)
	return h, res, nil
}

// Pair runs a session to completion.
func (m *Manager) Pair(ctx context.Context, info InitialInformations) (LTK, error) {
	_, res, err := m.Start(ctx, info)
	if err != nil {
		return LTK{}, err
	}

	r := <-res
	return r.LTK, r.Err
}

// Active returns the handler of the running session, or nil.
func (m *Manager) Active() *Handler {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil
	}
	return m.active.h
}

// Cancel stops the running session, if any. Its Run ends with a Cancelled
// failure.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.active.cancel()
	}
}
