package smp

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/lesc"
	"github.com/rigado/lesc/toolbox"
)

// State of a pairing session. States only move forward.
type State int

const (
	StateIdle State = iota
	StateFeatureExchange
	StateKeyExchange
	StateStage1
	StateStage2
	StateComplete
	StateFailed
)

var stateStrings = map[State]string{
	StateIdle:            "idle",
	StateFeatureExchange: "feature exchange",
	StateKeyExchange:     "key exchange",
	StateStage1:          "stage 1",
	StateStage2:          "stage 2",
	StateComplete:        "complete",
	StateFailed:          "failed",
}

func (s State) String() string {
	if v, ok := stateStrings[s]; ok {
		return v
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Handler runs one LE Secure Connections pairing over t. It is single use.
type Handler struct {
	info InitialInformations
	t    Transport
	ui   UserInterface
	rand io.Reader
	x    exchanger
	log  lesc.Logger

	timeout     time.Duration
	userTimeout time.Duration

	chConfirm chan bool
	chPrompt  chan bool
	chPasskey chan passkeyInput

	// OnStateChange is called on every transition from the Run goroutine.
	// Set it before Run.
	OnStateChange func(State)

	// pending holds PDUs read during a prompt; only the Run goroutine
	// touches it.
	pending [][]byte

	mu     sync.Mutex
	state  State
	used   bool
	method Method
}

// NewHandler checks info and prepares a session on t.
func NewHandler(t Transport, info InitialInformations) (*Handler, error) {
	if t == nil {
		return nil, fmt.Errorf("nil transport")
	}
	if err := info.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid session")
	}

	h := &Handler{
		info:        info,
		t:           t,
		ui:          info.UI,
		rand:        info.Rand,
		timeout:     info.Timeout,
		userTimeout: info.UserTimeout,
		chConfirm:   make(chan bool, 1),
		chPrompt:    make(chan bool, 1),
		chPasskey:   make(chan passkeyInput, 1),
	}

	if h.ui == nil {
		h.ui = NopUI{}
	}
	if h.rand == nil {
		h.rand = toolbox.Reader
	}
	if h.timeout <= 0 {
		h.timeout = lesc.DefaultTimeout
	}
	if h.userTimeout <= 0 {
		h.userTimeout = lesc.DefaultUserTimeout
	}

	if info.MyRole == RoleCentral {
		h.x = sendFirst{h}
	} else {
		h.x = receiveFirst{h}
	}

	h.log = lesc.GetLogger().ChildLogger(map[string]interface{}{
		"role": info.MyRole.String(),
		"peer": info.RemoteAddress.String(),
	})

	return h, nil
}

// Run pairs with the peer and returns the LTK. Every failure is a *Failure.
func (h *Handler) Run(ctx context.Context) (LTK, error) {
	h.mu.Lock()
	if h.used {
		h.mu.Unlock()
		return LTK{}, ErrSessionUsed
	}
	h.used = true
	h.mu.Unlock()

	ltk, err := h.run(ctx)
	if err != nil {
		h.setState(StateFailed)
		h.log.Errorf("pairing: %v", err)
		return LTK{}, err
	}

	h.setState(StateComplete)
	h.log.Infof("pairing complete (%v)", h.Method())
	return ltk, nil
}

func (h *Handler) run(ctx context.Context) (LTK, error) {
	var req, rsp PairingParams
	if h.info.PairingRequest != nil && h.info.PairingResponse != nil {
		req, rsp = *h.info.PairingRequest, *h.info.PairingResponse
	} else {
		h.setState(StateFeatureExchange)

		var err error
		if req, rsp, err = h.ExchangeFeatures(ctx); err != nil {
			return LTK{}, err
		}
	}

	remoteOob := rsp.OobFlag
	if h.info.MyRole == RolePeripheral {
		remoteOob = req.OobFlag
	}

	h.setState(StateKeyExchange)
	kx, err := h.ExchangePublicKeys(ctx, remoteOob)
	if err != nil {
		return LTK{}, err
	}

	h.setState(StateStage1)
	s1, err := h.Stage1(ctx, req, rsp, kx)
	if err != nil {
		return LTK{}, err
	}

	h.setState(StateStage2)
	return h.Stage2(ctx, req, rsp, s1, kx.DHKey)
}

func (h *Handler) setState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()

	h.log.Debugf("state: %v", s)
	if h.OnStateChange != nil {
		h.OnStateChange(s)
	}
}

// State returns the current state.
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Method returns the association model once Stage 1 has started.
func (h *Handler) Method() Method {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.method
}

func (h *Handler) setMethod(m Method) {
	h.mu.Lock()
	h.method = m
	h.mu.Unlock()
}

func (h *Handler) confirmationData(m Method) ConfirmationData {
	return ConfirmationData{
		Method:        m,
		RemoteAddress: h.info.RemoteAddress,
		RemoteName:    h.info.RemoteName,
	}
}

// OnConfirmYesNo answers DisplayConfirmValue.
func (h *Handler) OnConfirmYesNo(confirmed bool) {
	select {
	case h.chConfirm <- confirmed:
	default:
		h.log.Warn("confirm answer dropped, one already pending")
	}
}

// OnPairingPromptAccepted answers DisplayPairingPrompt.
func (h *Handler) OnPairingPromptAccepted(accepted bool) {
	select {
	case h.chPrompt <- accepted:
	default:
		h.log.Warn("prompt answer dropped, one already pending")
	}
}

// OnPasskeyEntry answers DisplayEnterPasskeyDialog.
func (h *Handler) OnPasskeyEntry(passkey uint32) error {
	if passkey > passkeyMax {
		return fmt.Errorf("invalid passkey %d", passkey)
	}
	h.pushPasskey(passkeyInput{passkey: passkey, ok: true})
	return nil
}

// OnPasskeyEntryCancelled dismisses DisplayEnterPasskeyDialog.
func (h *Handler) OnPasskeyEntryCancelled() {
	h.pushPasskey(passkeyInput{})
}

func (h *Handler) pushPasskey(in passkeyInput) {
	select {
	case h.chPasskey <- in:
	default:
		h.log.Warn("passkey answer dropped, one already pending")
	}
}

// inbound is one Receive result read while the user was deciding.
type inbound struct {
	pdu []byte
	err error
}

func (h *Handler) waitConfirm(ctx context.Context, data ConfirmationData) (bool, error) {
	return waitUser[bool](ctx, h, h.chConfirm, data, "user confirmation")
}

func (h *Handler) waitPrompt(ctx context.Context, data ConfirmationData) (bool, error) {
	return waitUser[bool](ctx, h, h.chPrompt, data, "pairing prompt")
}

func (h *Handler) waitPasskey(ctx context.Context, data ConfirmationData) (passkeyInput, error) {
	return waitUser[passkeyInput](ctx, h, h.chPasskey, data, "passkey")
}

// waitUser waits for the user's answer on ch and keeps reading the peer in
// the meantime. A Pairing Failed PDU or a lost link ends the wait with a
// failure; other PDUs are held for waitPDU. A user timeout yields the zero
// answer.
func waitUser[T any](ctx context.Context, h *Handler, ch <-chan T, data ConfirmationData, what string) (T, error) {
	var zero T

	timer := time.NewTimer(h.userTimeout)
	defer timer.Stop()

	for {
		rctx, cancel := context.WithCancel(ctx)
		rx := make(chan inbound, 1)
		go func() {
			p, err := h.t.Receive(rctx)
			rx <- inbound{pdu: p, err: err}
		}()

		select {
		case v := <-ch:
			cancel()
			h.hold(<-rx)
			return v, nil

		case <-timer.C:
			cancel()
			h.hold(<-rx)
			h.log.Warnf("%v timed out", what)
			h.ui.Cancel(data)
			return zero, nil

		case <-ctx.Done():
			cancel()
			h.hold(<-rx)
			h.ui.Cancel(data)
			return zero, wrapFailure(Cancelled, ctx.Err(), "waiting for %v", what)

		case in := <-rx:
			cancel()
			if err := h.peerDuringPrompt(ctx, in, what); err != nil {
				h.ui.Cancel(data)
				return zero, err
			}
		}
	}
}

// peerDuringPrompt handles a PDU or receive error that arrived while a
// prompt was up.
func (h *Handler) peerDuringPrompt(ctx context.Context, in inbound, what string) error {
	if in.err != nil {
		if ctx.Err() != nil {
			return wrapFailure(Cancelled, ctx.Err(), "waiting for %v", what)
		}
		return wrapFailure(TransportFailure, errors.Wrapf(in.err, "receive"), "link lost waiting for %v", what)
	}

	p := in.pdu
	switch {
	case len(p) == 2 && p[0] == CodePairingFailed:
		h.log.Warnf("peer sent pairing failed during %v: %v", what, ReasonString(p[1]))
		return remoteFailure(p[1])
	case len(p) == 2 && p[0] == CodePairingKeypress:
		h.log.Debugf("keypress notification 0x%02x", p[1])
	default:
		h.hold(in)
	}
	return nil
}

func (h *Handler) hold(in inbound) {
	if in.err == nil {
		h.pending = append(h.pending, in.pdu)
	}
}

// pollPeer collects what the peer has already sent, without waiting, and
// reports a Pairing Failed among it.
func (h *Handler) pollPeer() error {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for {
		p, err := h.t.Receive(ctx)
		if err != nil {
			break
		}
		h.pending = append(h.pending, p)
	}

	for _, p := range h.pending {
		if len(p) == 2 && p[0] == CodePairingFailed {
			h.log.Warnf("peer sent pairing failed: %v", ReasonString(p[1]))
			return remoteFailure(p[1])
		}
	}
	return nil
}
