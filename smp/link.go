package smp

import (
	"context"
	"encoding/hex"

	"github.com/pkg/errors"
)

// Transport is the SMP fixed channel of one link. Send takes code || payload.
// Receive returns the next PDU, blocking until one arrives or ctx is done.
type Transport interface {
	Send(pdu []byte) error
	Receive(ctx context.Context) ([]byte, error)
}

func (h *Handler) send(code byte, payload []byte) error {
	h.log.Debugf("send %v: %v", CodeString(code), hex.EncodeToString(payload))
	if err := h.t.Send(buildPDU(code, payload)); err != nil {
		return wrapFailure(TransportFailure, errors.Wrapf(err, "send %v", CodeString(code)), "transport failure")
	}
	return nil
}

// abort tells the peer why pairing stopped and returns the local failure.
// A failed notification is only logged; the session is over either way.
func (h *Handler) abort(kind Kind, reason byte, format string, args ...interface{}) *Failure {
	f := newFailure(kind, format, args...)
	f.Reason = reason

	h.log.Warnf("aborting: %v", f.Msg)
	if err := h.t.Send([]byte{CodePairingFailed, reason}); err != nil {
		h.log.Errorf("send pairing failed: %v", err)
	}
	return f
}

// waitPDU suspends until the peer sends a PDU with the given code and returns
// its payload. Keypress notifications are skipped. A Pairing Failed PDU, a
// malformed PDU or any other code ends the wait with a failure.
func (h *Handler) waitPDU(ctx context.Context, code byte) ([]byte, error) {
	wctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	for {
		p, err := h.next(wctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return nil, wrapFailure(Cancelled, ctx.Err(), "waiting for %v", CodeString(code))
			case wctx.Err() != nil:
				return nil, wrapFailure(TransportFailure, wctx.Err(), "smp timeout waiting for %v", CodeString(code))
			default:
				return nil, wrapFailure(TransportFailure, errors.Wrapf(err, "receive %v", CodeString(code)), "transport failure")
			}
		}

		if len(p) == 0 {
			return nil, newFailure(Protocol, "empty pdu waiting for %v", CodeString(code))
		}

		rx, payload := p[0], p[1:]
		if l, ok := payloadLen[rx]; ok && len(payload) != l {
			return nil, newFailure(Protocol, "%v: invalid length %d", CodeString(rx), len(payload))
		}

		switch rx {
		case code:
			h.log.Debugf("recv %v: %v", CodeString(code), hex.EncodeToString(payload))
			return payload, nil

		case CodePairingFailed:
			f := remoteFailure(payload[0])
			h.log.Warnf("peer sent pairing failed: %v", ReasonString(payload[0]))
			return nil, f

		case CodePairingKeypress:
			h.log.Debugf("keypress notification 0x%02x", payload[0])
			continue

		default:
			return nil, newFailure(Protocol, "unexpected %v waiting for %v", CodeString(rx), CodeString(code))
		}
	}
}

// next returns a PDU held back during a prompt before reading the transport.
func (h *Handler) next(ctx context.Context) ([]byte, error) {
	if len(h.pending) > 0 {
		p := h.pending[0]
		h.pending = h.pending[1:]
		return p, nil
	}
	return h.t.Receive(ctx)
}

// exchanger orders one send and one receive of the same PDU code by role.
// verify, when set, runs on the received payload before anything else is
// sent.
type exchanger interface {
	exchange(ctx context.Context, code byte, out []byte, verify func(in []byte) error) ([]byte, error)
}

// sendFirst is the central's order.
type sendFirst struct {
	h *Handler
}

func (s sendFirst) exchange(ctx context.Context, code byte, out []byte, verify func([]byte) error) ([]byte, error) {
	if err := s.h.send(code, out); err != nil {
		return nil, err
	}

	in, err := s.h.waitPDU(ctx, code)
	if err != nil {
		return nil, err
	}

	if verify != nil {
		if err := verify(in); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// receiveFirst is the peripheral's order.
type receiveFirst struct {
	h *Handler
}

func (r receiveFirst) exchange(ctx context.Context, code byte, out []byte, verify func([]byte) error) ([]byte, error) {
	in, err := r.h.waitPDU(ctx, code)
	if err != nil {
		return nil, err
	}

	if verify != nil {
		if err := verify(in); err != nil {
			return nil, err
		}
	}

	if err := r.h.send(code, out); err != nil {
		return nil, err
	}
	return in, nil
}

func to16(b []byte) [16]byte {
	var out [16]byte
	copy(out[:], b)
	return out
}
