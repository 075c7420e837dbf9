package smp

import (
	"context"

	"github.com/rigado/lesc/toolbox"
)

// Stage2 derives MacKey and LTK with f5 and exchanges the DHKey checks
// Ea = f6(MacKey, Na, Nb, rb, IOcapA, A, B) and
// Eb = f6(MacKey, Nb, Na, ra, IOcapB, B, A).
func (h *Handler) Stage2(ctx context.Context, req, rsp PairingParams, s1 Stage1Result, dhkey [32]byte) (LTK, error) {
	a, err := h.info.centralAddress().Octets()
	if err != nil {
		return LTK{}, wrapFailure(LocalValidation, err, "central address")
	}
	b, err := h.info.peripheralAddress().Octets()
	if err != nil {
		return LTK{}, wrapFailure(LocalValidation, err, "peripheral address")
	}

	mac, ltk, err := toolbox.F5(dhkey, s1.Na, s1.Nb, a, b)
	if err != nil {
		return LTK{}, wrapFailure(LocalValidation, err, "f5")
	}

	ea, err := toolbox.F6(mac, s1.Na, s1.Nb, s1.Rb, req.ioCapOctets(), a, b)
	if err != nil {
		return LTK{}, wrapFailure(LocalValidation, err, "f6")
	}
	eb, err := toolbox.F6(mac, s1.Nb, s1.Na, s1.Ra, rsp.ioCapOctets(), b, a)
	if err != nil {
		return LTK{}, wrapFailure(LocalValidation, err, "f6")
	}

	out, exp := ea, eb
	if h.info.MyRole == RolePeripheral {
		out, exp = eb, ea
	}

	_, err = h.x.exchange(ctx, CodePairingDHKeyCheck, out[:], func(in []byte) error {
		if to16(in) != exp {
			return h.abort(DHKeyCheckMismatch, ReasonDHKeyCheckFailed,
				"dhkey check mismatch, exp %x got %x", exp, in)
		}
		return nil
	})
	if err != nil {
		return LTK{}, err
	}

	h.log.Debug("dhKeyCheck: OK")
	return LTK(ltk), nil
}
