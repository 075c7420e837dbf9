package smp

import (
	"context"

	"github.com/rigado/lesc/toolbox"
)

// justWorks commits the peripheral's nonce in Cb = f4(PKbx, PKax, Nb, 0) and
// exchanges nonces. Only the central checks the commitment. ra and rb stay
// zero.
func (h *Handler) justWorks(ctx context.Context, kx KeyExchangeResult) (Stage1Result, error) {
	var res Stage1Result

	n, err := toolbox.Random16(h.rand)
	if err != nil {
		return res, wrapFailure(LocalValidation, err, "nonce")
	}

	if h.info.MyRole == RoleCentral {
		in, err := h.waitPDU(ctx, CodePairingConfirm)
		if err != nil {
			return res, err
		}
		cb := to16(in)

		nb, err := h.x.exchange(ctx, CodePairingRandom, n[:], func(in []byte) error {
			calc, err := toolbox.F4(kx.PKb.X, kx.PKa.X, to16(in), 0)
			if err != nil {
				return wrapFailure(LocalValidation, err, "f4")
			}
			if calc != cb {
				return h.abort(ConfirmMismatch, ReasonConfirmValueFailed,
					"confirm mismatch, exp %x got %x", cb, calc)
			}
			return nil
		})
		if err != nil {
			return res, err
		}

		res.Na, res.Nb = n, to16(nb)
		return res, nil
	}

	cb, err := toolbox.F4(kx.PKb.X, kx.PKa.X, n, 0)
	if err != nil {
		return res, wrapFailure(LocalValidation, err, "f4")
	}

	if err := h.send(CodePairingConfirm, cb[:]); err != nil {
		return res, err
	}

	na, err := h.x.exchange(ctx, CodePairingRandom, n[:], nil)
	if err != nil {
		return res, err
	}

	res.Na, res.Nb = to16(na), n
	return res, nil
}

// numericComparison runs Just Works, then asks the user to confirm
// g2(PKax, PKbx, Na, Nb) on both devices.
func (h *Handler) numericComparison(ctx context.Context, kx KeyExchangeResult) (Stage1Result, error) {
	res, err := h.justWorks(ctx, kx)
	if err != nil {
		return res, err
	}

	v, err := toolbox.G2(kx.PKa.X, kx.PKb.X, res.Na, res.Nb)
	if err != nil {
		return Stage1Result{}, wrapFailure(LocalValidation, err, "g2")
	}

	data := h.confirmationData(NumericComparison)
	data.Value, data.HasValue = v, true
	h.log.Debugf("compare value %06d", v)
	h.ui.DisplayConfirmValue(data)

	ok, err := h.waitConfirm(ctx, data)
	if err != nil {
		return Stage1Result{}, err
	}
	if !ok {
		return Stage1Result{}, h.abort(UserRejected, ReasonNumericComparisonFailed,
			"numeric comparison %06d not confirmed", v)
	}

	// the peer's user may have said no while ours said yes
	if err := h.pollPeer(); err != nil {
		return Stage1Result{}, err
	}

	return res, nil
}
