package smp

import (
	"context"
	"encoding/binary"

	"github.com/rigado/lesc"
	"github.com/rigado/lesc/toolbox"
)

// passkeyRole decides whether this side shows the passkey or types it in.
// Two keyboard only devices both type it in.
func passkeyRole(mine, remote lesc.IoCapability) (display, enter bool) {
	switch {
	case mine == lesc.IoCapKeyboardOnly && remote == lesc.IoCapKeyboardOnly:
		return false, true
	case mine == lesc.IoCapDisplayOnly || remote == lesc.IoCapKeyboardOnly:
		return true, false
	case mine == lesc.IoCapKeyboardOnly || remote == lesc.IoCapDisplayOnly:
		return false, true
	}
	return false, false
}

// GeneratePasskey turns a random value into a passkey in 0..999999 by masking
// to 20 bits and halving until it fits.
func GeneratePasskey(r uint32) uint32 {
	p := r & passkeyMask
	for p > passkeyMax {
		p >>= 1
	}
	return p
}

func (h *Handler) passkeyEntry(ctx context.Context, kx KeyExchangeResult, mine, remote lesc.IoCapability) (Stage1Result, error) {
	var res Stage1Result
	var passkey uint32

	data := h.confirmationData(PasskeyEntry)
	display, enter := passkeyRole(mine, remote)

	switch {
	case display:
		r, err := toolbox.RandomUint32(h.rand)
		if err != nil {
			return res, wrapFailure(LocalValidation, err, "passkey")
		}
		passkey = GeneratePasskey(r)
		data.Value, data.HasValue = passkey, true
		h.ui.DisplayPasskey(data)

	case enter:
		h.ui.DisplayEnterPasskeyDialog(data)
		in, err := h.waitPasskey(ctx, data)
		if err != nil {
			return res, err
		}
		if !in.ok {
			return res, h.abort(UserRejected, ReasonPasskeyEntryFailed, "passkey not entered")
		}
		passkey = in.passkey

	default:
		return res, newFailure(LocalValidation, "no passkey role for %v/%v", mine, remote)
	}

	myX, peerX := kx.PKa.X, kx.PKb.X
	if h.info.MyRole == RolePeripheral {
		myX, peerX = peerX, myX
	}

	// every round is checked, bit 0 first
	for i := 0; i < passkeyIterationCount; i++ {
		ri := byte(0x80) | byte((passkey>>uint(i))&0x01)

		n, err := toolbox.Random16(h.rand)
		if err != nil {
			return Stage1Result{}, wrapFailure(LocalValidation, err, "nonce")
		}

		c, err := toolbox.F4(myX, peerX, n, ri)
		if err != nil {
			return Stage1Result{}, wrapFailure(LocalValidation, err, "f4")
		}

		in, err := h.x.exchange(ctx, CodePairingConfirm, c[:], nil)
		if err != nil {
			return Stage1Result{}, err
		}
		peerC := to16(in)

		peerN, err := h.x.exchange(ctx, CodePairingRandom, n[:], func(in []byte) error {
			calc, err := toolbox.F4(peerX, myX, to16(in), ri)
			if err != nil {
				return wrapFailure(LocalValidation, err, "f4")
			}
			if calc != peerC {
				return h.abort(ConfirmMismatch, ReasonConfirmValueFailed,
					"passkey confirm mismatch in round %d", i)
			}
			return nil
		})
		if err != nil {
			return Stage1Result{}, err
		}

		if h.info.MyRole == RoleCentral {
			res.Na, res.Nb = n, to16(peerN)
		} else {
			res.Na, res.Nb = to16(peerN), n
		}
	}

	binary.LittleEndian.PutUint32(res.Ra[:4], passkey)
	res.Rb = res.Ra
	return res, nil
}
