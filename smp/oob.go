package smp

import (
	"context"

	"github.com/rigado/lesc"
	"github.com/rigado/lesc/toolbox"
)

// outOfBand checks the peer's OOB commitment, when we have one, and exchanges
// nonces. A randomizer we do not have is used as zero.
func (h *Handler) outOfBand(ctx context.Context, kx KeyExchangeResult, myFlag, remoteFlag lesc.OobDataFlag) (Stage1Result, error) {
	var res Stage1Result
	var localR, remoteR [16]byte

	if remoteFlag == lesc.OobPresent && h.info.MyOobData != nil {
		localR = h.info.MyOobData.R
	}

	if myFlag == lesc.OobPresent && h.info.RemoteOobData != nil {
		remoteR = h.info.RemoteOobData.R

		peer := kx.PKb
		if h.info.MyRole == RolePeripheral {
			peer = kx.PKa
		}

		c, err := toolbox.OobCommitment(peer, remoteR)
		if err != nil {
			return res, wrapFailure(LocalValidation, err, "f4")
		}
		if c != h.info.RemoteOobData.C {
			return res, newFailure(ConfirmMismatch, "oob commitment mismatch, exp %x got %x",
				h.info.RemoteOobData.C, c)
		}
	}

	n, err := toolbox.Random16(h.rand)
	if err != nil {
		return res, wrapFailure(LocalValidation, err, "nonce")
	}

	in, err := h.x.exchange(ctx, CodePairingRandom, n[:], nil)
	if err != nil {
		return res, err
	}

	if h.info.MyRole == RoleCentral {
		res.Na, res.Nb = n, to16(in)
		res.Ra, res.Rb = localR, remoteR
	} else {
		res.Na, res.Nb = to16(in), n
		res.Ra, res.Rb = remoteR, localR
	}
	return res, nil
}
