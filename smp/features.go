package smp

import (
	"context"

	"github.com/rigado/lesc"
)

// ExchangeFeatures agrees on the Pairing Request and Pairing Response. A
// request or response already present in the session context is used as is
// and not sent again.
func (h *Handler) ExchangeFeatures(ctx context.Context) (PairingParams, PairingParams, error) {
	if h.info.MyRole == RoleCentral {
		return h.exchangeFeaturesCentral(ctx)
	}
	return h.exchangeFeaturesPeripheral(ctx)
}

func (h *Handler) exchangeFeaturesCentral(ctx context.Context) (PairingParams, PairingParams, error) {
	var req, rsp PairingParams

	if h.info.RemotelyInitiated {
		if err := h.prompt(ctx); err != nil {
			return req, rsp, err
		}
	}

	if h.info.PairingRequest != nil {
		req = *h.info.PairingRequest
	} else {
		req = h.info.MyPairingCapabilities
		if err := h.send(CodePairingRequest, req.Bytes()); err != nil {
			return req, rsp, err
		}
	}

	if h.info.PairingResponse != nil {
		rsp = *h.info.PairingResponse
	} else {
		in, err := h.waitPDU(ctx, CodePairingResponse)
		if err != nil {
			return req, rsp, err
		}
		if rsp, err = parsePairingParams(in); err != nil {
			return req, rsp, wrapFailure(Protocol, err, "pairing response")
		}
	}

	h.log.Debugf("pairing response: %v", rsp)
	if err := h.checkFeatures(req, rsp, rsp); err != nil {
		return req, rsp, err
	}
	return req, rsp, nil
}

func (h *Handler) exchangeFeaturesPeripheral(ctx context.Context) (PairingParams, PairingParams, error) {
	var req, rsp PairingParams

	if h.info.PairingRequest != nil {
		req = *h.info.PairingRequest
	} else {
		in, err := h.waitPDU(ctx, CodePairingRequest)
		if err != nil {
			return req, rsp, err
		}
		if req, err = parsePairingParams(in); err != nil {
			return req, rsp, wrapFailure(Protocol, err, "pairing request")
		}
	}
	h.log.Debugf("pairing request: %v", req)

	if h.info.RemotelyInitiated {
		if err := h.prompt(ctx); err != nil {
			return req, rsp, err
		}
	}

	if h.info.PairingResponse != nil {
		rsp = *h.info.PairingResponse
		return req, rsp, h.checkFeatures(req, rsp, req)
	}

	rsp = h.info.MyPairingCapabilities
	rsp.InitKeyDist &= req.InitKeyDist
	rsp.RespKeyDist &= req.RespKeyDist

	if err := h.checkFeatures(req, rsp, req); err != nil {
		return req, rsp, err
	}

	if err := h.send(CodePairingResponse, rsp.Bytes()); err != nil {
		return req, rsp, err
	}
	return req, rsp, nil
}

// checkFeatures rejects peers without Secure Connections and key sizes below
// the minimum.
func (h *Handler) checkFeatures(req, rsp, peer PairingParams) error {
	if !peer.SecureConnections() {
		return h.abort(NotSupported, ReasonAuthenticationRequirements,
			"peer does not support secure connections, authreq 0x%02x", peer.AuthReq)
	}

	sz := req.MaxKeySize
	if rsp.MaxKeySize < sz {
		sz = rsp.MaxKeySize
	}
	if sz < lesc.MinEncryptionKeySize {
		return h.abort(NotSupported, ReasonEncryptionKeySize, "encryption key size %d", sz)
	}
	return nil
}

func (h *Handler) prompt(ctx context.Context) error {
	data := h.confirmationData(0)
	h.ui.DisplayPairingPrompt(data)

	ok, err := h.waitPrompt(ctx, data)
	if err != nil {
		return err
	}
	if !ok {
		return h.abort(UserRejected, ReasonUnspecified, "pairing prompt refused")
	}
	return nil
}
