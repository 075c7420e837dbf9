package smp

import (
	"bytes"
	"context"

	"github.com/rigado/lesc"
	"github.com/rigado/lesc/toolbox"
)

// ExchangePublicKeys swaps public keys with the peer and derives the DHKey.
// The OOB key pair is used only when the peer signalled OOB data and we have
// some.
func (h *Handler) ExchangePublicKeys(ctx context.Context, remoteOob lesc.OobDataFlag) (KeyExchangeResult, error) {
	var keys *toolbox.KeyPair
	if remoteOob == lesc.OobPresent && h.info.MyOobData != nil && h.info.MyOobData.Keys != nil {
		keys = h.info.MyOobData.Keys
		h.log.Debug("using oob key pair")
	} else {
		var err error
		keys, err = toolbox.GenerateKeyPair(h.rand)
		if err != nil {
			return KeyExchangeResult{}, wrapFailure(LocalValidation, err, "generate key pair")
		}
	}

	if !toolbox.ValidatePoint(keys.Public) {
		return KeyExchangeResult{}, newFailure(LocalValidation, "invalid local public key")
	}

	var remote toolbox.PublicKey
	verify := func(in []byte) error {
		pk, err := toolbox.ParsePublicKey(in)
		if err != nil {
			return wrapFailure(Protocol, err, "remote public key")
		}

		//CVE-2020-26558
		if bytes.Equal(pk.X[:], keys.Public.X[:]) {
			return newFailure(LocalValidation, "remote public key matches local public key")
		}

		if !toolbox.ValidatePoint(pk) {
			return newFailure(LocalValidation, "invalid remote public key")
		}

		remote = pk
		return nil
	}

	if _, err := h.x.exchange(ctx, CodePairingPublicKey, keys.Public.Bytes(), verify); err != nil {
		return KeyExchangeResult{}, err
	}

	dh, err := toolbox.ComputeDHKey(keys.Private, remote)
	if err != nil {
		return KeyExchangeResult{}, wrapFailure(LocalValidation, err, "dhkey")
	}

	res := KeyExchangeResult{PKa: keys.Public, PKb: remote, DHKey: dh}
	if h.info.MyRole == RolePeripheral {
		res.PKa, res.PKb = remote, keys.Public
	}

	h.log.Debugf("public key exchange done, remote %v", remote)
	return res, nil
}
