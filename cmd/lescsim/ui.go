package main

import (
	"github.com/rigado/lesc"
	"github.com/rigado/lesc/smp"
)

// simUI plays the user of one simulated device. A displayed passkey is typed
// into the peer straight away.
type simUI struct {
	log     lesc.Logger
	self    *smp.Manager
	peer    *smp.Manager
	reject  bool
	passkey *uint32
}

func (u *simUI) handler(m *smp.Manager) *smp.Handler {
	h := m.Active()
	if h == nil {
		u.log.Warn("no active session")
	}
	return h
}

func (u *simUI) DisplayPairingPrompt(d smp.ConfirmationData) {
	u.log.Infof("pair with %v (%v)? yes", d.RemoteName, d.RemoteAddress)
	if h := u.handler(u.self); h != nil {
		h.OnPairingPromptAccepted(true)
	}
}

func (u *simUI) DisplayConfirmValue(d smp.ConfirmationData) {
	u.log.Infof("does %06d match? %v", d.Value, !u.reject)
	if h := u.handler(u.self); h != nil {
		h.OnConfirmYesNo(!u.reject)
	}
}

func (u *simUI) DisplayEnterPasskeyDialog(d smp.ConfirmationData) {
	if u.passkey == nil {
		u.log.Info("waiting for passkey")
		return
	}

	u.log.Infof("entering passkey %06d", *u.passkey)
	if h := u.handler(u.self); h != nil {
		if err := h.OnPasskeyEntry(*u.passkey); err != nil {
			u.log.Error(err)
		}
	}
}

func (u *simUI) DisplayPasskey(d smp.ConfirmationData) {
	u.log.Infof("passkey %06d", d.Value)
	if h := u.handler(u.peer); h != nil {
		if err := h.OnPasskeyEntry(d.Value); err != nil {
			u.log.Error(err)
		}
	}
}

func (u *simUI) Cancel(d smp.ConfirmationData) {
	u.log.Infof("%v prompt dismissed", d.Method)
}
