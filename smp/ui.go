package smp

import "github.com/rigado/lesc"

// ConfirmationData is what a prompt shows to the user.
// Method is zero for the pairing prompt, which comes before the method is
// known.
type ConfirmationData struct {
	Method        Method
	RemoteAddress lesc.AddressWithType
	RemoteName    string

	// Value is the passkey to display or the number to compare.
	Value    uint32
	HasValue bool
}

// UserInterface shows prompts. Calls must not block; answers come back
// through the Handler's On* methods.
type UserInterface interface {
	DisplayPairingPrompt(ConfirmationData)
	DisplayConfirmValue(ConfirmationData)
	DisplayEnterPasskeyDialog(ConfirmationData)
	DisplayPasskey(ConfirmationData)
	Cancel(ConfirmationData)
}

// NopUI ignores every prompt. It is enough for Just Works.
type NopUI struct{}

func (NopUI) DisplayPairingPrompt(ConfirmationData)      {}
func (NopUI) DisplayConfirmValue(ConfirmationData)       {}
func (NopUI) DisplayEnterPasskeyDialog(ConfirmationData) {}
func (NopUI) DisplayPasskey(ConfirmationData)            {}
func (NopUI) Cancel(ConfirmationData)                    {}

type passkeyInput struct {
	passkey uint32
	ok      bool
}
