package smp

import (
	"fmt"
	"io"
	"time"

	"github.com/rigado/lesc"
	"github.com/rigado/lesc/toolbox"
)

// Role is fixed for the lifetime of a session.
type Role int

const (
	RoleCentral Role = iota
	RolePeripheral
)

func (r Role) String() string {
	if r == RoleCentral {
		return "central"
	}
	return "peripheral"
}

// RemoteOobData is the commitment and randomizer received from the peer over
// a side channel.
type RemoteOobData struct {
	C [16]byte
	R [16]byte
}

// InitialInformations is everything a session needs before it starts. It is
// not modified once the session runs.
type InitialInformations struct {
	MyRole        Role
	MyAddress     lesc.AddressWithType
	RemoteAddress lesc.AddressWithType
	RemoteName    string

	MyPairingCapabilities PairingParams

	// RemotelyInitiated asks the user to accept the pairing before any
	// response goes out. PairingRequest, when set, was already received
	// (peripheral) or sent (central).
	RemotelyInitiated bool
	PairingRequest    *PairingParams

	// PairingResponse skips feature exchange when set together with
	// PairingRequest.
	PairingResponse *PairingParams

	MyOobData     *toolbox.OobData
	RemoteOobData *RemoteOobData

	UI UserInterface

	Timeout     time.Duration
	UserTimeout time.Duration

	// Rand defaults to toolbox.Reader.
	Rand io.Reader
}

// NewInitialInformations fills the session context from a local Config.
func NewInitialInformations(role Role, my, remote lesc.AddressWithType, c lesc.Config) InitialInformations {
	return InitialInformations{
		MyRole:                role,
		MyAddress:             my,
		RemoteAddress:         remote,
		MyPairingCapabilities: ParamsFromConfig(c),
		Timeout:               c.Timeout,
		UserTimeout:           c.UserTimeout,
	}
}

func (i *InitialInformations) validate() error {
	if i.MyRole != RoleCentral && i.MyRole != RolePeripheral {
		return fmt.Errorf("invalid role %d", i.MyRole)
	}
	if _, err := i.MyAddress.Octets(); err != nil {
		return fmt.Errorf("local address: %v", err)
	}
	if _, err := i.RemoteAddress.Octets(); err != nil {
		return fmt.Errorf("remote address: %v", err)
	}
	if i.MyPairingCapabilities.IoCap >= lesc.IoCapsReservedStart {
		return fmt.Errorf("invalid io capability %v", i.MyPairingCapabilities.IoCap)
	}
	if i.PairingResponse != nil && i.PairingRequest == nil {
		return fmt.Errorf("pairing response without a pairing request")
	}
	return nil
}

// centralAddress and peripheralAddress return the A and B addresses of f5/f6.
func (i *InitialInformations) centralAddress() lesc.AddressWithType {
	if i.MyRole == RoleCentral {
		return i.MyAddress
	}
	return i.RemoteAddress
}

func (i *InitialInformations) peripheralAddress() lesc.AddressWithType {
	if i.MyRole == RoleCentral {
		return i.RemoteAddress
	}
	return i.MyAddress
}

// KeyExchangeResult holds both public keys ordered by role, PKa being the
// central's, and the shared DHKey.
type KeyExchangeResult struct {
	PKa   toolbox.PublicKey
	PKb   toolbox.PublicKey
	DHKey [32]byte
}

// Stage1Result is the output of the association model.
type Stage1Result struct {
	Na [16]byte
	Nb [16]byte
	Ra [16]byte
	Rb [16]byte
}

// LTK is the long term key produced by a successful pairing.
type LTK [16]byte

func (k LTK) String() string {
	return fmt.Sprintf("%x", k[:])
}
