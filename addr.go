package lesc

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rigado/lesc/sliceops"
)

// Addr represents a device address as written by humans, "aa:bb:cc:dd:ee:ff".
type Addr interface {
	String() string
	Bytes() []byte
}

// NewAddr creates an Addr from string
func NewAddr(s string) Addr {
	return addr(strings.ToLower(s))
}

type addr string

func (a addr) String() string {
	return string(a)
}

// Bytes returns the address most significant octet first.
func (a addr) Bytes() []byte {
	hexStr := strings.Replace(a.String(), ":", "", -1)

	out, err := hex.DecodeString(hexStr)
	if err != nil {
		GetLogger().Errorf("error decoding address %v: %v", a.String(), err)
	}

	return out
}

// AddrType is the LE address type carried next to a connection address.
type AddrType uint8

const (
	AddrTypePublic AddrType = 0x00
	AddrTypeRandom AddrType = 0x01
)

func (t AddrType) String() string {
	switch t {
	case AddrTypePublic:
		return "public"
	case AddrTypeRandom:
		return "random"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// AddressWithType is a connection address as used by the key derivation
// functions.
type AddressWithType struct {
	Addr Addr
	Type AddrType
}

func (a AddressWithType) String() string {
	if a.Addr == nil {
		return fmt.Sprintf("<nil> (%v)", a.Type)
	}
	return fmt.Sprintf("%v (%v)", a.Addr, a.Type)
}

// Octets returns the 56-bit address record: the address little endian
// followed by the type octet.
func (a AddressWithType) Octets() ([7]byte, error) {
	var out [7]byte
	if a.Addr == nil {
		return out, fmt.Errorf("missing address")
	}

	b := a.Addr.Bytes()
	if len(b) != 6 {
		return out, fmt.Errorf("invalid address length %d: %v", len(b), a.Addr)
	}

	copy(out[:6], sliceops.SwapBuf(b))
	out[6] = byte(a.Type)
	return out, nil
}
