package toolbox

import (
	"crypto"
	"crypto/elliptic"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/rigado/lesc/sliceops"
	"github.com/wsddn/go-ecdh"
)

// PublicKey is a P-256 point with both coordinates little endian, as carried
// in the Pairing Public Key PDU.
type PublicKey struct {
	X [32]byte
	Y [32]byte
}

// Bytes returns X || Y, the Pairing Public Key payload.
func (k PublicKey) Bytes() []byte {
	out := make([]byte, 0, 64)
	out = append(out, k.X[:]...)
	return append(out, k.Y[:]...)
}

func (k PublicKey) String() string {
	return hex.EncodeToString(sliceops.SwapBuf(k.X[:]))
}

// ParsePublicKey reads a Pairing Public Key payload. The point is not
// validated.
func ParsePublicKey(b []byte) (PublicKey, error) {
	var k PublicKey
	if len(b) != 64 {
		return k, fmt.Errorf("invalid public key length %d", len(b))
	}
	copy(k.X[:], b[:32])
	copy(k.Y[:], b[32:])
	return k, nil
}

// KeyPair is a local ECDH key pair.
type KeyPair struct {
	Private crypto.PrivateKey
	Public  PublicKey
}

func newECDH() ecdh.ECDH {
	return ecdh.NewEllipticECDH(elliptic.P256())
}

// GenerateKeyPair creates a fresh P-256 key pair from r.
func GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	e := newECDH()

	prv, pub, err := e.GenerateKey(r)
	if err != nil {
		return nil, err
	}

	pk, err := marshalPublicKey(e, pub)
	if err != nil {
		return nil, err
	}

	return &KeyPair{Private: prv, Public: pk}, nil
}

func marshalPublicKey(e ecdh.ECDH, k crypto.PublicKey) (PublicKey, error) {
	var out PublicKey

	ba := e.Marshal(k)
	if len(ba) != 65 {
		return out, fmt.Errorf("unexpected marshalled key length %d", len(ba))
	}
	ba = ba[1:] //remove header

	copy(out.X[:], sliceops.SwapBuf(ba[:32]))
	copy(out.Y[:], sliceops.SwapBuf(ba[32:]))
	return out, nil
}

func unmarshalPublicKey(e ecdh.ECDH, k PublicKey) (crypto.PublicKey, bool) {
	xs := sliceops.SwapBuf(k.X[:])
	ys := sliceops.SwapBuf(k.Y[:])

	//add header
	r := append([]byte{0x04}, xs...)
	r = append(r, ys...)

	return e.Unmarshal(r)
}

// ValidatePoint reports whether k lies on P-256.
func ValidatePoint(k PublicKey) bool {
	_, ok := unmarshalPublicKey(newECDH(), k)
	return ok
}

// ComputeDHKey returns the little endian x coordinate of prv * pub.
func ComputeDHKey(prv crypto.PrivateKey, pub PublicKey) ([32]byte, error) {
	var out [32]byte
	if prv == nil {
		return out, fmt.Errorf("missing private key")
	}

	e := newECDH()
	pk, ok := unmarshalPublicKey(e, pub)
	if !ok {
		return out, fmt.Errorf("invalid public key")
	}

	b, err := e.GenerateSharedSecret(prv, pk)
	if err != nil {
		return out, err
	}

	// the big.Int bytes drop leading zeros
	b = sliceops.PadLeft(b, 32)
	copy(out[:], sliceops.SwapBuf(b))
	return out, nil
}
