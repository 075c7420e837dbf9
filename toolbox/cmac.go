package toolbox

import (
	"crypto/aes"
	"encoding/binary"

	"github.com/aead/cmac"
	"github.com/rigado/lesc/sliceops"
)

// Bluetooth Core v5.2, Vol 3, Part H, 2.2.7
var (
	f5KeyID = []byte{0x65, 0x6c, 0x74, 0x62} // "btle"
	f5Salt  = []byte{0xbe, 0x83, 0x60, 0x5a, 0xdb, 0x0b, 0x37, 0x60,
		0x38, 0xa5, 0xf5, 0xaa, 0x91, 0x83, 0x88, 0x6c}
	f5Length = []byte{0x00, 0x01}
)

// NumericComparisonModulus reduces g2 output to six decimal digits.
const NumericComparisonModulus = 1000000

// aesCMAC takes key and msg little endian and returns the tag little endian.
func aesCMAC(key, msg []byte) ([]byte, error) {
	mCipher, err := aes.NewCipher(sliceops.SwapBuf(key))
	if err != nil {
		return nil, err
	}

	mMac, err := cmac.New(mCipher)
	if err != nil {
		return nil, err
	}

	mMac.Write(sliceops.SwapBuf(msg))

	return sliceops.SwapBuf(mMac.Sum(nil)), nil
}

func cat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func to16(b []byte) [16]byte {
	var out [16]byte
	copy(out[:], b)
	return out
}

// F4 is the LE Secure Connections confirm value generation function.
//
//	f4(U, V, X, Z) = AES-CMAC_X(U || V || Z)
func F4(u, v [32]byte, x [16]byte, z byte) ([16]byte, error) {
	m := cat([]byte{z}, v[:], u[:])

	h, err := aesCMAC(x[:], m)
	if err != nil {
		return [16]byte{}, err
	}
	return to16(h), nil
}

// F5 derives the MacKey and the LTK from the DHKey.
func F5(w [32]byte, n1, n2 [16]byte, a1, a2 [7]byte) ([16]byte, [16]byte, error) {
	var macKey, ltk [16]byte

	t, err := aesCMAC(f5Salt, w[:])
	if err != nil {
		return macKey, ltk, err
	}

	m := cat(f5Length, a2[:], a1[:], n2[:], n1[:], f5KeyID, []byte{0x00})

	mk, err := aesCMAC(t, m)
	if err != nil {
		return macKey, ltk, err
	}

	//ltk generation counter
	m[len(m)-1] = 0x01

	lk, err := aesCMAC(t, m)
	if err != nil {
		return macKey, ltk, err
	}

	return to16(mk), to16(lk), nil
}

// F6 computes the DHKey check value.
//
//	f6(W, N1, N2, R, IOcap, A1, A2) = AES-CMAC_W(N1 || N2 || R || IOcap || A1 || A2)
func F6(w, n1, n2, r [16]byte, ioCap [3]byte, a1, a2 [7]byte) ([16]byte, error) {
	m := cat(a2[:], a1[:], ioCap[:], r[:], n2[:], n1[:])

	h, err := aesCMAC(w[:], m)
	if err != nil {
		return [16]byte{}, err
	}
	return to16(h), nil
}

// G2 computes the six digit numeric comparison value.
//
//	g2(U, V, X, Y) = AES-CMAC_X(U || V || Y) mod 2^32
func G2(u, v [32]byte, x, y [16]byte) (uint32, error) {
	m := cat(y[:], v[:], u[:])

	h, err := aesCMAC(x[:], m)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(h[:4]) % NumericComparisonModulus, nil
}
