package toolbox

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// Reader is the default entropy source.
var Reader io.Reader = rand.Reader

// Random16 reads a 128 bit nonce from r.
func Random16(r io.Reader) ([16]byte, error) {
	var out [16]byte
	_, err := io.ReadFull(r, out[:])
	return out, err
}

// RandomUint32 reads a 32 bit value from r.
func RandomUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
