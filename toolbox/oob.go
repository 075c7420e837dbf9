package toolbox

import "io"

// OobData is the local half of LE Secure Connections OOB data: the key pair
// whose public key was handed out, the random r and the commitment
// c = f4(PKx, PKx, r, 0).
type OobData struct {
	Keys *KeyPair
	R    [16]byte
	C    [16]byte
}

// GenerateOobData creates a key pair and its OOB confirmation.
func GenerateOobData(r io.Reader) (*OobData, error) {
	keys, err := GenerateKeyPair(r)
	if err != nil {
		return nil, err
	}

	rv, err := Random16(r)
	if err != nil {
		return nil, err
	}

	c, err := OobCommitment(keys.Public, rv)
	if err != nil {
		return nil, err
	}

	return &OobData{Keys: keys, R: rv, C: c}, nil
}

// OobCommitment returns f4(PKx, PKx, r, 0).
func OobCommitment(pk PublicKey, r [16]byte) ([16]byte, error) {
	return F4(pk.X, pk.X, r, 0)
}
