// Package sliceops holds the byte order helpers shared by the crypto toolbox
// and the SMP codec. SMP carries every multi-octet value least significant
// octet first, while crypto/aes and crypto/elliptic work most significant
// first.
package sliceops

// SwapBuf returns a reversed copy of in.
func SwapBuf(in []byte) []byte {
	a := make([]byte, 0, len(in))
	a = append(a, in...)
	for i := len(a)/2 - 1; i >= 0; i-- {
		opp := len(a) - 1 - i
		a[i], a[opp] = a[opp], a[i]
	}

	return a
}

// PadLeft returns in prefixed with zeros up to n octets. Inputs already n
// octets or longer are copied unchanged.
func PadLeft(in []byte, n int) []byte {
	if len(in) >= n {
		return append([]byte(nil), in...)
	}

	out := make([]byte, n)
	copy(out[n-len(in):], in)
	return out
}
