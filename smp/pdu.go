package smp

import (
	"encoding/hex"
	"fmt"

	"github.com/rigado/lesc"
)

// PairingParams is the body of a Pairing Request or Pairing Response.
type PairingParams struct {
	IoCap       lesc.IoCapability
	OobFlag     lesc.OobDataFlag
	AuthReq     byte
	MaxKeySize  byte
	InitKeyDist byte
	RespKeyDist byte
}

// ParamsFromConfig builds the local pairing parameters.
func ParamsFromConfig(c lesc.Config) PairingParams {
	return PairingParams{
		IoCap:       c.IoCap,
		OobFlag:     c.OobFlag,
		AuthReq:     c.AuthReq,
		MaxKeySize:  c.MaxKeySize,
		InitKeyDist: c.InitKeyDist,
		RespKeyDist: c.RespKeyDist,
	}
}

func (p PairingParams) Mitm() bool {
	return p.AuthReq&lesc.AuthReqMitm != 0
}

func (p PairingParams) SecureConnections() bool {
	return p.AuthReq&lesc.AuthReqSC != 0
}

func (p PairingParams) Oob() bool {
	return p.OobFlag == lesc.OobPresent
}

// ioCapOctets is IOcapA/IOcapB of f6, little endian: IO capability, OOB
// flag, AuthReq.
func (p PairingParams) ioCapOctets() [3]byte {
	return [3]byte{byte(p.IoCap), byte(p.OobFlag), p.AuthReq}
}

func (p PairingParams) String() string {
	return fmt.Sprintf("iocap %v, oob %v, authreq 0x%02x, keysize %d, dist 0x%02x/0x%02x",
		p.IoCap, p.OobFlag, p.AuthReq, p.MaxKeySize, p.InitKeyDist, p.RespKeyDist)
}

// Bytes returns the PDU payload, without the code.
func (p PairingParams) Bytes() []byte {
	return []byte{
		byte(p.IoCap),
		byte(p.OobFlag),
		p.AuthReq,
		p.MaxKeySize,
		p.InitKeyDist,
		p.RespKeyDist,
	}
}

func parsePairingParams(in []byte) (PairingParams, error) {
	if len(in) != payloadLen[CodePairingRequest] {
		return PairingParams{}, fmt.Errorf("%v, invalid length %v", hex.EncodeToString(in), len(in))
	}

	return PairingParams{
		IoCap:       lesc.IoCapability(in[0]),
		OobFlag:     lesc.OobDataFlag(in[1]),
		AuthReq:     in[2],
		MaxKeySize:  in[3],
		InitKeyDist: in[4],
		RespKeyDist: in[5],
	}, nil
}

func buildPDU(code byte, payload []byte) []byte {
	out := make([]byte, 0, len(payload)+1)
	out = append(out, code)
	return append(out, payload...)
}
