package lesc

import "fmt"

// IoCapability is the IO capability octet of a Pairing Request/Response.
type IoCapability uint8

// Bluetooth Core v5.2, Vol 3, Part H, 3.5.1, Table 3.4
const (
	IoCapDisplayOnly     IoCapability = 0x00
	IoCapDisplayYesNo    IoCapability = 0x01
	IoCapKeyboardOnly    IoCapability = 0x02
	IoCapNoInputNoOutput IoCapability = 0x03
	IoCapKeyboardDisplay IoCapability = 0x04

	IoCapsReservedStart IoCapability = 0x05
)

var ioCapStrings = map[IoCapability]string{
	IoCapDisplayOnly:     "DisplayOnly",
	IoCapDisplayYesNo:    "DisplayYesNo",
	IoCapKeyboardOnly:    "KeyboardOnly",
	IoCapNoInputNoOutput: "NoInputNoOutput",
	IoCapKeyboardDisplay: "KeyboardDisplay",
}

func (c IoCapability) String() string {
	if s, ok := ioCapStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("IoCapability(0x%02x)", uint8(c))
}

// ParseIoCapability accepts the names returned by IoCapability.String.
func ParseIoCapability(s string) (IoCapability, error) {
	for k, v := range ioCapStrings {
		if v == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown io capability %q", s)
}

// OobDataFlag is the OOB data flag octet of a Pairing Request/Response.
type OobDataFlag uint8

const (
	OobNotPresent OobDataFlag = 0x00
	OobPresent    OobDataFlag = 0x01
)

func (f OobDataFlag) String() string {
	if f == OobPresent {
		return "present"
	}
	return "not present"
}

// AuthReq bits, Bluetooth Core v5.2, Vol 3, Part H, 3.5.1, Figure 3.3
const (
	AuthReqBondMask  = byte(0x03)
	AuthReqBond      = byte(0x01)
	AuthReqNoBond    = byte(0x00)
	AuthReqMitm      = byte(0x04)
	AuthReqSC        = byte(0x08)
	AuthReqKeypress  = byte(0x10)
	AuthReqCT2       = byte(0x20)
	AuthReqSCMitm    = AuthReqSC | AuthReqMitm
	AuthReqSCBond    = AuthReqSC | AuthReqBond
	AuthReqSCMitmBnd = AuthReqSC | AuthReqMitm | AuthReqBond
)

// Key distribution bits.
const (
	KeyDistEncKey  = byte(0x01)
	KeyDistIdKey   = byte(0x02)
	KeyDistSignKey = byte(0x04)
	KeyDistLinkKey = byte(0x08)
)
