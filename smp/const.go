package smp

import "fmt"

// PDU codes, Bluetooth Core v5.2, Vol 3, Part H, 3.3, Table 3.3
const (
	CodePairingRequest          = 0x01 // Pairing Request LE-U, ACL-U
	CodePairingResponse         = 0x02 // Pairing Response LE-U, ACL-U
	CodePairingConfirm          = 0x03 // Pairing Confirm LE-U
	CodePairingRandom           = 0x04 // Pairing Random LE-U
	CodePairingFailed           = 0x05 // Pairing Failed LE-U, ACL-U
	CodeEncryptionInformation   = 0x06 // Encryption Information LE-U
	CodeMasterIdentification    = 0x07 // Master Identification LE-U
	CodeIdentityInformation     = 0x08 // Identity Information LE-U, ACL-U
	CodeIdentityAddrInformation = 0x09 // Identity Address Information LE-U, ACL-U
	CodeSigningInformation      = 0x0A // Signing Information LE-U, ACL-U
	CodeSecurityRequest         = 0x0B // Security Request LE-U
	CodePairingPublicKey        = 0x0C // Pairing Public Key LE-U
	CodePairingDHKeyCheck       = 0x0D // Pairing DHKey Check LE-U
	CodePairingKeypress         = 0x0E // Pairing Keypress Notification LE-U
)

// Pairing Failed reasons, Bluetooth Core v5.2, Vol 3, Part H, 3.5.5, Table 3.7
const (
	ReasonPasskeyEntryFailed          = 0x01
	ReasonOobNotAvailable             = 0x02
	ReasonAuthenticationRequirements  = 0x03
	ReasonConfirmValueFailed          = 0x04
	ReasonPairingNotSupported         = 0x05
	ReasonEncryptionKeySize           = 0x06
	ReasonCommandNotSupported         = 0x07
	ReasonUnspecified                 = 0x08
	ReasonRepeatedAttempts            = 0x09
	ReasonInvalidParameters           = 0x0A
	ReasonDHKeyCheckFailed            = 0x0B
	ReasonNumericComparisonFailed     = 0x0C
	ReasonBrEdrPairingInProgress      = 0x0D
	ReasonCrossTransportKeyNotAllowed = 0x0E
)

const (
	passkeyIterationCount = 20
	passkeyMax            = 999999
	passkeyMask           = 0x0fffff
)

var codeStrings = map[byte]string{
	CodePairingRequest:          "pairing request",
	CodePairingResponse:         "pairing response",
	CodePairingConfirm:          "pairing confirm",
	CodePairingRandom:           "pairing random",
	CodePairingFailed:           "pairing failed",
	CodeEncryptionInformation:   "encryption info",
	CodeMasterIdentification:    "master id",
	CodeIdentityInformation:     "id info",
	CodeIdentityAddrInformation: "id addr info",
	CodeSigningInformation:      "signing info",
	CodeSecurityRequest:         "security req",
	CodePairingPublicKey:        "pairing pub key",
	CodePairingDHKeyCheck:       "pairing dhkey check",
	CodePairingKeypress:         "pairing keypress",
}

// payload length per code, excluding the code octet
var payloadLen = map[byte]int{
	CodePairingRequest:    6,
	CodePairingResponse:   6,
	CodePairingConfirm:    16,
	CodePairingRandom:     16,
	CodePairingFailed:     1,
	CodeSecurityRequest:   1,
	CodePairingPublicKey:  64,
	CodePairingDHKeyCheck: 16,
	CodePairingKeypress:   1,
}

var pairingFailedReason = []string{
	"reserved",
	"passkey entry failed",
	"oob not available",
	"authentication requirements",
	"confirm value failed",
	"pairing not supported",
	"encryption key size",
	"command not supported",
	"unspecified reason",
	"repeated attempts",
	"invalid parameters",
	"dhkey check failed",
	"numeric comparison failed",
	"BR/EDR pairing in progress",
	"cross-transport key derivation/generation not allowed",
}

// CodeString names an SMP code.
func CodeString(code byte) string {
	if s, ok := codeStrings[code]; ok {
		return s
	}
	return fmt.Sprintf("code 0x%02x", code)
}

// ReasonString names a Pairing Failed reason.
func ReasonString(reason byte) string {
	if int(reason) < len(pairingFailedReason) {
		return pairingFailedReason[reason]
	}
	return fmt.Sprintf("reason 0x%02x", reason)
}
