package smp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a pairing failure.
type Kind int

const (
	// LocalValidation covers invalid or matching public keys and broken
	// local input.
	LocalValidation Kind = iota + 1
	ConfirmMismatch
	DHKeyCheckMismatch
	UserRejected
	TransportFailure
	Protocol
	// Remote is a Pairing Failed PDU received from the peer.
	Remote
	Cancelled
	NotSupported
)

var kindStrings = map[Kind]string{
	LocalValidation:    "local validation",
	ConfirmMismatch:    "confirm mismatch",
	DHKeyCheckMismatch: "dhkey check mismatch",
	UserRejected:       "user rejected",
	TransportFailure:   "transport",
	Protocol:           "protocol",
	Remote:             "remote",
	Cancelled:          "cancelled",
	NotSupported:       "not supported",
}

func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Failure is the terminal error of a pairing session. Reason is the SMP
// reason code sent to or received from the peer, zero when none applies.
type Failure struct {
	Kind   Kind
	Reason byte
	Msg    string

	cause error
}

func (f *Failure) Error() string {
	s := fmt.Sprintf("pairing failed (%v): %s", f.Kind, f.Msg)
	if f.Reason != 0 {
		s += fmt.Sprintf(" [%s]", ReasonString(f.Reason))
	}
	if f.cause != nil {
		s += ": " + f.cause.Error()
	}
	return s
}

// Cause returns the underlying error, if any.
func (f *Failure) Cause() error {
	return f.cause
}

func (f *Failure) Unwrap() error {
	return f.cause
}

func newFailure(kind Kind, format string, args ...interface{}) *Failure {
	return &Failure{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapFailure(kind Kind, err error, format string, args ...interface{}) *Failure {
	return &Failure{Kind: kind, Msg: fmt.Sprintf(format, args...), cause: err}
}

func remoteFailure(reason byte) *Failure {
	return &Failure{
		Kind:   Remote,
		Reason: reason,
		Msg:    "peer sent pairing failed",
	}
}

// AsFailure finds the first *Failure in err's cause chain.
func AsFailure(err error) (*Failure, bool) {
	type causer interface {
		Cause() error
	}

	for err != nil {
		if f, ok := err.(*Failure); ok {
			return f, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}

// IsKind reports whether err is a Failure of kind k.
func IsKind(err error, k Kind) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == k
}

// ErrSessionUsed is returned by a second Run on the same Handler.
var ErrSessionUsed = errors.New("pairing session already used")
