package smp

import (
	"context"
	"fmt"

	"github.com/rigado/lesc"
)

// Method is the Stage 1 association model.
type Method int

const (
	JustWorks Method = iota + 1
	NumericComparison
	PasskeyEntry
	OutOfBand
)

var methodStrings = map[Method]string{
	JustWorks:         "just works",
	NumericComparison: "numeric comparison",
	PasskeyEntry:      "passkey entry",
	OutOfBand:         "out of band",
}

func (m Method) String() string {
	if s, ok := methodStrings[m]; ok {
		return s
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

func displayOrYesNo(c lesc.IoCapability) bool {
	return c == lesc.IoCapDisplayOnly || c == lesc.IoCapDisplayYesNo
}

func yesNoOrKeyboardDisplay(c lesc.IoCapability) bool {
	return c == lesc.IoCapKeyboardDisplay || c == lesc.IoCapDisplayYesNo
}

// SelectMethod picks the association model from the Pairing Request (req)
// and Pairing Response (rsp). The checks run in order and the first match
// wins.
func SelectMethod(req, rsp PairingParams) Method {
	if !req.Mitm() && !rsp.Mitm() {
		return JustWorks
	}

	if req.Oob() || rsp.Oob() {
		return OutOfBand
	}

	iom, ios := req.IoCap, rsp.IoCap

	if yesNoOrKeyboardDisplay(iom) && yesNoOrKeyboardDisplay(ios) {
		return NumericComparison
	}

	if iom == lesc.IoCapNoInputNoOutput || ios == lesc.IoCapNoInputNoOutput {
		return JustWorks
	}

	if displayOrYesNo(iom) && displayOrYesNo(ios) {
		return JustWorks
	}

	return PasskeyEntry
}

// Stage1 runs the association model selected from req and rsp.
func (h *Handler) Stage1(ctx context.Context, req, rsp PairingParams, kx KeyExchangeResult) (Stage1Result, error) {
	m := SelectMethod(req, rsp)
	h.setMethod(m)
	h.log.Infof("stage 1: %v", m)

	mine, remote := req, rsp
	if h.info.MyRole == RolePeripheral {
		mine, remote = rsp, req
	}

	switch m {
	case JustWorks:
		return h.justWorks(ctx, kx)
	case NumericComparison:
		return h.numericComparison(ctx, kx)
	case PasskeyEntry:
		return h.passkeyEntry(ctx, kx, mine.IoCap, remote.IoCap)
	case OutOfBand:
		return h.outOfBand(ctx, kx, mine.OobFlag, remote.OobFlag)
	}

	return Stage1Result{}, newFailure(NotSupported, "unknown method %v", m)
}
