package smp

import (
	"testing"

	"github.com/rigado/lesc"
)

func params(io lesc.IoCapability, mitm, oob bool) PairingParams {
	p := PairingParams{IoCap: io, AuthReq: lesc.AuthReqSCBond, MaxKeySize: 16}
	if mitm {
		p.AuthReq |= lesc.AuthReqMitm
	}
	if oob {
		p.OobFlag = lesc.OobPresent
	}
	return p
}

func TestSelectMethod(t *testing.T) {
	const (
		do = lesc.IoCapDisplayOnly
		yn = lesc.IoCapDisplayYesNo
		ko = lesc.IoCapKeyboardOnly
		no = lesc.IoCapNoInputNoOutput
		kd = lesc.IoCapKeyboardDisplay
	)

	for i, tc := range []struct {
		req, rsp PairingParams
		exp      Method
	}{
		// no mitm wins over everything
		{params(kd, false, true), params(kd, false, true), JustWorks},
		{params(ko, false, false), params(do, false, false), JustWorks},

		// then oob, from either side
		{params(no, true, true), params(no, false, false), OutOfBand},
		{params(kd, false, false), params(kd, true, true), OutOfBand},

		{params(yn, true, false), params(yn, true, false), NumericComparison},
		{params(kd, true, false), params(yn, false, false), NumericComparison},
		{params(kd, false, false), params(kd, true, false), NumericComparison},

		{params(no, true, false), params(kd, true, false), JustWorks},
		{params(ko, true, false), params(no, true, false), JustWorks},

		{params(do, true, false), params(yn, true, false), JustWorks},
		{params(do, true, false), params(do, true, false), JustWorks},

		{params(ko, true, false), params(do, true, false), PasskeyEntry},
		{params(do, true, false), params(ko, true, false), PasskeyEntry},
		{params(ko, true, false), params(ko, true, false), PasskeyEntry},
		{params(kd, true, false), params(ko, true, false), PasskeyEntry},
		{params(do, true, false), params(kd, true, false), PasskeyEntry},
		{params(yn, true, false), params(ko, true, false), PasskeyEntry},
	} {
		if m := SelectMethod(tc.req, tc.rsp); m != tc.exp {
			t.Errorf("%d: %v / %v: exp %v got %v", i, tc.req.IoCap, tc.rsp.IoCap, tc.exp, m)
		}
	}
}

func TestPasskeyRole(t *testing.T) {
	for _, tc := range []struct {
		mine, remote   lesc.IoCapability
		display, enter bool
	}{
		{lesc.IoCapDisplayOnly, lesc.IoCapKeyboardOnly, true, false},
		{lesc.IoCapKeyboardOnly, lesc.IoCapDisplayOnly, false, true},
		{lesc.IoCapKeyboardDisplay, lesc.IoCapKeyboardOnly, true, false},
		{lesc.IoCapKeyboardOnly, lesc.IoCapKeyboardDisplay, false, true},
		{lesc.IoCapKeyboardDisplay, lesc.IoCapDisplayOnly, false, true},
		{lesc.IoCapDisplayYesNo, lesc.IoCapKeyboardOnly, true, false},
		{lesc.IoCapKeyboardOnly, lesc.IoCapKeyboardOnly, false, true},
		{lesc.IoCapDisplayYesNo, lesc.IoCapKeyboardDisplay, false, false},
	} {
		d, e := passkeyRole(tc.mine, tc.remote)
		if d != tc.display || e != tc.enter {
			t.Errorf("%v/%v: exp display %v enter %v, got %v %v",
				tc.mine, tc.remote, tc.display, tc.enter, d, e)
		}
	}
}

func TestGeneratePasskey(t *testing.T) {
	for _, tc := range []struct {
		in, exp uint32
	}{
		{0, 0},
		{999999, 999999},
		{1000000, 500000},
		{0x0fffff, 524287},
		{0xffffffff, 524287},
		{0x12345678, 0x45678},
	} {
		if p := GeneratePasskey(tc.in); p != tc.exp {
			t.Errorf("0x%08x: exp %d got %d", tc.in, tc.exp, p)
		}
	}
}

func TestIoCapOctets(t *testing.T) {
	p := PairingParams{IoCap: lesc.IoCapKeyboardOnly, OobFlag: lesc.OobPresent, AuthReq: 0x01}
	if p.ioCapOctets() != [3]byte{0x02, 0x01, 0x01} {
		t.Fatalf("got %x", p.ioCapOctets())
	}
}

func TestPairingParamsBytes(t *testing.T) {
	p := PairingParams{
		IoCap:       lesc.IoCapKeyboardDisplay,
		OobFlag:     lesc.OobNotPresent,
		AuthReq:     lesc.AuthReqSCMitmBnd,
		MaxKeySize:  16,
		InitKeyDist: 0x00,
		RespKeyDist: lesc.KeyDistEncKey,
	}

	b := p.Bytes()
	exp := []byte{0x04, 0x00, 0x0d, 0x10, 0x00, 0x01}
	if string(b) != string(exp) {
		t.Fatalf("exp %x got %x", exp, b)
	}

	q, err := parsePairingParams(b)
	if err != nil {
		t.Fatal(err)
	}
	if q != p {
		t.Fatalf("exp %v got %v", p, q)
	}

	if _, err := parsePairingParams(b[:5]); err == nil {
		t.Fatal("short payload accepted")
	}
}

func TestFailure(t *testing.T) {
	f := remoteFailure(ReasonDHKeyCheckFailed)
	if f.Error() != "pairing failed (remote): peer sent pairing failed [dhkey check failed]" {
		t.Fatalf("got %q", f.Error())
	}

	if !IsKind(f, Remote) || IsKind(f, Protocol) {
		t.Fatal("kind mismatch")
	}

	if ReasonString(0x42) != "reason 0x42" || CodeString(0x42) != "code 0x42" {
		t.Fatal("unknown codes")
	}
}
