package l2cap

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/pion/transport/v3/test"
)

func TestEncodeDecode(t *testing.T) {
	b, err := Encode(CidSMP, []byte{0x01, 0x03, 0x00, 0x2d})
	if err != nil {
		t.Fatal(err)
	}

	exp := []byte{0x04, 0x00, 0x06, 0x00, 0x01, 0x03, 0x00, 0x2d}
	if !bytes.Equal(b, exp) {
		t.Fatalf("frame\nexp %x\ngot %x", exp, b)
	}

	cid, pdu, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if cid != CidSMP || !bytes.Equal(pdu, exp[4:]) {
		t.Fatalf("decoded cid %x pdu %x", cid, pdu)
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, b := range [][]byte{
		nil,
		{0x01, 0x00, 0x06},
		{0x02, 0x00, 0x06, 0x00, 0x01},
		{0x00, 0x00, 0x06, 0x00, 0x01},
	} {
		if _, _, err := Decode(b); err == nil {
			t.Errorf("expected error for %x", b)
		}
	}
}

func TestPipeRoundTrip(t *testing.T) {
	report := test.TimeOut(5 * time.Second)
	defer report.Stop()

	p := NewPipe()
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.Central().Send([]byte{0x0c, 0xaa}); err != nil {
		t.Fatal(err)
	}
	if err := p.Central().Send([]byte{0x0d, 0xbb}); err != nil {
		t.Fatal(err)
	}

	for _, exp := range [][]byte{{0x0c, 0xaa}, {0x0d, 0xbb}} {
		got, err := p.Peripheral().Receive(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, exp) {
			t.Fatalf("exp %x, got %x", exp, got)
		}
	}

	if err := p.Peripheral().Send([]byte{0x05, 0x08}); err != nil {
		t.Fatal(err)
	}
	got, err := p.Central().Receive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x05, 0x08}) {
		t.Fatalf("got %x", got)
	}
}

func TestReceiveContext(t *testing.T) {
	report := test.TimeOut(5 * time.Second)
	defer report.Stop()

	p := NewPipe()
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := p.Central().Receive(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type frameReader struct {
	frames [][]byte
	w      bytes.Buffer
}

func (f *frameReader) Read(b []byte) (int, error) {
	if len(f.frames) == 0 {
		return 0, io.EOF
	}
	n := copy(b, f.frames[0])
	f.frames = f.frames[1:]
	return n, nil
}

func (f *frameReader) Write(b []byte) (int, error) { return f.w.Write(b) }
func (f *frameReader) Close() error                { return nil }

func TestChannelFiltersAndDrains(t *testing.T) {
	report := test.TimeOut(5 * time.Second)
	defer report.Stop()

	att, _ := Encode(0x0004, []byte{0x0a})
	smp, _ := Encode(CidSMP, []byte{0x05, 0x0b})

	rw := &frameReader{frames: [][]byte{att, {0x00}, smp}}
	c := NewChannel(rw, CidSMP)

	select {
	case <-c.Disconnected():
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not stop on EOF")
	}

	// queued before EOF, still delivered
	got, err := c.Receive(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x05, 0x0b}) {
		t.Fatalf("got %x", got)
	}

	if _, err := c.Receive(context.Background()); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}

	if err := c.Send([]byte{0x01}); err == nil {
		t.Fatal("send after disconnect should fail")
	}
}

func TestCloseUnblocksReceive(t *testing.T) {
	report := test.TimeOut(5 * time.Second)
	defer report.Stop()

	p := NewPipe()

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Peripheral().Receive(context.Background())
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	_ = p.Close()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected an error after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("receive not unblocked")
	}
}
