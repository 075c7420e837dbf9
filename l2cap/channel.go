// Package l2cap carries SMP PDUs over an L2CAP fixed channel. Each frame is
// the L2CAP basic header (length, channel id, both little endian) followed by
// one PDU, and every Read on the underlying connection returns one frame.
package l2cap

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/lesc"
)

const (
	CidSMP = uint16(0x0006)

	headerLen = 4
	rxBufSize = 1024
	rxQueue   = 16
)

// ErrClosed is returned once the channel has been closed locally.
var ErrClosed = errors.New("l2cap channel closed")

// Encode frames pdu for cid.
func Encode(cid uint16, pdu []byte) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, headerLen+len(pdu)))
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(pdu))); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, cid); err != nil {
		return nil, err
	}
	buf.Write(pdu)
	return buf.Bytes(), nil
}

// Decode splits a frame into its channel id and PDU.
func Decode(b []byte) (uint16, []byte, error) {
	if len(b) < headerLen {
		return 0, nil, fmt.Errorf("short frame, len %d", len(b))
	}

	l := int(binary.LittleEndian.Uint16(b[:2]))
	cid := binary.LittleEndian.Uint16(b[2:4])
	if l != len(b)-headerLen {
		return cid, nil, fmt.Errorf("length mismatch, header %d payload %d", l, len(b)-headerLen)
	}

	pdu := make([]byte, l)
	copy(pdu, b[headerLen:])
	return cid, pdu, nil
}

// Channel is one end of an SMP fixed channel.
type Channel struct {
	rwc io.ReadWriteCloser
	cid uint16
	log lesc.Logger

	chInPDU chan []byte
	chDone  chan struct{}

	mu  sync.Mutex
	err error

	closeOnce sync.Once
	wmu       sync.Mutex
}

// NewChannel starts reading frames for cid from rwc.
func NewChannel(rwc io.ReadWriteCloser, cid uint16) *Channel {
	c := &Channel{
		rwc:     rwc,
		cid:     cid,
		log:     lesc.GetLogger().ChildLogger(map[string]interface{}{"cid": cid}),
		chInPDU: make(chan []byte, rxQueue),
		chDone:  make(chan struct{}),
	}

	go c.loop()
	return c
}

func (c *Channel) loop() {
	buf := make([]byte, rxBufSize)
	for {
		n, err := c.rwc.Read(buf)
		if err != nil {
			if err == io.EOF {
				c.shutdown(io.EOF)
			} else {
				c.shutdown(errors.Wrap(err, "l2cap read"))
			}
			return
		}

		cid, pdu, err := Decode(buf[:n])
		if err != nil {
			c.log.Warnf("dropping frame: %v", err)
			continue
		}

		if cid != c.cid {
			c.log.Debugf("dropping frame for cid 0x%04x", cid)
			continue
		}

		select {
		case c.chInPDU <- pdu:
		case <-c.chDone:
			return
		}
	}
}

func (c *Channel) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()

		close(c.chDone)
		_ = c.rwc.Close()
	})
}

// Err returns why the channel stopped, or nil while it is open.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Send writes one PDU.
func (c *Channel) Send(pdu []byte) error {
	select {
	case <-c.chDone:
		return errors.Wrap(c.Err(), "l2cap send")
	default:
	}

	b, err := Encode(c.cid, pdu)
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err = c.rwc.Write(b)
	return errors.Wrap(err, "l2cap write")
}

// Receive blocks until the next PDU arrives, ctx is done or the channel
// closes. PDUs that arrived before the channel closed are still returned.
func (c *Channel) Receive(ctx context.Context) ([]byte, error) {
	select {
	case p := <-c.chInPDU:
		return p, nil
	default:
	}

	select {
	case p := <-c.chInPDU:
		return p, nil
	case <-c.chDone:
		select {
		case p := <-c.chInPDU:
			return p, nil
		default:
		}
		return nil, c.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Disconnected is closed when the channel stops.
func (c *Channel) Disconnected() <-chan struct{} {
	return c.chDone
}

// Close stops the channel and closes the underlying connection.
func (c *Channel) Close() error {
	c.shutdown(ErrClosed)
	return nil
}
