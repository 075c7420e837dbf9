package l2cap

import (
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// Pipe connects two SMP channels in memory. Frames cross a pion test bridge
// that is ticked from a background goroutine. Close the Pipe rather than its
// channels; delivery must stop before either end goes away.
type Pipe struct {
	bridge *test.Bridge

	central    *Channel
	peripheral *Channel

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// DefaultTickInterval is how often queued frames are delivered.
const DefaultTickInterval = time.Millisecond

// NewPipe returns a running pipe.
func NewPipe() *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		stopCh: make(chan struct{}),
	}

	p.central = NewChannel(p.bridge.GetConn0(), CidSMP)
	p.peripheral = NewChannel(p.bridge.GetConn1(), CidSMP)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(DefaultTickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()

	return p
}

// Central returns the channel of the first endpoint.
func (p *Pipe) Central() *Channel {
	return p.central
}

// Peripheral returns the channel of the second endpoint.
func (p *Pipe) Peripheral() *Channel {
	return p.peripheral
}

// Close stops delivery and closes both ends.
func (p *Pipe) Close() error {
	p.closeOnce.Do(func() {
		close(p.stopCh)
		p.wg.Wait()

		_ = p.central.Close()
		_ = p.peripheral.Close()
	})
	return nil
}
