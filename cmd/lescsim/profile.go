package main

import (
	"fmt"
	"io/ioutil"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rigado/lesc"
	"github.com/urfave/cli"
)

// peerProfile describes one simulated device.
type peerProfile struct {
	Address    string        `json:"address"`
	AddrType   lesc.AddrType `json:"addrType"`
	Name       string        `json:"name"`
	IoCap      string        `json:"iocap"`
	Mitm       bool          `json:"mitm"`
	Oob        bool          `json:"oob"` // holds the peer's OOB data
	MaxKeySize byte          `json:"maxKeySize"`
	Reject     bool          `json:"reject"` // answers no to numeric comparison
	Prompt     bool          `json:"prompt"` // shows the pairing prompt first
}

type profile struct {
	Central    peerProfile `json:"central"`
	Peripheral peerProfile `json:"peripheral"`
}

func defaultProfile() profile {
	return profile{
		Central: peerProfile{
			Address:  "11:22:33:44:55:66",
			AddrType: lesc.AddrTypePublic,
			Name:     "central",
			IoCap:    lesc.IoCapNoInputNoOutput.String(),
		},
		Peripheral: peerProfile{
			Address:  "c0:ff:ee:00:00:01",
			AddrType: lesc.AddrTypeRandom,
			Name:     "peripheral",
			IoCap:    lesc.IoCapNoInputNoOutput.String(),
		},
	}
}

// loadProfile reads --profile, if given, and applies the command line on
// top of it.
func loadProfile(c *cli.Context) (profile, error) {
	p := defaultProfile()

	if fn := c.String("profile"); fn != "" {
		in, err := ioutil.ReadFile(fn)
		if err != nil {
			return p, err
		}
		if err := jsoniter.Unmarshal(in, &p); err != nil {
			return p, fmt.Errorf("profile %v: %v", fn, err)
		}
	}

	if c.IsSet("central-iocap") {
		p.Central.IoCap = c.String("central-iocap")
	}
	if c.IsSet("peripheral-iocap") {
		p.Peripheral.IoCap = c.String("peripheral-iocap")
	}
	if c.Bool("mitm") {
		p.Central.Mitm, p.Peripheral.Mitm = true, true
	}
	if c.Bool("oob") {
		p.Central.Oob, p.Peripheral.Oob = true, true
	}
	if c.Bool("reject") {
		p.Central.Reject = true
	}
	if c.Bool("prompt") {
		p.Peripheral.Prompt = true
	}

	return p, nil
}

func (pp peerProfile) address() lesc.AddressWithType {
	return lesc.AddressWithType{Addr: lesc.NewAddr(pp.Address), Type: pp.AddrType}
}

func (pp peerProfile) config(timeout time.Duration) (lesc.Config, error) {
	io, err := lesc.ParseIoCapability(pp.IoCap)
	if err != nil {
		return lesc.Config{}, err
	}

	opts := []lesc.Option{
		lesc.OptIoCapability(io),
		lesc.OptMitm(pp.Mitm),
		lesc.OptOobDataPresent(pp.Oob),
		lesc.OptTimeout(timeout),
	}
	if pp.MaxKeySize != 0 {
		opts = append(opts, lesc.OptMaxKeySize(pp.MaxKeySize))
	}

	return lesc.NewConfig(opts...)
}
