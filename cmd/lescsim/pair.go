package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/lesc"
	"github.com/rigado/lesc/cache"
	"github.com/rigado/lesc/l2cap"
	"github.com/rigado/lesc/smp"
	"github.com/rigado/lesc/toolbox"
	"github.com/urfave/cli"
)

type peerResult struct {
	Role   string `json:"role"`
	LTK    string `json:"ltk,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type pairResult struct {
	Method     string     `json:"method"`
	Match      bool       `json:"match"`
	Elapsed    string     `json:"elapsed"`
	Central    peerResult `json:"central"`
	Peripheral peerResult `json:"peripheral"`
}

func newPeerResult(role smp.Role, r smp.Result) peerResult {
	pr := peerResult{Role: role.String()}
	if r.Err == nil {
		pr.LTK = r.LTK.String()
		return pr
	}

	pr.Error = r.Err.Error()
	if f, ok := smp.AsFailure(r.Err); ok {
		pr.Kind = f.Kind.String()
		if f.Reason != 0 {
			pr.Reason = smp.ReasonString(f.Reason)
		}
	}
	return pr
}

func parsePasskey(c *cli.Context) (*uint32, error) {
	s := c.String("passkey")
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v > 999999 {
		return nil, fmt.Errorf("invalid passkey %q", s)
	}
	pk := uint32(v)
	return &pk, nil
}

// publishOob generates OOB data for the owner of a and hands it to the other
// side through the cache.
func publishOob(oc lesc.OobCache, a lesc.AddressWithType) (*toolbox.OobData, *smp.RemoteOobData, error) {
	od, err := toolbox.GenerateOobData(toolbox.Reader)
	if err != nil {
		return nil, nil, err
	}

	if err := oc.Store(a.Addr, lesc.NewOobRecord(a, od.C, od.R), true); err != nil {
		return nil, nil, err
	}

	rec, err := oc.Load(a.Addr)
	if err != nil {
		return nil, nil, err
	}

	cv, rv, err := rec.Values()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "oob record for %v", a)
	}
	return od, &smp.RemoteOobData{C: cv, R: rv}, nil
}

func pairCommand(c *cli.Context) error {
	p, err := loadProfile(c)
	if err != nil {
		return err
	}

	passkey, err := parsePasskey(c)
	if err != nil {
		return err
	}

	timeout := c.Duration("timeout")
	cc, err := p.Central.config(timeout)
	if err != nil {
		return errors.Wrap(err, "central")
	}
	pc, err := p.Peripheral.config(timeout)
	if err != nil {
		return errors.Wrap(err, "peripheral")
	}

	ca, pa := p.Central.address(), p.Peripheral.address()
	cInfo := smp.NewInitialInformations(smp.RoleCentral, ca, pa, cc)
	cInfo.RemoteName = p.Peripheral.Name
	pInfo := smp.NewInitialInformations(smp.RolePeripheral, pa, ca, pc)
	pInfo.RemoteName = p.Central.Name
	pInfo.RemotelyInitiated = p.Peripheral.Prompt

	if p.Central.Oob || p.Peripheral.Oob {
		oc := cache.New(c.String("oob-cache"))
		if p.Central.Oob {
			pInfo.MyOobData, cInfo.RemoteOobData, err = publishOob(oc, pa)
			if err != nil {
				return err
			}
		}
		if p.Peripheral.Oob {
			cInfo.MyOobData, pInfo.RemoteOobData, err = publishOob(oc, ca)
			if err != nil {
				return err
			}
		}
	}

	pipe := l2cap.NewPipe()
	defer pipe.Close()

	cm := smp.NewManager(pipe.Central())
	pm := smp.NewManager(pipe.Peripheral())

	log := lesc.GetLogger()
	cInfo.UI = &simUI{
		log:     log.ChildLogger(map[string]interface{}{"ui": p.Central.Name}),
		self:    cm,
		peer:    pm,
		reject:  p.Central.Reject,
		passkey: passkey,
	}
	pInfo.UI = &simUI{
		log:     log.ChildLogger(map[string]interface{}{"ui": p.Peripheral.Name}),
		self:    pm,
		peer:    cm,
		reject:  p.Peripheral.Reject,
		passkey: passkey,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*timeout+lesc.DefaultUserTimeout)
	defer cancel()

	start := time.Now()
	_, pres, err := pm.Start(ctx, pInfo)
	if err != nil {
		return errors.Wrap(err, "peripheral")
	}
	ch, cres, err := cm.Start(ctx, cInfo)
	if err != nil {
		pm.Cancel()
		<-pres
		return errors.Wrap(err, "central")
	}
	cr, pr := <-cres, <-pres

	out := pairResult{
		Method:     ch.Method().String(),
		Match:      cr.Err == nil && pr.Err == nil && cr.LTK == pr.LTK,
		Elapsed:    time.Since(start).String(),
		Central:    newPeerResult(smp.RoleCentral, cr),
		Peripheral: newPeerResult(smp.RolePeripheral, pr),
	}

	if c.Bool("json") {
		b, err := jsoniter.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
	} else {
		fmt.Printf("method:     %v\n", out.Method)
		printPeer(out.Central)
		printPeer(out.Peripheral)
		fmt.Printf("elapsed:    %v\n", out.Elapsed)
	}

	if !out.Match {
		return cli.NewExitError("pairing failed", 1)
	}
	return nil
}

func printPeer(r peerResult) {
	if r.Error != "" {
		fmt.Printf("%-11s %v\n", r.Role+":", r.Error)
		return
	}
	fmt.Printf("%-11s ltk %v\n", r.Role+":", r.LTK)
}
