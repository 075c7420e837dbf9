package main

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/rigado/lesc"
	"github.com/rigado/lesc/cache"
	"github.com/rigado/lesc/toolbox"
	"github.com/urfave/cli"
)

func oobCommand(c *cli.Context) error {
	a := lesc.AddressWithType{Addr: lesc.NewAddr(c.String("addr"))}
	if c.Bool("random") {
		a.Type = lesc.AddrTypeRandom
	}
	if _, err := a.Octets(); err != nil {
		return err
	}

	od, err := toolbox.GenerateOobData(toolbox.Reader)
	if err != nil {
		return err
	}
	rec := lesc.NewOobRecord(a, od.C, od.R)

	if fn := c.String("oob-cache"); fn != "" {
		if err := cache.New(fn).Store(a.Addr, rec, true); err != nil {
			return err
		}
	}

	if c.Bool("json") {
		b, err := jsoniter.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	fmt.Printf("address: %v\n", a)
	fmt.Printf("public:  %v\n", od.Keys.Public)
	fmt.Printf("confirm: %v\n", rec.Confirm)
	fmt.Printf("random:  %v\n", rec.Random)
	return nil
}
