// Command lescsim runs LE Secure Connections pairing between two simulated
// devices joined by an in-memory L2CAP link.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rigado/lesc"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "lescsim"
	app.Usage = "simulate LE Secure Connections pairing"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "panic, fatal, error, warn, info, debug or trace",
		},
	}
	app.Before = func(c *cli.Context) error {
		return lesc.SetLogLevel(c.GlobalString("log-level"))
	}

	defaultCache := filepath.Join(os.TempDir(), "lescsim-oob.json")

	app.Commands = []cli.Command{
		cli.Command{
			Name:   "pair",
			Usage:  "Pair a simulated central with a simulated peripheral.",
			Action: pairCommand,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "profile",
					Usage: "JSON file describing both devices",
				},
				cli.StringFlag{
					Name:  "central-iocap",
					Value: lesc.IoCapNoInputNoOutput.String(),
					Usage: "IO capability of the central",
				},
				cli.StringFlag{
					Name:  "peripheral-iocap",
					Value: lesc.IoCapNoInputNoOutput.String(),
					Usage: "IO capability of the peripheral",
				},
				cli.BoolFlag{
					Name:  "mitm",
					Usage: "request MITM protection on both sides",
				},
				cli.BoolFlag{
					Name:  "oob",
					Usage: "exchange OOB data in both directions before pairing",
				},
				cli.StringFlag{
					Name:  "oob-cache",
					Value: defaultCache,
					Usage: "file used as the out of band channel",
				},
				cli.BoolFlag{
					Name:  "reject",
					Usage: "central answers no to numeric comparison",
				},
				cli.BoolFlag{
					Name:  "prompt",
					Usage: "peripheral asks before answering the pairing request",
				},
				cli.StringFlag{
					Name:  "passkey",
					Usage: "passkey typed on devices that only have a keyboard",
				},
				cli.DurationFlag{
					Name:  "timeout",
					Value: lesc.DefaultTimeout,
					Usage: "SMP timeout",
				},
				cli.BoolFlag{
					Name:  "json",
					Usage: "print the result as JSON",
				},
			},
		},
		cli.Command{
			Name:   "oob",
			Usage:  "Generate LE Secure Connections OOB data for an address.",
			Action: oobCommand,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "addr",
					Value: "c0:ff:ee:00:00:01",
					Usage: "device address",
				},
				cli.BoolFlag{
					Name:  "random",
					Usage: "address is a random address",
				},
				cli.StringFlag{
					Name:  "oob-cache",
					Usage: "also store the record in this file",
				},
				cli.BoolFlag{
					Name:  "json",
					Usage: "print the record as JSON",
				},
			},
		},
	}

	start := time.Now()
	err := app.Run(os.Args)
	lesc.GetLogger().Debugf("done in %v", time.Since(start))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
