package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/CodedInternet/gomd22/md22"
	"github.com/CodedInternet/gomd22/onboard"
	"github.com/abiosoft/ishell"
)

var errUsage = errors.New("incorrect number of arguments")

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	return uint8(v), err
}

// byteCmd builds a "<cmd> <unit> <value>" command writing one register.
func byteCmd(name, help string, device onboard.Device, set func(string, uint8) error) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      name,
		Help:      help,
		Completer: unitNames(device),
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(errUsage)
				return
			}
			v, err := parseByte(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			if err := set(c.Args[0], v); err != nil {
				c.Err(err)
				return
			}
			c.Printf("%s %s = %d\n", c.Args[0], name, v)
		},
	}
}

func unitNames(device onboard.Device) func([]string) []string {
	return func([]string) []string {
		return device.Units()
	}
}

func printState(c *ishell.Context, s onboard.UnitState) {
	c.Printf("%-10s 0x%02x %s speed:%3d turn:%3d accel:%3d rev:%d\n",
		s.Name, s.Address, s.Mode, s.Speed, s.Turn, s.Acceleration, s.Revision)
}

func newShell(device onboard.Device) *ishell.Shell {
	shell := ishell.New()
	shell.Println("MD22 development shell")

	shell.AddCmd(&ishell.Cmd{
		Name: "units",
		Help: "list configured units",
		Func: func(c *ishell.Context) {
			for _, s := range device.States() {
				printState(c, s)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "state",
		Help:      "state <unit>",
		Completer: unitNames(device),
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(errUsage)
				return
			}
			s, err := device.State(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			printState(c, s)
		},
	})

	shell.AddCmd(byteCmd("speed", "speed <unit> <0-255>", device, device.SetSpeed))
	shell.AddCmd(byteCmd("turn", "turn <unit> <0-255>", device, device.SetTurn))
	shell.AddCmd(byteCmd("accel", "accel <unit> <0-255>", device, device.SetAcceleration))

	shell.AddCmd(&ishell.Cmd{
		Name:      "mode",
		Help:      "mode <unit> <0|1>",
		Completer: unitNames(device),
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(errUsage)
				return
			}
			mode, err := md22.ParseOperatingMode(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			if err := device.SetMode(c.Args[0], mode); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "drive",
		Help:      "drive <unit> <throttle -1..1> <steer -1..1>",
		Completer: unitNames(device),
		Func: func(c *ishell.Context) {
			if len(c.Args) != 3 {
				c.Err(errUsage)
				return
			}
			throttle, err := strconv.ParseFloat(c.Args[1], 64)
			if err != nil {
				c.Err(err)
				return
			}
			steer, err := strconv.ParseFloat(c.Args[2], 64)
			if err != nil {
				c.Err(err)
				return
			}
			if err := device.Drive(c.Args[0], throttle, steer); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "stop",
		Help:      "stop [unit]",
		Completer: unitNames(device),
		Func: func(c *ishell.Context) {
			var err error
			if len(c.Args) == 0 {
				err = device.StopAll()
			} else {
				err = device.Stop(c.Args[0])
			}
			if err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "rev",
		Help:      "rev <unit>",
		Completer: unitNames(device),
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(errUsage)
				return
			}
			rev, err := device.Revision(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%s firmware revision %d (%s)\n", c.Args[0], rev, md22.RevisionVersion(rev))
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "createsuperuser",
		Help: "createsuperuser <email> <password>",
		Func: func(c *ishell.Context) {
			// disable the '>>>' for cleaner same line input.
			c.ShowPrompt(false)
			defer c.ShowPrompt(true) // yes, revert when done.

			var email string
			if len(c.Args) >= 1 {
				email = c.Args[0]
			} else {
				c.Print("Email: ")
				email = c.ReadLine()
			}

			var password string
			if len(c.Args) >= 2 {
				password = c.Args[1]
			} else {
				c.Print("Password: ")
				password = c.ReadPassword()
			}

			if err := createUser(email, password, true); err != nil {
				c.Err(fmt.Errorf("unable to create user: %v", err))
				return
			}

			c.Println("Superuser created")
		},
	})

	return shell
}
