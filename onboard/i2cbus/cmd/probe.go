package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/CodedInternet/gomd22/md22"
	"github.com/CodedInternet/gomd22/onboard/i2cbus"
)

// probe reads the firmware revision at every MD22 address on a bus.
func main() {
	dev := flag.String("dev", "/dev/i2c-1", "i2c-dev device to probe")
	bridge := flag.String("serial", "", "probe through a serial bridge on this port instead")
	flag.Parse()

	var bus i2cbus.Transport
	var err error
	if *bridge != "" {
		fmt.Println("Opening bridge on", *bridge)
		bus, err = i2cbus.OpenSerialBridge(*bridge, 0, 0)
	} else {
		fmt.Println("Opening", *dev)
		bus, err = i2cbus.Open(*dev)
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer bus.Close()

	buf := make([]byte, 1)
	for _, s := range md22.AddressSwitchStates {
		err := bus.WriteRead(s.Bits(), []byte{md22.RegSoftwareRevision.Addr()}, buf)
		if err != nil {
			fmt.Printf("0x%02x \t%-12s \t-\n", s.Bits(), s)
			continue
		}
		fmt.Printf("0x%02x \t%-12s \trev %d\n", s.Bits(), s, buf[0])
	}
}
