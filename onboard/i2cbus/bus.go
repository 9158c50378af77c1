// Package i2cbus provides the transports MD22 boards are driven through: the
// Linux i2c-dev interface, a UART bridge to an I2C capable MCU and an in
// memory simulation.
package i2cbus

import (
	"errors"
	"io"

	"github.com/CodedInternet/gomd22/md22"
)

var (
	ErrUnsupported = errors.New("i2c-dev is not supported on this platform")
	ErrNoDevice    = errors.New("no such device")
	ErrEmptyWrite  = errors.New("nothing to write")
)

// Transport is a bus that can be handed to md22.New and released when the
// controller shuts down.
type Transport interface {
	md22.Bus
	io.Closer
}

// addr7 converts an 8 bit write address (as printed on MD22 boards) into the
// 7 bit form. Addresses already in 7 bit form are returned unchanged.
func addr7(addr byte) uint16 {
	if addr > 0x7f {
		return uint16(addr >> 1)
	}
	return uint16(addr)
}
