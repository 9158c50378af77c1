package md22

import "fmt"

// Register is a single byte register address on the MD22.
type Register uint8

const (
	RegMode             Register = 0x00
	RegSpeed            Register = 0x01 // motor 1 speed in modes 0 and 1
	RegTurn             Register = 0x02 // motor 2 speed in modes 0 and 1
	RegAcceleration     Register = 0x03
	RegSoftwareRevision Register = 0x07
)

// Addr returns the register address sent as the first byte of a transaction.
func (r Register) Addr() byte {
	return byte(r)
}

// IsReadOnly reports whether the register can only be read back.
func (r Register) IsReadOnly() bool {
	switch r {
	case RegSoftwareRevision:
		return true
	default:
		return false
	}
}

func (r Register) String() string {
	switch r {
	case RegMode:
		return "mode"
	case RegSpeed:
		return "speed"
	case RegTurn:
		return "turn"
	case RegAcceleration:
		return "acceleration"
	case RegSoftwareRevision:
		return "software revision"
	}

	return fmt.Sprintf("register(0x%02x)", uint8(r))
}
