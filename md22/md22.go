// Package md22 drives the Devantech MD22 dual motor controller over I2C.
//
// Every operation is a single register addressed bus transaction. Speed, turn
// and acceleration bytes are forwarded unchecked; interpreting them for the
// active OperatingMode is left to the caller.
package md22

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Bus is the transport the driver is built on. Errors returned by the bus are
// handed back to the caller untouched.
type Bus interface {
	// Write sends b to the device at addr in a single transaction.
	Write(addr byte, b []byte) error
	// WriteRead sends w and then reads len(r) bytes into r without
	// releasing the bus in between.
	WriteRead(addr byte, w, r []byte) error
}

var (
	ErrInvalidAddress = errors.New("md22: invalid address switch state")
	ErrInvalidMode    = errors.New("md22: invalid operating mode")
)

// AddressSwitchState is the position of the four address select switches on
// the board. The value is the bus address the board answers on.
type AddressSwitchState uint8

const (
	OnOnOnOn    AddressSwitchState = 0xB0
	OffOnOnOn   AddressSwitchState = 0xB2
	OnOffOnOn   AddressSwitchState = 0xB4
	OffOffOnOn  AddressSwitchState = 0xB6
	OnOnOffOn   AddressSwitchState = 0xB8
	OffOnOffOn  AddressSwitchState = 0xBA
	OnOffOffOn  AddressSwitchState = 0xBC
	OffOffOffOn AddressSwitchState = 0xBE
)

// AddressSwitchStates lists every valid switch setting, lowest address first.
var AddressSwitchStates = []AddressSwitchState{
	OnOnOnOn, OffOnOnOn, OnOffOnOn, OffOffOnOn,
	OnOnOffOn, OffOnOffOn, OnOffOffOn, OffOffOffOn,
}

// Valid reports whether s is one of the eight switch settings.
func (s AddressSwitchState) Valid() bool {
	for _, st := range AddressSwitchStates {
		if s == st {
			return true
		}
	}
	return false
}

func (s AddressSwitchState) Bits() byte {
	return byte(s)
}

func (s AddressSwitchState) String() string {
	switch s {
	case OnOnOnOn:
		return "OnOnOnOn"
	case OffOnOnOn:
		return "OffOnOnOn"
	case OnOffOnOn:
		return "OnOffOnOn"
	case OffOffOnOn:
		return "OffOffOnOn"
	case OnOnOffOn:
		return "OnOnOffOn"
	case OffOnOffOn:
		return "OffOnOffOn"
	case OnOffOffOn:
		return "OnOffOffOn"
	case OffOffOffOn:
		return "OffOffOffOn"
	}
	return fmt.Sprintf("AddressSwitchState(0x%02x)", uint8(s))
}

// ParseAddressSwitchState accepts either a switch name such as "OffOnOnOn"
// (case and '-' separators are ignored) or the bus address, e.g. "0xb2".
func ParseAddressSwitchState(s string) (AddressSwitchState, error) {
	name := strings.ToLower(strings.Replace(s, "-", "", -1))
	for _, st := range AddressSwitchStates {
		if strings.ToLower(st.String()) == name {
			return st, nil
		}
	}

	if v, err := strconv.ParseUint(s, 0, 8); err == nil {
		for _, st := range AddressSwitchStates {
			if uint64(st) == v {
				return st, nil
			}
		}
	}

	return 0, fmt.Errorf("md22: unknown address switch state %q", s)
}

// OperatingMode selects how the speed registers are interpreted.
type OperatingMode uint8

const (
	// Mode0 (default) treats speeds as unsigned: 0 full reverse, 128 stop,
	// 255 full forward.
	Mode0 OperatingMode = iota
	// Mode1 treats speeds as signed: -128 full reverse, 0 stop, 127 full
	// forward.
	Mode1
)

func (m OperatingMode) Valid() bool {
	return m == Mode0 || m == Mode1
}

func (m OperatingMode) Bits() byte {
	return byte(m)
}

// IsTurnMode reports whether the turn register steers both motors. Neither
// supported mode does.
func (m OperatingMode) IsTurnMode() bool {
	return false
}

func (m OperatingMode) String() string {
	return fmt.Sprintf("mode%d", uint8(m))
}

// ParseOperatingMode accepts "0", "1", "mode0" or "mode1".
func ParseOperatingMode(s string) (OperatingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "mode0":
		return Mode0, nil
	case "1", "mode1":
		return Mode1, nil
	}
	return 0, fmt.Errorf("md22: unknown operating mode %q", s)
}

// MD22 is a single controller board. It owns its Bus; the methods are not
// safe for concurrent use.
type MD22 struct {
	bus     Bus
	mode    OperatingMode
	address byte
}

// New creates a driver for the board at the given switch setting and puts it
// into a known state: the mode is written, then acceleration, speed and turn
// are zeroed. The first bus error aborts initialisation and is returned. An
// unknown switch setting or mode is rejected before the bus is touched.
func New(bus Bus, mode OperatingMode, address AddressSwitchState) (*MD22, error) {
	if !address.Valid() {
		return nil, ErrInvalidAddress
	}
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}

	m := &MD22{
		bus:     bus,
		mode:    mode,
		address: address.Bits(),
	}

	if err := m.SetMode(mode); err != nil {
		return nil, err
	}
	if err := m.SetAcceleration(0); err != nil {
		return nil, err
	}
	if err := m.SetSpeed(0); err != nil {
		return nil, err
	}
	if err := m.SetTurn(0); err != nil {
		return nil, err
	}

	return m, nil
}

// Address returns the bus address of the board.
func (m *MD22) Address() byte {
	return m.address
}

// Mode returns the last operating mode successfully written to the board.
func (m *MD22) Mode() OperatingMode {
	return m.mode
}

// SetMode writes the operating mode. The cached mode only changes when the
// write succeeds.
func (m *MD22) SetMode(mode OperatingMode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	if err := m.write(RegMode, mode.Bits()); err != nil {
		return err
	}
	m.mode = mode
	return nil
}

// SetSpeed sets the speed register (motor 1).
func (m *MD22) SetSpeed(speed byte) error {
	return m.write(RegSpeed, speed)
}

// SetTurn sets the turn register (motor 2).
func (m *MD22) SetTurn(turn byte) error {
	return m.write(RegTurn, turn)
}

// SetAcceleration sets the acceleration register. The board ramps between
// speeds taking acceleration * 64us per speed step.
func (m *MD22) SetAcceleration(acceleration byte) error {
	return m.write(RegAcceleration, acceleration)
}

// SoftwareRevision reads the firmware revision of the board.
func (m *MD22) SoftwareRevision() (byte, error) {
	buf := make([]byte, 1)
	if err := m.bus.WriteRead(m.address, []byte{RegSoftwareRevision.Addr()}, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (m *MD22) write(reg Register, value byte) error {
	return m.bus.Write(m.address, []byte{reg.Addr(), value})
}
