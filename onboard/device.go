package onboard

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/CodedInternet/gomd22/md22"
	. "github.com/CodedInternet/gomd22/onboard/errors"
	"github.com/CodedInternet/gomd22/onboard/i2cbus"
)

// Device is the set of operations exposed to the shell and the API.
type Device interface {
	Units() []string
	SetSpeed(name string, speed uint8) error
	SetTurn(name string, turn uint8) error
	SetAcceleration(name string, acceleration uint8) error
	SetMode(name string, mode md22.OperatingMode) error
	Drive(name string, throttle, steer float64) error
	Stop(name string) error
	StopAll() error
	Revision(name string) (uint8, error)
	State(name string) (UnitState, error)
	States() []UnitState
}

// BusOpener creates the transport for a configured bus.
type BusOpener func(conf BusConfig) (i2cbus.Transport, error)

type unit struct {
	driver *md22.MD22
	state  UnitState
}

// Controller owns every configured bus and MD22 board. Calls are serialised
// so boards can be commanded from the shell and the API at the same time.
type Controller struct {
	lock    sync.Mutex
	units   map[string]*unit
	buses   map[string]i2cbus.Transport
	journal *Journal
	open    BusOpener
}

// OpenBus is the default BusOpener.
func OpenBus(conf BusConfig) (i2cbus.Transport, error) {
	switch conf.Kind {
	case BUS_I2C_DEV:
		return i2cbus.Open(conf.Device)
	case BUS_SERIAL:
		return i2cbus.OpenSerialBridge(conf.Device, conf.Baud, conf.Timeout)
	case BUS_SIM:
		return i2cbus.NewSimBus(), nil
	}
	return nil, fmt.Errorf("unknown bus kind %q", conf.Kind)
}

// NewController opens the buses and initialises every unit in config. The
// journal may be nil. A nil opener selects OpenBus.
func NewController(config Config, journal *Journal, open BusOpener) (c *Controller, err error) {
	if err = config.Validate(); err != nil {
		return
	}
	if open == nil {
		open = OpenBus
	}

	c = &Controller{
		units:   make(map[string]*unit, len(config.Units)),
		buses:   make(map[string]i2cbus.Transport),
		journal: journal,
		open:    open,
	}

	defer func() {
		if err != nil {
			c.Close()
			c = nil
		}
	}()

	names := make([]string, 0, len(config.Units))
	for name := range config.Units {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		uConf := config.Units[name]

		var bus i2cbus.Transport
		bus, err = c.getBus(uConf.Bus, config.Buses[uConf.Bus])
		if err != nil {
			return
		}

		if sim, ok := bus.(*i2cbus.SimBus); ok {
			sim.AddDevice(uConf.Switches.Bits(), SIM_REVISION)
		}

		if err = c.addUnit(name, bus, uConf); err != nil {
			err = fmt.Errorf("unit %s: %v", name, err)
			return
		}
	}

	return
}

func (c *Controller) addUnit(name string, bus i2cbus.Transport, conf UnitConfig) error {
	driver, err := md22.New(bus, conf.Mode, conf.Switches)
	if err != nil {
		return err
	}

	if conf.Acceleration != 0 {
		if err := driver.SetAcceleration(conf.Acceleration); err != nil {
			return err
		}
	}

	rev, err := driver.CheckRevision(conf.MinRevision)
	if err != nil {
		return err
	}

	u := &unit{
		driver: driver,
		state: UnitState{
			Name:         name,
			Address:      driver.Address(),
			Mode:         conf.Mode,
			Acceleration: conf.Acceleration,
			Revision:     rev,
		},
	}

	c.units[name] = u
	c.record(u)

	return nil
}

func (c *Controller) getBus(name string, conf BusConfig) (bus i2cbus.Transport, err error) {
	bus, ok := c.buses[name]
	if !ok {
		// need to create bus
		bus, err = c.open(conf)
		if err != nil {
			return nil, fmt.Errorf("bus %s: %v", name, err)
		}
		c.buses[name] = bus
	}

	return
}

func (c *Controller) lookup(name string) (*unit, error) {
	u, ok := c.units[name]
	if !ok {
		return nil, UnitNameError{Name: name}
	}
	return u, nil
}

// record timestamps the state and stores it in the journal, if any. Journal
// failures are logged but never fail a command that reached the board.
func (c *Controller) record(u *unit) {
	u.state.Updated = time.Now().UTC()

	if c.journal == nil {
		return
	}
	if err := c.journal.Record(u.state); err != nil {
		log.Printf("journal: unable to record %s: %v", u.state.Name, err)
	}
}

// do runs f against the named unit under the controller lock and records
// the state when f succeeds.
func (c *Controller) do(name string, f func(u *unit) error) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	u, err := c.lookup(name)
	if err != nil {
		return err
	}

	if err := f(u); err != nil {
		return err
	}

	c.record(u)
	return nil
}

func (c *Controller) Units() []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	names := make([]string, 0, len(c.units))
	for name := range c.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Controller) SetSpeed(name string, speed uint8) error {
	return c.do(name, func(u *unit) error {
		if err := u.driver.SetSpeed(speed); err != nil {
			return err
		}
		u.state.Speed = speed
		return nil
	})
}

func (c *Controller) SetTurn(name string, turn uint8) error {
	return c.do(name, func(u *unit) error {
		if err := u.driver.SetTurn(turn); err != nil {
			return err
		}
		u.state.Turn = turn
		return nil
	})
}

func (c *Controller) SetAcceleration(name string, acceleration uint8) error {
	return c.do(name, func(u *unit) error {
		if err := u.driver.SetAcceleration(acceleration); err != nil {
			return err
		}
		u.state.Acceleration = acceleration
		return nil
	})
}

// SetMode switches the unit's mode. The speed and turn registers keep their
// raw values, so callers normally stop the unit first.
func (c *Controller) SetMode(name string, mode md22.OperatingMode) error {
	return c.do(name, func(u *unit) error {
		if err := u.driver.SetMode(mode); err != nil {
			return err
		}
		u.state.Mode = u.driver.Mode()
		return nil
	})
}

// Drive mixes throttle and steer (both -1 to 1) into the two motors: the
// speed register drives the left motor and the turn register the right.
func (c *Controller) Drive(name string, throttle, steer float64) error {
	return c.do(name, func(u *unit) error {
		left, right := Mix(throttle, steer)
		mode := u.driver.Mode()

		l, r := EncodeSpeed(mode, left), EncodeSpeed(mode, right)
		if err := u.driver.SetSpeed(l); err != nil {
			return err
		}
		u.state.Speed = l

		if err := u.driver.SetTurn(r); err != nil {
			return err
		}
		u.state.Turn = r
		return nil
	})
}

// Stop brings both motors of a unit to a standstill for its current mode.
func (c *Controller) Stop(name string) error {
	return c.Drive(name, 0, 0)
}

// StopAll attempts to stop every unit and returns the first error.
func (c *Controller) StopAll() (err error) {
	for _, name := range c.Units() {
		if e := c.Stop(name); e != nil && err == nil {
			err = e
		}
	}
	return
}

func (c *Controller) Revision(name string) (rev uint8, err error) {
	err = c.do(name, func(u *unit) error {
		r, err := u.driver.SoftwareRevision()
		if err != nil {
			return err
		}
		rev, u.state.Revision = r, r
		return nil
	})
	return
}

func (c *Controller) State(name string) (UnitState, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	u, err := c.lookup(name)
	if err != nil {
		return UnitState{}, err
	}
	return u.state, nil
}

func (c *Controller) States() []UnitState {
	names := c.Units()

	c.lock.Lock()
	defer c.lock.Unlock()

	states := make([]UnitState, 0, len(names))
	for _, name := range names {
		if u, ok := c.units[name]; ok {
			states = append(states, u.state)
		}
	}
	return states
}

// Close releases every bus. Boards keep their last commanded values.
func (c *Controller) Close() (err error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	for name, bus := range c.buses {
		if e := bus.Close(); e != nil && err == nil {
			err = fmt.Errorf("bus %s: %v", name, e)
		}
	}
	return
}
