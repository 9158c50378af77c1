package onboard

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/CodedInternet/gomd22/md22"
	. "github.com/CodedInternet/gomd22/onboard/errors"
	"gopkg.in/yaml.v2"
)

const (
	CONFIG_VERSION = 1

	BUS_I2C_DEV = "i2c-dev"
	BUS_SERIAL  = "serial"
	BUS_SIM     = "sim"
)

type Config struct {
	Version int
	Buses   map[string]BusConfig
	Units   map[string]UnitConfig
}

type BusConfig struct {
	Kind    string        `yaml:"kind"`
	Device  string        `yaml:"device"`
	Baud    int           `yaml:"baud,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

type UnitConfig struct {
	Bus          string
	Switches     md22.AddressSwitchState
	Mode         md22.OperatingMode
	Acceleration uint8
	MinRevision  string
}

type YAMLUnit struct {
	Bus          string `yaml:"bus"`
	Switches     string `yaml:"switches"`
	Mode         string `yaml:"mode"`
	Acceleration uint8  `yaml:"acceleration,omitempty"`
	MinRevision  string `yaml:"min_revision,omitempty"`
}

func (u UnitConfig) MarshalYAML() (interface{}, error) {
	return &YAMLUnit{
		Bus:          u.Bus,
		Switches:     u.Switches.String(),
		Mode:         u.Mode.String(),
		Acceleration: u.Acceleration,
		MinRevision:  u.MinRevision,
	}, nil
}

func (u *UnitConfig) UnmarshalYAML(unmarshal func(interface{}) error) (err error) {
	var yu YAMLUnit
	if err = unmarshal(&yu); err != nil {
		return
	}

	u.Bus = yu.Bus
	u.Acceleration = yu.Acceleration
	u.MinRevision = yu.MinRevision

	if u.Switches, err = md22.ParseAddressSwitchState(yu.Switches); err != nil {
		return
	}

	u.Mode = md22.Mode0
	if yu.Mode != "" {
		u.Mode, err = md22.ParseOperatingMode(yu.Mode)
	}
	return
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(filename string) (config Config, err error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return
	}

	if err = yaml.Unmarshal(raw, &config); err != nil {
		return
	}

	err = config.Validate()
	return
}

// Validate checks the version and that every unit refers to a known bus.
func (c Config) Validate() error {
	if c.Version != CONFIG_VERSION {
		return fmt.Errorf("unable to work with version %d", c.Version)
	}

	for name, b := range c.Buses {
		switch b.Kind {
		case BUS_I2C_DEV, BUS_SERIAL, BUS_SIM:
		default:
			return fmt.Errorf("bus %s: unknown kind %q", name, b.Kind)
		}
	}

	seen := make(map[string]string)
	for name, u := range c.Units {
		if _, ok := c.Buses[u.Bus]; !ok {
			return BusNameError{Name: u.Bus, Unit: name}
		}
		if !u.Switches.Valid() {
			return ConfigValueError{Unit: name, Field: "switches", Err: md22.ErrInvalidAddress}
		}

		key := fmt.Sprintf("%s/%02x", u.Bus, u.Switches.Bits())
		if other, ok := seen[key]; ok {
			return ConfigValueError{
				Unit:  name,
				Field: "switches",
				Err:   fmt.Errorf("%s already used by %s", u.Switches, other),
			}
		}
		seen[key] = name
	}

	return nil
}
