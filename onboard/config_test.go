package onboard

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CodedInternet/gomd22/md22"
	. "github.com/CodedInternet/gomd22/onboard/errors"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v2"
)

const testYaml = `
version: 1
buses:
  main:
    kind: i2c-dev
    device: /dev/i2c-1
  bridge:
    kind: serial
    device: /dev/ttyUSB0
    baud: 57600
    timeout: 250ms
units:
  drive:
    bus: main
    switches: OnOnOnOn
    mode: mode1
    acceleration: 20
    min_revision: ">= 2"
  winch:
    bus: bridge
    switches: 0xb2
`

func TestConfigParsing(t *testing.T) {
	var config Config

	Convey("parsing is successful", t, func() {
		err := yaml.Unmarshal([]byte(testYaml), &config)
		So(err, ShouldBeNil)
		So(config.Validate(), ShouldBeNil)

		Convey("units are decoded", func() {
			drive := config.Units["drive"]
			So(drive.Bus, ShouldEqual, "main")
			So(drive.Switches, ShouldEqual, md22.OnOnOnOn)
			So(drive.Mode, ShouldEqual, md22.Mode1)
			So(drive.Acceleration, ShouldEqual, 20)
			So(drive.MinRevision, ShouldEqual, ">= 2")

			winch := config.Units["winch"]
			So(winch.Switches, ShouldEqual, md22.OffOnOnOn)
			So(winch.Mode, ShouldEqual, md22.Mode0)
		})

		Convey("buses are decoded", func() {
			So(config.Buses["bridge"].Baud, ShouldEqual, 57600)
			So(config.Buses["bridge"].Timeout, ShouldEqual, 250*time.Millisecond)
		})

		Convey("config round trips", func() {
			out, err := yaml.Marshal(config)
			So(err, ShouldBeNil)

			var again Config
			So(yaml.Unmarshal(out, &again), ShouldBeNil)
			So(again.Units, ShouldResemble, config.Units)
		})
	})

	Convey("bad switch names are rejected", t, func() {
		err := yaml.Unmarshal([]byte("units:\n  x:\n    switches: sideways\n"), &Config{})
		So(err, ShouldNotBeNil)
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("given a minimal config", t, func() {
		config := Config{
			Version: CONFIG_VERSION,
			Buses:   map[string]BusConfig{"sim": {Kind: BUS_SIM}},
			Units: map[string]UnitConfig{
				"a": {Bus: "sim", Switches: md22.OnOnOnOn},
			},
		}
		So(config.Validate(), ShouldBeNil)

		Convey("wrong versions are refused", func() {
			config.Version = 2
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("undefined buses are refused", func() {
			config.Units["b"] = UnitConfig{Bus: "nope", Switches: md22.OffOnOnOn}
			So(config.Validate(), ShouldResemble, BusNameError{Name: "nope", Unit: "b"})
		})

		Convey("unknown bus kinds are refused", func() {
			config.Buses["x"] = BusConfig{Kind: "spi"}
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("switch settings outside the table are refused", func() {
			config.Units["b"] = UnitConfig{Bus: "sim", Switches: md22.AddressSwitchState(0x10)}
			So(config.Validate(), ShouldResemble, ConfigValueError{Unit: "b", Field: "switches", Err: md22.ErrInvalidAddress})
		})

		Convey("two units on one address are refused", func() {
			config.Units["b"] = UnitConfig{Bus: "sim", Switches: md22.OnOnOnOn}
			err := config.Validate()
			So(err, ShouldHaveSameTypeAs, ConfigValueError{})
		})
	})
}

func TestLoadConfig(t *testing.T) {
	Convey("configs load from disk", t, func() {
		dir, err := ioutil.TempDir("", "md22")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		filename := filepath.Join(dir, "md22.yaml")
		So(ioutil.WriteFile(filename, []byte(testYaml), 0644), ShouldBeNil)

		config, err := LoadConfig(filename)
		So(err, ShouldBeNil)
		So(len(config.Units), ShouldEqual, 2)

		Convey("missing files error", func() {
			_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
