package i2cbus

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

var errTimeout = errors.New("serial: timeout")

type testPort struct {
	tx     bytes.Buffer
	rx     *strings.Reader
	closed bool
}

func (p *testPort) Read(b []byte) (int, error)  { return p.rx.Read(b) }
func (p *testPort) Write(b []byte) (int, error) { return p.tx.Write(b) }
func (p *testPort) Close() error {
	p.closed = true
	return nil
}

// lagPort times out on its first read, then replays everything the bridge
// sent late.
type lagPort struct {
	testPort
	lagged bool
}

func (p *lagPort) Read(b []byte) (int, error) {
	if !p.lagged {
		p.lagged = true
		return 0, errTimeout
	}
	return p.testPort.Read(b)
}

func newTestBridge(replies string) (*SerialBridge, *testPort) {
	port := &testPort{rx: strings.NewReader(replies)}
	return NewSerialBridge(port), port
}

func TestSerialBridge(t *testing.T) {
	Convey("writes are sent as W lines", t, func() {
		bridge, port := newTestBridge("01 OK\n")

		err := bridge.Write(0xB0, []byte{0x01, 0xff})
		So(err, ShouldBeNil)
		So(port.tx.String(), ShouldEqual, "01 Wb0 01ff\n")
	})

	Convey("write-then-read decodes the reply", t, func() {
		bridge, port := newTestBridge("01 OK 09\n")

		buf := make([]byte, 1)
		err := bridge.WriteRead(0xB2, []byte{0x07}, buf)
		So(err, ShouldBeNil)
		So(buf[0], ShouldEqual, 9)
		So(port.tx.String(), ShouldEqual, "01 Rb2 1 07\n")
	})

	Convey("a short read is an error", t, func() {
		bridge, _ := newTestBridge("01 OK 0102\n")

		err := bridge.WriteRead(0xB2, []byte{0x07}, make([]byte, 1))
		So(err, ShouldNotBeNil)
	})

	Convey("bridge errors are reported", t, func() {
		bridge, _ := newTestBridge("01 ERR nack\n")

		err := bridge.Write(0xB0, []byte{0x00, 0x01})
		So(err, ShouldResemble, BridgeError{Msg: "nack"})
	})

	Convey("garbage replies are rejected", t, func() {
		bridge, _ := newTestBridge("01 HELLO\n")
		So(bridge.Write(0xB0, []byte{0x00, 0x01}), ShouldNotBeNil)
	})

	Convey("every request carries a new sequence number", t, func() {
		bridge, port := newTestBridge("01 OK\n02 OK\n")

		So(bridge.Write(0xB0, []byte{0x01, 0x10}), ShouldBeNil)
		So(bridge.Write(0xB0, []byte{0x02, 0x20}), ShouldBeNil)
		So(port.tx.String(), ShouldEqual, "01 Wb0 0110\n02 Wb0 0220\n")
	})

	Convey("given a reply that arrives after its request timed out", t, func() {
		port := &lagPort{}
		bridge := NewSerialBridge(port)

		Convey("the late reply does not answer the next write", func() {
			port.rx = strings.NewReader("01 OK\n02 ERR nack\n")

			So(bridge.Write(0xB0, []byte{0x01, 0x10}), ShouldEqual, errTimeout)
			So(bridge.Write(0xB2, []byte{0x01, 0x10}), ShouldResemble, BridgeError{Msg: "nack"})
		})

		Convey("the late reply does not answer the next read", func() {
			port.rx = strings.NewReader("01 OK 05\n02 OK 09\n")

			So(bridge.WriteRead(0xB0, []byte{0x07}, make([]byte, 1)), ShouldEqual, errTimeout)

			buf := make([]byte, 1)
			So(bridge.WriteRead(0xB2, []byte{0x07}, buf), ShouldBeNil)
			So(buf[0], ShouldEqual, 9)
		})
	})

	Convey("an empty write is refused before touching the port", t, func() {
		bridge, port := newTestBridge("")
		So(bridge.Write(0xB0, nil), ShouldEqual, ErrEmptyWrite)
		So(port.tx.Len(), ShouldEqual, 0)
	})

	Convey("close closes the port", t, func() {
		bridge, port := newTestBridge("")
		So(bridge.Close(), ShouldBeNil)
		So(port.closed, ShouldBeTrue)
	})
}
