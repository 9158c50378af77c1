package i2cbus

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/serial"
)

const (
	BRIDGE_BAUD    = 115200
	BRIDGE_TIMEOUT = 500 * time.Millisecond
)

// BridgeError is an error reported by the bridge MCU itself, typically a NACK
// from the addressed device.
type BridgeError struct {
	Msg string
}

func (err BridgeError) Error() string {
	return fmt.Sprintf("i2c bridge: %s", err.Msg)
}

// SerialBridge forwards transactions to a microcontroller over a UART. The
// MCU runs them on its own I2C peripheral and answers with one line echoing
// the two digit sequence number of the request:
//
//	<seq> W<addr> <hex data>       -> <seq> OK
//	<seq> R<addr> <n> <hex data>   -> <seq> OK <hex n bytes>
//	any failure                    -> <seq> ERR <reason>
//
// Replies carrying another sequence number are stale answers to requests
// that timed out and are discarded.
type SerialBridge struct {
	port io.ReadWriteCloser
	rx   *bufio.Reader
	seq  uint8
	lock sync.Mutex
}

// OpenSerialBridge opens the serial device at address. A zero baud or
// timeout selects the defaults.
func OpenSerialBridge(address string, baud int, timeout time.Duration) (*SerialBridge, error) {
	if baud == 0 {
		baud = BRIDGE_BAUD
	}
	if timeout == 0 {
		timeout = BRIDGE_TIMEOUT
	}

	port, err := serial.Open(&serial.Config{
		Address:  address,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  timeout,
	})
	if err != nil {
		return nil, err
	}

	return NewSerialBridge(port), nil
}

// NewSerialBridge wraps an already open port.
func NewSerialBridge(port io.ReadWriteCloser) *SerialBridge {
	return &SerialBridge{
		port: port,
		rx:   bufio.NewReader(port),
	}
}

func (s *SerialBridge) Write(addr byte, b []byte) error {
	if len(b) == 0 {
		return ErrEmptyWrite
	}

	_, err := s.exchange(fmt.Sprintf("W%02x %s", addr, hex.EncodeToString(b)))
	return err
}

func (s *SerialBridge) WriteRead(addr byte, w, r []byte) error {
	resp, err := s.exchange(fmt.Sprintf("R%02x %d %s", addr, len(r), hex.EncodeToString(w)))
	if err != nil {
		return err
	}

	data, err := hex.DecodeString(resp)
	if err != nil {
		return fmt.Errorf("i2c bridge: bad response %q: %v", resp, err)
	}
	if len(data) != len(r) {
		return fmt.Errorf("i2c bridge: read %d bytes, expected %d", len(data), len(r))
	}

	copy(r, data)
	return nil
}

func (s *SerialBridge) Close() error {
	return s.port.Close()
}

// exchange sends one command line and returns the payload of its OK reply.
func (s *SerialBridge) exchange(cmd string) (string, error) {
	// Keep the write and its reply together so boards sharing the bridge
	// never see each other's responses.
	s.lock.Lock()
	defer s.lock.Unlock()

	s.seq++
	tag := fmt.Sprintf("%02x", s.seq)

	if _, err := io.WriteString(s.port, tag+" "+cmd+"\n"); err != nil {
		return "", err
	}

	for {
		line, err := s.rx.ReadString('\n')
		if err != nil {
			return "", err
		}

		fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
		if len(fields) != 2 || fields[0] != tag {
			continue
		}
		reply := fields[1]

		switch {
		case reply == "OK":
			return "", nil
		case strings.HasPrefix(reply, "OK "):
			return strings.TrimPrefix(reply, "OK "), nil
		case strings.HasPrefix(reply, "ERR"):
			return "", BridgeError{Msg: strings.TrimSpace(strings.TrimPrefix(reply, "ERR"))}
		}

		return "", fmt.Errorf("i2c bridge: unexpected reply %q", reply)
	}
}
