package i2cbus

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Bus is a /dev/i2c-N adapter. Every transaction is issued as a single
// I2C_RDWR ioctl under the bus lock so several boards may share one Bus.
type Bus struct {
	dev  string
	fd   int
	lock sync.Mutex
}

func Open(dev string) (bus *Bus, err error) {
	fd, err := unix.Open(dev, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", dev, err)
	}

	return &Bus{dev: dev, fd: fd}, nil
}

func (b *Bus) Write(addr byte, buf []byte) error {
	if len(buf) == 0 {
		return ErrEmptyWrite
	}
	return b.transfer(addr, buf, nil)
}

func (b *Bus) WriteRead(addr byte, w, r []byte) error {
	return b.transfer(addr, w, r)
}

func (b *Bus) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	return unix.Close(b.fd)
}

func (b *Bus) String() string {
	return b.dev
}

func (b *Bus) transfer(addr byte, w, r []byte) (err error) {
	msgs := buildMsgs(addr, w, r)
	if len(msgs) == 0 {
		return ErrEmptyWrite
	}

	data := i2cRdwrData{
		msgs:  uintptr(unsafe.Pointer(&msgs[0])),
		nmsgs: uint32(len(msgs)),
	}

	b.lock.Lock()
	_, _, e := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), i2c_RDWR, uintptr(unsafe.Pointer(&data)))
	b.lock.Unlock()

	runtime.KeepAlive(msgs)
	runtime.KeepAlive(w)
	runtime.KeepAlive(r)

	if e != 0 {
		err = fmt.Errorf("%s: addr 0x%02x: %v", b.dev, addr, e)
	}
	return
}
