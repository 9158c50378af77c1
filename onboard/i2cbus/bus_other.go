// +build !linux

package i2cbus

// Bus is unavailable off Linux; use a SerialBridge or SimBus instead.
type Bus struct{}

func Open(dev string) (*Bus, error) {
	return nil, ErrUnsupported
}

func (b *Bus) Write(addr byte, buf []byte) error      { return ErrUnsupported }
func (b *Bus) WriteRead(addr byte, w, r []byte) error { return ErrUnsupported }
func (b *Bus) Close() error                           { return nil }
