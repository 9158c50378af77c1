package i2cbus

import "unsafe"

const (
	i2c_RDWR = 0x0707
	i2c_M_RD = 0x0001
)

// i2cMsg mirrors struct i2c_msg from linux/i2c.h.
type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

// i2cRdwrData mirrors struct i2c_rdwr_ioctl_data.
type i2cRdwrData struct {
	msgs  uintptr
	nmsgs uint32
}

// buildMsgs lays out a combined transfer: an optional write of w followed by
// an optional read into r, with a repeated start between them.
func buildMsgs(addr byte, w, r []byte) (msgs []i2cMsg) {
	a := addr7(addr)
	if len(w) > 0 {
		msgs = append(msgs, i2cMsg{
			addr: a,
			len:  uint16(len(w)),
			buf:  uintptr(unsafe.Pointer(&w[0])),
		})
	}
	if len(r) > 0 {
		msgs = append(msgs, i2cMsg{
			addr:  a,
			flags: i2c_M_RD,
			len:   uint16(len(r)),
			buf:   uintptr(unsafe.Pointer(&r[0])),
		})
	}
	return
}
