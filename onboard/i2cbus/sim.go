package i2cbus

import (
	"sync"

	"github.com/CodedInternet/gomd22/md22"
)

// Transaction is one exchange seen by a SimBus.
type Transaction struct {
	Addr  byte
	Write []byte
	Read  []byte
	Err   error
}

type simDevice struct {
	mem [256]byte
	ptr byte
}

// SimBus emulates MD22 boards in memory. Each board keeps a register file
// addressed by the first byte of every write, with the pointer advancing on
// each byte written or read. Writes to read-only registers are dropped.
type SimBus struct {
	lock    sync.Mutex
	devices map[byte]*simDevice
	fail    error
	log     []Transaction
}

func NewSimBus() *SimBus {
	return &SimBus{devices: make(map[byte]*simDevice)}
}

// AddDevice attaches a board answering on addr with the given firmware
// revision.
func (s *SimBus) AddDevice(addr, revision byte) {
	s.lock.Lock()
	defer s.lock.Unlock()

	d := new(simDevice)
	d.mem[md22.RegSoftwareRevision] = revision
	d.mem[md22.RegSpeed] = 128
	d.mem[md22.RegTurn] = 128
	s.devices[addr] = d
}

// Register returns the current content of a register on a board.
func (s *SimBus) Register(addr byte, reg md22.Register) (byte, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	d, ok := s.devices[addr]
	if !ok {
		return 0, false
	}
	return d.mem[reg], true
}

// FailNext makes the next transaction return err.
func (s *SimBus) FailNext(err error) {
	s.lock.Lock()
	s.fail = err
	s.lock.Unlock()
}

// Transactions returns a copy of the transaction log.
func (s *SimBus) Transactions() []Transaction {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]Transaction(nil), s.log...)
}

func (s *SimBus) Write(addr byte, b []byte) error {
	if len(b) == 0 {
		return ErrEmptyWrite
	}
	return s.transfer(addr, b, nil)
}

func (s *SimBus) WriteRead(addr byte, w, r []byte) error {
	return s.transfer(addr, w, r)
}

func (s *SimBus) Close() error {
	return nil
}

func (s *SimBus) transfer(addr byte, w, r []byte) (err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	defer func() {
		s.log = append(s.log, Transaction{
			Addr:  addr,
			Write: append([]byte(nil), w...),
			Read:  append([]byte(nil), r...),
			Err:   err,
		})
	}()

	if s.fail != nil {
		err, s.fail = s.fail, nil
		return
	}

	d, ok := s.devices[addr]
	if !ok {
		return ErrNoDevice
	}

	for i, b := range w {
		if i == 0 {
			d.ptr = b
			continue
		}
		if !md22.Register(d.ptr).IsReadOnly() {
			d.mem[d.ptr] = b
		}
		d.ptr++
	}

	for i := range r {
		r[i] = d.mem[d.ptr]
		d.ptr++
	}

	return nil
}
