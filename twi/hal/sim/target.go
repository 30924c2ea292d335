package sim

import "sync"

var _ Target = (*RegisterTarget)(nil)

// RegisterTarget is a register-file slave in the style of most I2C
// peripherals: the first byte of a write sets the register pointer, later
// bytes are stored at the pointer, and reads return bytes from the pointer.
// The pointer auto-increments and wraps at the end of the register file.
type RegisterTarget struct {
	mutex    sync.Mutex
	addr     uint8
	mem      []byte
	pointer  int
	setPtr   bool
	nackData bool
	stops    int

	// OnWrite, if set, is called after each register store.
	OnWrite func(reg uint8, value byte)
}

// NewRegisterTarget creates a target at the 7-bit address addr with size
// zeroed registers.
func NewRegisterTarget(addr uint8, size int) *RegisterTarget {
	if size < 1 {
		size = 1
	}
	return &RegisterTarget{addr: addr & 0x7F, mem: make([]byte, size)}
}

// Address implements Target.
func (t *RegisterTarget) Address() uint8 {
	return t.addr
}

// Start implements Target.
func (t *RegisterTarget) Start(read bool) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.setPtr = !read
	return true
}

// Write implements Target.
func (t *RegisterTarget) Write(b byte) bool {
	t.mutex.Lock()
	if t.setPtr {
		t.pointer = int(b) % len(t.mem)
		t.setPtr = false
		t.mutex.Unlock()
		return true
	}
	if t.nackData {
		t.mutex.Unlock()
		return false
	}
	reg := t.pointer
	t.mem[reg] = b
	t.pointer = (t.pointer + 1) % len(t.mem)
	hook := t.OnWrite
	t.mutex.Unlock()

	if hook != nil {
		hook(uint8(reg), b)
	}
	return true
}

// Read implements Target.
func (t *RegisterTarget) Read(ack bool) byte {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	b := t.mem[t.pointer]
	t.pointer = (t.pointer + 1) % len(t.mem)
	return b
}

// Stop implements Target.
func (t *RegisterTarget) Stop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.stops++
}

// SetNackData makes the target NACK data bytes. The register pointer byte
// is still acknowledged.
func (t *RegisterTarget) SetNackData(nack bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.nackData = nack
}

// Load copies data into the register file starting at reg.
func (t *RegisterTarget) Load(reg uint8, data []byte) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for i, b := range data {
		t.mem[(int(reg)+i)%len(t.mem)] = b
	}
}

// Registers returns a copy of the register file.
func (t *RegisterTarget) Registers() []byte {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return append([]byte(nil), t.mem...)
}

// Pointer returns the current register pointer.
func (t *RegisterTarget) Pointer() uint8 {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return uint8(t.pointer)
}

// Stops returns the number of STOP conditions seen while addressed.
func (t *RegisterTarget) Stops() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.stops
}
