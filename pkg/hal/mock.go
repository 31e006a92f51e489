package hal

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
)

// MockADC is a scriptable ADC for tests. SetValue programs the Value
// slots; QueueConvert scripts the results of one-shot conversions per
// channel, falling back to the Value slot once drained.
type MockADC struct {
	mu        sync.Mutex
	values    [NumChannels]uint16
	queues    map[int][]uint16
	converted bool
}

var _ ADC = (*MockADC)(nil)

// NewMockADC returns a MockADC with all channels at zero.
func NewMockADC() *MockADC {
	return &MockADC{queues: make(map[int][]uint16)}
}

// SetValue programs the most recent conversion result for a channel.
func (m *MockADC) SetValue(ch int, v uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[ch] = v
}

// QueueConvert appends scripted one-shot results for a channel.
func (m *MockADC) QueueConvert(ch int, vs ...uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[ch] = append(m.queues[ch], vs...)
}

// Converted reports whether ConvertAll has been called.
func (m *MockADC) Converted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.converted
}

func (m *MockADC) Value(ch int) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[ch]
}

func (m *MockADC) Convert(ch int) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q := m.queues[ch]; len(q) > 0 {
		v := q[0]
		m.queues[ch] = q[1:]
		return v
	}
	return m.values[ch]
}

func (m *MockADC) ConvertAll(done func()) {
	m.mu.Lock()
	m.converted = true
	m.mu.Unlock()
	if done != nil {
		done()
	}
}

// MockSerial captures console output in memory and lets tests inject
// received bytes.
type MockSerial struct {
	TextWriter
	mu  sync.Mutex
	buf bytes.Buffer
	fn  func(b byte)
}

var _ Serial = (*MockSerial)(nil)

// NewMockSerial returns a MockSerial sinking into an internal buffer.
func NewMockSerial() *MockSerial {
	m := &MockSerial{}
	m.TextWriter = TextWriter{W: m}
	return m
}

// Write collects console bytes; MockSerial is its own TextWriter sink.
func (m *MockSerial) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.Write(p)
}

func (m *MockSerial) SetInputHandler(fn func(b byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
}

// Receive delivers b to the registered handler the way the transport
// would on a received byte.
func (m *MockSerial) Receive(b byte) {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	if fn != nil {
		fn(b)
	}
}

// Output returns everything written so far.
func (m *MockSerial) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.String()
}

// Lines returns the completed output lines, line terminators stripped.
func (m *MockSerial) Lines() []string {
	out := m.Output()
	var lines []string
	for {
		i := strings.Index(out, "\r\n")
		if i < 0 {
			return lines
		}
		lines = append(lines, out[:i])
		out = out[i+2:]
	}
}

// MockActuators records the channel commands the core writes.
type MockActuators struct {
	mu      sync.Mutex
	values  []uint16
	running bool
}

var _ Actuators = (*MockActuators)(nil)

// NewMockActuators returns an uninitialised MockActuators.
func NewMockActuators() *MockActuators {
	return &MockActuators{}
}

func (m *MockActuators) Init(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 {
		return fmt.Errorf("invalid channel count %d", n)
	}
	m.values = make([]uint16, n)
	return nil
}

func (m *MockActuators) Set(ch int, value uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch < 0 || ch >= len(m.values) {
		return
	}
	m.values[ch] = value
}

func (m *MockActuators) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
}

func (m *MockActuators) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
}

// Get returns the last command written to a channel.
func (m *MockActuators) Get(ch int) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch < 0 || ch >= len(m.values) {
		return 0
	}
	return m.values[ch]
}

// Running reports whether signal generation has been started.
func (m *MockActuators) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// MockReceiver is a programmable transmitter frame. It starts stale,
// like a real decoder before the first good frame.
type MockReceiver struct {
	mu   sync.Mutex
	in   StickInputs
	live bool
}

var _ Receiver = (*MockReceiver)(nil)

// NewMockReceiver returns a stale MockReceiver with sticks neutral and
// throttle down.
func NewMockReceiver() *MockReceiver {
	return &MockReceiver{
		in: StickInputs{Roll: 0x80, Pitch: 0x80, Yaw: 0x80},
	}
}

// Set installs a decoded frame and marks the link live.
func (m *MockReceiver) Set(in StickInputs) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.in = in
	m.live = true
}

// Drop marks the link stale, keeping the last frame.
func (m *MockReceiver) Drop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live = false
}

func (m *MockReceiver) Inputs() StickInputs {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.in
}

func (m *MockReceiver) NoSignal() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.live
}

// MockBus is an in-memory register file keyed by device address.
type MockBus struct {
	mu   sync.Mutex
	devs map[uint8]*[256]byte
	err  error
}

var _ Bus = (*MockBus)(nil)

// NewMockBus returns a MockBus with no devices attached.
func NewMockBus() *MockBus {
	return &MockBus{devs: make(map[uint8]*[256]byte)}
}

// SetRegs programs a run of registers on a device, attaching the
// device if needed.
func (m *MockBus) SetRegs(addr, reg uint8, data ...byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dev, ok := m.devs[addr]
	if !ok {
		dev = &[256]byte{}
		m.devs[addr] = dev
	}
	copy(dev[reg:], data)
}

// FailWith makes every Read return err. Pass nil to clear.
func (m *MockBus) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockBus) Read(addr, reg uint8, p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	dev, ok := m.devs[addr]
	if !ok {
		return fmt.Errorf("no device at 0x%02x", addr)
	}
	copy(p, dev[reg:])
	return nil
}

// MockCompass is a scriptable Compass.
type MockCompass struct {
	mu      sync.Mutex
	rev     uint8
	mag     [3]int16
	accel   [3]int16
	offsets [3]int16
	err     error
}

var _ Compass = (*MockCompass)(nil)

// NewMockCompass returns a MockCompass reading like a healthy module:
// expected revision, field magnitude mid-band and one g on the
// vertical axis.
func NewMockCompass() *MockCompass {
	return &MockCompass{
		rev:   0x02,
		mag:   [3]int16{320, 280, -40},
		accel: [3]int16{0, 0, 16396},
	}
}

func (m *MockCompass) SetRevision(rev uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rev = rev
}

func (m *MockCompass) SetMag(mag [3]int16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mag = mag
}

func (m *MockCompass) SetAccel(accel [3]int16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accel = accel
}

func (m *MockCompass) SetMagOffsets(offsets [3]int16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offsets = offsets
}

// FailWith makes every register read return err. Pass nil to clear.
func (m *MockCompass) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockCompass) Revision() (uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rev, m.err
}

func (m *MockCompass) Mag() ([3]int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mag, m.err
}

func (m *MockCompass) Accel() ([3]int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accel, m.err
}

func (m *MockCompass) MagOffsets() [3]int16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offsets
}

// MockAHRS publishes a fixed attitude set by the test.
type MockAHRS struct {
	mu      sync.Mutex
	att     Attitude
	started bool
}

var _ AHRS = (*MockAHRS)(nil)

// NewMockAHRS returns a MockAHRS at level attitude, not started.
func NewMockAHRS() *MockAHRS {
	return &MockAHRS{}
}

// SetAttitude installs the snapshot every Snapshot call returns.
func (m *MockAHRS) SetAttitude(att Attitude) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.att = att
}

// Started reports whether Start has been called.
func (m *MockAHRS) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

func (m *MockAHRS) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockAHRS) Snapshot() Attitude {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.att
}

// MockMonitor reports fixed status words.
type MockMonitor struct {
	SR, CR uint16
}

var _ Monitor = (*MockMonitor)(nil)

func (m *MockMonitor) StatusRegisters() (sr, cr uint16) {
	return m.SR, m.CR
}
