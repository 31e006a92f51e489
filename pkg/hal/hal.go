// Package hal defines the driver contracts the flight core is written
// against: ADC sampling, the serial console, actuator outputs, receiver
// inputs, the sensor bus and the attitude estimator. Real boards, the
// simulated airframe and the test mocks all implement these.
package hal

// ADC channel assignment. The three gyro rate channels come first to
// match the sensor board wiring; battery and CPU temperature follow.
const (
	ChanGyroX   = 0
	ChanGyroY   = 1
	ChanGyroZ   = 2
	ChanBattery = 3
	ChanTemp    = 4

	NumChannels = 5
)

// ADC provides indexed raw conversion results.
type ADC interface {
	// Value returns the most recent conversion result for a channel.
	Value(ch int) uint16
	// Convert runs a single blocking conversion on a channel.
	Convert(ch int) uint16
	// ConvertAll converts every channel and calls done once all the
	// Value slots are populated.
	ConvertAll(done func())
}

// Serial is the text console the core reports on and receives
// single-byte commands from.
type Serial interface {
	WriteString(s string)
	WriteChar(c byte)
	// WriteDec writes v in decimal followed by the field separator.
	WriteDec(v uint8)
	// WriteHex writes v as a zero-padded hexadecimal word.
	WriteHex(v uint16)
	// WriteFixed writes num/den as a decimal fraction.
	WriteFixed(num int32, den uint32)
	// WriteEOL terminates the current line.
	WriteEOL()
	// SetInputHandler registers the single byte-received handler. The
	// handler runs on the transport's receive context.
	SetInputHandler(fn func(b byte))
}

// Actuators drives the rotor output channels. Set must be safe to call
// concurrently from the control loop and the serial receive path.
type Actuators interface {
	Init(n int) error
	Set(ch int, value uint16)
	Start()
	Stop()
}

// StickInputs is one consistent frame of decoded transmitter state.
// Stick axes are byte-ranged with the neutral position at 0x80.
type StickInputs struct {
	Throttle uint8
	Roll     uint8
	Pitch    uint8
	Yaw      uint8

	ModeSwitch bool
	ModePot    uint8
}

// Receiver exposes the transmitter state the decoder keeps live from
// its own receive path. Read-only to the core.
type Receiver interface {
	Inputs() StickInputs
	// NoSignal reports whether the decoder considers the link stale.
	// Decoders start stale until the first good frame.
	NoSignal() bool
}

// Bus reads a run of registers from a device address.
type Bus interface {
	Read(addr, reg uint8, p []byte) error
}

// Compass is the magnetometer/accelerometer combo the self test
// interrogates.
type Compass interface {
	// Revision reads the hardware revision byte.
	Revision() (uint8, error)
	// Mag returns the raw magnetometer axes, calibration not applied.
	Mag() ([3]int16, error)
	// Accel returns the raw accelerometer axes.
	Accel() ([3]int16, error)
	// MagOffsets returns the fixed per-axis magnetometer calibration.
	MagOffsets() [3]int16
}

// Attitude is one consistent snapshot of the estimator state. Pitch
// and roll are 16.16 fixed-point angles, yaw wraps modulo 65536 over a
// full circle, and the rates share the angle scale per estimator
// update.
type Attitude struct {
	Pitch int32
	Roll  int32
	Yaw   int16

	PitchRate int16
	RollRate  int16
	YawRate   int16
}

// AHRS is the attitude estimator. Start may only be called once the
// self test has passed. Snapshot must return an internally consistent
// frame regardless of the estimator's own update timing.
type AHRS interface {
	Start()
	Snapshot() Attitude
}

// Monitor reports the board status words shown in the boot banner.
type Monitor interface {
	StatusRegisters() (sr, cr uint16)
}
