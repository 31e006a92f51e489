package hal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockADC(t *testing.T) {
	adc := NewMockADC()
	adc.SetValue(ChanBattery, 781)
	assert.Equal(t, uint16(781), adc.Value(ChanBattery))
	assert.Equal(t, uint16(0), adc.Value(ChanGyroX))

	// One-shot conversions drain the scripted queue, then fall back
	// to the Value slot.
	adc.SetValue(ChanGyroX, 100)
	adc.QueueConvert(ChanGyroX, 381, 382)
	assert.Equal(t, uint16(381), adc.Convert(ChanGyroX))
	assert.Equal(t, uint16(382), adc.Convert(ChanGyroX))
	assert.Equal(t, uint16(100), adc.Convert(ChanGyroX))

	assert.False(t, adc.Converted())
	called := false
	adc.ConvertAll(func() { called = true })
	assert.True(t, called)
	assert.True(t, adc.Converted())
}

func TestMockSerial(t *testing.T) {
	s := NewMockSerial()
	s.WriteString("yep")
	s.WriteEOL()
	s.WriteDec(1)
	s.WriteDec(0)
	s.WriteEOL()

	assert.Equal(t, "yep\r\n1 0 \r\n", s.Output())
	assert.Equal(t, []string{"yep", "1 0 "}, s.Lines())
}

func TestMockSerial_Receive(t *testing.T) {
	s := NewMockSerial()

	// No handler registered yet: delivery is a no-op.
	s.Receive('q')

	var got []byte
	s.SetInputHandler(func(b byte) { got = append(got, b) })
	s.Receive('q')
	s.Receive('a')
	assert.Equal(t, []byte{'q', 'a'}, got)
}

func TestMockActuators(t *testing.T) {
	act := NewMockActuators()
	assert.Error(t, act.Init(0))
	require.NoError(t, act.Init(4))

	act.Set(0, 256)
	act.Set(3, 32000)
	act.Set(7, 1) // out of range, ignored
	assert.Equal(t, uint16(256), act.Get(0))
	assert.Equal(t, uint16(32000), act.Get(3))
	assert.Equal(t, uint16(0), act.Get(7))

	assert.False(t, act.Running())
	act.Start()
	assert.True(t, act.Running())
	act.Stop()
	assert.False(t, act.Running())
}

func TestMockReceiver(t *testing.T) {
	rx := NewMockReceiver()

	// Stale until the first frame, sticks neutral.
	assert.True(t, rx.NoSignal())
	in := rx.Inputs()
	assert.Equal(t, uint8(0x80), in.Roll)
	assert.Equal(t, uint8(0x80), in.Pitch)
	assert.Equal(t, uint8(0x80), in.Yaw)
	assert.Equal(t, uint8(0), in.Throttle)

	rx.Set(StickInputs{Throttle: 3, Roll: 0x80, Pitch: 0x80, Yaw: 0x80})
	assert.False(t, rx.NoSignal())
	assert.Equal(t, uint8(3), rx.Inputs().Throttle)

	rx.Drop()
	assert.True(t, rx.NoSignal())
	assert.Equal(t, uint8(3), rx.Inputs().Throttle, "last frame survives a signal drop")
}

func TestMockBus(t *testing.T) {
	bus := NewMockBus()

	var buf [1]byte
	err := bus.Read(0x60, 0, buf[:])
	assert.Error(t, err, "reading an absent device must fail")

	bus.SetRegs(0x60, 0, 0x02)
	bus.SetRegs(0x60, 10, 0x01, 0x40, 0x01, 0x18, 0xff, 0xd8)

	require.NoError(t, bus.Read(0x60, 0, buf[:]))
	assert.Equal(t, byte(0x02), buf[0])

	var regs [6]byte
	require.NoError(t, bus.Read(0x60, 10, regs[:]))
	assert.Equal(t, [6]byte{0x01, 0x40, 0x01, 0x18, 0xff, 0xd8}, regs)

	busErr := errors.New("bus stuck")
	bus.FailWith(busErr)
	assert.ErrorIs(t, bus.Read(0x60, 0, buf[:]), busErr)
}

func TestMockCompass_Defaults(t *testing.T) {
	c := NewMockCompass()

	rev, err := c.Revision()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x02), rev)

	mag, err := c.Mag()
	require.NoError(t, err)
	assert.Equal(t, [3]int16{320, 280, -40}, mag)

	accel, err := c.Accel()
	require.NoError(t, err)
	assert.Equal(t, [3]int16{0, 0, 16396}, accel)

	assert.Equal(t, [3]int16{0, 0, 0}, c.MagOffsets())
}

func TestMockCompass_Scripted(t *testing.T) {
	c := NewMockCompass()
	c.SetRevision(0x01)
	c.SetMagOffsets([3]int16{10, -20, 30})

	rev, err := c.Revision()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), rev)
	assert.Equal(t, [3]int16{10, -20, 30}, c.MagOffsets())

	readErr := errors.New("nack")
	c.FailWith(readErr)
	_, err = c.Mag()
	assert.ErrorIs(t, err, readErr)
}

func TestMockAHRS(t *testing.T) {
	a := NewMockAHRS()
	assert.False(t, a.Started())
	assert.Equal(t, Attitude{}, a.Snapshot())

	att := Attitude{Pitch: 512 << 16, Yaw: 5000, YawRate: -2}
	a.SetAttitude(att)
	assert.Equal(t, att, a.Snapshot())

	a.Start()
	assert.True(t, a.Started())
}

func TestMockMonitor(t *testing.T) {
	m := &MockMonitor{SR: 0x0080, CR: 0x0001}
	sr, cr := m.StatusRegisters()
	assert.Equal(t, uint16(0x0080), sr)
	assert.Equal(t, uint16(0x0001), cr)
}
