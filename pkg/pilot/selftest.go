package pilot

import (
	"context"
	"fmt"

	"github.com/openaero/quadx/pkg/config"
	"github.com/openaero/quadx/pkg/fixmath"
	"github.com/openaero/quadx/pkg/hal"
)

const (
	// gyroAttempts bounds the zero-rate re-sampling.
	gyroAttempts = 20
	// accelSamples is how many accelerometer frames the magnitude
	// check accumulates.
	accelSamples = 16
	// accelGScale is the nominal one-g magnitude used to print the
	// result, in halved counts.
	accelGScale = 0x4050
)

// selfTest runs the boot checks in their fixed order, narrating each
// over the console. The first tripped check aborts the sequence with
// an error wrapping ErrSelfTest; a cancelled context aborts without a
// verdict.
func (p *Pilot) selfTest(ctx context.Context) error {
	s := p.board.Serial
	cal := p.cfg.Calibration

	sr, cr := p.board.Monitor.StatusRegisters()
	s.WriteString("SR:")
	s.WriteHex(sr)
	s.WriteString(", CR:")
	s.WriteHex(cr)
	s.WriteEOL()

	pw := p.cfg.Power
	s.WriteString("Battery voltage:")
	s.WriteFixed(
		int32(uint32(p.board.ADC.Value(hal.ChanBattery))*pw.VRefCentivolts*(pw.DividerTop+pw.DividerBottom)),
		0x400*100*pw.DividerBottom)
	s.WriteChar('V')
	s.WriteEOL()

	s.WriteString("CPU temperature:")
	s.WriteFixed(
		(int32(p.board.ADC.Value(hal.ChanTemp))-int32(pw.TempOffset))*int32(pw.TempScale),
		0x400)
	s.WriteEOL()

	ver, err := p.board.Compass.Revision()
	if err != nil {
		// A dead bus must trip the revision gate, not skip it.
		ver = 0xff
	}
	s.WriteString("Magnetometer revision:")
	s.WriteHex(uint16(ver))
	s.WriteEOL()
	if ver != cal.CompassRevision {
		return fmt.Errorf("%w: magnetometer revision 0x%02x", ErrSelfTest, ver)
	}

	s.WriteString("Checking if gyro readings in range.. ")
	var gyro [3]uint16
	for i := range gyro {
		gyro[i] = p.board.ADC.Value(i)
	}
	centered := gyroCentered(gyro, cal)
	for attempt := 0; attempt < gyroAttempts && !centered; attempt++ {
		// One-shot conversions come back at half the stored scale.
		for i := range gyro {
			gyro[i] = 2 * p.board.ADC.Convert(i)
		}
		centered = gyroCentered(gyro, cal)
	}
	if !centered {
		return fmt.Errorf("%w: gyro reads %#04x %#04x %#04x",
			ErrSelfTest, gyro[0], gyro[1], gyro[2])
	}
	s.WriteString("yep")
	s.WriteEOL()

	s.WriteString("Checking magnetic field magnitude.. ")
	mag, err := p.board.Compass.Mag()
	if err != nil {
		return fmt.Errorf("%w: reading magnetometer: %w", ErrSelfTest, err)
	}
	offsets := p.board.Compass.MagOffsets()
	var sum uint32
	for i, raw := range mag {
		v := raw - offsets[i]
		sum += uint32(int32(v) * int32(v))
	}
	field := fixmath.ISqrt32(sum)
	s.WriteFixed(int32(field), 1000)
	s.WriteString(" T")
	s.WriteEOL()
	if field > cal.MagMax || field < cal.MagMin {
		return fmt.Errorf("%w: field magnitude %d", ErrSelfTest, field)
	}

	s.WriteString("Checking accelerometer readings.. ")
	// The sum starts from the field magnitude the previous check left
	// behind; the accept band is tuned around that.
	acc := field
	for i := 0; i < accelSamples; i++ {
		axes, err := p.board.Compass.Accel()
		if err != nil {
			return fmt.Errorf("%w: reading accelerometer: %w", ErrSelfTest, err)
		}
		for _, raw := range axes {
			h := (raw + 1) >> 1
			acc += uint32(int32(h) * int32(h))
		}
		if err := sleep(ctx, p.cfg.SelfTest.AccelSettle); err != nil {
			return err
		}
	}
	g := (fixmath.ISqrt32(acc) + 1) >> 1
	s.WriteFixed(int32(g), accelGScale)
	s.WriteString(" g")
	s.WriteEOL()
	if g > cal.AccelMax || g < cal.AccelMin {
		return fmt.Errorf("%w: accel magnitude %#x", ErrSelfTest, g)
	}

	noSignal := p.board.Receiver.NoSignal()
	s.WriteString("Receiver signal: ")
	if noSignal {
		s.WriteString("NOPE")
	} else {
		s.WriteString("yep")
	}
	s.WriteEOL()
	if !noSignal && p.board.Receiver.Inputs().Throttle > p.cfg.SelfTest.ThrottleIdleMax {
		s.WriteString("Throttle stick is not in the bottom position")
		s.WriteEOL()
		return fmt.Errorf("%w: throttle above idle", ErrSelfTest)
	}

	return nil
}

// gyroCentered reports whether all three zero-rate samples sit
// strictly inside the calibration window.
func gyroCentered(gyro [3]uint16, cal config.CalibrationConfig) bool {
	for _, v := range gyro {
		if v <= cal.GyroMin || v >= cal.GyroMax {
			return false
		}
	}
	return true
}
