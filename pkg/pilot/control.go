package pilot

import "github.com/openaero/quadx/pkg/fixmath"

// Fixed-point scaling of the control law. Angles use the estimator's
// units, 32768 per half turn; stick deflections are shifted into the
// same scale. All of the int16 arithmetic below relies on wraparound
// for the modulo-65536 yaw algebra.
const (
	stickCenter = 0x80

	stickAngleShift = 5 // full stick throw commands 4096 angle units
	yawStickShift   = 2 // yaw stick rate fed into the setpoint per tick
	throttleShift   = 7 // 255 -> 32640, just under the rotor ceiling

	rateDampShift = 2 // pitch/roll rate damping contribution
	yawRateLead   = 1 // yaw rate counts double in the snapshot

	easeBand   = 0x400 // errors inside run at quarter scale
	easeShift  = 2
	easeOffset = 0x300 // errors outside pull in by a constant

	yawClamp = 0x800 // heading-hold yaw authority

	rotorMax = 32000
)

// ease attenuates small errors and soft-limits large ones.
func ease(e int16) int16 {
	if e < easeBand && e > -easeBand {
		return e >> easeShift
	}
	if e > 0 {
		return e - easeOffset
	}
	return e + easeOffset
}

// updateControl runs one stabilisation pass: snapshot the estimator,
// turn stick deflections into commanded angles, ease the combined
// errors, mix for the X layout and write the four rotor commands.
//
// Rotor layout, top view: 0 front left, 1 front right, 2 rear left,
// 3 rear right. The mixing signs pair 0/1 against 2/3 across one axis,
// 0/2 against 1/3 across the other, and the diagonals 0/3 against 1/2
// for yaw torque.
func (p *Pilot) updateControl() {
	att := p.board.AHRS.Snapshot()
	in := p.board.Receiver.Inputs()

	curPitch := int16(att.Pitch>>16) + att.PitchRate>>rateDampShift
	curRoll := int16(att.Roll>>16) + att.RollRate>>rateDampShift
	curYaw := att.Yaw + att.YawRate<<yawRateLead

	roll, pitch, yaw := in.Roll, in.Pitch, in.Yaw
	if p.modes.Enabled(ModePanTilt) {
		roll, pitch, yaw = stickCenter, stickCenter, stickCenter
	}

	destPitch := int16(pitch)<<stickAngleShift - stickCenter<<stickAngleShift
	destRoll := int16(roll)<<stickAngleShift - stickCenter<<stickAngleShift
	p.setYaw += int16(yaw)<<yawStickShift - stickCenter<<yawStickShift
	destYaw := p.setYaw

	baseThrottle := int16(in.Throttle) << throttleShift

	destPitch = ease(-(curPitch + destPitch))
	destRoll = ease(-(curRoll + destRoll))
	destYaw = curYaw - destYaw

	if p.modes.Enabled(ModeHeadingHold) {
		destYaw = fixmath.Clamp(destYaw, -yawClamp, yawClamp)
	} else {
		// No heading hold: yaw follows the stick directly and the
		// setpoint tracks the measured heading so re-enabling starts
		// from zero error.
		destYaw = stickCenter<<stickAngleShift - int16(yaw)<<stickAngleShift
		p.setYaw = curYaw
	}

	a := int32(baseThrottle) + int32(destPitch) + int32(destRoll) + int32(destYaw)
	b := int32(baseThrottle) - int32(destPitch) + int32(destRoll) - int32(destYaw)
	c := int32(baseThrottle) + int32(destPitch) - int32(destRoll) - int32(destYaw)
	d := int32(baseThrottle) - int32(destPitch) - int32(destRoll) + int32(destYaw)

	p.board.Actuators.Set(0, uint16(fixmath.Clamp(a, 0, rotorMax)))
	p.board.Actuators.Set(1, uint16(fixmath.Clamp(b, 0, rotorMax)))
	p.board.Actuators.Set(2, uint16(fixmath.Clamp(c, 0, rotorMax)))
	p.board.Actuators.Set(3, uint16(fixmath.Clamp(d, 0, rotorMax)))
}
