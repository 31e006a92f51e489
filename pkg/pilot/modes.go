package pilot

// Mode indexes the boolean flight switches. Every move of the
// transmitter's mode switch applies the new switch state to the single
// flag the selector pot points at.
type Mode uint8

const (
	// ModeMotorsArmed arms the motors.
	ModeMotorsArmed Mode = iota
	// ModeHeadingHold holds the compass heading unless yaw is
	// commanded.
	ModeHeadingHold
	// ModePanTilt hands the cyclic stick over to the camera mount and
	// flies the axes as if the sticks were centred.
	ModePanTilt

	// numModes covers every selector band the pot can reach, so noisy
	// high readings land on spare flags instead of aliasing onto a
	// named one.
	numModes = 6
)

// ModeSet holds one boolean per selector band. Three bands are named,
// the rest are selectable spares.
type ModeSet [numModes]bool

// Enabled reports whether a flag is set.
func (s ModeSet) Enabled(m Mode) bool {
	return s[m]
}

func (s *ModeSet) set(m Mode, on bool) {
	s[m] = on
}

// The pot maps onto six even bands, boundaries pulled left so the
// transmitter detents sit well inside their band.
const (
	modeBandOffset = 36
	modeBandWidth  = 49
)

// modeIndex converts a selector pot position into the flag it selects.
func modeIndex(pot uint8) Mode {
	return Mode((uint16(pot) + modeBandOffset) / modeBandWidth)
}

// updateModes applies a selector switch edge: on a change of the
// switch, the flag picked by the pot follows the new switch state and
// every other flag stays put. Without an edge nothing happens, so pot
// noise alone never flips a mode.
func (p *Pilot) updateModes() {
	in := p.board.Receiver.Inputs()
	if in.ModeSwitch == p.prevSw {
		return
	}
	p.prevSw = in.ModeSwitch

	p.modes.set(modeIndex(in.ModePot), in.ModeSwitch)
}
