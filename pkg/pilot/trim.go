package pilot

import "github.com/openaero/quadx/pkg/fixmath"

// trimShift scales a trim byte into the actuator's native range.
const trimShift = 8

// trimActions maps a console byte onto one rotor and one direction.
// The home row a s d f nudges rotors 0..3 down, the row above
// q w e r nudges them up.
var trimActions = map[byte]struct {
	rotor int
	delta int8
}{
	'a': {0, -1}, 's': {1, -1}, 'd': {2, -1}, 'f': {3, -1},
	'q': {0, +1}, 'w': {1, +1}, 'e': {2, +1}, 'r': {3, +1},
}

// HandleInput is the serial byte handler. A trim command adjusts one
// rotor's bench trim, saturating at the byte bounds, writes that rotor
// immediately and echoes all four trims. Unknown bytes are ignored
// with no output. Runs on the transport's receive context; a latched
// core ignores everything.
func (p *Pilot) HandleInput(ch byte) {
	act, ok := trimActions[ch]
	if !ok {
		return
	}

	p.mu.Lock()
	if p.faulted {
		p.mu.Unlock()
		return
	}
	t := int16(p.trims[act.rotor]) + int16(act.delta)
	p.trims[act.rotor] = uint8(fixmath.Clamp(t, 0, 255))
	value := uint16(p.trims[act.rotor]) << trimShift
	trims := p.trims
	p.mu.Unlock()

	p.board.Actuators.Set(act.rotor, value)
	p.echo(trims)
}

// echo writes the four trims as one console line.
func (p *Pilot) echo(trims [NumRotors]uint8) {
	for _, v := range trims {
		p.board.Serial.WriteDec(v)
	}
	p.board.Serial.WriteEOL()
}
