package voice

import "strings"

// Shift is the direction of a relationship change requested by an exchange.
type Shift string

const (
	ShiftNone       Shift = "none"
	ShiftWarmer     Shift = "warmer"
	ShiftColder     Shift = "colder"
	ShiftMuchWarmer Shift = "much_warmer"
	ShiftMuchColder Shift = "much_colder"
)

// transitions is the total 9x4 table: every (label, signal) pair has a
// defined successor. Hostile absorbs much_colder (no further alienation once
// fully hostile). Obsessed and manic form a tight loop reachable only from
// already-warm states; a single much_warmer jump from a cold state cannot
// land there.
var transitions = map[Relationship]map[Shift]Relationship{
	Hostile: {
		ShiftWarmer:     Resentful,
		ShiftColder:     Hostile,
		ShiftMuchWarmer: Indifferent,
		ShiftMuchColder: Hostile,
	},
	Resentful: {
		ShiftWarmer:     Indifferent,
		ShiftColder:     Hostile,
		ShiftMuchWarmer: Curious,
		ShiftMuchColder: Hostile,
	},
	Indifferent: {
		ShiftWarmer:     Curious,
		ShiftColder:     Resentful,
		ShiftMuchWarmer: Devoted,
		ShiftMuchColder: Hostile,
	},
	Curious: {
		ShiftWarmer:     Devoted,
		ShiftColder:     Indifferent,
		ShiftMuchWarmer: Protective,
		ShiftMuchColder: Resentful,
	},
	Devoted: {
		ShiftWarmer:     Protective,
		ShiftColder:     Curious,
		ShiftMuchWarmer: Obsessed,
		ShiftMuchColder: Indifferent,
	},
	Protective: {
		ShiftWarmer:     Obsessed,
		ShiftColder:     Devoted,
		ShiftMuchWarmer: Obsessed,
		ShiftMuchColder: Curious,
	},
	Obsessed: {
		ShiftWarmer:     Manic,
		ShiftColder:     Devoted,
		ShiftMuchWarmer: Manic,
		ShiftMuchColder: Grieving,
	},
	Manic: {
		ShiftWarmer:     Obsessed,
		ShiftColder:     Obsessed,
		ShiftMuchWarmer: Obsessed,
		ShiftMuchColder: Grieving,
	},
	Grieving: {
		ShiftWarmer:     Curious,
		ShiftColder:     Resentful,
		ShiftMuchWarmer: Devoted,
		ShiftMuchColder: Hostile,
	},
}

// Transition returns the next relationship label. ShiftNone and unknown
// inputs return current unchanged, so the function never fails. Callers must
// no-op when the result equals the input.
func Transition(current Relationship, shift Shift) Relationship {
	if shift == ShiftNone {
		return current
	}
	row, ok := transitions[current]
	if !ok {
		return current
	}
	next, ok := row[shift]
	if !ok {
		return current
	}
	return next
}

// ParseShift reads a shift signal from model text. Unknown text maps to
// ShiftNone.
func ParseShift(s string) Shift {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	switch Shift(s) {
	case ShiftWarmer, ShiftColder, ShiftMuchWarmer, ShiftMuchColder:
		return Shift(s)
	}
	return ShiftNone
}
