package voice

// Influence step bounds. A completion provider may ask for any delta; the
// ledger clamps the step before applying it.
const (
	MaxInfluenceStep = 8
	MinInfluence     = 0
	MaxInfluence     = 100
)

// AdjustInfluence applies rawDelta to the voice's influence. The delta is
// clamped to [-8,+8] first, then the result to [0,100]. A zero delta is a
// legal no-op. Returns the new influence.
func AdjustInfluence(v *Voice, rawDelta int) int {
	if v == nil {
		return 0
	}
	delta := clampInt(rawDelta, -MaxInfluenceStep, MaxInfluenceStep)
	v.Influence = clampInt(v.Influence+delta, MinInfluence, MaxInfluence)
	return v.Influence
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
