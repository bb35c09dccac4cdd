package voice

// ResolutionComplete is the saturation point; reaching it is a pure signal
// read by the lifecycle collaborator, never acted on here.
const ResolutionComplete = 100

// AdvanceResolution moves resolution progress forward by amount, but only if
// the voice has a resolution whose type is in the allowed list. Callers
// restrict which types may progress from which exchange kind (group insights
// never advance fade or endure; 1:1 confrontation is the only channel for
// confront). Amount must already be non-negative. Progress saturates at 100
// and never decreases. Returns the resulting progress (0 when no resolution).
func AdvanceResolution(v *Voice, amount int, allowed ...ResolutionType) int {
	if v == nil || v.Resolution == nil {
		return 0
	}
	r := v.Resolution
	if amount <= 0 {
		return r.Progress
	}
	permitted := false
	for _, t := range allowed {
		if r.Type == t {
			permitted = true
			break
		}
	}
	if !permitted {
		return r.Progress
	}
	r.Progress += amount
	if r.Progress > ResolutionComplete {
		r.Progress = ResolutionComplete
	}
	return r.Progress
}
