// Package lifecycle owns the voice state classification the core itself
// never performs: it reads influence, relationship, and resolution progress
// and decides active/agitated/dormant/dead.
package lifecycle

import (
	"github.com/rs/zerolog/log"

	"voiceloom/internal/voice"
)

const (
	// DormantBelow: influence under this and the voice goes quiet.
	DormantBelow = 20
	// AgitatedAbove: influence at or over this reads as agitation.
	AgitatedAbove = 80
)

// Classify computes the state a voice should hold. Dead is absorbing.
func Classify(v *voice.Voice) voice.State {
	if v.State == voice.StateDead {
		return voice.StateDead
	}
	if v.Resolution != nil && v.Resolution.Progress >= voice.ResolutionComplete {
		return voice.StateDead
	}
	if v.Influence < DormantBelow {
		return voice.StateDormant
	}
	if v.Influence >= AgitatedAbove || v.Relationship == voice.Hostile || v.Relationship == voice.Manic {
		return voice.StateAgitated
	}
	return voice.StateActive
}

// Apply reclassifies the voice and reports whether the state changed.
func Apply(v *voice.Voice) bool {
	next := Classify(v)
	if next == v.State {
		return false
	}
	log.Info().Str("voice", v.Name).Str("from", string(v.State)).Str("to", string(next)).
		Msg("voice state change")
	v.State = next
	return true
}

// Dissolve retires a voice manually.
func Dissolve(v *voice.Voice) {
	if v.State == voice.StateDead {
		return
	}
	log.Info().Str("voice", v.Name).Msg("voice dissolved")
	v.State = voice.StateDead
}
