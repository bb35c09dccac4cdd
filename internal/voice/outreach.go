package voice

import (
	"time"

	"github.com/rs/zerolog/log"
)

// OutreachConfig holds thresholds and weights for the outreach desirability
// score and the selection protocol.
type OutreachConfig struct {
	CooldownEvents int // events before another outreach may fire
	MaxPendingDMs  int // hard concurrency cap across the roster

	InfluenceTierLow  int // +5 at or above
	InfluenceTierMid  int // +10 at or above
	InfluenceTierHigh int // +15 at or above

	SilenceTierShort int // silentStreak threshold, +8
	SilenceTierLong  int // silentStreak threshold, +15

	ChattinessWeight    int // per chattiness unit
	JustSpokePenalty    int // subtracted when silentStreak == 0
	LowInfluenceFloor   int // below this, LowInfluencePenalty applies
	LowInfluencePenalty int
}

// DefaultOutreachConfig returns the tuned defaults.
func DefaultOutreachConfig() OutreachConfig {
	return OutreachConfig{
		CooldownEvents:      4,
		MaxPendingDMs:       2,
		InfluenceTierLow:    30,
		InfluenceTierMid:    50,
		InfluenceTierHigh:   70,
		SilenceTierShort:    3,
		SilenceTierLong:     6,
		ChattinessWeight:    2,
		JustSpokePenalty:    10,
		LowInfluenceFloor:   15,
		LowInfluencePenalty: 20,
	}
}

// relationshipBase is roughly proportional to how emotionally charged each
// label is. Obsessed/manic highest, indifferent zero.
var relationshipBase = map[Relationship]int{
	Obsessed:    35,
	Manic:       35,
	Devoted:     25,
	Protective:  22,
	Hostile:     18,
	Grieving:    15,
	Resentful:   10,
	Curious:     8,
	Indifferent: 0,
}

// OutreachScore composes independent signals into a desirability score ≥ 0.
// Dead/dormant voices and voices already holding a pending DM score 0.
func OutreachScore(cfg OutreachConfig, v *Voice, themes []string, impact Impact) int {
	if v == nil || v.State == StateDead || v.State == StateDormant || v.PendingDM != nil {
		return 0
	}

	score := relationshipBase[v.Relationship]

	switch {
	case v.Influence >= cfg.InfluenceTierHigh:
		score += 15
	case v.Influence >= cfg.InfluenceTierMid:
		score += 10
	case v.Influence >= cfg.InfluenceTierLow:
		score += 5
	}

	switch countThemeMatches(v.Themes, themes) {
	case 0:
	case 1:
		score += 10
	default:
		score += 20
	}

	switch impact {
	case ImpactCritical:
		score += 20
	case ImpactSignificant:
		score += 10
	}

	if v.State == StateAgitated {
		score += 15
	}

	switch {
	case v.SilentStreak >= cfg.SilenceTierLong:
		score += 15
	case v.SilentStreak >= cfg.SilenceTierShort:
		score += 8
	}

	score += cfg.ChattinessWeight * v.Chattiness

	if v.SilentStreak == 0 {
		score -= cfg.JustSpokePenalty
	}
	if v.Influence < cfg.LowInfluenceFloor {
		score -= cfg.LowInfluencePenalty
	}

	if score < 0 {
		score = 0
	}
	return score
}

func countThemeMatches(voiceThemes, contextThemes []string) int {
	n := 0
	for _, vt := range voiceThemes {
		for _, ct := range contextThemes {
			if vt == ct {
				n++
				break
			}
		}
	}
	return n
}

// OutreachPick identifies the voice selected to initiate contact.
type OutreachPick struct {
	VoiceID string
	Name    string
}

// CheckOutreach runs the selection protocol for one triggering story event.
// The cooldown counter increments every event and resets only on a fire. At
// most one voice is selected; a failed probabilistic draw mutates nothing
// and the voice stays eligible next event.
func (s *Session) CheckOutreach(themes []string, impact Impact, trigger string) *OutreachPick {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outreachEvents++
	if s.outreachEvents < s.outreachCfg.CooldownEvents {
		return nil
	}

	pending := 0
	for _, v := range s.voices {
		if v.PendingDM != nil {
			pending++
		}
	}
	if pending >= s.outreachCfg.MaxPendingDMs {
		return nil
	}

	var best *Voice
	bestScore := 0
	for _, v := range s.voices {
		// Ties break by roster order: first highest wins.
		if sc := OutreachScore(s.outreachCfg, v, themes, impact); sc > bestScore {
			best, bestScore = v, sc
		}
	}
	if best == nil {
		return nil
	}

	draw := s.rng.Intn(100)
	if draw > bestScore {
		log.Debug().Str("voice", best.Name).Int("score", bestScore).Int("draw", draw).
			Msg("outreach draw failed")
		return nil
	}

	s.outreachEvents = 0
	best.PendingDM = &PendingDM{Trigger: trigger, Timestamp: time.Now()}
	s.save(best)
	log.Info().Str("voice", best.Name).Int("score", bestScore).Int("draw", draw).
		Msg("outreach fired")
	return &OutreachPick{VoiceID: best.ID, Name: best.Name}
}

// ComposeOutreachDM generates the pending DM text for a voice selected by
// CheckOutreach. A provider failure degrades to the neutral filler; the
// outreach is consumed either way.
func (s *Session) ComposeOutreachDM(voiceID string) string {
	s.mu.Lock()
	v := s.byID[voiceID]
	if v == nil || v.PendingDM == nil {
		s.mu.Unlock()
		return ""
	}
	msgs := buildOutreachMessages(v)
	s.mu.Unlock()

	text := NeutralReply
	out, err := s.provider.Generate(msgs)
	if err != nil {
		log.Warn().Err(err).Str("voice", v.Name).Msg("outreach generation failed")
	} else if t := ExtractAssessment(out).Text; t != "" {
		text = t
	}

	s.mu.Lock()
	if v.PendingDM != nil {
		v.PendingDM.Text = text
	}
	s.save(v)
	s.mu.Unlock()
	return text
}
