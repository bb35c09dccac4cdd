package voice

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"voiceloom/internal/ai"
)

// insight progress amounts: bounded random per insight.
const (
	insightProgressMin = 3
	insightProgressMax = 7
)

// insightResolutions are the resolution types a group-conversation insight
// may advance. Fade and endure are never earned through dialogue.
var insightResolutions = []ResolutionType{
	ResolutionHeal, ResolutionWitness, ResolutionConfront, ResolutionTransform,
}

// CouncilResult is the typed outcome of one multi-voice turn.
type CouncilResult struct {
	Messages []CouncilMessage
	Dynamics []DynamicsEntry
	Insights []InsightEntry
}

// CouncilTurn runs one shared multi-voice exchange: a single completion is
// split into per-voice messages plus dynamics and insight sub-blocks, which
// feed back into opinions and resolution progress. A call while a turn is
// already in flight is a silent no-op (nil, nil). A provider failure
// consumes the turn: the user's message still enters shared history and an
// empty result returns. The session lock is held for everything except the
// provider call, so a concurrent outreach check or event classification
// cannot observe half-applied state.
func (s *Session) CouncilTurn(userText string) (*CouncilResult, error) {
	s.mu.Lock()
	if s.councilInFlight {
		s.mu.Unlock()
		return nil, nil
	}
	s.councilInFlight = true
	roster := livingVoices(s.voices)
	history := make([]Turn, len(s.councilHistory))
	copy(history, s.councilHistory)
	var msgs []ai.Message
	if len(roster) > 0 {
		msgs = buildCouncilMessages(roster, history, userText)
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.councilInFlight = false
		s.mu.Unlock()
	}()

	if len(roster) == 0 {
		return nil, fmt.Errorf("no living voices")
	}

	now := time.Now()
	out, err := s.provider.Generate(msgs)
	if err != nil {
		log.Warn().Err(err).Msg("council generation failed")
		s.mu.Lock()
		s.appendCouncilTurns(userText, nil, now)
		s.mu.Unlock()
		return &CouncilResult{
			Messages: []CouncilMessage{},
			Dynamics: []DynamicsEntry{},
			Insights: []InsightEntry{},
		}, nil
	}

	parsed := ParseCouncilBlock(out, roster)

	s.mu.Lock()
	for _, d := range parsed.Dynamics {
		from := s.byID[d.FromID]
		if from == nil {
			continue
		}
		from.SetOpinion(d.ToID, d.Opinion)
		s.save(from)
	}

	for _, in := range parsed.Insights {
		v := s.byID[in.VoiceID]
		if v == nil {
			continue
		}
		amount := insightProgressMin + s.rng.Intn(insightProgressMax-insightProgressMin+1)
		before := 0
		if v.Resolution != nil {
			before = v.Resolution.Progress
		}
		if after := AdvanceResolution(v, amount, insightResolutions...); after != before {
			log.Debug().Str("voice", v.Name).Int("progress", after).
				Str("insight", TrimToChars(in.Description, 80)).Msg("resolution advanced")
			s.save(v)
		}
	}

	spoke := make(map[string]bool, len(parsed.Messages))
	for _, m := range parsed.Messages {
		spoke[m.VoiceID] = true
	}
	for _, v := range roster {
		if spoke[v.ID] {
			v.SilentStreak = 0
		} else {
			v.SilentStreak++
		}
		s.save(v)
	}

	s.appendCouncilTurns(userText, parsed.Messages, now)
	s.mu.Unlock()

	return &CouncilResult{
		Messages: parsed.Messages,
		Dynamics: parsed.Dynamics,
		Insights: parsed.Insights,
	}, nil
}

// appendCouncilTurns requires s.mu to be held.
func (s *Session) appendCouncilTurns(userText string, messages []CouncilMessage, at time.Time) {
	var turns []Turn
	if userText != "" {
		turns = append(turns, Turn{Role: "user", Text: userText, At: at})
	}
	for _, m := range messages {
		turns = append(turns, Turn{Role: "voice", VoiceID: m.VoiceID, Name: m.Name, Text: m.Text, At: at})
	}
	if len(turns) == 0 {
		return
	}
	s.councilHistory = appendTrimmed(s.councilHistory, maxCouncilHistory, turns...)
	s.saveCouncilHistory()
}

func livingVoices(voices []*Voice) []*Voice {
	out := make([]*Voice, 0, len(voices))
	for _, v := range voices {
		if v.Alive() {
			out = append(out, v)
		}
	}
	return out
}
