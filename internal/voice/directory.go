package voice

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DirectoryResult is the typed outcome of a 1:1 exchange.
type DirectoryResult struct {
	Text       string
	Assessment *Assessment
}

// DirectoryExchange runs one 1:1 turn with a voice: bounded history plus the
// new user message go to the provider, the tagged extractor pulls the
// assessment, and the side effects apply. Confront is the only resolution
// type that may progress here; 1:1 confrontation is its sole channel.
//
// A provider failure is logged and surfaced as the neutral filler; the turn
// is consumed (history advances). An overlapping call for the same voice
// also yields the filler without touching state. Side effects apply under
// the session lock, serialized against council turns and event checks.
func (s *Session) DirectoryExchange(voiceID, userText string) (*DirectoryResult, error) {
	v := s.byID[voiceID]
	if v == nil {
		return nil, fmt.Errorf("unknown voice %q", voiceID)
	}

	s.mu.Lock()
	if !v.Alive() {
		s.mu.Unlock()
		return nil, fmt.Errorf("voice %s is dead", v.Name)
	}
	if s.directoryInFlight[voiceID] {
		s.mu.Unlock()
		return &DirectoryResult{Text: NeutralReply}, nil
	}
	s.directoryInFlight[voiceID] = true
	msgs := buildDirectoryMessages(v, userText)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.directoryInFlight, voiceID)
		s.mu.Unlock()
	}()

	now := time.Now()
	out, err := s.provider.Generate(msgs)
	if err != nil {
		log.Warn().Err(err).Str("voice", v.Name).Msg("directory generation failed")
		s.mu.Lock()
		s.appendDirectoryTurns(v, userText, NeutralReply, now)
		s.mu.Unlock()
		return &DirectoryResult{Text: NeutralReply}, nil
	}

	reply := ExtractAssessment(out)
	if reply.Text == "" {
		reply.Text = NeutralReply
	}

	s.mu.Lock()
	if a := reply.Assessment; a != nil {
		if next := Transition(v.Relationship, a.RelationshipShift); next != v.Relationship {
			log.Info().Str("voice", v.Name).
				Str("from", string(v.Relationship)).Str("to", string(next)).
				Str("reason", a.Reason).Msg("relationship shift")
			v.Relationship = next
		}
		if a.InfluenceDelta != nil {
			AdjustInfluence(v, *a.InfluenceDelta)
		}
		if a.ConfrontProgress != nil && *a.ConfrontProgress > 0 {
			AdvanceResolution(v, *a.ConfrontProgress, ResolutionConfront)
		}
	}
	s.appendDirectoryTurns(v, userText, reply.Text, now)
	s.mu.Unlock()

	return &DirectoryResult{Text: reply.Text, Assessment: reply.Assessment}, nil
}

// appendDirectoryTurns requires s.mu to be held.
func (s *Session) appendDirectoryTurns(v *Voice, userText, voiceText string, at time.Time) {
	v.DirectoryHistory = appendTrimmed(v.DirectoryHistory, maxDirectoryHistory,
		Turn{Role: "user", Text: userText, At: at},
		Turn{Role: "voice", VoiceID: v.ID, Name: v.Name, Text: voiceText, At: at},
	)
	s.save(v)
}
