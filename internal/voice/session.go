package voice

import (
	"math/rand"
	"sync"
	"time"

	"voiceloom/internal/ai"
)

// Saver persists mutated records. It is invoked after every state-changing
// operation so a session can be rebuilt verbatim on resume.
type Saver interface {
	SaveVoice(v *Voice)
	SaveCouncilHistory(h []Turn)
}

// History window bounds (oldest discarded first).
const (
	maxDirectoryHistory = 40
	maxCouncilHistory   = 60
)

// Session holds one channel-set's working state: the roster, the shared
// council history, in-flight guards, and the outreach cooldown. It replaces
// ambient globals; Reset is invoked on channel switch. mu serializes every
// voice mutation and rng draw across channels; it is never held across a
// provider call.
type Session struct {
	mu       sync.Mutex
	provider ai.Provider
	saver    Saver
	rng      *rand.Rand

	voices []*Voice
	byID   map[string]*Voice

	councilHistory    []Turn
	councilInFlight   bool
	directoryInFlight map[string]bool

	outreachEvents int
	outreachCfg    OutreachConfig
}

// NewSession builds a session over a deterministic roster order (ties in
// outreach selection break by this order).
func NewSession(provider ai.Provider, saver Saver, voices []*Voice) *Session {
	s := &Session{
		provider:          provider,
		saver:             saver,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
		voices:            voices,
		byID:              make(map[string]*Voice, len(voices)),
		directoryInFlight: make(map[string]bool),
		outreachCfg:       DefaultOutreachConfig(),
	}
	for _, v := range voices {
		s.byID[v.ID] = v
	}
	return s
}

// SetRand overrides the random source (deterministic tests).
func (s *Session) SetRand(r *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = r
}

// SetOutreachConfig overrides default outreach thresholds and weights.
func (s *Session) SetOutreachConfig(cfg OutreachConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outreachCfg = cfg
}

// SetCouncilHistory seeds the shared history on session resume.
func (s *Session) SetCouncilHistory(h []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.councilHistory = h
}

// CouncilHistory returns a copy of the shared history (presentation layer).
func (s *Session) CouncilHistory() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.councilHistory))
	copy(out, s.councilHistory)
	return out
}

// Voices returns the roster in its deterministic order.
func (s *Session) Voices() []*Voice {
	return s.voices
}

// VoiceByID returns a roster member or nil.
func (s *Session) VoiceByID(id string) *Voice {
	return s.byID[id]
}

// VoiceByName resolves a display name with the speaker rules, or nil.
func (s *Session) VoiceByName(name string) *Voice {
	return ResolveSpeaker(name, s.voices)
}

// Reset clears in-flight guards and the outreach cooldown. Call on channel
// switch (new chat, tab close). Voice records are untouched.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.councilInFlight = false
	s.directoryInFlight = make(map[string]bool)
	s.outreachEvents = 0
}

// ClearPendingDM removes a delivered outreach from the voice and persists.
func (s *Session) ClearPendingDM(voiceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.byID[voiceID]
	if v == nil || v.PendingDM == nil {
		return
	}
	v.PendingDM = nil
	s.save(v)
}

func (s *Session) save(v *Voice) {
	if s.saver != nil {
		s.saver.SaveVoice(v)
	}
}

func (s *Session) saveCouncilHistory() {
	if s.saver != nil {
		s.saver.SaveCouncilHistory(s.councilHistory)
	}
}
