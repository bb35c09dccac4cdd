package voice

import "time"

// Relationship is the voice's emotional stance toward the user. Values change
// only through Transition; never assign other strings.
type Relationship string

const (
	Hostile     Relationship = "hostile"
	Resentful   Relationship = "resentful"
	Indifferent Relationship = "indifferent"
	Curious     Relationship = "curious"
	Devoted     Relationship = "devoted"
	Protective  Relationship = "protective"
	Obsessed    Relationship = "obsessed"
	Manic       Relationship = "manic"
	Grieving    Relationship = "grieving"
)

// AllRelationships lists the nine labels (table iteration, tests).
var AllRelationships = []Relationship{
	Hostile, Resentful, Indifferent, Curious, Devoted,
	Protective, Obsessed, Manic, Grieving,
}

// State is the lifecycle classification. Owned by the lifecycle collaborator;
// the core reads it but never writes it.
type State string

const (
	StateActive   State = "active"
	StateAgitated State = "agitated"
	StateDormant  State = "dormant"
	StateDead     State = "dead"
)

// ResolutionType is a voice's path to narrative closure.
type ResolutionType string

const (
	ResolutionFade      ResolutionType = "fade"
	ResolutionHeal      ResolutionType = "heal"
	ResolutionConfront  ResolutionType = "confront"
	ResolutionWitness   ResolutionType = "witness"
	ResolutionTransform ResolutionType = "transform"
	ResolutionEndure    ResolutionType = "endure"
)

// KnownResolutionType reports whether t is one of the six types.
func KnownResolutionType(t ResolutionType) bool {
	switch t {
	case ResolutionFade, ResolutionHeal, ResolutionConfront,
		ResolutionWitness, ResolutionTransform, ResolutionEndure:
		return true
	}
	return false
}

// Resolution tracks progress toward closure. Progress is clamped to [0,100]
// and only moves forward through AdvanceResolution.
type Resolution struct {
	Type      ResolutionType `json:"type"`
	Condition string         `json:"condition"`
	Progress  int            `json:"progress"`
}

// PendingDM is an outreach the voice holds until the presentation layer
// delivers it. A voice holds at most one at a time.
type PendingDM struct {
	Text      string    `json:"text"`
	Trigger   string    `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn is one exchanged message in a bounded history window.
type Turn struct {
	Role    string    `json:"role"` // "user" | "voice"
	VoiceID string    `json:"voice_id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Voice is the persistent persona record. Free-text descriptor fields are
// opaque to the core and only feed prompt construction.
type Voice struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Arcana        string `json:"arcana"`
	Personality   string `json:"personality"`
	SpeakingStyle string `json:"speaking_style"`

	Influence    int          `json:"influence"` // 0..100
	Relationship Relationship `json:"relationship"`
	State        State        `json:"state"`
	Resolution   *Resolution  `json:"resolution,omitempty"`

	// Directed free-text opinions about other voices, keyed by voice ID.
	// Advisory context for prompts, never a state-machine input.
	Relationships map[string]string `json:"relationships,omitempty"`

	DirectoryHistory []Turn     `json:"directory_history,omitempty"`
	PendingDM        *PendingDM `json:"pending_dm,omitempty"`

	SilentStreak int      `json:"silent_streak"` // council turns since last spoke
	Chattiness   int      `json:"chattiness"`    // static personality trait
	Themes       []string `json:"themes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Alive reports whether the voice can still participate in exchanges.
func (v *Voice) Alive() bool {
	return v.State != StateDead
}

// SetOpinion records a directed free-text opinion about another voice.
func (v *Voice) SetOpinion(otherID, opinion string) {
	if otherID == "" || otherID == v.ID || opinion == "" {
		return
	}
	if v.Relationships == nil {
		v.Relationships = make(map[string]string)
	}
	v.Relationships[otherID] = opinion
}

// appendTrimmed appends turns to history keeping only the newest max entries.
func appendTrimmed(history []Turn, max int, turns ...Turn) []Turn {
	history = append(history, turns...)
	if len(history) > max {
		history = history[len(history)-max:]
	}
	return history
}
