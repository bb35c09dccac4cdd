package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hotVoice scores well above 99, so the probabilistic draw always passes.
func hotVoice(id, name string) *Voice {
	return &Voice{
		ID:           id,
		Name:         name,
		Influence:    75,
		Relationship: Obsessed,
		State:        StateAgitated,
		SilentStreak: 6,
		Themes:       []string{"grief", "trust"},
	}
}

func TestOutreachScore(t *testing.T) {
	cfg := DefaultOutreachConfig()

	tests := []struct {
		name   string
		voice  *Voice
		themes []string
		impact Impact
		want   int
	}{
		{"nil voice", nil, nil, ImpactNone, 0},
		{"dead", &Voice{State: StateDead, Relationship: Obsessed}, nil, ImpactCritical, 0},
		{"dormant", &Voice{State: StateDormant, Relationship: Obsessed}, nil, ImpactCritical, 0},
		{
			"pending DM holds",
			&Voice{State: StateActive, Relationship: Obsessed, Influence: 75,
				PendingDM: &PendingDM{}},
			nil, ImpactCritical, 0,
		},
		{
			// 0 base + 10 mid influence tier, streak keeps the penalty off.
			"indifferent mid influence",
			&Voice{State: StateActive, Relationship: Indifferent, Influence: 50, SilentStreak: 1},
			nil, ImpactNone, 10,
		},
		{
			// 35+15+20+20+15+15 plus chattiness 3*2.
			"everything stacked",
			&Voice{State: StateAgitated, Relationship: Obsessed, Influence: 75,
				SilentStreak: 6, Chattiness: 3, Themes: []string{"grief", "trust"}},
			[]string{"grief", "trust", "fear"}, ImpactCritical, 126,
		},
		{
			// 8+5 minus the just-spoke penalty.
			"just spoke",
			&Voice{State: StateActive, Relationship: Curious, Influence: 30},
			nil, ImpactNone, 3,
		},
		{
			// 8-20 clamps at zero.
			"low influence floor",
			&Voice{State: StateActive, Relationship: Curious, Influence: 10, SilentStreak: 1},
			nil, ImpactNone, 0,
		},
		{
			// 25 base + 10 one theme match, influence 20 hits no tier.
			"single theme match",
			&Voice{State: StateActive, Relationship: Devoted, Influence: 20,
				SilentStreak: 1, Themes: []string{"memory"}},
			[]string{"memory"}, ImpactNone, 35,
		},
		{
			"significant impact",
			&Voice{State: StateActive, Relationship: Indifferent, Influence: 20, SilentStreak: 1},
			nil, ImpactSignificant, 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutreachScore(cfg, tt.voice, tt.themes, tt.impact))
		})
	}
}

func TestCheckOutreachCooldown(t *testing.T) {
	saver := &memSaver{}
	v := hotVoice("a", "A")
	s := NewSession(fixedProvider(""), saver, []*Voice{v})

	themes := []string{"grief", "trust"}

	// Events 1..3 sit inside the cooldown window.
	for i := 0; i < 3; i++ {
		assert.Nil(t, s.CheckOutreach(themes, ImpactCritical, "t"), "event %d", i+1)
	}

	pick := s.CheckOutreach(themes, ImpactCritical, "the garden burned")
	require.NotNil(t, pick)
	assert.Equal(t, "a", pick.VoiceID)
	require.NotNil(t, v.PendingDM)
	assert.Equal(t, "the garden burned", v.PendingDM.Trigger)
	assert.False(t, v.PendingDM.Timestamp.IsZero())
	assert.Equal(t, 1, saver.voiceSaves)

	// Counter reset on fire: three more events stay quiet.
	s.ClearPendingDM("a")
	for i := 0; i < 3; i++ {
		assert.Nil(t, s.CheckOutreach(themes, ImpactCritical, "t"))
	}
	assert.NotNil(t, s.CheckOutreach(themes, ImpactCritical, "t"))
}

func TestCheckOutreachPendingCap(t *testing.T) {
	v1 := hotVoice("a", "A")
	v2 := testVoice("b", "B")
	v2.PendingDM = &PendingDM{}
	v3 := testVoice("c", "C")
	v3.PendingDM = &PendingDM{}
	s := NewSession(fixedProvider(""), nil, []*Voice{v1, v2, v3})

	for i := 0; i < 6; i++ {
		assert.Nil(t, s.CheckOutreach([]string{"grief", "trust"}, ImpactCritical, "t"))
	}
	assert.Nil(t, v1.PendingDM)
}

func TestCheckOutreachNoEligibleVoice(t *testing.T) {
	v := testVoice("a", "A")
	v.State = StateDormant
	s := NewSession(fixedProvider(""), nil, []*Voice{v})

	for i := 0; i < 8; i++ {
		assert.Nil(t, s.CheckOutreach(nil, ImpactNone, "t"))
	}
}

func TestCheckOutreachTieBreaksByRosterOrder(t *testing.T) {
	v1 := hotVoice("first", "First")
	v2 := hotVoice("second", "Second")
	s := NewSession(fixedProvider(""), nil, []*Voice{v1, v2})

	var pick *OutreachPick
	for pick == nil {
		pick = s.CheckOutreach([]string{"grief", "trust"}, ImpactCritical, "t")
	}
	assert.Equal(t, "first", pick.VoiceID)
}

func TestComposeOutreachDM(t *testing.T) {
	saver := &memSaver{}
	v := hotVoice("a", "A")
	v.PendingDM = &PendingDM{Trigger: "t"}
	s := NewSession(fixedProvider("I keep thinking about what you said."), saver, []*Voice{v})

	text := s.ComposeOutreachDM("a")
	assert.Equal(t, "I keep thinking about what you said.", text)
	assert.Equal(t, text, v.PendingDM.Text)
	assert.Equal(t, 1, saver.voiceSaves)
}

func TestComposeOutreachDMProviderFailure(t *testing.T) {
	v := hotVoice("a", "A")
	v.PendingDM = &PendingDM{Trigger: "t"}
	s := NewSession(failingProvider(), &memSaver{}, []*Voice{v})

	assert.Equal(t, NeutralReply, s.ComposeOutreachDM("a"))
	assert.Equal(t, NeutralReply, v.PendingDM.Text)
}

func TestComposeOutreachDMWithoutPending(t *testing.T) {
	v := hotVoice("a", "A")
	s := NewSession(fixedProvider("x"), nil, []*Voice{v})

	assert.Equal(t, "", s.ComposeOutreachDM("a"))
	assert.Equal(t, "", s.ComposeOutreachDM("missing"))
}
