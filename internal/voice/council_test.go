package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouncilTurnFull(t *testing.T) {
	saver := &memSaver{}
	va := testVoice("a", "Voice A")
	vb := testVoice("b", "Voice B")
	vb.Resolution = &Resolution{Type: ResolutionWitness}
	vb.SilentStreak = 2

	s := NewSession(fixedProvider(`Voice A: the garden again.
[COUNCIL_DYNAMICS]
Voice A -> Voice B: quietly protective
[COUNCIL_INSIGHTS]
Voice B: was seen for the first time in years`), saver, []*Voice{va, vb})

	res, err := s.CouncilTurn("tell me about the garden")
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, res.Messages, 1)
	assert.Equal(t, "a", res.Messages[0].VoiceID)

	// Dynamics land as a directed opinion.
	assert.Equal(t, "quietly protective", va.Relationships["b"])
	assert.Empty(t, vb.Relationships)

	// The insight advanced B's resolution by a bounded amount.
	require.Len(t, res.Insights, 1)
	assert.GreaterOrEqual(t, vb.Resolution.Progress, insightProgressMin)
	assert.LessOrEqual(t, vb.Resolution.Progress, insightProgressMax)

	// Speakers reset their silence streak, listeners accrue.
	assert.Equal(t, 0, va.SilentStreak)
	assert.Equal(t, 3, vb.SilentStreak)

	// Shared history: user turn then voice turn.
	h := s.CouncilHistory()
	require.Len(t, h, 2)
	assert.Equal(t, "user", h[0].Role)
	assert.Equal(t, "voice", h[1].Role)
	assert.Equal(t, "a", h[1].VoiceID)
	assert.Equal(t, 1, saver.historySaves)
}

func TestCouncilTurnInFlight(t *testing.T) {
	s := NewSession(fixedProvider("Voice A: hi"), &memSaver{}, []*Voice{testVoice("a", "Voice A")})
	s.councilInFlight = true

	res, err := s.CouncilTurn("hello")
	assert.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, s.CouncilHistory())
}

func TestCouncilTurnNoLivingVoices(t *testing.T) {
	v := testVoice("a", "Voice A")
	v.State = StateDead
	s := NewSession(fixedProvider("x"), &memSaver{}, []*Voice{v})

	_, err := s.CouncilTurn("hello")
	assert.Error(t, err)
}

func TestCouncilTurnProviderFailure(t *testing.T) {
	va := testVoice("a", "Voice A")
	s := NewSession(failingProvider(), &memSaver{}, []*Voice{va})

	res, err := s.CouncilTurn("hello")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Messages)

	// The user's message still enters shared history.
	h := s.CouncilHistory()
	require.Len(t, h, 1)
	assert.Equal(t, "user", h[0].Role)
	assert.Equal(t, "hello", h[0].Text)
}

func TestCouncilTurnDeadVoicesExcluded(t *testing.T) {
	va := testVoice("a", "Voice A")
	vb := testVoice("b", "Voice B")
	vb.State = StateDead

	// The model speaks for the dead voice anyway; the roster filter drops it.
	s := NewSession(fixedProvider("Voice B: I am still here"), &memSaver{}, []*Voice{va, vb})

	res, err := s.CouncilTurn("hello")
	require.NoError(t, err)
	assert.Empty(t, res.Messages)
	assert.Equal(t, 0, vb.SilentStreak)
	assert.Equal(t, 1, va.SilentStreak)
}
