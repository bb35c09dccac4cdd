package voice

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceloom/internal/ai"
)

// memSaver counts persistence calls; nothing touches disk in these tests.
type memSaver struct {
	mu           sync.Mutex
	voiceSaves   int
	historySaves int
	lastHistory  []Turn
}

func (m *memSaver) SaveVoice(v *Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voiceSaves++
}

func (m *memSaver) SaveCouncilHistory(h []Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historySaves++
	m.lastHistory = h
}

func fixedProvider(reply string) ai.Provider {
	return ai.ProviderFunc(func([]ai.Message) (string, error) { return reply, nil })
}

func countingProvider(calls *int, reply string) ai.Provider {
	return ai.ProviderFunc(func([]ai.Message) (string, error) {
		*calls++
		return reply, nil
	})
}

func failingProvider() ai.Provider {
	return ai.ProviderFunc(func([]ai.Message) (string, error) {
		return "", errors.New("upstream down")
	})
}

func testVoice(id, name string) *Voice {
	return &Voice{
		ID:           id,
		Name:         name,
		Influence:    40,
		Relationship: Curious,
		State:        StateActive,
	}
}

func TestVoiceByNameUsesSpeakerRules(t *testing.T) {
	s := NewSession(fixedProvider(""), nil, []*Voice{testVoice("a", "Voice A")})

	require.NotNil(t, s.VoiceByName("[VOICE_A]"))
	assert.Nil(t, s.VoiceByName("Voice"))
}

func TestClearPendingDM(t *testing.T) {
	v := testVoice("a", "A")
	v.PendingDM = &PendingDM{Text: "hi"}
	saver := &memSaver{}
	s := NewSession(fixedProvider(""), saver, []*Voice{v})

	s.ClearPendingDM("a")
	assert.Nil(t, v.PendingDM)
	assert.Equal(t, 1, saver.voiceSaves)

	// Already clear: no save.
	s.ClearPendingDM("a")
	assert.Equal(t, 1, saver.voiceSaves)
}

func TestResetClearsGuards(t *testing.T) {
	s := NewSession(fixedProvider(""), nil, nil)
	s.councilInFlight = true
	s.directoryInFlight["a"] = true
	s.outreachEvents = 3

	s.Reset()
	assert.False(t, s.councilInFlight)
	assert.Empty(t, s.directoryInFlight)
	assert.Zero(t, s.outreachEvents)
}

func TestAppendTrimmedWindow(t *testing.T) {
	var h []Turn
	for i := 0; i < 25; i++ {
		h = appendTrimmed(h, 10, Turn{Text: "x"}, Turn{Text: "y"})
	}
	assert.Len(t, h, 10)
}

// Drives every channel kind at once; run with -race to check that voice
// mutations and rng draws are serialized across them.
func TestConcurrentChannelsShareNoState(t *testing.T) {
	va := testVoice("a", "Voice A")
	va.Resolution = &Resolution{Type: ResolutionWitness}
	vb := testVoice("b", "Voice B")
	s := NewSession(fixedProvider(
		"Voice A: still here\n[COUNCIL_DYNAMICS] none\n[COUNCIL_INSIGHTS] Voice A: noticed the quiet between the questions",
	), &memSaver{}, []*Voice{va, vb})

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(4)
		go func() { defer wg.Done(); _, _ = s.CouncilTurn("hello") }()
		go func() { defer wg.Done(); s.CheckOutreach([]string{"grief"}, ImpactMinor, "event") }()
		go func() {
			defer wg.Done()
			s.ApplyEventProgress(EventClass{ResolutionProgress: []ProgressHint{
				{VoiceName: "Voice A", Amount: 2},
			}})
		}()
		go func() { defer wg.Done(); _, _ = s.DirectoryExchange("b", "hi") }()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, va.Resolution.Progress, 0)
	assert.LessOrEqual(t, va.Resolution.Progress, 100)
}

func TestSetOpinion(t *testing.T) {
	v := testVoice("a", "A")
	v.SetOpinion("b", "wary")
	v.SetOpinion("a", "self")    // self-directed dropped
	v.SetOpinion("c", "")        // empty dropped
	v.SetOpinion("b", "trusted") // overwrite

	assert.Equal(t, map[string]string{"b": "trusted"}, v.Relationships)
}
