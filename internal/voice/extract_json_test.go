package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEventClassFencedJSON(t *testing.T) {
	raw := "```json\n" +
		`{"impact":"critical","themes":["grief","weather","trust"],` +
		`"summary":"a loss surfaced","resolution_progress":[{"voice":"Echo","amount":4.6}]}` +
		"\n```"

	got := ExtractEventClass(raw)
	assert.Equal(t, ImpactCritical, got.Impact)
	// "weather" is outside the taxonomy and disappears.
	assert.Equal(t, []string{"grief", "trust"}, got.Themes)
	assert.Equal(t, "a loss surfaced", got.Summary)
	require.Len(t, got.ResolutionProgress, 1)
	assert.Equal(t, "Echo", got.ResolutionProgress[0].VoiceName)
	assert.Equal(t, 5, got.ResolutionProgress[0].Amount)
}

func TestExtractEventClassEmbeddedJSON(t *testing.T) {
	raw := `Here is the classification: {"impact":"minor","themes":["fear"]} hope that helps.`

	got := ExtractEventClass(raw)
	assert.Equal(t, ImpactMinor, got.Impact)
	assert.Equal(t, []string{"fear"}, got.Themes)
	assert.Empty(t, got.ResolutionProgress)
}

func TestExtractEventClassGarbage(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{broken", `{"impact": }`} {
		got := ExtractEventClass(raw)
		assert.Equal(t, DefaultEventClass(), got, "input %q", raw)
		assert.NotNil(t, got.Themes)
		assert.NotNil(t, got.ResolutionProgress)
	}
}

func TestExtractEventClassUnknownImpact(t *testing.T) {
	got := ExtractEventClass(`{"impact":"apocalyptic","themes":["rage"]}`)
	assert.Equal(t, ImpactNone, got.Impact)
	assert.Equal(t, []string{"rage"}, got.Themes)
}

func TestExtractEventClassClampsProgress(t *testing.T) {
	raw := `{"impact":"none","resolution_progress":[` +
		`{"voice":"A","amount":99},{"voice":"B","amount":-3},{"voice":"","amount":5}]}`

	got := ExtractEventClass(raw)
	require.Len(t, got.ResolutionProgress, 2)
	assert.Equal(t, 10, got.ResolutionProgress[0].Amount)
	assert.Equal(t, 0, got.ResolutionProgress[1].Amount)
}

func TestFirstJSONObjectSkipsStrings(t *testing.T) {
	s := `noise {"a":"br{ace} \"quoted\"","b":{"c":1}} trailing {"d":2}`
	assert.Equal(t, `{"a":"br{ace} \"quoted\"","b":{"c":1}}`, firstJSONObject(s))

	assert.Equal(t, "", firstJSONObject("{never closes"))
	assert.Equal(t, "", firstJSONObject("no braces"))
}
