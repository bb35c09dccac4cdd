package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAssessmentFullBlock(t *testing.T) {
	raw := "hello\n[ASSESSMENT]\nrelationship_shift: warmer\ninfluence_delta: 3\nreason: test\n[/ASSESSMENT]"

	got := ExtractAssessment(raw)
	assert.Equal(t, "hello", got.Text)
	require.NotNil(t, got.Assessment)
	assert.Equal(t, ShiftWarmer, got.Assessment.RelationshipShift)
	require.NotNil(t, got.Assessment.InfluenceDelta)
	assert.Equal(t, 3, *got.Assessment.InfluenceDelta)
	assert.Nil(t, got.Assessment.ConfrontProgress)
	assert.Equal(t, "test", got.Assessment.Reason)
}

func TestExtractAssessmentNoBlock(t *testing.T) {
	got := ExtractAssessment("  just a reply, nothing structured  ")
	assert.Equal(t, "just a reply, nothing structured", got.Text)
	assert.Nil(t, got.Assessment)
}

func TestExtractAssessmentCaseInsensitiveTags(t *testing.T) {
	raw := "fine.\n[assessment]\nRelationship_Shift: MUCH_COLDER\nconfront_progress: 12\n[/Assessment]"

	got := ExtractAssessment(raw)
	assert.Equal(t, "fine.", got.Text)
	require.NotNil(t, got.Assessment)
	assert.Equal(t, ShiftMuchColder, got.Assessment.RelationshipShift)
	require.NotNil(t, got.Assessment.ConfrontProgress)
	assert.Equal(t, 12, *got.Assessment.ConfrontProgress)
}

func TestExtractAssessmentMalformedFields(t *testing.T) {
	raw := "ok\n[ASSESSMENT]\nrelationship_shift: sideways\ninfluence_delta: lots\n[/ASSESSMENT]"

	got := ExtractAssessment(raw)
	assert.Equal(t, "ok", got.Text)
	require.NotNil(t, got.Assessment)
	assert.Equal(t, ShiftNone, got.Assessment.RelationshipShift)
	assert.Nil(t, got.Assessment.InfluenceDelta)
}

func TestExtractAssessmentTextSurroundsBlock(t *testing.T) {
	raw := "before [ASSESSMENT]influence_delta: -2[/ASSESSMENT] after"

	got := ExtractAssessment(raw)
	assert.Equal(t, "before  after", got.Text)
	require.NotNil(t, got.Assessment)
	require.NotNil(t, got.Assessment.InfluenceDelta)
	assert.Equal(t, -2, *got.Assessment.InfluenceDelta)
}
