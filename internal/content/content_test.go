package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedSeed(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	require.Len(t, c.Programs, 4)
	assert.Equal(t, "NIA Empowerment Academy", c.Programs[0].Title)
	require.Len(t, c.Questions, 8)
	assert.Equal(t, "nia", c.Questions[0].Program)
	assert.Equal(t, "nia-global", c.Questions[7].Program)

	require.NotNil(t, c.Mentor("m2"))
	assert.Equal(t, []string{"English", "Spanish"}, c.Mentor("m2").Languages)
	assert.Nil(t, c.Mentor("m9"))

	require.NotNil(t, c.Reward("gift-sticker"))
	assert.Equal(t, 400, c.Reward("gift-sticker").Cost)
	assert.True(t, c.HasTopic("Financial Literacy"))
	assert.False(t, c.HasTopic("Cooking"))
	assert.Len(t, c.Events, 3)
}

func TestParseRejectsUnknownProgram(t *testing.T) {
	_, err := Parse([]byte(`
programs:
  - key: nia
    title: NIA
questions:
  - text: Q?
    program: missing
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown program")
}

func TestParseRejectsDuplicateMentor(t *testing.T) {
	_, err := Parse([]byte(`
programs:
  - key: nia
mentors:
  - id: m1
  - id: m1
`))
	require.Error(t, err)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("programs: [unclosed"))
	require.Error(t, err)
}
