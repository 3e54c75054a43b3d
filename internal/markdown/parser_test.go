package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	p := NewParser()

	html, err := p.Render("21-15-9 reps of\n\n- thrusters\n- pull-ups")
	require.NoError(t, err)
	assert.Contains(t, html, "<li>thrusters</li>")
	assert.Contains(t, html, "<li>pull-ups</li>")

	html, err = p.Render("line one\nline two")
	require.NoError(t, err)
	assert.Contains(t, html, "<br />")

	html, err = p.Render(`<script>alert("x")</script>`)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestDocument(t *testing.T) {
	p := NewParser()

	var meta struct {
		Name      string `toml:"name"`
		GoalValue int    `toml:"goal_value"`
		Movements []struct {
			Name     string         `toml:"name"`
			Settings map[string]int `toml:"settings"`
		} `toml:"movements"`
	}

	body, err := p.Document([]byte(`+++
name = "grace"
goal_value = 1

[[movements]]
name = "clean and jerk"
settings.repetitions = 30
settings.poids = 60
+++

30 clean and jerks for time.
`), &meta)
	require.NoError(t, err)

	assert.Equal(t, "grace", meta.Name)
	assert.Equal(t, 1, meta.GoalValue)
	require.Len(t, meta.Movements, 1)
	assert.Equal(t, map[string]int{"repetitions": 30, "poids": 60}, meta.Movements[0].Settings)
	assert.Equal(t, "30 clean and jerks for time.", string(body))
}

func TestDocumentWithoutFrontmatter(t *testing.T) {
	var meta map[string]any
	_, err := NewParser().Document([]byte("just text"), &meta)
	assert.ErrorIs(t, err, ErrNoFrontmatter)
}
