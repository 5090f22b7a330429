package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zr3/muse/internal/apperr"
)

const fullYAML = `name: Wren Ashby
tone: wistful, lightly ironic
mood:
  dominant: quietly elated
  undercurrent: restless
formality: relaxed
perspective:
  pronouns: [first-person]
  narrative_distance: close
rhetorical_style:
  sentence_structure: long and winding
  use_of_analogy: metaphor-heavy
humor_profile:
  humor_type: [dry, self-deprecating]
  humor_target: the self
  delivery_style: deadpan
  frequency: sparse but sharp
values_and_themes:
  core_values: [solitude, attention]
  recurring_themes: weather, memory, small rituals
lexical_and_stylistic_traits:
  favorite_words: [hush, amber, linger]
  punctuation_signature: ellipses
psychological_fingerprint:
  openness_to_experience: 8
  conscientiousness: "6"
  extraversion: [3]
  agreeableness: 7/10
  neuroticism: eleven
  cognitive_style: intuitive
key_phrases:
  - rainy afternoons
  - the kettle knows
description: A narrator who treats weather as company.
`

func TestParseFull(t *testing.T) {
	p, err := Parse(fullYAML, "sample1.txt")
	require.NoError(t, err)

	assert.Equal(t, "Wren Ashby", p.Name)
	assert.Equal(t, Text("wistful, lightly ironic"), p.Tone)
	assert.Equal(t, Text("dominant: quietly elated; undercurrent: restless"), p.Mood)
	assert.Equal(t, List{"first-person"}, p.Perspective.Pronouns)
	assert.Equal(t, List{"dry", "self-deprecating"}, p.HumorProfile.Type)
	assert.Equal(t, Text("deadpan"), p.HumorProfile.Delivery)
	assert.Equal(t, List{"weather", "memory", "small rituals"}, p.ValuesAndThemes.RecurringThemes)
	assert.Equal(t, List{"rainy afternoons", "the kettle knows"}, p.KeyPhrases)
	assert.Equal(t, Score(8), p.Psychology.Openness)
	assert.Equal(t, Score(6), p.Psychology.Conscientiousness)
	assert.Equal(t, Score(3), p.Psychology.Extraversion)
	assert.Equal(t, Score(7), p.Psychology.Agreeableness)
	assert.Equal(t, Score(0), p.Psychology.Neuroticism)
	assert.Equal(t, "A narrator who treats weather as company.", p.Description.String())
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantName string
	}{
		{"json", `{"name": "Ines", "tone": "clinical", "key_phrases": ["in short"]}`, "Ines"},
		{"fenced", "Here you go:\n```yaml\nname: Otto\ntone: earnest\n```\nEnjoy.", "Otto"},
		{"wrapped in schema key", "PersonaSchema:\n  name: Mara\n  tone: lyrical\n", "Mara"},
		{"summary field", "name: Pell\nsummary_description: Speaks in weather reports.\n", "Pell"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.response, "s.txt")
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name)
		})
	}

	p, err := Parse("name: Pell\nsummary_description: Speaks in weather reports.\n", "s.txt")
	require.NoError(t, err)
	assert.Equal(t, Text("Speaks in weather reports."), p.Description)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"prose", "I'm sorry, I can't analyze that."},
		{"broken yaml", "name: [unterminated"},
		{"list", "- one\n- two"},
		{"no name", "tone: calm\nmood: flat"},
		{"blank name", "name: '  '\ntone: calm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.response, "bad.txt")
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Equal(t, apperr.Parse, apperr.KindOf(err))
			assert.Contains(t, err.Error(), "bad.txt")
		})
	}
}

func TestOrFallbacks(t *testing.T) {
	assert.Equal(t, "Neutral", Text(" ").Or("Neutral"))
	assert.Equal(t, "dry", Text("dry").Or("Neutral"))
	assert.Equal(t, []string{"a", "b"}, List(nil).Or("a", "b"))
	assert.Equal(t, []string{"x"}, List{"x"}.Or("a"))
}

func TestSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "personas")
	orig, err := Parse(fullYAML, "sample1.txt")
	require.NoError(t, err)
	orig.SourceSample = "input-texts/sample1.txt"

	path, err := Save(dir, "sample1", orig)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sample1.yaml"), path)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, orig, loaded)
}

func TestSaveUnwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "personas")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Save(blocker, "s", &Persona{Name: "x"})
	assert.Equal(t, apperr.IO, apperr.KindOf(err))
}

func TestListSamples(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"sample10.txt", "sample2.txt", "notes.md", "sample1.TXT"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
	paths, err := ListSamples(dir)
	require.NoError(t, err)

	var stems []string
	for _, p := range paths {
		stems = append(stems, Stem(p))
	}
	assert.Equal(t, []string{"sample1", "sample2", "sample10"}, stems)

	_, err = ListSamples(filepath.Join(dir, "missing"))
	assert.True(t, apperr.Fatal(err))
}
