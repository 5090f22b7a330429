/*
Copyright © 2023 Zak Reynolds <zak.reynolds@zakjr.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package prompts

import (
	"fmt"
	"strings"

	"zr3/muse/internal/persona"
)

const PersonaSystem = `You are a psychological analyst and literary critic. You read a writing sample and reconstruct the voice behind it: how the author sounds, what they care about, how they joke, how their sentences move. Be interpretive but stay grounded in evidence from the sample.`

const personaSchema = `Answer with a single YAML document using exactly these keys:

name: a plausible name that fits the voice and cultural tone of the sample
tone: dominant tonal signature (e.g. ironic, melancholic, earnest, lyrical)
mood: the emotional current below the surface, dominant and oscillating
formality: register of the language (e.g. academic, relaxed, streetwise)
perspective:
  pronouns: [first-person | second-person | third-person | mixed]
  narrative_distance: close, medium or distant, and how that shows
  temporal_orientation: memory, the present moment, or anticipation
rhetorical_style:
  sentence_structure: syntax habits (long and winding, clipped, breathless...)
  use_of_analogy: metaphor, simile, allegory, abstraction or literalism
  persuasive_tactics: arguing, confessing, musing, venting, storytelling...
humor_profile:
  humor_type: [list, e.g. dry, absurdist, self-deprecating]
  humor_target: what the humor is usually aimed at
  delivery_style: deadpan, meandering, sneaky punchlines...
  frequency: saturated, sparse but sharp, rare...
  implicit_emotion: the feeling underneath the humor
values_and_themes:
  core_values: [3 to 5 values]
  recurring_themes: [3 to 5 themes]
  implicit_worldview: beliefs about people and the world the text takes for granted
lexical_and_stylistic_traits:
  favorite_words: [5 to 10 distinctive words]
  taboo_words: [words avoided, may be empty]
  rhythm_and_pacing: how the language flows
  punctuation_signature: notable punctuation habits
  capitalization_habits: notable capitalization habits
psychological_fingerprint:
  openness_to_experience: 1-10
  conscientiousness: 1-10
  extraversion: 1-10
  agreeableness: 1-10
  neuroticism: 1-10
  cognitive_style: intuitive, logical, embodied, poetic...
  inner_conflict: tensions or contradictions in the voice
key_phrases: [5 to 10 phrases that capture the voice]
description: a vivid 4-6 sentence portrait of the narrator`

// PersonaExtraction is the user prompt sent with one writing sample.
func PersonaExtraction(sample string) string {
	var b strings.Builder
	b.WriteString(personaSchema)
	b.WriteString("\n\nWriting sample:\n\n")
	b.WriteString(strings.TrimSpace(sample))
	b.WriteString("\n\nRespond only with the YAML document, no preamble or explanation.")
	return b.String()
}

const imageInstruction = `Describe this photo in rich, concrete detail: the setting, the people or objects in it, light, color, weather, textures, and the mood it gives off. Mention small details a storyteller could build on. Do not speculate about who took it. Write plain prose, no lists or headings.`

// ImageDescription is the fixed instruction sent with every image. hint is
// optional capture context (date, camera) read from the file.
func ImageDescription(hint string) string {
	if hint == "" {
		return imageInstruction
	}
	return imageInstruction + "\n\nContext from the file: " + hint
}

const StorySystem = `You are a novelist with an exceptional ear for voice. You write short fiction that sounds exactly like the narrator you are given, never like yourself.`

// Story asks for one story in p's voice built on the given scene
// descriptions.
func Story(p *persona.Persona, descriptions []string) string {
	var b strings.Builder
	if len(descriptions) == 1 {
		b.WriteString("Here is a description of a photo:\n\n")
		b.WriteString(strings.TrimSpace(descriptions[0]))
		b.WriteString("\n\n")
	} else {
		b.WriteString("Here are descriptions of photos:\n\n")
		for i, d := range descriptions {
			fmt.Fprintf(&b, "Image %d: %s\n\n", i+1, strings.TrimSpace(d))
		}
	}

	rs, hp, vt, lx, ps := p.RhetoricalStyle, p.HumorProfile, p.ValuesAndThemes, p.Lexical, p.Psychology

	fmt.Fprintf(&b, "Write a reflective short story in the voice of %s, with a %s tone and a prevailing mood of %s. Keep the register %s.\n\n",
		p.Name, p.Tone.Or("neutral"), p.Mood.Or("calm"), p.Formality.Or("natural"))

	b.WriteString("Rhetorical style:\n")
	fmt.Fprintf(&b, "- Sentence structure: %s.\n", rs.SentenceStructure.Or("balanced"))
	fmt.Fprintf(&b, "- Analogy and metaphor: %s.\n", rs.UseOfAnalogy.Or("sparse and literal"))
	fmt.Fprintf(&b, "- The narration should feel like %s.\n\n", rs.PersuasiveTactics.Or("quiet storytelling"))

	b.WriteString("Humor, woven in lightly:\n")
	fmt.Fprintf(&b, "- Kind: %s, delivered %s.\n", strings.Join(hp.Type.Or("dry"), ", "), hp.Delivery.Or("with understatement"))
	fmt.Fprintf(&b, "- Aimed at %s, %s, carrying %s.\n\n", hp.Targets.Or("the narrator"), hp.Frequency.Or("occasionally"), hp.ImplicitEmotion.Or("bittersweet feeling"))

	b.WriteString("Worldview and values:\n")
	fmt.Fprintf(&b, "- Worldview: %s.\n", vt.ImplicitWorldview.Or("people are more complicated than they look"))
	fmt.Fprintf(&b, "- Core values: %s.\n", strings.Join(vt.CoreValues.Or("authenticity", "resilience"), ", "))
	fmt.Fprintf(&b, "- Recurring themes: %s.\n\n", strings.Join(vt.RecurringThemes.Or("identity", "memory", "connection"), ", "))

	b.WriteString("Lexical habits:\n")
	if len(lx.FavoriteWords) > 0 {
		fmt.Fprintf(&b, "- Favor words like %s.\n", strings.Join(lx.FavoriteWords, ", "))
	}
	if len(lx.TabooWords) > 0 {
		fmt.Fprintf(&b, "- Avoid %s.\n", strings.Join(lx.TabooWords, ", "))
	}
	fmt.Fprintf(&b, "- Rhythm: %s. Punctuation: %s.\n\n", lx.RhythmAndPacing.Or("flowing but irregular"), lx.PunctuationSignature.Or("conventional"))

	b.WriteString("Psychological subtext:\n")
	fmt.Fprintf(&b, "- Let a %s cognitive style shape the internal logic.\n", ps.CognitiveStyle.Or("intuitive"))
	fmt.Fprintf(&b, "- Hint at inner tension: %s.\n\n", ps.InnerConflict.Or("wanting clarity while living in ambiguity"))

	if phrases := p.KeyPhrases; len(phrases) > 0 {
		if len(phrases) > 3 {
			phrases = phrases[:3]
		}
		fmt.Fprintf(&b, "Work these phrases into the narration: %q.\n\n", strings.Join(phrases, ", "))
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "Who the narrator is: %s\n\n", p.Description)
	}
	b.WriteString("Make the story introspective, emotionally layered and true to this narrator. Return only the story text.")
	return b.String()
}
