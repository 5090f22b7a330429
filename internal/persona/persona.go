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
package persona

// Persona is the voice profile extracted from one writing sample.
type Persona struct {
	Name            string                   `yaml:"name"`
	Tone            Text                     `yaml:"tone"`
	Mood            Text                     `yaml:"mood"`
	Formality       Text                     `yaml:"formality"`
	Perspective     Perspective              `yaml:"perspective,omitempty"`
	RhetoricalStyle RhetoricalStyle          `yaml:"rhetorical_style,omitempty"`
	HumorProfile    HumorProfile             `yaml:"humor_profile,omitempty"`
	ValuesAndThemes ValuesAndThemes          `yaml:"values_and_themes,omitempty"`
	Lexical         LexicalTraits            `yaml:"lexical_and_stylistic_traits,omitempty"`
	Psychology      PsychologicalFingerprint `yaml:"psychological_fingerprint,omitempty"`
	KeyPhrases      List                     `yaml:"key_phrases"`
	Description     Text                     `yaml:"description"`

	// SourceSample is the writing sample the persona came from.
	SourceSample string `yaml:"source_sample,omitempty"`
}

type Perspective struct {
	Pronouns            List `yaml:"pronouns,omitempty"`
	NarrativeDistance   Text `yaml:"narrative_distance,omitempty"`
	TemporalOrientation Text `yaml:"temporal_orientation,omitempty"`
}

type RhetoricalStyle struct {
	SentenceStructure Text `yaml:"sentence_structure,omitempty"`
	UseOfAnalogy      Text `yaml:"use_of_analogy,omitempty"`
	PersuasiveTactics Text `yaml:"persuasive_tactics,omitempty"`
}

type HumorProfile struct {
	Type            List `yaml:"humor_type,omitempty"`
	Targets         Text `yaml:"humor_target,omitempty"`
	Delivery        Text `yaml:"delivery_style,omitempty"`
	Frequency       Text `yaml:"frequency,omitempty"`
	ImplicitEmotion Text `yaml:"implicit_emotion,omitempty"`
}

type ValuesAndThemes struct {
	CoreValues        List `yaml:"core_values,omitempty"`
	RecurringThemes   List `yaml:"recurring_themes,omitempty"`
	ImplicitWorldview Text `yaml:"implicit_worldview,omitempty"`
}

type LexicalTraits struct {
	FavoriteWords        List `yaml:"favorite_words,omitempty"`
	TabooWords           List `yaml:"taboo_words,omitempty"`
	RhythmAndPacing      Text `yaml:"rhythm_and_pacing,omitempty"`
	PunctuationSignature Text `yaml:"punctuation_signature,omitempty"`
	CapitalizationHabits Text `yaml:"capitalization_habits,omitempty"`
}

// PsychologicalFingerprint scores the big five on 1-10; 0 means the model
// gave no usable score.
type PsychologicalFingerprint struct {
	Openness          Score `yaml:"openness_to_experience,omitempty"`
	Conscientiousness Score `yaml:"conscientiousness,omitempty"`
	Extraversion      Score `yaml:"extraversion,omitempty"`
	Agreeableness     Score `yaml:"agreeableness,omitempty"`
	Neuroticism       Score `yaml:"neuroticism,omitempty"`
	CognitiveStyle    Text  `yaml:"cognitive_style,omitempty"`
	InnerConflict     Text  `yaml:"inner_conflict,omitempty"`
}
