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

// Package llm declares the model calls muse makes. Implementations live in
// subpackages: openai talks to any OpenAI compatible endpoint (Ollama by
// default), stub answers deterministically without a network.
package llm

import (
	"context"

	"zr3/muse/internal/imagefile"
	"zr3/muse/internal/persona"
)

type PersonaExtractor interface {
	// ExtractPersona returns the raw model answer for one writing sample.
	// Parsing it is the caller's job.
	ExtractPersona(ctx context.Context, sample string) (string, error)
}

type StoryGenerator interface {
	// GenerateStory writes one story in p's voice from the descriptions.
	GenerateStory(ctx context.Context, p *persona.Persona, descriptions []string) (string, error)
}

type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, img *imagefile.Image) (string, error)
	// Model names what produced the description, stored with cache entries.
	Model() string
}

// Provider bundles every call a full run needs.
type Provider interface {
	PersonaExtractor
	StoryGenerator
	ImageAnalyzer
}
