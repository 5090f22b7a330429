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

// Package stub is a no-network llm.Provider for demos and CI. Output is a
// pure function of the input so runs are repeatable.
package stub

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"zr3/muse/internal/imagefile"
	"zr3/muse/internal/persona"
)

var (
	names = []string{"Wren Ashby", "Otto Vale", "Ines Marlow", "Pell Quarry", "Mara Lindqvist", "Jonah Reyes"}
	tones = []string{"wistful", "wry", "earnest", "lyrical", "clinical", "playful"}
	moods = []string{"quietly elated", "restless", "calm but watchful", "bittersweet", "defiant", "tender"}
)

type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) Model() string { return "stub" }

func pick(seed []byte, from []string) string {
	sum := sha256.Sum256(seed)
	return from[binary.BigEndian.Uint64(sum[:8])%uint64(len(from))]
}

func (c *Client) ExtractPersona(ctx context.Context, sample string) (string, error) {
	sample = strings.TrimSpace(sample)
	if sample == "" {
		return "", nil
	}
	words := strings.Fields(sample)
	phrases := []string{}
	for i := 0; i+2 <= len(words) && len(phrases) < 3; i += 2 {
		phrases = append(phrases, strings.ToLower(strings.Trim(words[i]+" "+words[i+1], ".,;:!?\"'")))
	}
	p := persona.Persona{
		Name:       pick([]byte(sample), names),
		Tone:       persona.Text(pick([]byte("tone"+sample), tones)),
		Mood:       persona.Text(pick([]byte("mood"+sample), moods)),
		Formality:  "relaxed",
		KeyPhrases: phrases,
		Description: persona.Text(fmt.Sprintf("A narrator of %d words who opens with %q.",
			len(words), words[0])),
	}
	out, err := yaml.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *Client) AnalyzeImage(ctx context.Context, img *imagefile.Image) (string, error) {
	sum := sha256.Sum256(img.Data)
	return fmt.Sprintf("A %dx%d photo (%s, %x) with %s light falling across an ordinary scene.",
		img.Width, img.Height, img.ID, sum[:4], pick(img.Data, []string{"amber", "grey", "blue", "harsh", "soft"})), nil
}

func (c *Client) GenerateStory(ctx context.Context, p *persona.Persona, descriptions []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, in a %s voice:\n\n", p.Name, p.Tone.Or("neutral"))
	for _, d := range descriptions {
		fmt.Fprintf(&b, "I remember it like this. %s\n\n", strings.TrimSpace(d))
	}
	if len(p.KeyPhrases) > 0 {
		fmt.Fprintf(&b, "And somehow it was all %s.\n", p.KeyPhrases[0])
	}
	return b.String(), nil
}
