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

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"

	"zr3/muse/internal/apperr"
)

// wrapperKeys are top-level keys a model sometimes nests the whole persona
// under, echoing the schema heading from the prompt.
var wrapperKeys = map[string]bool{
	"personaschema": true,
	"persona":       true,
	"profile":       true,
}

// Parse reads a model response into a Persona. The response may be YAML or
// JSON, optionally inside a markdown code fence. item names the sample in
// errors.
func Parse(response, item string) (*Persona, error) {
	body := stripFence(response)
	if strings.TrimSpace(body) == "" {
		return nil, apperr.New(apperr.Parse, "parse persona", item, errors.New("empty response"))
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return nil, apperr.New(apperr.Parse, "parse persona", item, err)
	}
	root := unwrap(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, apperr.New(apperr.Parse, "parse persona", item, errors.New("response is not a mapping"))
	}

	var p Persona
	if err := root.Decode(&p); err != nil {
		return nil, apperr.New(apperr.Parse, "parse persona", item, err)
	}
	if p.Description == "" {
		var legacy struct {
			Summary Text `yaml:"summary_description"`
		}
		if err := root.Decode(&legacy); err == nil {
			p.Description = legacy.Summary
		}
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, apperr.New(apperr.Parse, "parse persona", item, errors.New("persona has no name"))
	}
	return &p, nil
}

func unwrap(doc *yaml.Node) *yaml.Node {
	n := doc
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		n = n.Content[0]
	}
	if n.Kind == yaml.MappingNode && len(n.Content) == 2 &&
		wrapperKeys[strings.ToLower(n.Content[0].Value)] &&
		n.Content[1].Kind == yaml.MappingNode {
		return n.Content[1]
	}
	return n
}

// stripFence returns the body of the first ``` fenced block, or s unchanged
// when there is none.
func stripFence(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:] // drop the language tag line
	} else {
		return s
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
