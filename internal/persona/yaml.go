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
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Models answer the same schema field with a scalar one time and a list the
// next, so the field types below accept either shape.

// Text is a free-form field. A sequence is joined with ", ".
type Text string

func (t Text) String() string {
	return string(t)
}

// Or returns t, or fallback when t is blank.
func (t Text) Or(fallback string) string {
	if s := strings.TrimSpace(string(t)); s != "" {
		return s
	}
	return fallback
}

func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*t = ""
			return nil
		}
		*t = Text(strings.TrimSpace(node.Value))
		return nil
	case yaml.SequenceNode:
		var items List
		if err := items.UnmarshalYAML(node); err != nil {
			return err
		}
		*t = Text(strings.Join(items, ", "))
		return nil
	case yaml.MappingNode:
		// e.g. {dominant: wistful, undercurrent: defiant}
		var parts []string
		for i := 0; i+1 < len(node.Content); i += 2 {
			var v Text
			if err := v.UnmarshalYAML(node.Content[i+1]); err != nil {
				return err
			}
			if v != "" {
				parts = append(parts, node.Content[i].Value+": "+string(v))
			}
		}
		*t = Text(strings.Join(parts, "; "))
		return nil
	}
	return fmt.Errorf("line %d: cannot read %s as text", node.Line, kindName(node.Kind))
}

// List is an ordered list of short strings. A scalar is split on commas.
type List []string

// Or returns l, or fallback when l is empty.
func (l List) Or(fallback ...string) []string {
	if len(l) > 0 {
		return l
	}
	return fallback
}

func (l *List) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		var out List
		for _, part := range strings.Split(node.Value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	case yaml.SequenceNode:
		var out List
		for _, item := range node.Content {
			var s Text
			if err := s.UnmarshalYAML(item); err != nil {
				return err
			}
			if s != "" {
				out = append(out, string(s))
			}
		}
		*l = out
		return nil
	}
	return fmt.Errorf("line %d: cannot read %s as a list", node.Line, kindName(node.Kind))
}

// Score is a 1-10 rating. "7", 7, [7] and "7/10" all read as 7; anything
// unreadable or out of range reads as 0.
type Score int

func (s *Score) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			*s = 0
			return nil
		}
		return s.UnmarshalYAML(node.Content[0])
	case yaml.ScalarNode:
		*s = parseScore(node.Value)
		return nil
	}
	*s = 0
	return nil
}

func parseScore(v string) Score {
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil || n < 1 || n > 10 {
		return 0
	}
	return Score(n)
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "a value"
	}
}
