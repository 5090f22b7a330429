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
package pipeline

import (
	"strings"
	"time"

	"zr3/muse/internal/apperr"
	"zr3/muse/internal/persona"
	"zr3/muse/internal/selection"
)

type State int

const (
	StateInit State = iota
	StateExtractPersonas
	StateSelectPersona
	StateProcessImages
	StateGenerateStory
	StatePersist
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateExtractPersonas:
		return "extract-personas"
	case StateSelectPersona:
		return "select-persona"
	case StateProcessImages:
		return "process-images"
	case StateGenerateStory:
		return "generate-story"
	case StatePersist:
		return "persist"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Issue is a recoverable failure. Skipped issues cost the item its place in
// the batch; the others are warnings about an item that still went through.
type Issue struct {
	State   State
	Item    string
	Kind    apperr.Kind
	Err     error
	Skipped bool
}

type ImageOutcome struct {
	ImageID     string
	Source      selection.Source
	Stale       bool
	Description string
}

type Report struct {
	RunID     string
	StartedAt time.Time

	// Personas maps name to persona; PersonaOrder keeps extraction order.
	Personas     map[string]*persona.Persona
	PersonaOrder []string
	PersonaFiles []string
	Chosen       *persona.Persona

	Images  []ImageOutcome
	Stories []string
	Issues  []Issue
}

func newReport(runID string, started time.Time) *Report {
	return &Report{
		RunID:     runID,
		StartedAt: started,
		Personas:  map[string]*persona.Persona{},
	}
}

func (r *Report) Skipped() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Skipped {
			out = append(out, i)
		}
	}
	return out
}

func (r *Report) Warnings() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if !i.Skipped {
			out = append(out, i)
		}
	}
	return out
}

func (r *Report) addPersona(p *persona.Persona) {
	r.Personas[p.Name] = p
	r.PersonaOrder = append(r.PersonaOrder, p.Name)
}

// hasPersona matches names the way the persona menu does, ignoring case.
func (r *Report) hasPersona(name string) bool {
	for _, n := range r.PersonaOrder {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func (r *Report) record(state State, item string, err error, skipped bool) {
	r.Issues = append(r.Issues, Issue{
		State:   state,
		Item:    item,
		Kind:    apperr.KindOf(err),
		Err:     err,
		Skipped: skipped,
	})
}
