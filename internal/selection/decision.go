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
package selection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"zr3/muse/internal/cache"
)

type Decision int

const (
	Reuse Decision = iota
	Regenerate
)

func (d Decision) String() string {
	if d == Regenerate {
		return "regenerate"
	}
	return "reuse"
}

// ErrNoAnswer means the provider could not get a usable answer. Callers fall
// back to the cached description.
var ErrNoAnswer = errors.New("no valid answer")

// Question is what a DecisionProvider is asked for each cached image.
type Question struct {
	ImageID string
	Entry   *cache.Entry
	Stale   bool
	Age     time.Duration
}

// DecisionProvider chooses between a cached description and a fresh one.
type DecisionProvider interface {
	Decide(ctx context.Context, q Question) (Decision, error)
}

// ParseDecision reads a typed answer. Blank means reuse.
func ParseDecision(answer string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes", "u", "reuse", "cache", "cached":
		return Reuse, true
	case "n", "no", "r", "regen", "regenerate", "fresh":
		return Regenerate, true
	}
	return Reuse, false
}

// Policy answers every question the same way.
type Policy Decision

func (p Policy) Decide(context.Context, Question) (Decision, error) {
	return Decision(p), nil
}

// Scripted replays answers in order, then reports ErrNoAnswer. Unreadable
// answers also report ErrNoAnswer.
type Scripted struct {
	answers []string
	Asked   []Question
}

func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

func (s *Scripted) Decide(_ context.Context, q Question) (Decision, error) {
	s.Asked = append(s.Asked, q)
	if len(s.answers) == 0 {
		return Reuse, ErrNoAnswer
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	d, ok := ParseDecision(a)
	if !ok {
		return Reuse, fmt.Errorf("%w: %q", ErrNoAnswer, a)
	}
	return d, nil
}

// Interactive asks on a terminal. It gives up after MaxAttempts unreadable
// answers or at end of input. A cancelled context is returned as is.
type Interactive struct {
	in          *LineReader
	out         io.Writer
	MaxAttempts int
}

func NewInteractive(in io.Reader, out io.Writer) *Interactive {
	return &Interactive{in: NewLineReader(in), out: out, MaxAttempts: 3}
}

const previewLen = 160

func (i *Interactive) Decide(ctx context.Context, q Question) (Decision, error) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(i.out, "\n%s has a cached description", bold(q.ImageID))
	if q.Age > 0 {
		fmt.Fprintf(i.out, " from %s ago", q.Age.Round(time.Minute))
	}
	fmt.Fprintln(i.out, ":")
	if q.Stale {
		fmt.Fprintln(i.out, color.YellowString("  the image has changed since it was described"))
	}
	fmt.Fprintf(i.out, "  %s\n", preview(q.Entry.Description))

	for attempt := 0; attempt < i.MaxAttempts; attempt++ {
		fmt.Fprint(i.out, "reuse it? [Y/n] ≫ ")
		line, err := i.in.ReadLine(ctx)
		if ctx.Err() != nil {
			fmt.Fprintln(i.out)
			return Reuse, ctx.Err()
		}
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			fmt.Fprintln(i.out)
			return Reuse, fmt.Errorf("%w: %v", ErrNoAnswer, err)
		}
		if d, ok := ParseDecision(line); ok {
			return d, nil
		}
		fmt.Fprintln(i.out, "please enter 'y' or 'n'")
		if err != nil {
			return Reuse, fmt.Errorf("%w: %v", ErrNoAnswer, err)
		}
	}
	return Reuse, ErrNoAnswer
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= previewLen {
		return s
	}
	return string([]rune(s)[:previewLen]) + "…"
}
