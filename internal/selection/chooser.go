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
	"strconv"
	"strings"

	"zr3/muse/internal/apperr"
)

// Choice is one entry of the persona menu.
type Choice struct {
	Name   string
	Source string
}

// PersonaChooser returns a raw answer: a 1-based index or a persona name.
// attempt counts from 1 and grows after each invalid answer.
type PersonaChooser interface {
	ChoosePersona(ctx context.Context, choices []Choice, attempt int) (string, error)
}

// ResolvePersona validates an answer against the menu and returns the
// 0-based index it names.
func ResolvePersona(answer string, choices []Choice) (int, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0, apperr.Errorf(apperr.Validation, "select persona", "", "no persona chosen")
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(choices) {
			return 0, apperr.Errorf(apperr.Validation, "select persona", answer, "choose a number between 1 and %d", len(choices))
		}
		return n - 1, nil
	}
	for i, c := range choices {
		if strings.EqualFold(c.Name, answer) {
			return i, nil
		}
	}
	return 0, apperr.Errorf(apperr.Validation, "select persona", answer, "no persona with that name")
}

// FixedChooser answers once with a preset value, e.g. from --persona, and
// has nothing more to say after that.
type FixedChooser string

func (f FixedChooser) ChoosePersona(_ context.Context, _ []Choice, attempt int) (string, error) {
	if attempt > 1 {
		return "", ErrNoAnswer
	}
	return string(f), nil
}

// ScriptedChooser replays answers in order.
type ScriptedChooser struct {
	answers []string
	Calls   int
}

func NewScriptedChooser(answers ...string) *ScriptedChooser {
	return &ScriptedChooser{answers: answers}
}

func (s *ScriptedChooser) ChoosePersona(context.Context, []Choice, int) (string, error) {
	s.Calls++
	if len(s.answers) == 0 {
		return "", ErrNoAnswer
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

// InteractiveChooser prints a numbered menu and reads one line per attempt.
type InteractiveChooser struct {
	in  *LineReader
	out io.Writer
}

func NewInteractiveChooser(in io.Reader, out io.Writer) *InteractiveChooser {
	return &InteractiveChooser{in: NewLineReader(in), out: out}
}

// NewInteractivePair shares one reader between both prompts so buffered
// input meant for the second is not lost to the first.
func NewInteractivePair(in io.Reader, out io.Writer) (*InteractiveChooser, *Interactive) {
	r := NewLineReader(in)
	return &InteractiveChooser{in: r, out: out}, &Interactive{in: r, out: out, MaxAttempts: 3}
}

func (c *InteractiveChooser) ChoosePersona(ctx context.Context, choices []Choice, attempt int) (string, error) {
	if attempt == 1 {
		fmt.Fprintln(c.out, "choose a persona:")
		for i, ch := range choices {
			fmt.Fprintf(c.out, "%d: %s", i+1, ch.Name)
			if ch.Source != "" {
				fmt.Fprintf(c.out, " (%s)", ch.Source)
			}
			fmt.Fprintln(c.out)
		}
	}
	fmt.Fprint(c.out, "enter number ≫ ")
	line, err := c.in.ReadLine(ctx)
	if ctx.Err() != nil {
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	}
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		fmt.Fprintln(c.out)
		return "", fmt.Errorf("%w: %v", ErrNoAnswer, err)
	}
	return strings.TrimSpace(line), nil
}
