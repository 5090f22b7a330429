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
package cmd

import (
	"context"
	"io"
	"os"
	"time"

	termutil "github.com/andrew-d/go-termutil"
	"github.com/apex/log"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"zr3/muse/internal/cache"
	"zr3/muse/internal/config"
	"zr3/muse/internal/imagefile"
	"zr3/muse/internal/llm"
	"zr3/muse/internal/llm/openai"
	"zr3/muse/internal/llm/stub"
	"zr3/muse/internal/persona"
	"zr3/muse/internal/pipeline"
	"zr3/muse/internal/selection"
	"zr3/muse/internal/story"
)

func newProvider(cfg *config.Config) llm.Provider {
	switch cfg.LLM.Provider {
	case config.ProviderStub:
		return stub.NewClient()
	default:
		return openai.NewClient(cfg.LLM, cfg.Secrets.OpenAIKey)
	}
}

// spinning shows the spinner while a model call is in flight.
type spinning struct {
	llm.Provider
	s *spinner.Spinner
}

func withSpinner(p llm.Provider, quiet bool, w io.Writer) llm.Provider {
	if quiet {
		return p
	}
	s := spinner.New(spinner.CharSets[19], 100*time.Millisecond, spinner.WithWriter(w))
	s.Prefix = "╰─ "
	s.Color("cyan")
	return &spinning{Provider: p, s: s}
}

func (sp *spinning) wait(suffix string) func() {
	sp.s.Suffix = " " + suffix
	sp.s.Start()
	return sp.s.Stop
}

func (sp *spinning) ExtractPersona(ctx context.Context, sample string) (string, error) {
	defer sp.wait("reading the sample")()
	return sp.Provider.ExtractPersona(ctx, sample)
}

func (sp *spinning) AnalyzeImage(ctx context.Context, img *imagefile.Image) (string, error) {
	defer sp.wait("looking at " + img.ID)()
	return sp.Provider.AnalyzeImage(ctx, img)
}

func (sp *spinning) GenerateStory(ctx context.Context, p *persona.Persona, descriptions []string) (string, error) {
	defer sp.wait(p.Name + " is writing")()
	return sp.Provider.GenerateStory(ctx, p, descriptions)
}

// prompts picks how questions get answered. Interactive prompts share
// stdin; with stdin not a terminal an "ask" cache policy falls back to reuse.
func prompts(cfg *config.Config, in io.Reader, tty bool, out io.Writer) (selection.PersonaChooser, selection.DecisionProvider) {
	interactiveChooser, interactive := selection.NewInteractivePair(in, out)
	interactive.MaxAttempts = cfg.Selection.MaxAttempts

	var chooser selection.PersonaChooser = interactiveChooser
	if cfg.Persona != "" {
		chooser = selection.FixedChooser(cfg.Persona)
	}

	var decider selection.DecisionProvider
	switch cfg.Selection.Cache {
	case config.CacheReuse:
		decider = selection.Policy(selection.Reuse)
	case config.CacheRegenerate:
		decider = selection.Policy(selection.Regenerate)
	default:
		if tty {
			decider = interactive
		} else {
			log.Debug("stdin is not a terminal, reusing cached descriptions")
			decider = selection.Policy(selection.Reuse)
		}
	}
	return chooser, decider
}

func newRunner(cfg *config.Config) *pipeline.Runner {
	provider := withSpinner(newProvider(cfg), cfg.Quiet, os.Stderr)
	chooser, decider := prompts(cfg, os.Stdin, termutil.Isatty(os.Stdin.Fd()), os.Stdout)
	return pipeline.New(cfg, pipeline.Deps{
		Extractor: provider,
		Generator: provider,
		Analyzer:  provider,
		Cache:     cache.NewStore(cfg.Paths.Cache),
		Decider:   decider,
		Chooser:   chooser,
		Stories:   story.NewWriter(cfg.Paths.Stories),
		Log:       log.Log,
	})
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	skipColor = color.New(color.FgRed)
)
