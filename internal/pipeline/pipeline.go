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

// Package pipeline runs a batch: extract personas from the samples, pick
// one, describe every image (cached or fresh), then write a story per image.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"zr3/muse/internal/apperr"
	"zr3/muse/internal/config"
	"zr3/muse/internal/imagefile"
	"zr3/muse/internal/llm"
	"zr3/muse/internal/persona"
	"zr3/muse/internal/selection"
	"zr3/muse/internal/story"
)

var (
	ErrNoPersonas = errors.New("no personas could be extracted")
	ErrNoImages   = errors.New("no images found")
)

// Deps are the collaborators a Runner drives. Chooser is only needed by Run.
type Deps struct {
	Extractor llm.PersonaExtractor
	Generator llm.StoryGenerator
	Analyzer  llm.ImageAnalyzer
	Cache     selection.Cache
	Decider   selection.DecisionProvider
	Chooser   selection.PersonaChooser
	Stories   *story.Writer
	Log       log.Interface
}

type Runner struct {
	cfg      *config.Config
	deps     Deps
	selector *selection.Selector
	log      log.Interface

	now   func() time.Time
	runID func() string
}

func New(cfg *config.Config, deps Deps) *Runner {
	logger := deps.Log
	if logger == nil {
		logger = log.Log
	}
	sel := selection.NewSelector(deps.Cache, deps.Analyzer, deps.Decider, logger)
	sel.Timeout = cfg.LLM.Timeout
	return &Runner{
		cfg:      cfg,
		deps:     deps,
		selector: sel,
		log:      logger,
		now:      time.Now,
		runID:    uuid.NewString,
	}
}

func (r *Runner) enter(s State) {
	r.log.WithField("state", s.String()).Debug("entering state")
}

func (r *Runner) newReport() *Report {
	return newReport(r.runID(), r.now())
}

func (r *Runner) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.LLM.Timeout > 0 {
		return context.WithTimeout(ctx, r.cfg.LLM.Timeout)
	}
	return context.WithCancel(ctx)
}

// Run executes the whole batch. The returned error is set only when the run
// had to stop; per-item failures are in the report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	rep := r.newReport()

	r.enter(StateInit)
	samples, err := r.listSamples()
	if err != nil {
		return rep, err
	}
	images, err := r.listImages()
	if err != nil {
		return rep, err
	}

	r.enter(StateExtractPersonas)
	if err := r.extractPersonas(ctx, rep, samples); err != nil {
		return rep, err
	}

	r.enter(StateSelectPersona)
	chosen, err := r.selectPersona(ctx, rep)
	if err != nil {
		return rep, err
	}
	rep.Chosen = chosen
	r.log.WithField("persona", chosen.Name).Info("persona selected")

	r.generate(ctx, rep, chosen, images)
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	r.enter(StateDone)
	return rep, nil
}

// ExtractPersonas runs only the extraction stage.
func (r *Runner) ExtractPersonas(ctx context.Context) (*Report, error) {
	rep := r.newReport()
	r.enter(StateInit)
	samples, err := r.listSamples()
	if err != nil {
		return rep, err
	}
	r.enter(StateExtractPersonas)
	if err := r.extractPersonas(ctx, rep, samples); err != nil {
		return rep, err
	}
	r.enter(StateDone)
	return rep, nil
}

// Generate runs the image and story stages for an already chosen persona.
func (r *Runner) Generate(ctx context.Context, p *persona.Persona, imagePaths []string) (*Report, error) {
	rep := r.newReport()
	rep.addPersona(p)
	rep.Chosen = p
	if len(imagePaths) == 0 {
		return rep, apperr.New(apperr.Configuration, "generate", "", ErrNoImages)
	}
	r.generate(ctx, rep, p, imagePaths)
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	r.enter(StateDone)
	return rep, nil
}

// Describe resolves a single image through the cache.
func (r *Runner) Describe(ctx context.Context, path string) (*selection.Result, error) {
	img, err := imagefile.Load(path, r.imageOptions())
	if err != nil {
		return nil, err
	}
	return r.selector.Resolve(ctx, img)
}

func (r *Runner) imageOptions() imagefile.LoadOptions {
	return imagefile.LoadOptions{
		MaxDimension: r.cfg.Images.MaxDimension,
		Exif:         r.cfg.Images.Exif,
	}
}

func checkDir(flag, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return apperr.New(apperr.Configuration, "open "+flag, dir, err)
	}
	if !info.IsDir() {
		return apperr.Errorf(apperr.Configuration, "open "+flag, dir, "not a directory")
	}
	return nil
}

func (r *Runner) listSamples() ([]string, error) {
	if err := checkDir("--input-texts", r.cfg.InputTexts); err != nil {
		return nil, err
	}
	samples, err := persona.ListSamples(r.cfg.InputTexts)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, apperr.New(apperr.Configuration, "list samples", r.cfg.InputTexts,
			fmt.Errorf("%w: no .txt files", ErrNoPersonas))
	}
	return samples, nil
}

func (r *Runner) listImages() ([]string, error) {
	if err := checkDir("--input-images", r.cfg.InputImages); err != nil {
		return nil, err
	}
	images, err := imagefile.List(r.cfg.InputImages)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, apperr.New(apperr.Configuration, "list images", r.cfg.InputImages, ErrNoImages)
	}
	return images, nil
}

func (r *Runner) extractPersonas(ctx context.Context, rep *Report, samples []string) error {
	for _, path := range samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := filepath.Base(path)
		ll := r.log.WithField("sample", item)

		p, err := r.extractOne(ctx, path)
		if err != nil {
			ll.WithError(err).Warn("skipping sample")
			rep.record(StateExtractPersonas, item, err, true)
			continue
		}

		base := p.Name
		for n := 2; rep.hasPersona(p.Name); n++ {
			p.Name = fmt.Sprintf("%s #%d", base, n)
		}
		if p.Name != base {
			ll.WithField("persona", p.Name).Warnf("persona name %q already taken", base)
		}
		rep.addPersona(p)

		file, err := persona.Save(r.cfg.Paths.Personas, persona.Stem(path), p)
		if err != nil {
			ll.WithError(err).Warn("could not save persona")
			rep.record(StateExtractPersonas, item, err, false)
		} else {
			rep.PersonaFiles = append(rep.PersonaFiles, file)
		}
		ll.WithField("persona", p.Name).Info("persona extracted")
	}

	if len(rep.PersonaOrder) == 0 {
		return apperr.New(apperr.Configuration, "extract personas", r.cfg.InputTexts, ErrNoPersonas)
	}
	return nil
}

func (r *Runner) extractOne(ctx context.Context, path string) (*persona.Persona, error) {
	item := filepath.Base(path)
	sample, err := persona.ReadSample(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sample) == "" {
		return nil, apperr.New(apperr.Parse, "parse persona", item, errors.New("sample is empty"))
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	response, err := r.deps.Extractor.ExtractPersona(callCtx, sample)
	if err != nil {
		return nil, apperr.New(apperr.Generation, "extract persona", item, err)
	}
	p, err := persona.Parse(response, item)
	if err != nil {
		return nil, err
	}
	p.SourceSample = path
	return p, nil
}

func (r *Runner) selectPersona(ctx context.Context, rep *Report) (*persona.Persona, error) {
	choices := make([]selection.Choice, len(rep.PersonaOrder))
	for i, name := range rep.PersonaOrder {
		choices[i] = selection.Choice{Name: name, Source: filepath.Base(rep.Personas[name].SourceSample)}
	}

	var lastErr error
	for attempt := 1; attempt <= r.cfg.Selection.MaxAttempts; attempt++ {
		answer, err := r.deps.Chooser.ChoosePersona(ctx, choices, attempt)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			if lastErr == nil {
				lastErr = apperr.New(apperr.Validation, "select persona", "", err)
			}
			return nil, lastErr
		}
		idx, err := selection.ResolvePersona(answer, choices)
		if err != nil {
			r.log.WithError(err).Warn("invalid choice")
			lastErr = err
			continue
		}
		return rep.Personas[choices[idx].Name], nil
	}
	return nil, apperr.New(apperr.Validation, "select persona", "",
		fmt.Errorf("gave up after %d invalid answers: %w", r.cfg.Selection.MaxAttempts, lastErr))
}

type described struct {
	imageID string
	text    string
}

func (r *Runner) generate(ctx context.Context, rep *Report, p *persona.Persona, imagePaths []string) {
	r.enter(StateProcessImages)
	descs := r.processImages(ctx, rep, imagePaths)
	if len(descs) == 0 {
		r.log.Warn("no image descriptions available, nothing to write")
		return
	}

	if r.cfg.Combine {
		ids := make([]string, len(descs))
		texts := make([]string, len(descs))
		for i, d := range descs {
			ids[i], texts[i] = d.imageID, d.text
		}
		r.writeStory(ctx, rep, p, ids, texts)
		return
	}
	for _, d := range descs {
		if ctx.Err() != nil {
			rep.record(StateGenerateStory, d.imageID, ctx.Err(), true)
			continue
		}
		r.writeStory(ctx, rep, p, []string{d.imageID}, []string{d.text})
	}
}

func (r *Runner) processImages(ctx context.Context, rep *Report, imagePaths []string) []described {
	seen := map[string]string{}
	var out []described
	for _, path := range imagePaths {
		id := imagefile.ID(path)
		ll := r.log.WithField("image", id)
		if ctx.Err() != nil {
			rep.record(StateProcessImages, id, ctx.Err(), true)
			continue
		}
		if first, dup := seen[id]; dup {
			err := apperr.Errorf(apperr.Validation, "process image", id, "%s shares its id with %s", filepath.Base(path), first)
			ll.WithError(err).Warn("skipping image")
			rep.record(StateProcessImages, id, err, true)
			continue
		}
		seen[id] = filepath.Base(path)

		img, err := imagefile.Load(path, r.imageOptions())
		if err != nil {
			ll.WithError(err).Warn("skipping image")
			rep.record(StateProcessImages, id, err, true)
			continue
		}
		res, err := r.selector.Resolve(ctx, img)
		if err != nil {
			ll.WithError(err).Warn("skipping image")
			rep.record(StateProcessImages, id, err, true)
			continue
		}
		for _, w := range res.Warnings {
			rep.record(StateProcessImages, id, w, false)
		}
		rep.Images = append(rep.Images, ImageOutcome{
			ImageID:     id,
			Source:      res.Source,
			Stale:       res.Stale,
			Description: res.Description,
		})
		out = append(out, described{imageID: id, text: res.Description})
	}
	return out
}

func (r *Runner) writeStory(ctx context.Context, rep *Report, p *persona.Persona, ids, texts []string) {
	item := strings.Join(ids, ",")
	ll := r.log.WithField("image", item)

	r.enter(StateGenerateStory)
	callCtx, cancel := r.callContext(ctx)
	text, err := r.deps.Generator.GenerateStory(callCtx, p, texts)
	cancel()
	if err != nil {
		err = apperr.New(apperr.Generation, "generate story", item, err)
		ll.WithError(err).Warn("story generation failed")
		rep.record(StateGenerateStory, item, err, true)
		return
	}
	if strings.TrimSpace(text) == "" {
		err := apperr.New(apperr.Generation, "generate story", item, errors.New("model returned no text"))
		ll.WithError(err).Warn("story generation failed")
		rep.record(StateGenerateStory, item, err, true)
		return
	}

	r.enter(StatePersist)
	path, err := r.deps.Stories.Save(&story.Story{
		RunID:       rep.RunID,
		PersonaName: p.Name,
		Images:      ids,
		Text:        text,
		CreatedAt:   rep.StartedAt,
	})
	if err != nil {
		ll.WithError(err).Warn("could not save story")
		rep.record(StatePersist, item, err, true)
		return
	}
	rep.Stories = append(rep.Stories, path)
	ll.WithField("path", path).Info("story saved")
}
