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

// Package selection decides, per image, whether the cached description is
// reused or a fresh one is requested from the analyzer.
package selection

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"

	"zr3/muse/internal/apperr"
	"zr3/muse/internal/cache"
	"zr3/muse/internal/imagefile"
	"zr3/muse/internal/llm"
)

// Cache is the part of cache.Store the selector needs.
type Cache interface {
	Get(id string) (*cache.Entry, error)
	Put(id, description string, meta cache.Meta) (*cache.Entry, error)
}

type Source int

const (
	// SourceFresh: nothing was cached, the analyzer was called.
	SourceFresh Source = iota
	// SourceCached: the cached description was reused.
	SourceCached
	// SourceRegenerated: the user asked for a new description.
	SourceRegenerated
	// SourceFallback: regeneration failed and the cached text was kept.
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceCached:
		return "cached"
	case SourceRegenerated:
		return "regenerated"
	case SourceFallback:
		return "cached (regeneration failed)"
	default:
		return "fresh"
	}
}

type Result struct {
	ImageID     string
	Description string
	Source      Source
	Stale       bool
	// Warnings are recoverable problems met along the way, such as a cache
	// write that failed. The description is still usable.
	Warnings []error
}

type Selector struct {
	cache    Cache
	analyzer llm.ImageAnalyzer
	decider  DecisionProvider
	log      log.Interface
	now      func() time.Time

	// Timeout bounds each analyzer call; 0 means no extra deadline.
	Timeout time.Duration
}

func NewSelector(c Cache, analyzer llm.ImageAnalyzer, decider DecisionProvider, logger log.Interface) *Selector {
	return &Selector{
		cache:    c,
		analyzer: analyzer,
		decider:  decider,
		log:      logger,
		now:      time.Now,
	}
}

// Resolve returns the description to use for img. It fails only when no
// description can be produced at all.
func (s *Selector) Resolve(ctx context.Context, img *imagefile.Image) (*Result, error) {
	res := &Result{ImageID: img.ID}
	ll := s.log.WithField("image", img.ID)

	entry, err := s.cache.Get(img.ID)
	if err != nil {
		ll.WithError(err).Warn("cache read failed, analyzing again")
		res.Warnings = append(res.Warnings, err)
		entry = nil
	}

	if entry == nil {
		ll.Info("no cached description, analyzing")
		desc, err := s.analyze(ctx, img)
		if err != nil {
			return nil, err
		}
		res.Description = desc
		res.Source = SourceFresh
		s.store(ll, img, desc, res)
		return res, nil
	}

	res.Stale = entry.Stale(img.Hash)
	decision, err := s.decider.Decide(ctx, Question{
		ImageID: img.ID,
		Entry:   entry,
		Stale:   res.Stale,
		Age:     entry.Age(s.now()),
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		ll.WithError(err).Warn("no usable answer, reusing cached description")
		decision = Reuse
	}

	if decision == Reuse {
		ll.WithField("stale", res.Stale).Info("reusing cached description")
		res.Description = entry.Description
		res.Source = SourceCached
		return res, nil
	}

	ll.Info("regenerating description")
	desc, err := s.analyze(ctx, img)
	if err != nil {
		ll.WithError(err).Warn("regeneration failed, keeping cached description")
		res.Warnings = append(res.Warnings, err)
		res.Description = entry.Description
		res.Source = SourceFallback
		return res, nil
	}
	res.Description = desc
	res.Source = SourceRegenerated
	res.Stale = false
	s.store(ll, img, desc, res)
	return res, nil
}

func (s *Selector) analyze(ctx context.Context, img *imagefile.Image) (string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	desc, err := s.analyzer.AnalyzeImage(ctx, img)
	if err != nil {
		return "", apperr.New(apperr.Generation, "analyze image", img.ID, err)
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "", apperr.New(apperr.Generation, "analyze image", img.ID, errors.New("analyzer returned no text"))
	}
	return desc, nil
}

func (s *Selector) store(ll log.Interface, img *imagefile.Image, desc string, res *Result) {
	_, err := s.cache.Put(img.ID, desc, cache.Meta{
		Source:    filepath.Base(img.Path),
		ImageHash: img.Hash,
		Model:     s.analyzer.Model(),
	})
	if err != nil {
		ll.WithError(err).Warn("could not cache description")
		res.Warnings = append(res.Warnings, err)
		return
	}
	ll.Debug("description cached")
}
