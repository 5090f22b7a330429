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

// Package cache stores image descriptions on disk, one JSON file per image
// id. Entries are never evicted.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zr3/muse/internal/apperr"
)

const ext = ".json"

// Entry is one cached analysis. Files written by older versions carry only
// the description; the remaining fields are filled in on read.
type Entry struct {
	ImageID     string    `json:"image_id"`
	Description string    `json:"description"`
	Source      string    `json:"source,omitempty"`
	ImageHash   string    `json:"image_hash,omitempty"`
	Model       string    `json:"model,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stale reports whether the image bytes changed since the entry was written.
// Entries without a recorded hash are never stale.
func (e *Entry) Stale(currentHash string) bool {
	return e.ImageHash != "" && currentHash != "" && e.ImageHash != currentHash
}

func (e *Entry) Age(now time.Time) time.Duration {
	if e.CreatedAt.IsZero() {
		return 0
	}
	return now.Sub(e.CreatedAt)
}

// Meta is the provenance recorded alongside a description.
type Meta struct {
	Source    string
	ImageHash string
	Model     string
}

type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+ext)
}

func validID(op, id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return apperr.Errorf(apperr.Validation, op, id, "invalid image id")
	}
	return nil
}

// Get returns the entry for id, or nil and no error when nothing is cached.
func (s *Store) Get(id string) (*Entry, error) {
	if err := validID("read cache", id); err != nil {
		return nil, err
	}
	p := s.path(id)
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.New(apperr.IO, "read cache", id, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, apperr.New(apperr.IO, "read cache", id, fmt.Errorf("failed to unmarshal %s: %w", p, err))
	}
	if e.Description == "" {
		return nil, nil
	}
	e.ImageID = id
	if e.CreatedAt.IsZero() {
		if info, err := os.Stat(p); err == nil {
			e.CreatedAt = info.ModTime()
		}
	}
	return &e, nil
}

// Put writes or replaces the entry for id. The file is synced and renamed
// into place before Put returns.
func (s *Store) Put(id, description string, meta Meta) (*Entry, error) {
	if err := validID("write cache", id); err != nil {
		return nil, err
	}
	e := &Entry{
		ImageID:     id,
		Description: description,
		Source:      meta.Source,
		ImageHash:   meta.ImageHash,
		Model:       meta.Model,
		CreatedAt:   s.now().UTC(),
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, apperr.New(apperr.IO, "write cache", id, err)
	}
	if err := writeFileAtomic(s.dir, s.path(id), data); err != nil {
		return nil, apperr.New(apperr.IO, "write cache", id, err)
	}
	return e, nil
}

// List returns every readable entry in file name order. Unreadable files are
// returned as errors alongside the entries that could be read.
func (s *Store) List() ([]Entry, []error) {
	files, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, []error{apperr.New(apperr.IO, "list cache", s.dir, err)}
	}
	var (
		entries []Entry
		errs    []error
	)
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ext {
			continue
		}
		e, err := s.Get(strings.TrimSuffix(f.Name(), ext))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, errs
}

// Delete removes the entry for id. Only the cache command calls it.
func (s *Store) Delete(id string) error {
	if err := validID("delete cache", id); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil {
		return apperr.New(apperr.IO, "delete cache", id, err)
	}
	return nil
}

func writeFileAtomic(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
