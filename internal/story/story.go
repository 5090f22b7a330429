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
package story

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"zr3/muse/internal/apperr"
)

const (
	TimeLayout     = "2006-01-02--15-04-05-MST"
	fileTimeLayout = "20060102_150405"
)

// Story is one generated text. It is written once and never changed.
type Story struct {
	RunID       string
	PersonaName string
	// Images are the ids the story was written from, one unless combined.
	Images    []string
	Text      string
	CreatedAt time.Time
}

// Slug turns a persona name into a file name fragment: "Wren Ashby" becomes
// "wren_ashby".
func Slug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
			underscore = false
		case !underscore && b.Len() > 0:
			b.WriteByte('_')
			underscore = true
		}
	}
	s := strings.TrimRight(b.String(), "_")
	if s == "" {
		return "persona"
	}
	return s
}

// FileName is <persona>_<image>_<timestamp>.txt, or <persona>_story_<timestamp>.txt
// for a story built from several images.
func (s *Story) FileName() string {
	subject := "story"
	if len(s.Images) == 1 {
		subject = s.Images[0]
	}
	return fmt.Sprintf("%s_%s_%s.txt", Slug(s.PersonaName), subject, s.CreatedAt.Format(fileTimeLayout))
}

func (s *Story) Title() string {
	if len(s.Images) == 1 {
		return s.PersonaName + ": " + s.Images[0]
	}
	return s.PersonaName + ": " + strings.Join(s.Images, ", ")
}

func (s *Story) content() string {
	meta := "# " + s.Title() + "\n\n" + s.CreatedAt.Local().Format(TimeLayout)
	if s.RunID != "" {
		meta += "\nrun " + s.RunID
	}
	return meta + div("story") + strings.TrimSpace(s.Text) + "\n"
}

func div(title string) string {
	return "\n\n## " + title + "\n\n"
}

type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) Dir() string {
	return w.dir
}

// Save writes s to a new file and returns its path. An existing file is
// never replaced; a numeric suffix is added instead.
func (w *Writer) Save(s *Story) (string, error) {
	item := s.Title()
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", apperr.New(apperr.IO, "save story", item, fmt.Errorf("failed to create directory %s: %w", w.dir, err))
	}
	name := s.FileName()
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	data := []byte(s.content())

	for n := 1; n < 1000; n++ {
		path := filepath.Join(w.dir, name)
		if n > 1 {
			path = filepath.Join(w.dir, fmt.Sprintf("%s-%d%s", stem, n, ext))
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", apperr.New(apperr.IO, "save story", item, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", apperr.New(apperr.IO, "save story", item, err)
		}
		if err := f.Close(); err != nil {
			return "", apperr.New(apperr.IO, "save story", item, err)
		}
		return path, nil
	}
	return "", apperr.Errorf(apperr.IO, "save story", item, "too many stories named %s", name)
}

// Latest returns the most recently modified story in dir.
func Latest(dir string) (string, error) {
	var (
		latestPath string
		latestTime time.Time
	)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".txt" && info.ModTime().After(latestTime) {
			latestPath = path
			latestTime = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return "", apperr.New(apperr.IO, "find latest story", dir, err)
	}
	if latestPath == "" {
		return "", apperr.Errorf(apperr.IO, "find latest story", dir, "no stories found")
	}
	return latestPath, nil
}
