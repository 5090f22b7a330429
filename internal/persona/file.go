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
	"os"
	"path/filepath"
	"strings"

	"github.com/facette/natsort"
	"gopkg.in/yaml.v3"

	"zr3/muse/internal/apperr"
)

// ListSamples returns the *.txt writing samples in dir, naturally sorted.
func ListSamples(dir string) ([]string, error) {
	return listExt(dir, ".txt", "list samples")
}

// ListFiles returns the saved *.yaml personas in dir, naturally sorted.
func ListFiles(dir string) ([]string, error) {
	return listExt(dir, ".yaml", "list personas")
}

func listExt(dir, ext, op string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperr.New(apperr.Configuration, op, dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			names = append(names, e.Name())
		}
	}
	natsort.Sort(names)
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

// Stem is the sample file name without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func ReadSample(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.New(apperr.IO, "read sample", path, err)
	}
	return string(data), nil
}

// Save writes p to dir/<stem>.yaml, replacing any earlier extraction from
// the same sample.
func Save(dir, stem string, p *Persona) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperr.New(apperr.IO, "save persona", p.Name, fmt.Errorf("failed to create directory %s: %w", dir, err))
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return "", apperr.New(apperr.IO, "save persona", p.Name, err)
	}
	path := filepath.Join(dir, stem+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", apperr.New(apperr.IO, "save persona", p.Name, err)
	}
	return path, nil
}

// Load reads a persona file written by Save (or by hand).
func Load(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.New(apperr.IO, "load persona", path, err)
	}
	return Parse(string(data), path)
}
