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
package imagefile

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/facette/natsort"
	"github.com/rwcarlsen/goexif/exif"

	"zr3/muse/internal/apperr"
)

var supportedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// IsImage checks the filename has one of the extensions muse analyzes.
func IsImage(name string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ID is the cache key for an image: its file name without the extension.
func ID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// List returns the images directly inside dir in natural sort order.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperr.New(apperr.Configuration, "list images", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	natsort.Sort(names)
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

type Image struct {
	Path     string
	ID       string
	Hash     string
	Data     []byte
	MIMEType string
	Width    int
	Height   int
	Resized  bool

	// from EXIF, when present
	TakenAt *time.Time
	Camera  string
}

type LoadOptions struct {
	// MaxDimension bounds the longest side of the uploaded image; 0 keeps
	// the original bytes.
	MaxDimension int
	Exif         bool
}

// Load reads an image, fingerprints the original bytes and prepares the
// payload sent to the analyzer.
func Load(path string, opts LoadOptions) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.New(apperr.IO, "read image", ID(path), err)
	}
	sum := sha256.Sum256(raw)
	img := &Image{
		Path:     path,
		ID:       ID(path),
		Hash:     hex.EncodeToString(sum[:]),
		Data:     raw,
		MIMEType: supportedExtensions[strings.ToLower(filepath.Ext(path))],
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apperr.New(apperr.IO, "decode image", img.ID, err)
	}
	img.Width, img.Height = cfg.Width, cfg.Height

	if opts.MaxDimension > 0 && (cfg.Width > opts.MaxDimension || cfg.Height > opts.MaxDimension) {
		if err := img.downscale(raw, opts.MaxDimension); err != nil {
			return nil, apperr.New(apperr.IO, "resize image", img.ID, err)
		}
	}

	if opts.Exif {
		img.readExif(raw)
	}
	return img, nil
}

func (i *Image) downscale(raw []byte, maxDim int) error {
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", i.Path, err)
	}
	dst := imaging.Fit(src, maxDim, maxDim, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", i.Path, err)
	}
	i.Data = buf.Bytes()
	i.MIMEType = "image/jpeg"
	i.Width, i.Height = dst.Bounds().Dx(), dst.Bounds().Dy()
	i.Resized = true
	return nil
}

// readExif is best effort; PNGs and stripped JPEGs simply have no hints.
func (i *Image) readExif(raw []byte) {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return
	}
	if taken, err := x.DateTime(); err == nil {
		i.TakenAt = &taken
	}
	var parts []string
	for _, field := range []exif.FieldName{exif.Make, exif.Model} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		if s, err := tag.StringVal(); err == nil {
			if s = strings.TrimSpace(strings.TrimRight(s, "\x00")); s != "" {
				parts = append(parts, s)
			}
		}
	}
	i.Camera = strings.Join(parts, " ")
}

func (i *Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Context renders the EXIF hints as a short sentence, or "" when there are
// none.
func (i *Image) Context() string {
	var parts []string
	if i.TakenAt != nil {
		parts = append(parts, "taken "+i.TakenAt.Format("January 2, 2006 at 15:04"))
	}
	if i.Camera != "" {
		parts = append(parts, "shot on "+i.Camera)
	}
	if len(parts) == 0 {
		return ""
	}
	return "The photo was " + strings.Join(parts, ", ") + "."
}
