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
	"bufio"
	"context"
	"io"
	"sync"
)

type readResult struct {
	line string
	err  error
}

// LineReader reads stdin lines in the background so a prompt can stop
// waiting when its context is cancelled. One LineReader should own the
// underlying reader; later reads pick up where the previous one stopped.
type LineReader struct {
	in    *bufio.Reader
	once  sync.Once
	lines chan readResult
}

func NewLineReader(in io.Reader) *LineReader {
	return &LineReader{in: bufio.NewReader(in), lines: make(chan readResult)}
}

// ReadLine returns the next line including its newline. At end of input it
// behaves like bufio.Reader.ReadString: the partial line, then io.EOF.
func (l *LineReader) ReadLine(ctx context.Context) (string, error) {
	l.once.Do(func() { go l.pump() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	}
}

func (l *LineReader) pump() {
	defer close(l.lines)
	for {
		line, err := l.in.ReadString('\n')
		l.lines <- readResult{line: line, err: err}
		if err != nil {
			return
		}
	}
}
