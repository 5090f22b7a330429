package selection

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zr3/muse/internal/apperr"
	"zr3/muse/internal/cache"
)

func writeFile(path string) error {
	return os.WriteFile(path, []byte("not a directory"), 0o644)
}

func question(stale bool) Question {
	return Question{
		ImageID: "pic1",
		Entry:   &cache.Entry{Description: "a wet street at dusk"},
		Stale:   stale,
		Age:     2 * time.Hour,
	}
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		in   string
		want Decision
		ok   bool
	}{
		{"", Reuse, true},
		{"Y\n", Reuse, true},
		{"reuse", Reuse, true},
		{"n", Regenerate, true},
		{" R ", Regenerate, true},
		{"regenerate", Regenerate, true},
		{"perhaps", Reuse, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDecision(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestInteractiveDecide(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Decision
		wantErr bool
	}{
		{"enter reuses", "\n", Reuse, false},
		{"yes", "y\n", Reuse, false},
		{"no", "n\n", Regenerate, false},
		{"retry then answer", "what\nr\n", Regenerate, false},
		{"no trailing newline", "n", Regenerate, false},
		{"eof", "", Reuse, true},
		{"keeps failing", "a\nb\nc\nn\n", Reuse, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			d, err := NewInteractive(strings.NewReader(tt.input), &out).Decide(context.Background(), question(true))
			assert.Equal(t, tt.want, d)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoAnswer)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out.String(), "a wet street at dusk")
			assert.Contains(t, out.String(), "changed since")
		})
	}
}

func TestInteractivePreviewTruncates(t *testing.T) {
	q := question(false)
	q.Entry.Description = strings.Repeat("word ", 100)
	var out bytes.Buffer
	_, err := NewInteractive(strings.NewReader("y\n"), &out).Decide(context.Background(), q)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "…")
	assert.NotContains(t, out.String(), "changed since")
}

func TestScripted(t *testing.T) {
	s := NewScripted("n", "?")

	d, err := s.Decide(context.Background(), question(false))
	require.NoError(t, err)
	assert.Equal(t, Regenerate, d)

	d, err = s.Decide(context.Background(), question(false))
	assert.ErrorIs(t, err, ErrNoAnswer)
	assert.Equal(t, Reuse, d)

	_, err = s.Decide(context.Background(), question(false))
	assert.ErrorIs(t, err, ErrNoAnswer)
	assert.Len(t, s.Asked, 3)
}

func TestPolicy(t *testing.T) {
	d, err := Policy(Regenerate).Decide(context.Background(), question(false))
	require.NoError(t, err)
	assert.Equal(t, Regenerate, d)
	assert.Equal(t, "regenerate", d.String())
}

func TestResolvePersona(t *testing.T) {
	choices := []Choice{{Name: "Wren Ashby"}, {Name: "Otto Vale"}}
	tests := []struct {
		answer  string
		want    int
		wantErr bool
	}{
		{"1", 0, false},
		{" 2 ", 1, false},
		{"otto vale", 1, false},
		{"0", 0, true},
		{"3", 0, true},
		{"-1", 0, true},
		{"", 0, true},
		{"Nobody", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			got, err := ResolvePersona(tt.answer, choices)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.Validation, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInteractiveChooser(t *testing.T) {
	var out bytes.Buffer
	c := NewInteractiveChooser(strings.NewReader("7\n2\n"), &out)
	choices := []Choice{{Name: "Wren", Source: "sample1.txt"}, {Name: "Otto"}}

	a, err := c.ChoosePersona(context.Background(), choices, 1)
	require.NoError(t, err)
	assert.Equal(t, "7", a)
	assert.Contains(t, out.String(), "1: Wren (sample1.txt)\n2: Otto\n")

	out.Reset()
	a, err = c.ChoosePersona(context.Background(), choices, 2)
	require.NoError(t, err)
	assert.Equal(t, "2", a)
	assert.NotContains(t, out.String(), "choose a persona")

	_, err = c.ChoosePersona(context.Background(), choices, 3)
	assert.ErrorIs(t, err, ErrNoAnswer)
}

func TestInteractivePairSharesInput(t *testing.T) {
	var out bytes.Buffer
	chooser, decider := NewInteractivePair(strings.NewReader("1\nn\n"), &out)

	a, err := chooser.ChoosePersona(context.Background(), []Choice{{Name: "Wren"}}, 1)
	require.NoError(t, err)
	assert.Equal(t, "1", a)

	d, err := decider.Decide(context.Background(), question(false))
	require.NoError(t, err)
	assert.Equal(t, Regenerate, d)
}

func TestFixedChooser(t *testing.T) {
	c := FixedChooser("Otto")
	a, err := c.ChoosePersona(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "Otto", a)

	_, err = c.ChoosePersona(context.Background(), nil, 2)
	assert.ErrorIs(t, err, ErrNoAnswer)
}

// blockedInput is stdin that stays open without ever sending a line.
func blockedInput(t *testing.T) io.Reader {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	return pr
}

func cancelSoon() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 20*time.Millisecond)
}

func TestInteractiveDecideCancelled(t *testing.T) {
	ctx, cancel := cancelSoon()
	defer cancel()

	in := blockedInput(t)
	done := make(chan error, 1)
	go func() {
		_, err := NewInteractive(in, io.Discard).Decide(ctx, question(false))
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotErrorIs(t, err, ErrNoAnswer)
	case <-time.After(2 * time.Second):
		t.Fatal("Decide kept waiting after the context was cancelled")
	}
}

func TestInteractiveChooserCancelled(t *testing.T) {
	ctx, cancel := cancelSoon()
	defer cancel()

	in := blockedInput(t)
	done := make(chan error, 1)
	go func() {
		_, err := NewInteractiveChooser(in, io.Discard).ChoosePersona(ctx, []Choice{{Name: "Wren"}}, 1)
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("ChoosePersona kept waiting after the context was cancelled")
	}
}

func TestLineReaderKeepsLinesAcrossCancel(t *testing.T) {
	pr, pw := io.Pipe()
	r := NewLineReader(pr)

	ctx, cancel := cancelSoon()
	defer cancel()
	_, err := r.ReadLine(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		pw.Write([]byte("2\n"))
		pw.Close()
	}()
	line, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2\n", line)

	_, err = r.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
