package selection

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zr3/muse/internal/apperr"
	"zr3/muse/internal/cache"
	"zr3/muse/internal/imagefile"
)

type fakeAnalyzer struct {
	replies []string
	err     error
	calls   int
}

func (f *fakeAnalyzer) Model() string { return "fake-vision" }

func (f *fakeAnalyzer) AnalyzeImage(ctx context.Context, img *imagefile.Image) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

type brokenCache struct {
	getErr, putErr error
	entry          *cache.Entry
	puts           int
}

func (b *brokenCache) Get(string) (*cache.Entry, error) { return b.entry, b.getErr }

func (b *brokenCache) Put(id, d string, m cache.Meta) (*cache.Entry, error) {
	b.puts++
	return nil, b.putErr
}

func testLogger() (*log.Logger, *memory.Handler) {
	h := memory.New()
	return &log.Logger{Handler: h, Level: log.DebugLevel}, h
}

func testImage(hash string) *imagefile.Image {
	return &imagefile.Image{ID: "pic1", Path: "input-images/pic1.jpg", Hash: hash}
}

func TestResolveMissCachesFresh(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	analyzer := &fakeAnalyzer{replies: []string{"  a wet street at dusk\n"}}
	decider := NewScripted()
	logger, _ := testLogger()

	res, err := NewSelector(store, analyzer, decider, logger).Resolve(context.Background(), testImage("h1"))
	require.NoError(t, err)

	assert.Equal(t, "a wet street at dusk", res.Description)
	assert.Equal(t, SourceFresh, res.Source)
	assert.Equal(t, 1, analyzer.calls)
	assert.Empty(t, decider.Asked, "no question without a cache entry")

	e, err := store.Get("pic1")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "a wet street at dusk", e.Description)
	assert.Equal(t, "pic1.jpg", e.Source)
	assert.Equal(t, "h1", e.ImageHash)
	assert.Equal(t, "fake-vision", e.Model)
}

func TestResolveReuseSkipsAnalyzer(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	_, err := store.Put("pic1", "cached text", cache.Meta{ImageHash: "h1"})
	require.NoError(t, err)
	analyzer := &fakeAnalyzer{replies: []string{"new text"}}
	decider := NewScripted("y")
	logger, _ := testLogger()

	res, err := NewSelector(store, analyzer, decider, logger).Resolve(context.Background(), testImage("h1"))
	require.NoError(t, err)

	assert.Equal(t, "cached text", res.Description)
	assert.Equal(t, SourceCached, res.Source)
	assert.Equal(t, 0, analyzer.calls)
	require.Len(t, decider.Asked, 1)
	assert.Equal(t, "pic1", decider.Asked[0].ImageID)
	assert.False(t, decider.Asked[0].Stale)
}

func TestResolveRegenerateOverwrites(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	_, err := store.Put("pic1", "old text", cache.Meta{ImageHash: "h0"})
	require.NoError(t, err)
	analyzer := &fakeAnalyzer{replies: []string{"new text"}}
	logger, _ := testLogger()

	res, err := NewSelector(store, analyzer, Policy(Regenerate), logger).Resolve(context.Background(), testImage("h1"))
	require.NoError(t, err)
	assert.Equal(t, "new text", res.Description)
	assert.Equal(t, SourceRegenerated, res.Source)
	assert.False(t, res.Stale)

	e, err := store.Get("pic1")
	require.NoError(t, err)
	assert.Equal(t, "new text", e.Description)
	assert.Equal(t, "h1", e.ImageHash)
}

func TestResolveNoAnswerReusesCache(t *testing.T) {
	for _, answers := range [][]string{nil, {"maybe"}} {
		store := cache.NewStore(t.TempDir())
		_, err := store.Put("pic1", "cached text", cache.Meta{ImageHash: "h0"})
		require.NoError(t, err)
		analyzer := &fakeAnalyzer{replies: []string{"new"}}
		decider := NewScripted(answers...)
		logger, h := testLogger()

		res, err := NewSelector(store, analyzer, decider, logger).Resolve(context.Background(), testImage("h1"))
		require.NoError(t, err)
		assert.Equal(t, "cached text", res.Description)
		assert.Equal(t, SourceCached, res.Source)
		assert.True(t, res.Stale, "hash changed since caching")
		assert.Equal(t, 0, analyzer.calls)
		assert.True(t, decider.Asked[0].Stale)

		var warned bool
		for _, e := range h.Entries {
			if e.Level == log.WarnLevel && e.Message == "no usable answer, reusing cached description" {
				warned = true
			}
		}
		assert.True(t, warned)
	}
}

func TestResolveRegenerateFailureFallsBack(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	_, err := store.Put("pic1", "cached text", cache.Meta{})
	require.NoError(t, err)
	analyzer := &fakeAnalyzer{err: errors.New("connection refused")}
	logger, _ := testLogger()

	res, err := NewSelector(store, analyzer, Policy(Regenerate), logger).Resolve(context.Background(), testImage("h1"))
	require.NoError(t, err)
	assert.Equal(t, "cached text", res.Description)
	assert.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, apperr.Generation, apperr.KindOf(res.Warnings[0]))
}

func TestResolveAnalyzerFailureWithoutCache(t *testing.T) {
	logger, _ := testLogger()
	for name, analyzer := range map[string]*fakeAnalyzer{
		"error": {err: errors.New("timeout")},
		"empty": {replies: []string{"   "}},
	} {
		t.Run(name, func(t *testing.T) {
			store := cache.NewStore(t.TempDir())
			_, err := NewSelector(store, analyzer, Policy(Reuse), logger).Resolve(context.Background(), testImage("h1"))
			require.Error(t, err)
			assert.Equal(t, apperr.Generation, apperr.KindOf(err))

			e, err := store.Get("pic1")
			require.NoError(t, err)
			assert.Nil(t, e, "failures are not cached")
		})
	}
}

func TestResolveCacheIOErrors(t *testing.T) {
	ioErr := apperr.New(apperr.IO, "read cache", "pic1", errors.New("disk on fire"))
	c := &brokenCache{getErr: ioErr, putErr: apperr.New(apperr.IO, "write cache", "pic1", errors.New("read-only"))}
	analyzer := &fakeAnalyzer{replies: []string{"fresh text"}}
	logger, _ := testLogger()

	res, err := NewSelector(c, analyzer, Policy(Reuse), logger).Resolve(context.Background(), testImage("h1"))
	require.NoError(t, err)
	assert.Equal(t, "fresh text", res.Description)
	assert.Equal(t, 1, c.puts)
	require.Len(t, res.Warnings, 2)
	for _, w := range res.Warnings {
		assert.Equal(t, apperr.IO, apperr.KindOf(w))
	}
}

func TestResolveUnwritableCacheDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, writeFile(blocker))
	analyzer := &fakeAnalyzer{replies: []string{"fresh text"}}
	logger, _ := testLogger()

	res, err := NewSelector(cache.NewStore(blocker), analyzer, Policy(Reuse), logger).Resolve(context.Background(), testImage("h1"))
	require.NoError(t, err)
	assert.Equal(t, "fresh text", res.Description)
	assert.Equal(t, SourceFresh, res.Source)
	require.Len(t, res.Warnings, 2, "both the read and the write fail")
	for _, w := range res.Warnings {
		assert.Equal(t, apperr.IO, apperr.KindOf(w))
	}
}

func TestResolveCancelledWhileAsking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	decider := deciderFunc(func() (Decision, error) {
		cancel()
		return Reuse, ctx.Err()
	})
	analyzer := &fakeAnalyzer{replies: []string{"new"}}
	c := &brokenCache{entry: &cache.Entry{ImageID: "pic1", Description: "cached text"}}
	logger, _ := testLogger()

	res, err := NewSelector(c, analyzer, decider, logger).Resolve(ctx, testImage("h1"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
	assert.Equal(t, 0, analyzer.calls)
	assert.Equal(t, 0, c.puts)
}

type deciderFunc func() (Decision, error)

func (f deciderFunc) Decide(context.Context, Question) (Decision, error) { return f() }

func TestResolveAppliesTimeout(t *testing.T) {
	var deadline bool
	analyzer := analyzerFunc(func(ctx context.Context) (string, error) {
		_, deadline = ctx.Deadline()
		return "text", nil
	})
	logger, _ := testLogger()
	s := NewSelector(cache.NewStore(t.TempDir()), analyzer, Policy(Reuse), logger)
	s.Timeout = time.Minute

	_, err := s.Resolve(context.Background(), testImage("h1"))
	require.NoError(t, err)
	assert.True(t, deadline)
}

type analyzerFunc func(ctx context.Context) (string, error)

func (f analyzerFunc) Model() string { return "func" }

func (f analyzerFunc) AnalyzeImage(ctx context.Context, _ *imagefile.Image) (string, error) {
	return f(ctx)
}
