package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/tunetied/internal/domain/playlist"
	"github.com/osa030/tunetied/internal/domain/track"
)

type fakeSource struct {
	calls   atomic.Int32
	release chan struct{}
	tracks  map[string][]track.Track
	err     error
}

func (f *fakeSource) GetPlaylistTracks(ctx context.Context, playlistID string) ([]track.Track, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return track.CloneAll(f.tracks[playlistID]), nil
}

func (f *fakeSource) ListPlaylists(ctx context.Context) ([]playlist.Summary, error) {
	return []playlist.Summary{{ID: "p1", Name: "Road Trip", TrackCount: 2}}, nil
}

type fakeEnricher struct {
	calls int
}

func (f *fakeEnricher) Enrich(ctx context.Context, tracks []track.Track) int {
	f.calls++
	n := 0
	for i := range tracks {
		if !tracks[i].HasGenres() {
			tracks[i].Genres = []string{"unknown"}
			n++
		}
	}
	return n
}

func newSource() *fakeSource {
	return &fakeSource{
		tracks: map[string][]track.Track{
			"p1": {
				{ID: "1", Name: "Song 1", Genres: []string{"rock"}},
				{ID: "2", Name: "Song 2"},
			},
		},
	}
}

func TestCache_TracksHitAndExpiry(t *testing.T) {
	src := newSource()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New(src, time.Minute, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	tracks, err := c.Tracks(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, tracks, 2)
	assert.Equal(t, int32(1), src.calls.Load())

	_, err = c.Tracks(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load(), "second call served from cache")

	now = now.Add(time.Minute)
	_, err = c.Tracks(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load(), "expired entry reloaded")
}

func TestCache_ZeroTTLDisablesCaching(t *testing.T) {
	src := newSource()
	c := New(src, 0)

	for i := 0; i < 3; i++ {
		_, err := c.Tracks(context.Background(), "p1")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), src.calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := New(newSource(), time.Minute)
	ctx := context.Background()

	first, err := c.Tracks(ctx, "p1")
	require.NoError(t, err)
	first[0].Name = "mutated"
	first[0].Genres[0] = "mutated"

	second, err := c.Tracks(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Song 1", second[0].Name)
	assert.Equal(t, []string{"rock"}, second[0].Genres)
}

func TestCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	src := newSource()
	src.release = make(chan struct{})
	c := New(src, time.Minute)

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]track.Track, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Tracks(context.Background(), "p1")
		}(i)
	}

	// Let every goroutine reach the in-flight load before releasing it.
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], 2)
	}
}

func TestCache_CallerCancelDoesNotFailLoad(t *testing.T) {
	src := newSource()
	src.release = make(chan struct{})
	c := New(src, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Tracks(ctx, "p1")
		done <- err
	}()

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	close(src.release)
	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCache_Enricher(t *testing.T) {
	src := newSource()
	enricher := &fakeEnricher{}
	c := New(src, time.Minute, WithEnricher(enricher))

	tracks, err := c.Tracks(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"rock"}, tracks[0].Genres)
	assert.Equal(t, []string{"unknown"}, tracks[1].Genres)

	_, err = c.Tracks(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, enricher.calls, "enrichment runs once per load")
}

func TestCache_LoadError(t *testing.T) {
	sentinel := errors.New("upstream down")
	src := newSource()
	src.err = sentinel
	c := New(src, time.Minute)

	_, err := c.Tracks(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, 0, c.Len(), "errors are not cached")
}

func TestCache_Warm(t *testing.T) {
	src := newSource()
	c := New(src, time.Minute)

	err := c.Warm(context.Background(), []string{"p1", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	src.err = errors.New("boom")
	err = c.Warm(context.Background(), []string{"p1", "p2"})
	assert.Error(t, err, "p2 is not cached so its load fails")
}

func TestCache_Playlists(t *testing.T) {
	c := New(newSource(), time.Minute)
	summaries, err := c.Playlists(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Road Trip", summaries[0].Name)
}
