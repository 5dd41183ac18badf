package traversal

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/tunetied/internal/domain/graph"
	"github.com/osa030/tunetied/internal/domain/track"
)

func tr(name, genres string) track.Track {
	return track.Track{Name: name, Genres: []string{genres}}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input   string
		want    Algorithm
		wantErr bool
	}{
		{input: "dfs", want: DFS},
		{input: "BFS", want: BFS},
		{input: " Dfs ", want: DFS},
		{input: "dijkstra", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownAlgorithm))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		max  int
		want int
	}{
		{name: "valid", raw: "5", want: 5},
		{name: "empty", raw: "", want: DefaultLimit},
		{name: "non numeric", raw: "ten", want: DefaultLimit},
		{name: "negative", raw: "-3", want: DefaultLimit},
		{name: "zero", raw: "0", want: DefaultLimit},
		{name: "clamped", raw: "500", max: 50, want: 50},
		{name: "no clamp when max unset", raw: "500", want: 500},
		{name: "whitespace", raw: " 7 ", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLimit(tt.raw, tt.max))
		})
	}
}

func TestTraverse_EndToEnd(t *testing.T) {
	g := graph.Build([]track.Track{
		tr("S1", "rock"),
		tr("S2", "rock, pop"),
		tr("S3", "pop"),
	})

	for _, alg := range []Algorithm{DFS, BFS} {
		t.Run(string(alg), func(t *testing.T) {
			result := Traverse(g, alg, "rock", 10)
			assert.ElementsMatch(t, []string{"S1", "S2"}, result)
			assert.NotContains(t, result, "S3")
		})
	}
}

func TestTraverse_UnknownStart(t *testing.T) {
	g := graph.Build([]track.Track{tr("S1", "rock")})

	assert.Equal(t, []string{}, Traverse(g, DFS, "nonexistent-genre", 10))
	assert.Equal(t, []string{}, Traverse(g, BFS, "nonexistent-genre", 10))
	assert.Equal(t, []string{}, Traverse(nil, DFS, "rock", 10))
}

func TestTraverse_UnvalidatedAlgorithm(t *testing.T) {
	g := graph.Build([]track.Track{tr("S1", "rock"), tr("S2", "rock")})

	assert.Equal(t, []string{}, Traverse(g, Algorithm(""), "rock", 10))
	assert.Equal(t, []string{}, Traverse(g, Algorithm("astar"), "rock", 10))
	assert.Equal(t, []string{"S1", "S2"}, Traverse(g, DFS, "rock", 10))
}

func TestTraverse_DFSPrefersHeavierEdges(t *testing.T) {
	// B appears twice under rock, so its entries weigh 4 against A's 2.
	g := graph.Build([]track.Track{
		tr("A", "rock"),
		tr("B", "rock"),
		tr("B", "rock"),
	})

	assert.Equal(t, []string{"B", "A"}, Traverse(g, DFS, "rock", 10))
}

func TestTraverse_BFSIgnoresWeights(t *testing.T) {
	// Same graph as the DFS case: BFS keeps insertion order even though B is heavier.
	g := graph.Build([]track.Track{
		tr("A", "rock"),
		tr("B", "rock"),
		tr("B", "rock"),
	})

	assert.Equal(t, []string{"A", "B"}, Traverse(g, BFS, "rock", 10))
}

func TestTraverse_DFSTiesKeepPushOrder(t *testing.T) {
	g := graph.Build([]track.Track{
		tr("first", "rock"),
		tr("second", "rock"),
		tr("third", "rock"),
	})

	assert.Equal(t, []string{"first", "second", "third"}, Traverse(g, DFS, "rock", 10))
}

func TestTraverse_SongNameCollidingWithGenre(t *testing.T) {
	g := graph.Build([]track.Track{
		tr("jazz", "rock"),
		tr("R2", "rock"),
		tr("J1", "jazz"),
	})

	assert.Equal(t, []string{"jazz", "R2", "J1"}, Traverse(g, DFS, "rock", 10))
	assert.Equal(t, []string{"jazz", "R2", "J1"}, Traverse(g, BFS, "rock", 10))
}

func TestTraverse_DFSExpandsCollisionBeforeLighterSiblings(t *testing.T) {
	// "metal" is both a song under rock and a genre holding two heavy entries.
	g := graph.Build([]track.Track{
		tr("metal", "rock"),
		tr("R2", "rock"),
		tr("M1", "metal"),
		tr("M1", "metal"),
	})

	// rock: metal(1) R2(1); metal: M1(2) M1(2)
	assert.Equal(t, []string{"metal", "M1", "R2"}, Traverse(g, DFS, "rock", 10))
	assert.Equal(t, []string{"metal", "R2", "M1"}, Traverse(g, BFS, "rock", 10))
}

func TestTraverse_Limit(t *testing.T) {
	var tracks []track.Track
	for i := 0; i < 25; i++ {
		tracks = append(tracks, tr(fmt.Sprintf("S%02d", i), "rock"))
	}
	g := graph.Build(tracks)

	assert.Len(t, Traverse(g, DFS, "rock", 5), 5)
	assert.Len(t, Traverse(g, BFS, "rock", 5), 5)
	assert.Len(t, Traverse(g, DFS, "rock", 0), DefaultLimit)
	assert.Len(t, Traverse(g, BFS, "rock", -1), DefaultLimit)
}

func TestTraverse_BoundedAndDistinct(t *testing.T) {
	genres := []string{"rock", "pop", "jazz", "metal", "folk", "S3", "S7"}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		var tracks []track.Track
		for i := 0; i < 40; i++ {
			a := genres[rng.Intn(len(genres))]
			b := genres[rng.Intn(len(genres))]
			tracks = append(tracks, tr(fmt.Sprintf("S%d", rng.Intn(15)), a+", "+b))
		}
		g := graph.Build(tracks)
		limit := rng.Intn(12) + 1

		for _, alg := range []Algorithm{DFS, BFS} {
			for _, start := range g.Genres() {
				result := Traverse(g, alg, start, limit)
				assert.LessOrEqual(t, len(result), limit)

				seen := make(map[string]bool)
				for _, song := range result {
					assert.False(t, seen[song], "duplicate %q in %s from %s", song, alg, start)
					seen[song] = true
				}
			}
		}
	}
}

func TestTraverse_DoesNotMutateGraph(t *testing.T) {
	g := graph.Build([]track.Track{tr("A", "rock"), tr("B", "rock"), tr("B", "rock")})
	before := g.Clone()

	Traverse(g, DFS, "rock", 10)
	Traverse(g, BFS, "rock", 10)

	assert.Equal(t, before, g)
}
