package graph

import "sort"

// DefaultTopGenres is the number of genres kept by Rank when n is not positive.
const DefaultTopGenres = 15

// Ranking is the ordered list of most represented genres.
type Ranking struct {
	Genres   []string
	TopGenre string // first element of Genres, empty when no ranking is available
}

// Rank orders genres by descending edge count and keeps the first n.
// Ties keep the graph's first-seen genre order.
func Rank(g *Graph, n int) Ranking {
	if n <= 0 {
		n = DefaultTopGenres
	}
	if g == nil || g.Len() == 0 {
		return Ranking{Genres: []string{}}
	}

	genres := g.Genres()
	sort.SliceStable(genres, func(i, j int) bool {
		return g.Degree(genres[i]) > g.Degree(genres[j])
	})

	if len(genres) > n {
		genres = genres[:n]
	}

	return Ranking{
		Genres:   genres,
		TopGenre: genres[0],
	}
}
