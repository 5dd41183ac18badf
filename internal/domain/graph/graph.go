// Package graph builds the genre-to-song weighted graph used for recommendations.
//
// A Graph maps each genre to the ordered list of songs tagged with it. Genres
// and edges keep first-seen order so that ranking and traversal are
// deterministic for a given track list. A Graph is immutable once Build
// returns; accessors hand out copies.
package graph

import "github.com/osa030/tunetied/internal/domain/track"

// Edge is one song reachable from a genre together with its accumulated weight.
type Edge struct {
	Song   string
	Weight int
}

// Graph is the genre-to-song adjacency structure.
type Graph struct {
	genres []string
	edges  map[string][]Edge
}

// Build converts a track list into a weighted Graph.
//
// Tracks without any genre token are skipped. Building happens in two
// phases: the skeleton appends one zero-weight edge per (genre, track), then
// the weight pass scores every edge within its own genre bucket.
func Build(tracks []track.Track) *Graph {
	g := &Graph{edges: make(map[string][]Edge)}

	for i := range tracks {
		for _, genre := range tracks[i].GenreTokens() {
			if _, ok := g.edges[genre]; !ok {
				g.genres = append(g.genres, genre)
			}
			g.edges[genre] = append(g.edges[genre], Edge{Song: tracks[i].Name})
		}
	}

	for _, genre := range g.genres {
		weigh(g.edges[genre])
	}

	return g
}

// weigh applies the pairwise increment rule to one genre bucket: for every
// pair of distinct positions (i, j), entry j gains the multiplicity of its
// song name within the bucket.
func weigh(bucket []Edge) {
	multiplicity := make(map[string]int, len(bucket))
	for _, e := range bucket {
		multiplicity[e.Song]++
	}

	for i := range bucket {
		for j := range bucket {
			if i == j {
				continue
			}
			bucket[j].Weight += multiplicity[bucket[j].Song]
		}
	}
}

// Genres returns genre keys in first-seen order.
func (g *Graph) Genres() []string {
	return append([]string(nil), g.genres...)
}

// Edges returns a copy of the edge list for genre, or nil if the genre is unknown.
func (g *Graph) Edges(genre string) []Edge {
	edges, ok := g.edges[genre]
	if !ok {
		return nil
	}
	return append([]Edge(nil), edges...)
}

// Degree returns the number of edges under genre.
func (g *Graph) Degree(genre string) int {
	return len(g.edges[genre])
}

// Has reports whether genre is a node of the graph.
func (g *Graph) Has(genre string) bool {
	_, ok := g.edges[genre]
	return ok
}

// Len returns the number of genre nodes.
func (g *Graph) Len() int {
	return len(g.genres)
}

// Songs returns the number of distinct song names across all genres.
func (g *Graph) Songs() int {
	seen := make(map[string]struct{})
	for _, edges := range g.edges {
		for _, e := range edges {
			seen[e.Song] = struct{}{}
		}
	}
	return len(seen)
}

// Clone returns an independent deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		genres: append([]string(nil), g.genres...),
		edges:  make(map[string][]Edge, len(g.edges)),
	}
	for genre, edges := range g.edges {
		c.edges[genre] = append([]Edge(nil), edges...)
	}
	return c
}
