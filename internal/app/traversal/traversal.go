// Package traversal explores the genre graph to produce a mini-playlist.
package traversal

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/tunetied/internal/domain/graph"
)

// DefaultLimit is the result size used when the caller gives none.
const DefaultLimit = 10

// Algorithm names a traversal strategy.
type Algorithm string

const (
	// DFS pops the heaviest frontier entry first.
	DFS Algorithm = "dfs"
	// BFS dequeues in insertion order. Weights are carried but not used for ordering.
	BFS Algorithm = "bfs"
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm for unsupported names.
var ErrUnknownAlgorithm = errors.New("unknown traversal algorithm")

// ParseAlgorithm parses a case-insensitive algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case DFS:
		return DFS, nil
	case BFS:
		return BFS, nil
	default:
		return "", errors.Wrapf(ErrUnknownAlgorithm, "%q", s)
	}
}

// NormalizeLimit parses a caller supplied limit.
// Non-numeric or non-positive values fall back to DefaultLimit; max clamps when positive.
func NormalizeLimit(raw string, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = 0
	}
	return ClampLimit(n, max)
}

// ClampLimit applies the default and upper bound to an already parsed limit.
func ClampLimit(n, max int) int {
	if n <= 0 {
		n = DefaultLimit
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

// Traverse explores g from the start genre with the given algorithm and
// returns at most limit distinct song names. An unknown start genre or an
// algorithm other than DFS and BFS yields an empty result.
func Traverse(g *graph.Graph, alg Algorithm, start string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if g == nil {
		return []string{}
	}

	switch alg {
	case DFS:
		return depthFirst(g, start, limit)
	case BFS:
		return breadthFirst(g, start, limit)
	default:
		return []string{}
	}
}

// candidate is a frontier entry; seq records push order for tie-breaking.
type candidate struct {
	graph.Edge
	seq int
}

// depthFirst keeps a stack ordered by weight before every pop. Among equal
// weights the entry pushed earliest is popped first.
func depthFirst(g *graph.Graph, start string, limit int) []string {
	result := []string{}
	visited := make(map[string]bool)

	var stack []candidate
	seq := 0
	push := func(edges []graph.Edge) {
		for _, e := range edges {
			stack = append(stack, candidate{Edge: e, seq: seq})
			seq++
		}
	}
	push(g.Edges(start))

	for len(stack) > 0 && len(result) < limit {
		// Heaviest, earliest pushed entry ends up on top.
		sort.SliceStable(stack, func(i, j int) bool {
			if stack[i].Weight != stack[j].Weight {
				return stack[i].Weight < stack[j].Weight
			}
			return stack[i].seq > stack[j].seq
		})

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[top.Song] {
			continue
		}
		visited[top.Song] = true
		result = append(result, top.Song)

		// Only fires when a song name is also a genre key.
		push(g.Edges(top.Song))
	}

	return result
}

// breadthFirst is a plain FIFO walk. It does not reorder by weight.
func breadthFirst(g *graph.Graph, start string, limit int) []string {
	result := []string{}
	visited := make(map[string]bool)

	queue := g.Edges(start)
	for len(queue) > 0 && len(result) < limit {
		head := queue[0]
		queue = queue[1:]

		if visited[head.Song] {
			continue
		}
		visited[head.Song] = true
		result = append(result, head.Song)

		queue = append(queue, g.Edges(head.Song)...)
	}

	return result
}
