package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiconnect "github.com/osa030/tunetied/internal/api/connect"
)

func TestRenderPlaylists(t *testing.T) {
	var buf bytes.Buffer
	err := renderPlaylists(&buf, []apiconnect.PlaylistInfo{
		{ID: "37i9dQZF1DX0XUsuxWHRQd", Name: "RapCaviar", Owner: "spotify", TrackCount: 50},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "RapCaviar")
	assert.Contains(t, buf.String(), "37i9dQZF1DX0XUsuxWHRQd")
	assert.Contains(t, buf.String(), "50")

	buf.Reset()
	require.NoError(t, renderPlaylists(&buf, nil))
	assert.Equal(t, "No playlists found\n", buf.String())
}

func TestRenderGenres(t *testing.T) {
	var buf bytes.Buffer
	err := renderGenres(&buf, &apiconnect.ListGenresResponse{
		AvailableGenres: []string{"rock", "pop"},
		TopGenre:        "rock",
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "rock")
	assert.Contains(t, out, "pop")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("rock")), bytes.Index(buf.Bytes(), []byte("pop")))
}

func TestRenderMix(t *testing.T) {
	var buf bytes.Buffer
	err := renderMix(&buf, &apiconnect.RecommendResponse{
		TraversalResults: []string{"S1", "S2"},
		StartGenre:       "rock",
		Algorithm:        "dfs",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Start genre: rock (dfs)")
	assert.Contains(t, buf.String(), "S1")
	assert.Contains(t, buf.String(), "S2")

	buf.Reset()
	err = renderMix(&buf, &apiconnect.RecommendResponse{
		TraversalResults: []string{},
		AvailableGenres:  []string{"jazz"},
		StartGenre:       "polka",
		Algorithm:        "bfs",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No songs found. Available genres: [jazz]")
}
