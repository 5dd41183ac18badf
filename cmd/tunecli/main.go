// Package main provides the command line client for the recommendation server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/tunetied/internal/api/connect"
	"github.com/osa030/tunetied/internal/app/traversal"
)

var (
	app     = kingpin.New("tunecli", "tunetied recommendation client")
	server  = app.Flag("server", "Server address").Default("http://localhost:8080").Envar("TUNETIED_SERVER").String()
	token   = app.Flag("token", "API token").Envar("TUNETIED_API_TOKEN").String()
	timeout = app.Flag("timeout", "Request timeout").Default("60s").Duration()

	// playlists command
	playlistsCmd = app.Command("playlists", "List playlists visible to the server")

	// genres command
	genresCmd      = app.Command("genres", "Show the ranked genres of a playlist")
	genresPlaylist = genresCmd.Arg("playlist", "Playlist ID, URI or URL").Required().String()

	// mix command
	mixCmd       = app.Command("mix", "Build a mini-playlist from a playlist")
	mixPlaylist  = mixCmd.Arg("playlist", "Playlist ID, URI or URL").Required().String()
	mixAlgorithm = mixCmd.Flag("algorithm", "Traversal algorithm (dfs or bfs)").Short('a').Default("").String()
	mixGenre     = mixCmd.Flag("genre", "Start genre (default: top genre)").Short('g').String()
	mixLimit     = mixCmd.Flag("limit", "Number of songs").Short('n').Default("10").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := apiconnect.NewClient(http.DefaultClient, *server, *token)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var err error
	switch command {
	case playlistsCmd.FullCommand():
		err = listPlaylists(ctx, client)
	case genresCmd.FullCommand():
		err = listGenres(ctx, client, *genresPlaylist)
	case mixCmd.FullCommand():
		err = mix(ctx, client, *mixPlaylist)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", connect.CodeOf(err), err)
		os.Exit(1)
	}
}

func listPlaylists(ctx context.Context, client *apiconnect.Client) error {
	resp, err := client.ListPlaylists(ctx)
	if err != nil {
		return err
	}
	return renderPlaylists(os.Stdout, resp.Playlists)
}

func listGenres(ctx context.Context, client *apiconnect.Client, playlistID string) error {
	resp, err := client.ListGenres(ctx, playlistID)
	if err != nil {
		return err
	}
	return renderGenres(os.Stdout, resp)
}

func mix(ctx context.Context, client *apiconnect.Client, playlistID string) error {
	if *mixAlgorithm != "" {
		if _, err := traversal.ParseAlgorithm(*mixAlgorithm); err != nil {
			return err
		}
	}

	start := time.Now()
	resp, err := client.Recommend(ctx, &apiconnect.RecommendRequest{
		PlaylistID: playlistID,
		Algorithm:  *mixAlgorithm,
		StartGenre: *mixGenre,
		Limit:      apiconnect.Limit(traversal.NormalizeLimit(*mixLimit, 0)),
	})
	if err != nil {
		return err
	}
	if err := renderMix(os.Stdout, resp); err != nil {
		return err
	}
	fmt.Printf("\n(%d songs in %s)\n", len(resp.TraversalResults), time.Since(start).Round(time.Millisecond))
	return nil
}
