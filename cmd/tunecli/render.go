package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	apiconnect "github.com/osa030/tunetied/internal/api/connect"
)

func renderPlaylists(out io.Writer, playlists []apiconnect.PlaylistInfo) error {
	if len(playlists) == 0 {
		_, err := fmt.Fprintln(out, "No playlists found")
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"ID", "Name", "Owner", "Tracks"})
	for _, p := range playlists {
		if err := table.Append([]string{p.ID, p.Name, p.Owner, strconv.Itoa(p.TrackCount)}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderGenres(out io.Writer, resp *apiconnect.ListGenresResponse) error {
	if len(resp.AvailableGenres) == 0 {
		_, err := fmt.Fprintln(out, "No genres found")
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Rank", "Genre"})
	for i, g := range resp.AvailableGenres {
		if err := table.Append([]string{strconv.Itoa(i + 1), g}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderMix(out io.Writer, resp *apiconnect.RecommendResponse) error {
	if _, err := fmt.Fprintf(out, "Start genre: %s (%s)\n", resp.StartGenre, resp.Algorithm); err != nil {
		return err
	}
	if len(resp.TraversalResults) == 0 {
		_, err := fmt.Fprintf(out, "No songs found. Available genres: %v\n", resp.AvailableGenres)
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"#", "Song"})
	for i, song := range resp.TraversalResults {
		if err := table.Append([]string{strconv.Itoa(i + 1), song}); err != nil {
			return err
		}
	}
	return table.Render()
}
