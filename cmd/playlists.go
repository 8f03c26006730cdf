package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour/styles"
	"github.com/desertthunder/porter/internal/app"
	"github.com/desertthunder/porter/internal/formatter"
	"github.com/desertthunder/porter/internal/models"
	"github.com/desertthunder/porter/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadPage runs the session check on a fresh controller and requires a logged-in session.
func (r *Runner) loadPage(ctx context.Context) (*app.Controller, error) {
	c := r.newController()
	if err := c.CheckSession(ctx); err != nil {
		return nil, fmt.Errorf("failed to load playlists: %w", err)
	}
	if !c.Page().Session.LoggedIn() {
		return nil, fmt.Errorf("%w: log in at %s", shared.ErrNotAuthenticated, r.backendService().LoginURL())
	}
	return c, nil
}

// Playlists lists the user's playlists in the requested format.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	render := cmd.Bool("render")
	if render && format != formatter.FormatMarkdown {
		return fmt.Errorf("%w: --render requires --format markdown", shared.ErrInvalidArgument)
	}

	c, err := r.loadPage(ctx)
	if err != nil {
		return err
	}

	page := c.Page()
	playlists := make([]models.Playlist, 0, len(page.Rows))
	for _, row := range page.Rows {
		playlists = append(playlists, row.Playlist)
	}
	r.logger.Debug("listing playlists", "count", len(playlists), "format", format)

	listing := formatter.Listing{Title: "Spotify Playlists", Playlists: playlists}
	if cmd.Bool("embeds") {
		presenter := app.NewEmbedPresenter(r.config.Embed.URLTemplate)
		listing.EmbedURL = func(id string) string { return presenter.Present(id).Src }
	}

	if !render {
		return formatter.Write(r.output, listing, format)
	}

	md, err := formatter.Export(listing, format)
	if err != nil {
		return err
	}

	width, tty := terminal(r.output)
	style := styles.DarkStyle
	if !tty {
		width, style = defaultWidth, styles.NoTTYStyle
	}

	out, err := formatter.RenderMarkdown(md, width, style)
	if err != nil {
		return err
	}
	return r.writePlain("%s", out)
}

// Embed prints the embed player URL for a playlist and optionally opens it.
func (r *Runner) Embed(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.String("id"))
	if id == "" {
		return fmt.Errorf("%w: --id is required", shared.ErrMissingArgument)
	}

	var embed app.Embed
	if cmd.Bool("verify") {
		c, err := r.loadPage(ctx)
		if err != nil {
			return err
		}
		if embed, err = c.ShowEmbed(id); err != nil {
			return err
		}
	} else {
		embed = app.NewEmbedPresenter(r.config.Embed.URLTemplate).Present(id)
	}

	if err := r.writePlain("%s\n", embed.Src); err != nil {
		return err
	}

	if cmd.Bool("open") {
		r.logger.Info("opening embed player", "playlist_id", id)
		if err := r.open(embed.Src); err != nil {
			return err
		}
	}
	return nil
}
