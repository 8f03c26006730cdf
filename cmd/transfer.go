package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/porter/internal/shared"
	"github.com/urfave/cli/v3"
)

// Transfer checks the requested playlists and submits them.
//
// The submitted selection follows playlist order, not flag order. With no transfer endpoint configured
// the selection is reported and [shared.ErrNotImplemented] is returned.
func (r *Runner) Transfer(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringSlice("id")
	all := cmd.Bool("all")
	if len(ids) == 0 && !all {
		return fmt.Errorf("%w: pass --id at least once or --all", shared.ErrMissingArgument)
	}

	c, err := r.loadPage(ctx)
	if err != nil {
		return err
	}

	if all {
		c.SetSelectAll(true)
	}
	for _, id := range ids {
		if err := c.Toggle(id, true); err != nil {
			return err
		}
	}

	selection, err := c.Submit(ctx)
	page := c.Page()
	if err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			r.writePlain("%s\n", page.Notice)
			r.writePlain("Selected: %s\n", selection.String())
		}
		return err
	}

	r.writePlain("✓ %s\n", page.Notice)
	return r.writePlain("Selected: %s\n", selection.String())
}
