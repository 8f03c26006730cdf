package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/porter/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the default configuration file.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if !cmd.IsSet("config") && r.configPath != "" {
		path = r.configPath
	}

	r.logger.Info("creating config file from template", "path", path)
	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set backend.base_url to the playlist backend (default %s)\n", shared.DefaultConfig().Backend.BaseURL)
	r.writePlain("2. Optionally set backend.transfer_path to enable transfer submission\n")
	r.writePlain("3. Run 'porter status' to check your Spotify login\n")
	return nil
}
