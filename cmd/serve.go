package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/porter/internal/app"
	"github.com/desertthunder/porter/internal/shared"
	"github.com/desertthunder/porter/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve hosts the playlist page until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	srv := r.config.Server
	if host := cmd.String("host"); host != "" {
		srv.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		srv.Port = int(port)
	}
	addr := srv.Addr()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := r.newController()
	h := web.NewHandler(controller, r.backendService().LoginURL(), r.logger)

	if cmd.Bool("watch") && r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			go r.watchConfig(ctx, controller)
		}
	}

	if cmd.Bool("open") {
		if err := r.open("http://" + addr); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	r.writePlain("Serving playlist page at http://%s (ctrl+c to stop)\n", addr)
	return web.Serve(ctx, addr, h)
}

// watchConfig applies reloadable settings from the config file until ctx is done.
func (r *Runner) watchConfig(ctx context.Context, controller *app.Controller) {
	backend := r.backendService()
	err := shared.WatchConfig(ctx, r.configPath, r.logger, func(c *shared.Config) {
		backend.SetRequestsPerSecond(c.Backend.RequestsPerSecond)
		controller.SetEmbedTemplate(c.Embed.URLTemplate)
		shared.SetLogLevel(r.logger, shared.ParseLogLevel(c.Log.Level))
	})
	if err != nil {
		r.logger.Warn("config watcher stopped", "error", err)
	}
}
