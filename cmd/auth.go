package main

import (
	"context"

	"github.com/desertthunder/porter/internal/session"
	"github.com/urfave/cli/v3"
)

type statusOutput struct {
	Status   string `json:"status"`
	LoggedIn bool   `json:"loggedIn"`
	Label    string `json:"label"`
	LoginURL string `json:"loginUrl,omitempty"`
}

// Status checks the backend login state (calls /spotify/auth/status).
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	backend := r.backendService()
	state := session.New()

	loggedIn, err := backend.AuthStatus(ctx)
	if err != nil {
		state, _ = state.Apply(session.Event{Kind: session.StatusCheckFailed})
		r.logger.Error("error checking login status", "error", err, "session", state)
		return err
	}
	state, _ = state.Apply(session.Reported(loggedIn))

	out := statusOutput{
		Status:   state.String(),
		LoggedIn: state.LoggedIn(),
		Label:    state.Control().Label,
	}
	if !state.LoggedIn() {
		out.LoginURL = backend.LoginURL()
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, false)
	}

	if out.LoggedIn {
		return r.writePlain("✓ %s\n", out.Label)
	}
	r.writePlain("✗ Not logged in to Spotify\n")
	return r.writePlain("Login at: %s\n", out.LoginURL)
}
