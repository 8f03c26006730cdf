package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/porter/internal/shared"
	"github.com/desertthunder/porter/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist selection.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if _, ok := terminal(r.output); !ok {
		return fmt.Errorf("%w: the TUI needs an interactive terminal", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logFile, err := r.fileLogger()
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()

	model := ui.NewModel(ctx, ui.ModelOpts{
		Controller: r.newController(),
		LoginURL:   r.backendService().LoginURL(),
		Open:       r.open,
	})
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(r.output), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// defaultLogFile is used when log.file is empty.
const defaultLogFile = "./tmp/porter-tui.log"

// fileLogger points the runner's logger at the configured log file and returns the file for closing.
func (r *Runner) fileLogger() (io.Closer, error) {
	path := r.config.Log.File
	if path == "" {
		path = defaultLogFile
	}

	logger, f, err := shared.NewFileLogger(path)
	if err != nil {
		return nil, err
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(logger)
	return f, nil
}
