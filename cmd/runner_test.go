package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/porter/internal/services"
	"github.com/desertthunder/porter/internal/shared"
	tu "github.com/desertthunder/porter/internal/testing"
	"github.com/urfave/cli/v3"
)

// fakeBackend serves the backend endpoints the commands call.
type fakeBackend struct {
	mu        sync.Mutex
	loggedIn  bool
	playlists string
	transfers []string
}

func (f *fakeBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/spotify/auth/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"spotifyLoggedIn": f.loggedIn})
	})
	mux.HandleFunc("/playlists", func(w http.ResponseWriter, r *http.Request) {
		playlists := f.playlists
		if playlists == "" {
			playlists = "[]"
		}
		w.Write([]byte(`{"playlists":` + playlists + `}`))
	})
	mux.HandleFunc("/spotify/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/transfer", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.transfers = append(f.transfers, string(body))
		f.mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const twoPlaylists = `[{"id":"a","name":"Alpha"},{"id":"b","name":"Beta, Vol. 2"}]`

func newTestRunner(t *testing.T, f *fakeBackend, transferPath string) (*Runner, *bytes.Buffer, *[]string) {
	t.Helper()
	srv := f.server(t)

	config := shared.DefaultConfig()
	config.Backend.BaseURL = srv.URL
	config.Backend.TransferPath = transferPath
	config.Backend.RequestsPerSecond = 0

	output := &bytes.Buffer{}
	opened := &[]string{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Output: output,
		Logger: shared.NewLogger(io.Discard),
		Open: func(url string) error {
			*opened = append(*opened, url)
			return nil
		},
	})
	return runner, output, opened
}

func runCLI(r *Runner, args ...string) error {
	root := &cli.Command{
		Name:      "porter",
		Commands:  r.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return root.Run(context.Background(), append([]string{"porter"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			backend := services.NewBackendService(services.BackendOpts{})

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Backend:    backend,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.backendService() != backend {
				t.Error("expected backend to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses configured timeout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient == nil {
				t.Fatal("expected httpClient to be set")
			}
			if runner.httpClient.Timeout != runner.config.Backend.Timeout() {
				t.Errorf("expected timeout %v, got %v", runner.config.Backend.Timeout(), runner.httpClient.Timeout)
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("SetLogger rebuilds backend from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			first := runner.backendService()

			runner.SetLogger(shared.NewLogger(io.Discard))
			if runner.backendService() == first {
				t.Error("expected a new backend after SetLogger")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "status", "playlists", "embed", "transfer", "serve", "tui", "api"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("Status", func(t *testing.T) {
		t.Run("logged in", func(t *testing.T) {
			runner, output, _ := newTestRunner(t, &fakeBackend{loggedIn: true}, "")

			if err := runCLI(runner, "status"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "Spotify Login Successful") {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("logged out json", func(t *testing.T) {
			runner, output, _ := newTestRunner(t, &fakeBackend{}, "")

			if err := runCLI(runner, "status", "--json"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			var got statusOutput
			if err := json.Unmarshal(output.Bytes(), &got); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if got.LoggedIn || got.Status != "logged-out" {
				t.Errorf("unexpected status %+v", got)
			}
			if !strings.HasSuffix(got.LoginURL, "/login/spotify") {
				t.Errorf("expected login URL, got %s", got.LoginURL)
			}
		})
	})

	t.Run("Playlists", func(t *testing.T) {
		t.Run("csv", func(t *testing.T) {
			runner, output, _ := newTestRunner(t, &fakeBackend{loggedIn: true, playlists: twoPlaylists}, "")

			if err := runCLI(runner, "playlists", "--format", "csv"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := "ID,Name\na,Alpha\nb,\"Beta, Vol. 2\"\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("with embeds", func(t *testing.T) {
			runner, output, _ := newTestRunner(t, &fakeBackend{loggedIn: true, playlists: twoPlaylists}, "")

			if err := runCLI(runner, "playlists", "--format", "markdown", "--embeds"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "(https://open.spotify.com/embed/playlist/a?utm_source=generator)") {
				t.Errorf("expected embed link, got %s", output.String())
			}
		})

		t.Run("rendered markdown", func(t *testing.T) {
			runner, output, _ := newTestRunner(t, &fakeBackend{loggedIn: true, playlists: twoPlaylists}, "")

			if err := runCLI(runner, "playlists", "--format", "markdown", "--render"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "Alpha") {
				t.Errorf("expected rendered listing, got %q", output.String())
			}
		})

		t.Run("render requires markdown", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &fakeBackend{loggedIn: true, playlists: twoPlaylists}, "")

			if err := runCLI(runner, "playlists", "--render"); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("not logged in", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &fakeBackend{}, "")

			if err := runCLI(runner, "playlists"); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("legacy shape", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &fakeBackend{loggedIn: true, playlists: `["Alpha","Beta"]`}, "")

			if err := runCLI(runner, "playlists"); !errors.Is(err, shared.ErrLegacyPlaylists) {
				t.Errorf("expected ErrLegacyPlaylists, got %v", err)
			}
		})

		t.Run("unknown format", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &fakeBackend{loggedIn: true}, "")

			if err := runCLI(runner, "playlists", "--format", "yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})

	t.Run("Embed", func(t *testing.T) {
		t.Run("prints and opens", func(t *testing.T) {
			runner, output, opened := newTestRunner(t, &fakeBackend{}, "")

			if err := runCLI(runner, "embed", "--id", "37i9dQZF1DX", "--open"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			want := "https://open.spotify.com/embed/playlist/37i9dQZF1DX?utm_source=generator"
			if strings.TrimSpace(output.String()) != want {
				t.Errorf("expected %s, got %s", want, output.String())
			}
			if len(*opened) != 1 || (*opened)[0] != want {
				t.Errorf("expected browser to open embed, got %v", *opened)
			}
		})

		t.Run("verify unknown playlist", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &fakeBackend{loggedIn: true, playlists: twoPlaylists}, "")

			if err := runCLI(runner, "embed", "--id", "zzz", "--verify"); !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})
	})

	t.Run("Transfer", func(t *testing.T) {
		t.Run("submits in playlist order", func(t *testing.T) {
			backend := &fakeBackend{loggedIn: true, playlists: twoPlaylists}
			runner, output, _ := newTestRunner(t, backend, "/transfer")

			if err := runCLI(runner, "transfer", "--id", "b", "--id", "a"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			backend.mu.Lock()
			defer backend.mu.Unlock()
			if len(backend.transfers) != 1 || backend.transfers[0] != `{"selectedPlaylists":["a","b"]}` {
				t.Errorf("unexpected transfer bodies %v", backend.transfers)
			}
			if !strings.Contains(output.String(), "Submitted 2 playlist(s)") {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("unconfigured endpoint", func(t *testing.T) {
			runner, output, _ := newTestRunner(t, &fakeBackend{loggedIn: true, playlists: twoPlaylists}, "")

			err := runCLI(runner, "transfer", "--all")
			if !errors.Is(err, shared.ErrNotImplemented) {
				t.Fatalf("expected ErrNotImplemented, got %v", err)
			}
			if !strings.Contains(output.String(), "Selected: a,b") {
				t.Errorf("expected selection to be reported, got %q", output.String())
			}
		})

		t.Run("unknown playlist", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &fakeBackend{loggedIn: true, playlists: twoPlaylists}, "/transfer")

			if err := runCLI(runner, "transfer", "--id", "zzz"); !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})

		t.Run("nothing selected", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &fakeBackend{loggedIn: true, playlists: twoPlaylists}, "/transfer")

			if err := runCLI(runner, "transfer"); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("API", func(t *testing.T) {
		t.Run("get", func(t *testing.T) {
			runner, output, _ := newTestRunner(t, &fakeBackend{loggedIn: true}, "")

			if err := runCLI(runner, "api", "get", "--pretty=false", "spotify/auth/status"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if strings.TrimSpace(output.String()) != `{"spotifyLoggedIn":true}` {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("get error status", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &fakeBackend{}, "")

			if err := runCLI(runner, "api", "get", "/broken"); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("post invalid json", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &fakeBackend{}, "")

			if err := runCLI(runner, "api", "post", "--data", "{nope", "/transfer"); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("Setup", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		runner := NewRunner(RunnerOpts{ConfigPath: configPath, Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})

		if err := runCLI(runner, "setup"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		config, err := shared.LoadConfig(configPath)
		if err != nil {
			t.Fatalf("expected written config to load, got %v", err)
		}
		if config.Backend.BaseURL != shared.DefaultConfig().Backend.BaseURL {
			t.Errorf("unexpected base URL %s", config.Backend.BaseURL)
		}

		if err := runCLI(runner, "setup"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected error for existing config, got %v", err)
		}
	})
}

func TestServe(t *testing.T) {
	t.Run("stops when the context is cancelled", func(t *testing.T) {
		runner, output, opened := newTestRunner(t, &fakeBackend{loggedIn: true}, "")
		runner.config.Server.Host = "127.0.0.1"
		runner.config.Server.Port = 0

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		root := &cli.Command{Name: "porter", Commands: runner.register(), Writer: io.Discard, ErrWriter: io.Discard}

		done := make(chan error, 1)
		go func() {
			done <- root.Run(ctx, []string{"porter", "serve", "--open", "--watch=false"})
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("expected clean shutdown, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("serve did not stop")
		}

		if !strings.Contains(output.String(), "http://127.0.0.1:0") {
			t.Errorf("expected serving address in output, got %q", output.String())
		}
		if len(*opened) != 1 || (*opened)[0] != "http://127.0.0.1:0" {
			t.Errorf("expected page opened once, got %v", *opened)
		}
	})

	t.Run("config changes reach the page", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, &fakeBackend{loggedIn: true, playlists: twoPlaylists}, "")
		runner.configPath = filepath.Join(t.TempDir(), "config.toml")
		if err := shared.CreateConfigFile(runner.configPath); err != nil {
			t.Fatalf("failed to create config: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		controller := runner.newController()
		if err := controller.CheckSession(ctx); err != nil {
			t.Fatalf("expected session check to pass, got %v", err)
		}
		go runner.watchConfig(ctx, controller)

		updated := []byte("[embed]\nurl_template = \"https://embed.test/%s\"\n")
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		timeout := time.After(5 * time.Second)

		for {
			select {
			case <-ticker.C:
				embed, err := controller.ShowEmbed("a")
				if err != nil {
					t.Fatalf("expected embed for a, got %v", err)
				}
				if embed.Src == "https://embed.test/a" {
					return
				}
				os.WriteFile(runner.configPath, updated, 0644)
			case <-timeout:
				t.Fatal("timed out waiting for embed template reload")
			}
		}
	})
}

func TestTUI(t *testing.T) {
	t.Run("Requires A Terminal", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, &fakeBackend{loggedIn: true}, "")

		if err := runCLI(runner, "tui"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable without a terminal, got %v", err)
		}
	})

	t.Run("File Logger Returns The Log File", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, &fakeBackend{loggedIn: true}, "")
		runner.config.Log.File = filepath.Join(t.TempDir(), "logs", "tui.log")

		logFile, err := runner.fileLogger()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		runner.logger.Info("to file")

		if err := logFile.Close(); err != nil {
			t.Fatalf("expected close to succeed, got %v", err)
		}
		if err := logFile.Close(); !errors.Is(err, os.ErrClosed) {
			t.Errorf("expected the log file itself to be returned, got %v", err)
		}
		if data, _ := os.ReadFile(runner.config.Log.File); !strings.Contains(string(data), "to file") {
			t.Errorf("expected log line in file, got %q", data)
		}
	})
}
