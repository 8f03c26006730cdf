// Backend service for making HTTP requests to the playlist backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/porter/internal/models"
	"github.com/desertthunder/porter/internal/shared"
	"golang.org/x/time/rate"
)

const (
	authStatusPath   = "/spotify/auth/status"
	playlistsPath    = "/playlists"
	refreshTokenPath = "/spotify/refresh-token"
	loginPath        = "/login/spotify"

	requestIDHeader = "X-Request-ID"
)

// BackendService talks to the playlist backend over HTTP.
type BackendService struct {
	baseURL      string
	transferPath string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *log.Logger
}

// BackendOpts contains configuration options for creating a [BackendService].
type BackendOpts struct {
	BaseURL           string
	TransferPath      string
	HTTPClient        *http.Client
	RequestsPerSecond float64
	Logger            *log.Logger
}

// NewBackendService creates a new backend client.
func NewBackendService(opts BackendOpts) *BackendService {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:5000"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &BackendService{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		transferPath: opts.TransferPath,
		httpClient:   opts.HTTPClient,
		limiter:      rate.NewLimiter(limitFor(opts.RequestsPerSecond), 1),
		logger:       shared.WithLogger(opts.Logger, "component", "backend"),
	}
}

func limitFor(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

// SetRequestsPerSecond changes the request rate limit. Zero or less removes the limit.
func (b *BackendService) SetRequestsPerSecond(rps float64) {
	b.limiter.SetLimit(limitFor(rps))
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// LoginURL returns the backend's provider login entry point.
func (b *BackendService) LoginURL() string {
	return b.baseURL + loginPath
}

// AuthStatus queries /spotify/auth/status.
func (b *BackendService) AuthStatus(ctx context.Context) (bool, error) {
	resp, err := b.send(ctx, http.MethodGet, authStatusPath, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, authStatusPath, resp.StatusCode)
	}

	var payload struct {
		SpotifyLoggedIn bool `json:"spotifyLoggedIn"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrDecodeResponse, err)
	}

	b.logger.Debug("auth status", "logged_in", payload.SpotifyLoggedIn)
	return payload.SpotifyLoggedIn, nil
}

// Playlists fetches /playlists.
//
// A 401 returns [shared.ErrUnauthorized] before the body is read.
func (b *BackendService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	resp, err := b.send(ctx, http.MethodGet, playlistsPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b.logger.Debug("playlists response", "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s returned status 401", shared.ErrUnauthorized, playlistsPath)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, playlistsPath, resp.StatusCode)
	}

	var payload struct {
		Playlists json.RawMessage `json:"playlists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecodeResponse, err)
	}

	return decodePlaylists(payload.Playlists)
}

func decodePlaylists(raw json.RawMessage) ([]models.Playlist, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []models.Playlist{}, nil
	}

	var playlists []models.Playlist
	if err := json.Unmarshal(raw, &playlists); err == nil {
		return playlists, nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return nil, shared.ErrLegacyPlaylists
	}

	return nil, fmt.Errorf("%w: playlists is not a list of objects", shared.ErrDecodeResponse)
}

// RefreshToken posts to /spotify/refresh-token. Any 2xx is success; the body is ignored.
func (b *BackendService) RefreshToken(ctx context.Context) error {
	resp, err := b.send(ctx, http.MethodPost, refreshTokenPath, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrRefreshFailed, resp.StatusCode)
	}

	b.logger.Info("access token refreshed")
	return nil
}

// Transfer submits the selection to the configured transfer endpoint as {"selectedPlaylists": [...]}.
func (b *BackendService) Transfer(ctx context.Context, selection models.Selection) error {
	if selection.Empty() {
		return shared.ErrEmptySelection
	}
	if b.transferPath == "" {
		return fmt.Errorf("%w: transfer endpoint is not configured", shared.ErrNotImplemented)
	}

	body, err := json.Marshal(struct {
		SelectedPlaylists []string `json:"selectedPlaylists"`
	}{SelectedPlaylists: selection})
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	resp, err := b.Post(ctx, b.transferPath, body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	b.logger.Info("transfer submitted", "count", len(selection))
	return nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (b *BackendService) Get(ctx context.Context, path string) (*APIResponse, error) {
	resp, err := b.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return readResponse(resp)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (b *BackendService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	resp, err := b.send(ctx, http.MethodPost, path, data)
	if err != nil {
		return nil, err
	}
	return readResponse(resp)
}

// send waits on the limiter and performs the request. The caller closes the body.
func (b *BackendService) send(ctx context.Context, method, path string, data []byte) (*http.Response, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	b.logger.Debug("request", "method", method, "path", path, "request_id", requestID)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return resp, nil
}

func readResponse(resp *http.Response) (*APIResponse, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
