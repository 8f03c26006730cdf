// Package web renders the playlist page as server-side HTML and hosts it locally.
//
// # Rendering
//
// [Render] writes an [app.Page] through html/template. The document keeps the element identifiers the
// page has always used (spotifyButton, playlistSection, playlistList, transferButton, selectAllCheckbox,
// embedContainer, spotifyEmbed) so existing styling and tests can target them.
//
// # Routes
//
//	GET  /                     → session check unless logged in, then the rendered page
//	GET  /login                → redirect to the backend's provider login
//	POST /playlists/reload     → reload playlists (refresh-and-retry on 401)
//	POST /playlists/select-all → apply the select-all checkbox to the current rows
//	POST /playlists/toggle     → check or uncheck one row
//	POST /embed                → replace the embed player
//	POST /transfer             → submit the checked playlists
//	POST /warning/dismiss      → acknowledge the blocking warning
//
// Every POST answers 303 See Other back to /, so the browser always shows a fresh render.
//
// # State
//
// One [app.Controller] backs the page. The host is meant for a single local user and keeps no sessions.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/porter/internal/app"
	"github.com/desertthunder/porter/internal/server"
	"github.com/desertthunder/porter/internal/session"
	"github.com/desertthunder/porter/internal/shared"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type elementIDs struct {
	SpotifyButton     string
	PlaylistSection   string
	PlaylistList      string
	TransferButton    string
	SelectAllCheckbox string
	EmbedContainer    string
	SpotifyEmbed      string
}

type embedAttrs struct {
	Width   string
	Height  string
	Allow   string
	Loading string
}

type pageData struct {
	Page           app.Page
	Control        session.Control
	IDs            elementIDs
	Embed          embedAttrs
	NoPlaylistsMsg string
}

var ids = elementIDs{
	SpotifyButton:     app.ElemSpotifyButton,
	PlaylistSection:   app.ElemPlaylistSection,
	PlaylistList:      app.ElemPlaylistList,
	TransferButton:    app.ElemTransferButton,
	SelectAllCheckbox: app.ElemSelectAllCheckbox,
	EmbedContainer:    app.ElemEmbedContainer,
	SpotifyEmbed:      app.ElemSpotifyEmbed,
}

// Render writes the page document to w.
func Render(w io.Writer, page app.Page) error {
	data := pageData{
		Page:           page,
		Control:        page.Control(),
		IDs:            ids,
		NoPlaylistsMsg: app.MsgNoPlaylists,
		Embed: embedAttrs{
			Width:   app.EmbedWidth,
			Height:  app.EmbedHeight,
			Allow:   app.EmbedAllow,
			Loading: app.EmbedLoad,
		},
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// Handler serves the playlist page over one [app.Controller].
type Handler struct {
	controller *app.Controller
	loginURL   string
	logger     *log.Logger
}

// NewHandler creates a page handler. loginURL is where the login control sends the browser.
func NewHandler(controller *app.Controller, loginURL string, logger *log.Logger) *Handler {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Handler{
		controller: controller,
		loginURL:   loginURL,
		logger:     shared.WithLogger(logger, "component", "web"),
	}
}

// Register adds the page routes to r.
func (h *Handler) Register(r server.Router) {
	r.Handle(http.MethodGet, "/", http.HandlerFunc(h.index))
	r.Handle(http.MethodGet, "/login", http.HandlerFunc(h.login))
	r.Handle(http.MethodPost, "/playlists/reload", http.HandlerFunc(h.reload))
	r.Handle(http.MethodPost, "/playlists/select-all", http.HandlerFunc(h.selectAll))
	r.Handle(http.MethodPost, "/playlists/toggle", http.HandlerFunc(h.toggle))
	r.Handle(http.MethodPost, "/embed", http.HandlerFunc(h.embed))
	r.Handle(http.MethodPost, "/transfer", http.HandlerFunc(h.transfer))
	r.Handle(http.MethodPost, "/warning/dismiss", http.HandlerFunc(h.dismiss))
}

// NewRouter builds a router with request-id and logging middleware and the page routes.
func NewRouter(h *Handler) *server.BasicRouter {
	r := server.NewBasicRouter()
	r.Use(server.RequestID(), server.Logging(h.logger))
	h.Register(r)
	return r
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if !h.controller.Page().Session.LoggedIn() {
		// failures are logged by the controller and leave the page logged out
		_ = h.controller.Recheck(r.Context())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Render(w, h.controller.Page()); err != nil {
		h.logger.Error("render failed", "error", err)
		http.Error(w, "Render failed", http.StatusInternalServerError)
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if h.controller.Page().Control().Disabled {
		h.back(w, r)
		return
	}
	http.Redirect(w, r, h.loginURL, http.StatusFound)
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	_ = h.controller.LoadPlaylists(r.Context())
	h.back(w, r)
}

func (h *Handler) selectAll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	h.controller.SetSelectAll(formBool(r.PostForm.Get("checked")))
	h.back(w, r)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	if err := h.controller.Toggle(r.PostForm.Get("id"), formBool(r.PostForm.Get("checked"))); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.back(w, r)
}

func (h *Handler) embed(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	if _, err := h.controller.ShowEmbed(r.PostForm.Get("id")); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.back(w, r)
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	sel, err := h.controller.Submit(r.Context())
	if err != nil {
		h.logger.Warn("transfer not completed", "error", err)
	} else {
		h.logger.Info("transfer submitted", "selection", sel.String())
	}
	h.back(w, r)
}

func (h *Handler) dismiss(w http.ResponseWriter, r *http.Request) {
	h.controller.DismissWarning()
	h.back(w, r)
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// formBool reads an HTML checkbox or boolean form value.
func formBool(v string) bool {
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// Serve runs the page host on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h *Handler) error {
	srv := &http.Server{Addr: addr, Handler: NewRouter(h)}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("serving playlist page", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
