package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/porter/internal/models"
	"github.com/desertthunder/porter/internal/services"
	"github.com/desertthunder/porter/internal/session"
	"github.com/desertthunder/porter/internal/shared"
)

// Controller drives a [Page] through the session, playlist, embed, and selection behaviors.
//
// Backend-bound operations run one at a time. The page itself has its own lock, so snapshots and local
// edits never wait on the network.
type Controller struct {
	ops sync.Mutex

	mu     sync.Mutex
	page   Page
	embeds EmbedPresenter

	backend   services.Backend
	transfer  services.Transferer
	refresher TokenRefresher
	retry     RetryPolicy
	logger    *log.Logger
}

// ControllerOpts contains configuration options for creating a [Controller].
type ControllerOpts struct {
	Backend       services.Backend
	Transfer      services.Transferer // nil leaves the transfer step unwired
	EmbedTemplate string
	Logger        *log.Logger
}

// NewController creates a controller over a fresh [Page].
func NewController(opts ControllerOpts) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Transfer == nil {
		opts.Transfer = unwiredTransfer{}
	}

	logger := shared.WithLogger(opts.Logger, "component", "page")
	return &Controller{
		page:      NewPage(),
		backend:   opts.Backend,
		transfer:  opts.Transfer,
		refresher: TokenRefresher{backend: opts.Backend, logger: logger},
		retry:     DefaultRetryPolicy,
		embeds:    NewEmbedPresenter(opts.EmbedTemplate),
		logger:    logger,
	}
}

// Page returns a snapshot of the current page.
func (c *Controller) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.clone()
}

func (c *Controller) update(fn func(p *Page)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.page)
}

func (c *Controller) status() session.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.Session.Status()
}

// CheckSession queries the login state once.
//
// Logged in: the login control is disabled and playlists are loaded. Logged out: the login control is
// enabled and nothing is fetched. A failed check is logged and the page falls back to logged out.
// Calling it again after the session has been resolved does nothing; see [Controller.Recheck].
func (c *Controller) CheckSession(ctx context.Context) error {
	c.ops.Lock()
	defer c.ops.Unlock()

	if s := c.status(); s != session.Unknown {
		c.logger.Debug("session already checked", "session", s)
		return nil
	}
	return c.checkSession(ctx)
}

// Recheck behaves like a fresh page load unless the user is already logged in: the page is reset and
// the login state is queried again. A logged-in page is left as is.
func (c *Controller) Recheck(ctx context.Context) error {
	c.ops.Lock()
	defer c.ops.Unlock()

	switch c.status() {
	case session.LoggedIn:
		return nil
	case session.LoggedOut:
		c.logger.Debug("rechecking session")
		c.update(func(p *Page) { *p = NewPage() })
	}
	return c.checkSession(ctx)
}

func (c *Controller) checkSession(ctx context.Context) error {
	loggedIn, err := c.backend.AuthStatus(ctx)
	if err != nil {
		c.logger.Error("error checking login status", "error", err)
		c.apply(session.Event{Kind: session.StatusCheckFailed})
		return err
	}

	c.apply(session.Reported(loggedIn))
	if !loggedIn {
		return nil
	}
	return c.loadPlaylists(ctx)
}

// LoadPlaylists fetches and renders the playlist rows, refreshing the access token once on a 401.
func (c *Controller) LoadPlaylists(ctx context.Context) error {
	c.ops.Lock()
	defer c.ops.Unlock()
	return c.loadPlaylists(ctx)
}

func (c *Controller) loadPlaylists(ctx context.Context) error {
	c.logger.Debug("fetching playlists")

	var playlists []models.Playlist
	fetch := func(ctx context.Context) error {
		p, err := c.backend.Playlists(ctx)
		if err != nil {
			return err
		}
		playlists = p
		return nil
	}

	if err := c.retry.Do(ctx, fetch, c.refresh); err != nil {
		switch {
		case errors.Is(err, shared.ErrRefreshFailed):
			c.logger.Error("error refreshing access token, user may need to reauthenticate", "error", err)
		case errors.Is(err, shared.ErrUnauthorized):
			c.logger.Error("playlists still unauthorized after token refresh", "error", err)
		default:
			c.logger.Error("error fetching playlists", "error", err)
		}
		return err
	}

	c.update(func(p *Page) { render(p, playlists) })
	c.logger.Info("playlists rendered", "count", len(playlists))
	return nil
}

// refresh runs the token refresher and moves the session according to the outcome.
func (c *Controller) refresh(ctx context.Context) error {
	c.logger.Info("token expired, refreshing and retrying")
	if err := c.refresher.Refresh(ctx); err != nil {
		c.apply(session.Event{Kind: session.RefreshFailed})
		return err
	}
	c.apply(session.Event{Kind: session.RefreshSucceeded})
	return nil
}

// render replaces the row set. Select-all is reset because it applied to the previous rows.
func render(page *Page, playlists []models.Playlist) {
	rows := make([]Row, 0, len(playlists))
	for _, p := range playlists {
		rows = append(rows, Row{Playlist: p})
	}

	page.Rows = rows
	page.NoPlaylists = len(rows) == 0
	page.TransferVisible = len(rows) > 0
	page.SelectAll = false
	page.SectionVisible = true
}

// ShowEmbed replaces any embed on the page with one for playlistID.
func (c *Controller) ShowEmbed(playlistID string) (Embed, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.page.Row(playlistID); !ok {
		return Embed{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	embed := c.embeds.Present(playlistID)
	c.page.Embed = &embed
	c.logger.Debug("displaying embed", "playlist_id", playlistID)
	return embed, nil
}

// SetEmbedTemplate changes the embed URL template for later [Controller.ShowEmbed] calls.
// An embed already on the page keeps its URL.
func (c *Controller) SetEmbedTemplate(template string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeds = NewEmbedPresenter(template)
}

// SetSelectAll sets every row currently on the page to checked.
func (c *Controller) SetSelectAll(checked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.page.SelectAll = checked
	for i := range c.page.Rows {
		c.page.Rows[i].Checked = checked
	}
}

// Toggle sets a single row's checkbox.
func (c *Controller) Toggle(playlistID string, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.page.Rows {
		if c.page.Rows[i].Playlist.ID == playlistID {
			c.page.Rows[i].Checked = checked
			return nil
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
}

// Submit collects the checked playlist IDs in row order and hands them to the transfer service.
//
// With nothing checked, the page shows a blocking warning and no transfer call is made.
func (c *Controller) Submit(ctx context.Context) (models.Selection, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	var selection models.Selection
	c.update(func(p *Page) {
		p.Warning = ""
		p.Notice = ""
		selection = p.Selection()
		if selection.Empty() {
			p.Warning = MsgEmptySelection
		}
	})
	if selection.Empty() {
		return nil, shared.ErrEmptySelection
	}

	err := c.transfer.Transfer(ctx, selection)
	switch {
	case err == nil:
		c.update(func(p *Page) {
			p.Notice = fmt.Sprintf("Submitted %d playlist(s) for transfer.", len(selection))
		})
	case errors.Is(err, shared.ErrNotImplemented):
		c.logger.Warn("transfer step is not wired", "selected", selection.String())
		c.update(func(p *Page) {
			p.Notice = fmt.Sprintf("Selected %d playlist(s); transfer is not configured.", len(selection))
		})
	default:
		c.logger.Error("error submitting transfer", "error", err)
	}
	return selection, err
}

// DismissWarning clears the blocking warning.
func (c *Controller) DismissWarning() {
	c.update(func(p *Page) { p.Warning = "" })
}

func (c *Controller) apply(ev session.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, ok := c.page.Session.Apply(ev)
	if !ok {
		c.logger.Debug("ignored session event", "session", c.page.Session, "event", ev.Kind)
		return
	}
	if next != c.page.Session {
		c.logger.Info("session changed", "from", c.page.Session, "to", next)
	}
	c.page.Session = next
}

// TokenRefresher asks the backend for a fresh access token.
type TokenRefresher struct {
	backend services.Backend
	logger  *log.Logger
}

// Refresh performs one refresh request.
func (r TokenRefresher) Refresh(ctx context.Context) error {
	if err := r.backend.RefreshToken(ctx); err != nil {
		if !errors.Is(err, shared.ErrRefreshFailed) {
			err = fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
		}
		return err
	}
	r.logger.Info("access token successfully refreshed")
	return nil
}

type unwiredTransfer struct{}

func (unwiredTransfer) Transfer(context.Context, models.Selection) error {
	return fmt.Errorf("%w: no transfer service", shared.ErrNotImplemented)
}
