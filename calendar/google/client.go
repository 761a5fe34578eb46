package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/guilherme-santos/zoomlauncher/internal"
	"github.com/guilherme-santos/zoomlauncher/internal/logging"
)

const DefaultCalendarID = "primary"

// loginTimeout bounds how long the interactive flow waits for the browser
// to come back with a code.
const loginTimeout = 5 * time.Minute

var _ internal.Calendar = (*Client)(nil)

type Client struct {
	oauthCfg *oauth2.Config
	tokens   *TokenFile

	CalendarID string
	// OpenURL is handed the consent page URL during an interactive login.
	OpenURL func(authURL string)

	// extra options for calendar.NewService, used to point tests at a fake
	// API server.
	serviceOpts []option.ClientOption
}

func NewClient(credJSON []byte, tokens *TokenFile) (*Client, error) {
	oauthCfg, err := google.ConfigFromJSON(credJSON, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, goerr.Wrap(err, "google: failed to parse credentials")
	}
	return &Client{
		oauthCfg:   oauthCfg,
		tokens:     tokens,
		CalendarID: DefaultCalendarID,
	}, nil
}

// Events lists the single occurrences starting inside w, ordered by start
// time.
func (c *Client) Events(ctx context.Context, w internal.Window) ([]*internal.Event, error) {
	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return nil, err
	}
	call := svc.Events.
		List(c.CalendarID).
		Context(ctx).
		TimeMin(w.From.UTC().Format(time.RFC3339)).
		TimeMax(w.To.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	logging.From(ctx).Debug("google: checking for events", "calendar", c.CalendarID, "from", w.From, "to", w.To)

	var (
		events        []*internal.Event
		nextPageToken string
	)
	for {
		res, err := call.PageToken(nextPageToken).Do()
		if err != nil {
			return nil, goerr.Wrap(err, "google: failed to list events",
				goerr.V("calendar", c.CalendarID),
				goerr.V("unauthorized", IsUnauthorized(err)),
			)
		}
		for _, item := range res.Items {
			events = append(events, newEvent(item))
		}
		nextPageToken = res.NextPageToken
		if nextPageToken == "" {
			break
		}
	}
	return events, nil
}

// TokenSource returns a token source backed by the token file. Without a
// saved token it runs the interactive login first. Refreshed tokens are
// written back to the file.
func (c *Client) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := c.tokens.Load()
	if errors.Is(err, ErrTokenNotFound) {
		logging.From(ctx).Info("No saved token, starting authorization", "token", c.tokens.Path())
		tok, err = c.Login(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.tokens.Save(tok); err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}
	return newSavingTokenSource(c.oauthCfg.TokenSource(ctx, tok), c.tokens, tok), nil
}

func (c *Client) SaveToken(tok *oauth2.Token) error {
	return c.tokens.Save(tok)
}

// Login runs the installed-app flow: the consent page redirects to a
// loopback server started on a random port, which receives the code.
func (c *Client) Login(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, goerr.Wrap(err, "google: failed to start callback listener")
	}
	defer ln.Close()

	cfg := *c.oauthCfg
	cfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state := "zoomlauncher-" + uuid.NewString()
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	type result struct {
		tok *oauth2.Token
		err error
	}
	resCh := make(chan result, 1)
	send := func(r result) {
		select {
		case resCh <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		query := req.URL.Query()
		if query.Get("state") != state {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "OAuth link is not valid.")
			send(result{err: goerr.New("google: oauth state mismatch")})
			return
		}
		if e := query.Get("error"); e != "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Authorization failed:", e)
			send(result{err: goerr.New("google: authorization denied", goerr.V("error", e))})
			return
		}

		tok, err := cfg.Exchange(ctx, query.Get("code"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Unable to retrieve token:", err)
			send(result{err: goerr.Wrap(err, "google: failed to exchange code")})
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "All good, you can close this window!")
		send(result{tok: tok})
	})

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			send(result{err: goerr.Wrap(err, "google: callback server failed")})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logging.From(ctx).Info("Go to the following link in your browser", "url", authURL)
	if c.OpenURL != nil {
		c.OpenURL(authURL)
	}

	timer := time.NewTimer(loginTimeout)
	defer timer.Stop()

	select {
	case r := <-resCh:
		return r.tok, r.err
	case <-timer.C:
		return nil, goerr.New("google: timed out waiting for authorization")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) calendarSvc(ctx context.Context) (*calendar.Service, error) {
	ts, err := c.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	opts := append([]option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, ts)),
	}, c.serviceOpts...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "google: failed to create calendar service")
	}
	return svc, nil
}

// IsUnauthorized reports whether err means the saved token can no longer
// be used and a new login is needed.
func IsUnauthorized(err error) bool {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		return true
	}
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}
	return gErr.Code == http.StatusUnauthorized || errIsReason(gErr, "authError")
}

func errIsReason(gErr *googleapi.Error, reason string) bool {
	for _, err := range gErr.Errors {
		if err.Reason == reason {
			return true
		}
	}
	return false
}
