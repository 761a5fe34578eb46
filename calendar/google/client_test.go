package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/guilherme-santos/zoomlauncher/internal"
)

func credentialsJSON(tokenURL string) []byte {
	return []byte(fmt.Sprintf(`{"installed":{
		"client_id":"client-id",
		"client_secret":"client-secret",
		"auth_uri":"https://accounts.example.com/auth",
		"token_uri":%q,
		"redirect_uris":["http://localhost"]
	}}`, tokenURL))
}

func newTestClient(t *testing.T, tokenURL string) (*Client, *TokenFile) {
	t.Helper()
	tokens := NewTokenFile(filepath.Join(t.TempDir(), TokenFilename))
	c, err := NewClient(credentialsJSON(tokenURL), tokens)
	require.NoError(t, err)
	return c, tokens
}

func validToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func TestNewClient_InvalidCredentials(t *testing.T) {
	_, err := NewClient([]byte("not json"), NewTokenFile("unused"))
	assert.Error(t, err)
}

func TestLoadCredentials_Missing(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), CredentialsFilename))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEvents(t *testing.T) {
	from := time.Date(2026, 10, 14, 11, 55, 0, 0, time.UTC)
	to := from.Add(10 * time.Minute)

	var calls int
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2026-10-14T11:55:00Z", q.Get("timeMin"))
		assert.Equal(t, "2026-10-14T12:05:00Z", q.Get("timeMax"))
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		if q.Get("pageToken") == "" {
			fmt.Fprint(w, `{"items":[{
				"id":"evt1",
				"summary":"Standup",
				"location":"https://acme.zoom.us/j/1",
				"start":{"dateTime":"2026-10-14T12:00:00Z"}
			}],"nextPageToken":"page2"}`)
			return
		}
		fmt.Fprint(w, `{"items":[{
			"id":"evt2",
			"description":"notes",
			"hangoutLink":"https://meet.google.com/abc",
			"start":{"date":"2026-10-14"},
			"conferenceData":{"entryPoints":[
				{"entryPointType":"video","uri":"https://acme.zoom.us/j/2"},
				{"entryPointType":"phone","uri":"tel:+1"}
			]}
		}]}`)
	}))
	defer api.Close()

	c, tokens := newTestClient(t, "http://unused.invalid/token")
	require.NoError(t, tokens.Save(validToken()))
	c.serviceOpts = []option.ClientOption{option.WithEndpoint(api.URL + "/")}

	events, err := c.Events(context.Background(), internal.Window{From: from, To: to})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, events, 2)

	assert.Equal(t, &internal.Event{
		ID:       "evt1",
		Summary:  "Standup",
		Location: "https://acme.zoom.us/j/1",
		Start:    internal.EventTime{DateTime: "2026-10-14T12:00:00Z"},
	}, events[0])
	assert.Equal(t, &internal.Event{
		ID:          "evt2",
		Summary:     noTitle,
		Description: "notes",
		HangoutLink: "https://meet.google.com/abc",
		Start:       internal.EventTime{Date: "2026-10-14"},
		EntryPoints: []internal.EntryPoint{
			{Type: "video", URI: "https://acme.zoom.us/j/2"},
			{Type: "phone", URI: "tel:+1"},
		},
	}, events[1])
}

func TestEvents_APIError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"Invalid Credentials","errors":[{"reason":"authError"}]}}`)
	}))
	defer api.Close()

	c, tokens := newTestClient(t, "http://unused.invalid/token")
	require.NoError(t, tokens.Save(validToken()))
	c.serviceOpts = []option.ClientOption{option.WithEndpoint(api.URL + "/")}

	_, err := c.Events(context.Background(), internal.Window{From: time.Now(), To: time.Now()})
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestTokenSource_RefreshIsPersisted(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh", r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenSrv.Close()

	c, tokens := newTestClient(t, tokenSrv.URL)
	expired := validToken()
	expired.Expiry = time.Now().Add(-time.Hour)
	require.NoError(t, tokens.Save(expired))

	ts, err := c.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	saved, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)
	assert.Equal(t, "refresh", saved.RefreshToken)
}

func TestLogin(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer tokenSrv.Close()

	c, tokens := newTestClient(t, tokenSrv.URL)

	callbackErr := make(chan error, 1)
	c.OpenURL = func(authURL string) {
		u, err := url.Parse(authURL)
		if err != nil {
			callbackErr <- err
			return
		}
		q := u.Query()
		redirect := q.Get("redirect_uri") + "?code=the-code&state=" + url.QueryEscape(q.Get("state"))
		go func() {
			resp, err := http.Get(redirect)
			if err == nil {
				resp.Body.Close()
			}
			callbackErr <- err
		}()
	}

	// No token saved: TokenSource runs the login and stores the result.
	ts, err := c.TokenSource(context.Background())
	require.NoError(t, err)
	<-callbackErr

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "new-access", tok.AccessToken)

	saved, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "new-refresh", saved.RefreshToken)
}

func TestLogin_StateMismatch(t *testing.T) {
	c, _ := newTestClient(t, "http://unused.invalid/token")
	c.OpenURL = func(authURL string) {
		u, _ := url.Parse(authURL)
		go func() {
			resp, err := http.Get(u.Query().Get("redirect_uri") + "?code=x&state=forged")
			if err == nil {
				resp.Body.Close()
			}
		}()
	}

	_, err := c.Login(context.Background())
	assert.Error(t, err)
}

func TestIsUnauthorized(t *testing.T) {
	assert.False(t, IsUnauthorized(errors.New("plain")))
	assert.True(t, IsUnauthorized(&googleapi.Error{Code: http.StatusUnauthorized}))
	assert.True(t, IsUnauthorized(&googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "authError"}}}))
	assert.False(t, IsUnauthorized(&googleapi.Error{Code: http.StatusNotFound}))
	assert.True(t, IsUnauthorized(fmt.Errorf("wrapped: %w", &oauth2.RetrieveError{})))
}

func TestTokenFile_Missing(t *testing.T) {
	_, err := NewTokenFile(filepath.Join(t.TempDir(), TokenFilename)).Load()
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
