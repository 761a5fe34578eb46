package google

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
)

const (
	CredentialsFilename = "credentials.json"
	TokenFilename       = "token.json"
)

var (
	ErrCredentialsNotFound = errors.New("google: credentials file not found")
	ErrTokenNotFound       = errors.New("google: token file not found")
)

// LoadCredentials reads the OAuth client secrets downloaded from the Google
// Cloud console.
func LoadCredentials(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, goerr.Wrap(ErrCredentialsNotFound, "credentials.json is required, create an OAuth desktop client and download it", goerr.V("path", path))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read credentials", goerr.V("path", path))
	}
	return data, nil
}

// TokenFile persists the user's OAuth token as JSON.
type TokenFile struct {
	path string
}

func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: path}
}

func (f *TokenFile) Path() string {
	return f.path
}

func (f *TokenFile) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, goerr.Wrap(ErrTokenNotFound, "no saved token", goerr.V("path", f.path))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read token", goerr.V("path", f.path))
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, goerr.Wrap(err, "failed to parse token", goerr.V("path", f.path))
	}
	return &tok, nil
}

func (f *TokenFile) Save(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return goerr.Wrap(err, "failed to encode token")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return goerr.Wrap(err, "failed to create token directory", goerr.V("path", f.path))
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write token", goerr.V("path", f.path))
	}
	return nil
}

// savingTokenSource writes every newly issued token back to the file.
type savingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	file *TokenFile
	last string
}

func newSavingTokenSource(base oauth2.TokenSource, file *TokenFile, current *oauth2.Token) *savingTokenSource {
	ts := &savingTokenSource{base: base, file: file}
	if current != nil {
		ts.last = current.AccessToken
	}
	return ts
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.file.Save(tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
