package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/groomcrm/groomcrm/pkg/types"
)

// RequiredScope is the OAuth scope every access token must carry. A token
// obtained under a narrower scope is useless for event patching, so a
// mismatch invalidates the cached token outright.
const RequiredScope = "https://www.googleapis.com/auth/calendar.events"

// authenticatorWait bounds how long ConnectWait polls for an authenticator
// to come up before giving up.
const authenticatorWait = 10 * time.Second

var (
	ErrNotAuthenticated = errors.New("not authenticated: connect to the calendar first")
	ErrNoClientID       = errors.New("oauth client id not set")
	ErrAuthenticator    = errors.New("authenticator did not become ready")
)

// Settings is the slice of the record store the auth layer needs: the kv
// table, where the client id and the granted scope live.
type Settings interface {
	GetKV(key string, out any) (bool, error)
	SetKV(key string, value any) error
	DeleteKV(key string) error
}

// TokenCache holds the process-wide access token. The token itself is never
// persisted; only the scope it was granted under is mirrored into settings,
// so a scope change made elsewhere invalidates the cached token on the next
// read.
type TokenCache struct {
	mu       sync.Mutex
	token    string
	settings Settings
}

func NewTokenCache(settings Settings) *TokenCache {
	return &TokenCache{settings: settings}
}

// SetToken stores a freshly granted token and records its scope.
func (c *TokenCache) SetToken(token, scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.settings.SetKV(types.KVGoogleOAuthScope, scope); err != nil {
		return err
	}
	c.token = token
	return nil
}

// AccessToken returns the cached token, or "" when there is none or the
// recorded scope no longer matches RequiredScope. A stale scope clears the
// cache as a side effect.
func (c *TokenCache) AccessToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return "", nil
	}
	var scope string
	found, err := c.settings.GetKV(types.KVGoogleOAuthScope, &scope)
	if err != nil {
		return "", err
	}
	if !found || scope != RequiredScope {
		c.token = ""
		return "", nil
	}
	return c.token, nil
}

// Clear drops the cached token. The mirrored scope stays; it describes the
// last grant, not the cache.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Connected reports whether a usable token is cached.
func (c *TokenCache) Connected() (bool, error) {
	token, err := c.AccessToken()
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// ClientID returns the configured OAuth client id, or ErrNoClientID when
// none has been set.
func ClientID(settings Settings) (string, error) {
	var id string
	found, err := settings.GetKV(types.KVGoogleClientID, &id)
	if err != nil {
		return "", err
	}
	if !found || id == "" {
		return "", ErrNoClientID
	}
	return id, nil
}

// SetClientID stores the OAuth client id. Changing the client id invalidates
// any token granted under the old one.
func SetClientID(settings Settings, cache *TokenCache, id string) error {
	if err := settings.SetKV(types.KVGoogleClientID, id); err != nil {
		return err
	}
	cache.Clear()
	return nil
}

// WaitReady polls ready every 100ms until it reports true, the context is
// cancelled, or 10 seconds elapse. Authenticators load out of band, so this
// is the one place the system waits on a clock.
func WaitReady(ctx context.Context, ready func() bool) error {
	if ready() {
		return nil
	}
	deadline := time.NewTimer(authenticatorWait)
	defer deadline.Stop()
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrAuthenticator
		case <-tick.C:
			if ready() {
				return nil
			}
		}
	}
}
