// Package login obtains a token pair from the back-office identity provider
// with the resource owner password grant and hands it to the session store.
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jzahidzamacona/Fronty-sub001/internal/config"
	apperrors "github.com/jzahidzamacona/Fronty-sub001/internal/errors"
	"github.com/jzahidzamacona/Fronty-sub001/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

var ErrUnauthorized = apperrors.ErrUnauthorized

// Refresher is the bus trampoline the login flow calls after writing tokens,
// since the writing context gets no storage event for its own write.
type Refresher interface {
	Refresh()
}

type Option func(*Client)

// WithHTTPClient sets the client used for discovery and token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

type Client struct {
	oauth      *oauth2.Config
	store      *session.Store
	refresher  Refresher
	httpClient *http.Client
}

// New resolves the token endpoint. With an issuer configured it is read from
// the provider's discovery document, otherwise the configured token URL is
// used as is.
func New(ctx context.Context, cfg config.OAuthConfig, store *session.Store, refresher Refresher, opts ...Option) (*Client, error) {
	c := &Client{
		store:      store,
		refresher:  refresher,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	endpoint := oauth2.Endpoint{TokenURL: cfg.GetTokenURL()}
	if issuer := cfg.GetIssuerURL(); issuer != "" {
		provider, err := oidc.NewProvider(oidc.ClientContext(ctx, c.httpClient), issuer)
		if err != nil {
			return nil, apperrors.Wrapf(err, "discovering provider %s", issuer)
		}
		endpoint = provider.Endpoint()
		log.Debug().Str("issuer", issuer).Str("tokenURL", endpoint.TokenURL).Msg("Token endpoint discovered")
	}
	if endpoint.TokenURL == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidConfig, "no token endpoint configured")
	}

	c.oauth = &oauth2.Config{
		ClientID:     cfg.GetClientID(),
		ClientSecret: cfg.GetClientSecret(),
		Endpoint:     endpoint,
		Scopes:       cfg.GetScopes(),
	}
	return c, nil
}

// TokenURL is the resolved token endpoint.
func (c *Client) TokenURL() string { return c.oauth.Endpoint.TokenURL }

// Login exchanges the credentials for a token pair, stores it and asks every
// subscriber to re-evaluate the session.
func (c *Client) Login(ctx context.Context, username, password string) (session.Pair, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			switch retrieveErr.Response.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized:
				log.Info().Str("username", username).Msg("Login rejected")
				return session.Pair{}, apperrors.Wrapf(ErrUnauthorized, "login for %s", username)
			}
		}
		return session.Pair{}, apperrors.Wrapf(err, "requesting token")
	}

	pair := session.Pair{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}
	if c.store != nil {
		if err := c.store.SetTokens(ctx, pair); err != nil {
			return session.Pair{}, err
		}
	}
	if c.refresher != nil {
		c.refresher.Refresh()
	}
	log.Info().Str("username", username).Msg("Logged in")
	return pair, nil
}
