package login_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jzahidzamacona/Fronty-sub001/authbus"
	"github.com/jzahidzamacona/Fronty-sub001/login"
	"github.com/jzahidzamacona/Fronty-sub001/session"
	"github.com/jzahidzamacona/Fronty-sub001/storage"
	"github.com/jzahidzamacona/Fronty-sub001/token"
	"github.com/stretchr/testify/require"
)

type oauthConfig struct {
	issuer   string
	tokenURL string
}

func (c oauthConfig) GetIssuerURL() string    { return c.issuer }
func (c oauthConfig) GetTokenURL() string     { return c.tokenURL }
func (c oauthConfig) GetClientID() string     { return "backoffice" }
func (c oauthConfig) GetClientSecret() string { return "" }
func (c oauthConfig) GetScopes() []string     { return []string{"backoffice"} }

func tokenHandler(t *testing.T, access string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("grant_type") != "password" || r.PostForm.Get("password") != "correcta" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  access,
			"refresh_token": "refresh-" + r.PostForm.Get("username"),
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	access, err := token.Encode(map[string]any{"sub": "ana", "roles": []any{"ADMIN"}})
	require.NoError(t, err)

	srv := httptest.NewServer(tokenHandler(t, access))
	defer srv.Close()

	bus := authbus.New()
	store := session.NewStore(storage.NewMemory(), bus)
	tracker := session.NewTracker(store, bus)
	require.NoError(t, tracker.Activate(ctx))
	defer tracker.Deactivate()

	var sources []string
	bus.Subscribe(func(e authbus.Event) { sources = append(sources, e.Source) })

	client, err := login.New(ctx, oauthConfig{tokenURL: srv.URL}, store, bus, login.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.Login(ctx, "ana", "incorrecta")
		require.ErrorIs(t, err, login.ErrUnauthorized)
		require.Nil(t, tracker.Current())
		require.Empty(t, sources)
	})

	t.Run("stores the pair and refreshes", func(t *testing.T) {
		pair, err := client.Login(ctx, "ana", "correcta")
		require.NoError(t, err)
		require.Equal(t, access, pair.AccessToken)
		require.Equal(t, "refresh-ana", pair.RefreshToken)

		stored, ok := store.Tokens(ctx)
		require.True(t, ok)
		require.Equal(t, pair, stored)
		require.Equal(t, "ana", tracker.Current().Username)
		require.Equal(t, []string{authbus.SourceLocal, authbus.SourceRefresh}, sources)
	})
}

func TestNew_Discovery(t *testing.T) {
	access, err := token.Encode(map[string]any{"sub": "ana"})
	require.NoError(t, err)

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/oauth/token",
			"jwks_uri":               srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("/oauth/token", tokenHandler(t, access))

	ctx := context.Background()
	client, err := login.New(ctx, oauthConfig{issuer: srv.URL, tokenURL: "http://unused.invalid"}, nil, nil, login.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/oauth/token", client.TokenURL())

	pair, err := client.Login(ctx, "ana", "correcta")
	require.NoError(t, err)
	require.Equal(t, access, pair.AccessToken)
}

func TestNew_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := login.New(context.Background(), oauthConfig{issuer: srv.URL}, nil, nil, login.WithHTTPClient(srv.Client()))
	require.Error(t, err)
}
