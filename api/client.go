// Package api is the HTTP boundary to the back-office API. It attaches the
// stored access token and turns a 403 into the bus forbidden signal.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/jzahidzamacona/Fronty-sub001/internal/errors"
	"github.com/jzahidzamacona/Fronty-sub001/session"
	"github.com/rs/zerolog/log"
)

const RequestIDHeader = "X-Request-ID"

var (
	ErrForbidden    = apperrors.ErrForbidden
	ErrUnauthorized = apperrors.ErrUnauthorized
)

// ForbiddenNotifier receives rejected calls. authbus.Bus implements it.
type ForbiddenNotifier interface {
	Forbidden(message string)
}

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return http.StatusText(e.StatusCode) + ": " + e.Body
}

// Client calls the API on behalf of the current session. A 401 is returned
// to the caller without touching the session; token refresh belongs to
// whoever issued the pair.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      *session.Store
	Bus        ForbiddenNotifier
}

// Do sends body as JSON to path and decodes the response into out when out
// is not nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrapf(err, "encoding %s %s", method, path)
		}
		reader = bytes.NewReader(data)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return apperrors.Wrapf(err, "building %s %s", method, path)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Store != nil {
		if pair, ok := c.Store.Tokens(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		}
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	logger := log.With().Str("requestID", requestID).Str("method", method).Str("path", path).Int("status", resp.StatusCode).Logger()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		msg := readMessage(resp.Body)
		logger.Warn().Str("message", msg).Msg("API call forbidden")
		if c.Bus != nil {
			c.Bus.Forbidden(msg)
		}
		return apperrors.Wrapf(ErrForbidden, "%s %s", method, path)
	case resp.StatusCode == http.StatusUnauthorized:
		logger.Info().Msg("API call unauthorized")
		return apperrors.Wrapf(ErrUnauthorized, "%s %s", method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{StatusCode: resp.StatusCode, Body: readMessage(resp.Body)}
	}

	logger.Debug().Msg("API call")
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return apperrors.Wrapf(err, "decoding %s %s", method, path)
	}
	return nil
}

// Get is Do without a body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// readMessage returns the "message" field of a JSON error body, or the body
// itself when it is not JSON.
func readMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(data))
}
