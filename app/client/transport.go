// Package client implements the authenticated transport to the jobify backend
// and the dispatchers driving the state store through begin/success/error
// sequences around network calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
)

// ErrUnauthorized is returned when the backend rejects the bearer token. By
// the time a caller sees it the forced logout has already run, so no error
// alert should be raised for it.
var ErrUnauthorized = errors.New("unauthorized")

// errRequestBuild marks request construction failures, not worth retrying.
var errRequestBuild = errors.New("failed to build request")

// APIError carries the backend's human-readable failure message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Repeater retries failed calls
type Repeater interface {
	Do(ctx context.Context, fun func() error, errs ...error) error
}

// Transport wraps an http client against the versioned API root. It attaches
// the bearer token to every authenticated request and converts an unauthorized
// response into a forced logout through the injected callback, so a stale
// token can never leave the UI half-authenticated.
type Transport struct {
	baseURL     string
	client      *http.Client
	token       func() string // current session token source
	forceLogout func()        // narrow capability, invoked on 401
	repeater    Repeater
}

// TransportConfig sets up a Transport. Token and ForceLogout are required,
// Client and Repeater fall back to sane defaults.
type TransportConfig struct {
	BaseURL     string
	Token       func() string
	ForceLogout func()
	Client      *http.Client
	Repeater    Repeater
}

// NewTransport creates a Transport for the given API root.
func NewTransport(cfg TransportConfig) *Transport {
	t := &Transport{
		baseURL:     cfg.BaseURL,
		client:      cfg.Client,
		token:       cfg.Token,
		forceLogout: cfg.ForceLogout,
		repeater:    cfg.Repeater,
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: 30 * time.Second}
	}
	if t.repeater == nil {
		t.repeater = repeater.New(&strategy.Once{})
	}
	return t
}

// Request performs an authenticated call. On 401 it triggers the forced
// logout and returns ErrUnauthorized, on other error statuses it returns an
// APIError with the backend's message, other failures untouched.
func (t *Transport) Request(ctx context.Context, method, path string, body any) ([]byte, http.Header, error) {
	return t.do(ctx, method, path, body, true)
}

// PublicRequest performs an unauthenticated call (register/login). No bearer
// token is attached and a 401 does not trigger a logout, it surfaces as a
// regular APIError for the caller to report.
func (t *Transport) PublicRequest(ctx context.Context, method, path string, body any) ([]byte, http.Header, error) {
	return t.do(ctx, method, path, body, false)
}

func (t *Transport) do(ctx context.Context, method, path string, body any, authed bool) ([]byte, http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var respBody []byte
	var status int
	var header http.Header

	call := func() error {
		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, rdr)
		if err != nil {
			return fmt.Errorf("%w: %w", errRequestBuild, err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if authed {
			if tok := t.token(); tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
		}

		resp, err := t.client.Do(req)
		if err != nil {
			return err // transport-level failure, retryable
		}
		defer resp.Body.Close() //nolint:errcheck // read-only body

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		respBody, status, header = b, resp.StatusCode, resp.Header
		return nil
	}

	// retry transport failures only, an http status is a settled response
	if err := t.repeater.Do(ctx, call, errRequestBuild); err != nil {
		return nil, nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}

	if status == http.StatusUnauthorized && authed {
		t.forceLogout() // clears session and persistence before the error propagates
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}
	if status >= http.StatusBadRequest {
		return nil, nil, &APIError{StatusCode: status, Message: extractMessage(respBody, status)}
	}

	return respBody, header, nil
}

// extractMessage pulls the human-readable message from the backend's error
// body. It never fails, a missing or garbled body degrades to the status text.
func extractMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return http.StatusText(status)
}
