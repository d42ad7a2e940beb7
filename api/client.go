package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	parkgate "github.com/zg04ckpt/parkgate"
)

const maxResponseBytes = 1 << 20

// Config defines a public type used by parkgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BaseURL string
	Mode    parkgate.CredentialMode
	// Header carries the bearer token in token mode. Default "Authorization".
	Header    string
	Timeout   time.Duration
	UserAgent string
}

// Client defines a public type used by parkgate APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	cfg   Config
	base  *url.URL
	creds parkgate.CredentialStore

	auth *http.Client
	res  *http.Client
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config, creds parkgate.CredentialStore) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.New("base URL must be http or https")
	}
	if creds == nil {
		return nil, errors.New("credential store required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Header == "" {
		cfg.Header = "Authorization"
	}

	c := &Client{
		cfg:   cfg,
		base:  base,
		creds: creds,
	}

	// Cookie mode shares one jar between the auth and resource clients so
	// the session cookie set by login is presented on every resource call.
	var jar http.CookieJar
	if cfg.Mode == parkgate.CredentialCookie {
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
	}

	c.auth = &http.Client{Timeout: cfg.Timeout, Jar: jar}
	c.res = &http.Client{Timeout: cfg.Timeout, Jar: jar}

	return c, nil
}

// UseTransport installs the coordinator-wrapped transport on the resource
// client. Auth endpoints stay on the bare transport: a 401 from the startup
// probe is a bootstrap verdict, not a failure episode.
func (c *Client) UseTransport(rt http.RoundTripper) {
	c.res.Transport = rt
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (c *Client) do(ctx context.Context, httpc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	p, rawQuery := path, ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		p, rawQuery = path[:i], path[i+1:]
	}
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + p
	u.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Mode == parkgate.CredentialToken {
		if cred, ok := c.creds.Current(); ok && cred.Token != "" {
			req.Header.Set(c.cfg.Header, "Bearer "+cred.Token)
		}
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return &parkgate.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &parkgate.NetworkError{Op: method + " " + path, Err: err}
	}

	var env envelope
	if len(raw) > 0 {
		// A non-envelope body is tolerated on error statuses.
		_ = json.Unmarshal(raw, &env)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return parkgate.ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return parkgate.ErrForbidden
	case resp.StatusCode >= 500:
		return &parkgate.ServerError{Status: resp.StatusCode, Message: env.Message}
	case resp.StatusCode >= 400:
		return &parkgate.ValidationError{Status: resp.StatusCode, Message: env.Message}
	}

	if !env.Success {
		return &parkgate.ValidationError{Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return err
		}
	}
	return nil
}

/*
====================================
AUTH ENDPOINTS
====================================
*/

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool                  `json:"success"`
	User    *parkgate.UserProfile `json:"user,omitempty"`
	Token   string                `json:"token,omitempty"`
	Message string                `json:"message,omitempty"`
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Login(ctx context.Context, email, password string) (*parkgate.UserProfile, parkgate.Credential, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, parkgate.Credential{}, err
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/auth/login"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, parkgate.Credential{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.auth.Do(req)
	if err != nil {
		return nil, parkgate.Credential{}, &parkgate.NetworkError{Op: "POST /auth/login", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, parkgate.Credential{}, &parkgate.NetworkError{Op: "POST /auth/login", Err: err}
	}

	var out loginResponse
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, parkgate.Credential{}, parkgate.ErrInvalidCredentials
	case resp.StatusCode >= 500:
		return nil, parkgate.Credential{}, &parkgate.ServerError{Status: resp.StatusCode, Message: out.Message}
	case resp.StatusCode >= 400:
		return nil, parkgate.Credential{}, &parkgate.ValidationError{Status: resp.StatusCode, Message: out.Message}
	}

	if !out.Success || out.User == nil {
		return nil, parkgate.Credential{}, parkgate.ErrInvalidCredentials
	}

	var cred parkgate.Credential
	if c.cfg.Mode == parkgate.CredentialToken {
		if out.Token == "" {
			return nil, parkgate.Credential{}, &parkgate.ValidationError{
				Status:  resp.StatusCode,
				Message: "login response missing token",
			}
		}
		cred = parkgate.NewBearerCredential(out.Token)
	}

	return out.User, cred, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, c.auth, http.MethodPost, "/auth/logout", nil, nil)
}

// Me describes the me operation and its observable behavior.
//
// Me may return an error when input validation, dependency calls, or security checks fail.
// Me does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Me(ctx context.Context) (*parkgate.UserProfile, error) {
	var profile parkgate.UserProfile
	if err := c.do(ctx, c.auth, http.MethodGet, "/auth/me", nil, &profile); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, parkgate.ErrUnauthorized
	}
	return &profile, nil
}
