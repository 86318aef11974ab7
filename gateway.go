package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

const (
	defaultLoginPath = "/auth/login"
	defaultMePath    = "/auth/me"
)

// Credentials is the login request payload.
type Credentials struct {
	Identifier      string `json:"identifier"`
	Password        string `json:"password"`
	ExtendedSession bool   `json:"extended_session,omitempty"`
}

// Validate will run validation rules
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(
			&c.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&c.Password,
			validation.Required,
		),
	)
}

// GatewayConfig holds the HTTP gateway options.
type GatewayConfig struct {
	BaseURL   string
	LoginPath string
	MePath    string

	HTTPClient *http.Client
	Logger     Logger
}

var _ Gateway = (*HTTPGateway)(nil)

// HTTPGateway talks to the backend auth endpoints over REST.
type HTTPGateway struct {
	config     GatewayConfig
	httpClient *http.Client
	logger     Logger
}

// NewHTTPGateway returns a Gateway for the configured backend.
func NewHTTPGateway(cfg GatewayConfig) *HTTPGateway {
	if cfg.LoginPath == "" {
		cfg.LoginPath = defaultLoginPath
	}
	if cfg.MePath == "" {
		cfg.MePath = defaultMePath
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	return &HTTPGateway{
		config:     cfg,
		httpClient: client,
		logger:     logger,
	}
}

// Login exchanges credentials for a bearer token.
func (g *HTTPGateway) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid login payload").
			WithCode(errors.CodeBadRequest)
	}

	payload, err := json.Marshal(creds)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode login payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+g.config.LoginPath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err, "login request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err, "failed to read login response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, translateLoginStatus(resp.StatusCode, body)
	}

	var result LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to decode login response")
	}
	if result.AccessToken == "" {
		return nil, errors.New("login response carried no access token", errors.CategoryOperation)
	}

	return &result, nil
}

// CurrentUser fetches the account record behind the token. The read is
// idempotent, so a transport failure is retried once before giving up.
func (g *HTTPGateway) CurrentUser(ctx context.Context, token string) (*User, error) {
	resp, err := g.fetchMe(ctx, token)
	if err != nil {
		g.logger.Debug("retrying current-user fetch after transport error: %v", err)
		if resp, err = g.fetchMe(ctx, token); err != nil {
			return nil, networkError(err, "current-user request failed")
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err, "failed to read current-user response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, translateMeStatus(resp.StatusCode, body)
	}

	user := &User{}
	if err := json.Unmarshal(body, user); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to decode current-user response")
	}

	return user, nil
}

func (g *HTTPGateway) fetchMe(ctx context.Context, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.config.BaseURL+g.config.MePath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	return g.httpClient.Do(req)
}

func networkError(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryOperation, msg).
		WithTextCode(TextCodeNetworkFailure)
}

// sentinelWithDetail attaches the backend's error detail to a clone. The
// shared sentinel must never be written to; clones chain back to it through
// Source so errors.Is matching still holds.
func sentinelWithDetail(base *errors.Error, body []byte) error {
	clone := base.Clone()
	clone.Source = base
	clone.WithMetadata(map[string]any{
		"detail": apiErrorMessage(body),
	})
	return clone
}

func translateLoginStatus(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return sentinelWithDetail(ErrInvalidCredentials, body)
	case http.StatusForbidden:
		return sentinelWithDetail(ErrForbidden, body)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errors.New(apiErrorMessage(body), errors.CategoryValidation).
			WithTextCode(TextCodeInvalidCreds).
			WithCode(status)
	default:
		return errors.New("login request rejected", errors.CategoryOperation).
			WithCode(status).
			WithMetadata(map[string]any{"detail": apiErrorMessage(body)})
	}
}

func translateMeStatus(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return sentinelWithDetail(ErrUnauthorized, body)
	case http.StatusForbidden:
		return sentinelWithDetail(ErrForbidden, body)
	default:
		return errors.New("current-user request rejected", errors.CategoryOperation).
			WithCode(status).
			WithMetadata(map[string]any{"detail": apiErrorMessage(body)})
	}
}

type apiError struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func apiErrorMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "auth backend request failed"
	}

	return msg
}
