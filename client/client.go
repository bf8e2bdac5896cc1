// Package client implements the authenticated request client every
// service facade is built on. It attaches the session's access
// credential to outbound calls, recovers exactly once from an
// authorization failure by renewing the credential pair, and terminates
// the session when recovery is impossible.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/AlessioMITRM/hogu-frontend-sub001/pkg/errors"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/httpclient"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/logger"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/tracing"
	"github.com/AlessioMITRM/hogu-frontend-sub001/session"
)

// renewPath is the credential renewal endpoint.
const renewPath = "/api/auth/refresh"

// Doer is the interface for executing HTTP requests. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Request describes one outbound API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// envelope is the standard success wrapper of the Hogu API.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// tokenPayload is the renewal endpoint's response body.
type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Client executes API calls with credential attachment and one-shot
// recovery from authorization failures. Concurrent failures share a
// single in-flight renewal.
type Client struct {
	baseURL   string
	transport Doer
	store     session.Store
	logger    *slog.Logger
	renewals  singleflight.Group
}

// New creates an authenticated request client. baseURL must not end
// with a slash; paths passed to Do must start with one.
func New(baseURL string, transport Doer, store session.Store, log *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		store:     store,
		logger:    log,
	}
}

// Get performs a GET call and decodes the response data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post performs a POST call with a JSON body and decodes the response
// data into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Do executes one logical API call. A call that hits an authorization
// failure triggers at most one credential renewal and one replay, so a
// single logical call never produces more than two network executions.
// Every returned error is an AppError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	operation := req.Method + " " + req.Path

	tracer := tracing.Tracer("hogu-client")
	ctx, span := tracer.Start(ctx, operation)
	defer span.End()

	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
		ctx = logger.WithCorrelationID(ctx, correlationID)
	}
	span.SetAttributes(attribute.String("correlation_id", correlationID))

	sess, err := c.store.Load(ctx)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("load session: %w", err))
	}

	err = c.execute(ctx, req, sess.AccessToken, correlationID, out)
	if err == nil || !apperrors.IsAuthFailure(err) {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}

	// Authorization failure on the first attempt: one recovery try.
	renewed, renewErr := c.renew(ctx)
	if renewErr != nil {
		// Recovery impossible or rejected: the session is already
		// cleared, the original authorization failure propagates.
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	logger.WithContext(ctx, c.logger).InfoContext(ctx, "credentials renewed, replaying call",
		slog.String("operation", operation),
	)

	replayErr := c.execute(ctx, req, renewed.AccessToken, correlationID, out)
	if replayErr != nil {
		span.SetStatus(codes.Error, replayErr.Error())
	}
	return replayErr
}

// execute performs one network execution of the call.
func (c *Client) execute(ctx context.Context, req Request, accessToken, correlationID string, out any) error {
	operation := req.Method + " " + req.Path

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body *bytes.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("marshal request body: %w", err))
		}
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("create request: %w", err))
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", correlationID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.Header {
		httpReq.Header[key] = values
	}
	if accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.transport.Do(ctx, httpReq)
	if err != nil {
		requestsTotal.WithLabelValues(req.Method, "error").Inc()
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "request transport failure",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		return apperrors.Transport(err)
	}

	requestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, operation)
	}

	defer resp.Body.Close()

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return apperrors.Transport(fmt.Errorf("decode %s response: %w", operation, err))
	}
	if env.Data == nil {
		return apperrors.Transport(fmt.Errorf("%s response has no data", operation))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.Transport(fmt.Errorf("unmarshal %s data: %w", operation, err))
	}
	return nil
}

// renew obtains a fresh credential pair using the stored refresh token.
// Concurrent callers share a single renewal call: every caller blocked
// on the same flight receives the same new session or the same error.
// On any failure the session is cleared, which is the only exit path to
// the unauthenticated surface.
func (c *Client) renew(ctx context.Context) (session.Session, error) {
	result, err, _ := c.renewals.Do("renew", func() (any, error) {
		return c.renewOnce(ctx)
	})
	if err != nil {
		return session.Session{}, err
	}
	return result.(session.Session), nil
}

func (c *Client) renewOnce(ctx context.Context) (session.Session, error) {
	log := logger.WithContext(ctx, c.logger)

	sess, err := c.store.Load(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("load session for renewal: %w", err)
	}

	if sess.RefreshToken == "" {
		renewalsTotal.WithLabelValues("no_refresh_token").Inc()
		log.InfoContext(ctx, "authorization failed with no renewal credential, signing out")
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			log.ErrorContext(ctx, "failed to clear session",
				slog.String("error", clearErr.Error()),
			)
		}
		return session.Session{}, apperrors.Unauthorized("no renewal credential")
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": sess.RefreshToken})
	if err != nil {
		return session.Session{}, fmt.Errorf("marshal renewal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+renewPath, bytes.NewReader(payload))
	if err != nil {
		return session.Session{}, fmt.Errorf("create renewal request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.transport.Do(ctx, httpReq)
	if err != nil {
		renewalsTotal.WithLabelValues("failure").Inc()
		log.WarnContext(ctx, "credential renewal unreachable, signing out",
			slog.String("error", err.Error()),
		)
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			log.ErrorContext(ctx, "failed to clear session",
				slog.String("error", clearErr.Error()),
			)
		}
		return session.Session{}, apperrors.Transport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		renewalsTotal.WithLabelValues("failure").Inc()
		renewErr := httpclient.ParseResponseError(resp, "credential renewal")
		log.InfoContext(ctx, "credential renewal rejected, signing out",
			slog.Int("status", resp.StatusCode),
		)
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			log.ErrorContext(ctx, "failed to clear session",
				slog.String("error", clearErr.Error()),
			)
		}
		return session.Session{}, renewErr
	}

	defer resp.Body.Close()

	var env envelope
	var tokens tokenPayload
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Data != nil {
		_ = json.Unmarshal(env.Data, &tokens)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		renewalsTotal.WithLabelValues("failure").Inc()
		log.WarnContext(ctx, "credential renewal returned an unusable payload, signing out")
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			log.ErrorContext(ctx, "failed to clear session",
				slog.String("error", clearErr.Error()),
			)
		}
		return session.Session{}, apperrors.Transport(fmt.Errorf("malformed renewal payload"))
	}

	// Full replacement: identity survives, the credential pair does not.
	renewed := sess
	renewed.AccessToken = tokens.AccessToken
	renewed.RefreshToken = tokens.RefreshToken
	renewed.ExpiresAt = TokenExpiry(tokens.AccessToken)

	if err := c.store.Save(ctx, renewed); err != nil {
		renewalsTotal.WithLabelValues("failure").Inc()
		log.ErrorContext(ctx, "failed to persist renewed session, signing out",
			slog.String("error", err.Error()),
		)
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			log.ErrorContext(ctx, "failed to clear session",
				slog.String("error", clearErr.Error()),
			)
		}
		return session.Session{}, fmt.Errorf("persist renewed session: %w", err)
	}

	renewalsTotal.WithLabelValues("success").Inc()
	return renewed, nil
}
