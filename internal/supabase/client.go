// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package supabase talks to a Supabase project over HTTP: GoTrue for
// resolving bearer tokens and PostgREST for table access. All calls share
// one circuit breaker so a failing backend is shed quickly.
package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/syncify/internal/config"
	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/metrics"
)

const breakerName = "supabase"

// StatusError is a non-2xx response from Supabase.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("supabase returned status %d: %s", e.StatusCode, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client is a Supabase HTTP client.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
}

// NewClient builds a client from config. A zero RequestTimeout leaves
// requests unbounded except by the caller's context.
func NewClient(cfg *config.SupabaseConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.RequestTimeout})
}

// NewClientWithHTTP builds a client using httpClient.
func NewClientWithHTTP(cfg *config.SupabaseConfig, httpClient *http.Client) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceRoleKey,
		httpClient: httpClient,
	}
	if c.anonKey == "" {
		c.anonKey = c.serviceKey
	}
	if cfg.BreakerEnabled {
		c.cb = newBreaker()
	}
	return c
}

func newBreaker() *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= 0.6 {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("Opening Supabase circuit")
				return true
			}
			return false
		},
		// 4xx responses are answers, not outages.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// request describes one HTTP call.
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	// bearer overrides the service role key in Authorization.
	bearer string
	apiKey string
	prefer string
}

// do executes req through the breaker and returns the response body of a
// 2xx response. Other statuses yield *StatusError.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	call := func() ([]byte, error) { return c.roundTrip(ctx, req) }
	if c.cb == nil {
		return call()
	}
	return c.cb.Execute(call)
}

func (c *Client) roundTrip(ctx context.Context, req request) ([]byte, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	apiKey := req.apiKey
	if apiKey == "" {
		apiKey = c.serviceKey
	}
	bearer := req.bearer
	if bearer == "" {
		bearer = c.serviceKey
	}
	httpReq.Header.Set("apikey", apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 256)}
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Ping checks GoTrue health for the readiness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/v1/health", apiKey: c.anonKey, bearer: c.anonKey})
	return err
}
