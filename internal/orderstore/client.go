// Package orderstore is the HTTP client for the external order store, the
// single source of truth for orders. The panel only reads the list and
// proposes status transitions; it never owns order state.
package orderstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fornace/kitchen-panel/internal/domain/order"
)

// ErrSessionExpired is returned whenever the store answers 401. Callers treat
// it as session expiry and short-circuit instead of surfacing an inline error.
var ErrSessionExpired = errors.New("session expired")

// StatusError is a non-401 failure reported by the store.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("order store: %s (status %d)", e.Message, e.Code)
}

// TokenFunc supplies the bearer token for a request. It lets the client
// forward per-request credentials without holding session state itself.
type TokenFunc func(ctx context.Context) string

// Client talks to the order store API.
type Client struct {
	base  *url.URL
	http  *http.Client
	token TokenFunc
}

// New builds a Client for the store at baseURL. Outbound requests go through
// an otel-instrumented transport.
func New(baseURL string, token TokenFunc) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse store URL")
	}
	return &Client{
		base: u,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
		token: token,
	}, nil
}

// ListOrders fetches the full order list. A non-array body decodes as an
// empty list per the collaborator contract.
func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	body, err := c.do(ctx, http.MethodGet, "/pedidos", nil)
	if err != nil {
		return nil, err
	}
	orders, err := order.DecodeList(body)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// UpdateStatus proposes a status transition for one order. On success the
// caller is expected to reload the full list.
func (c *Client) UpdateStatus(ctx context.Context, id int64, target order.Status) error {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str(string(target))
	e.ObjEnd()

	path := fmt.Sprintf("/pedidos/%d/estado", id)
	if _, err := c.do(ctx, http.MethodPatch, path, e.Bytes()); err != nil {
		return errors.Wrapf(err, "update order %d", id)
	}
	return nil
}

// Me asks the auth collaborator for the caller's role.
func (c *Client) Me(ctx context.Context) (order.Role, error) {
	body, err := c.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return "", err
	}

	var role string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "role" || key == "rol" {
			var err error
			role, err = d.Str()
			return err
		}
		return d.Skip()
	}); err != nil {
		return "", errors.Wrap(err, "decode role")
	}
	return order.Role(role), nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request store")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrSessionExpired
	case resp.StatusCode >= 400:
		return nil, &StatusError{Code: resp.StatusCode, Message: upstreamMessage(data)}
	}
	return data, nil
}

// upstreamMessage extracts the human-readable error the store sends in its
// failure bodies, falling back to the raw body.
func upstreamMessage(data []byte) string {
	var msg string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "detail", "message", "error":
			var err error
			msg, err = d.Str()
			return err
		default:
			return d.Skip()
		}
	}); err == nil && msg != "" {
		return msg
	}

	s := strings.TrimSpace(string(data))
	if s == "" {
		return "request failed"
	}
	return s
}
