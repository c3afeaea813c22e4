// Package storeapi is the HTTP client of the spreadsheet-backed store API.
//
// The same client works against the upstream directly or against the
// same-origin proxy, which injects the token server-side.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	TokenHeader = "X-Api-Token"

	// text/plain keeps browser requests to the upstream free of CORS preflight.
	orderContentType = "text/plain;charset=utf-8"

	maxResponseBytes = 4 << 20
)

type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

// WithToken sets the token sent with catalog requests and with orders whose payload carries none.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("baseURL[%s] must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

var _ port.StoreClient = (*Client)(nil)

// FetchProducts loads the catalog. Rows without an id are skipped.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	u := *c.baseURL
	q := u.Query()
	q.Set("action", "products")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	var body productsResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && body.Error != "" {
			return nil, fmt.Errorf("store responded with status %d: %s", resp.StatusCode, body.Error)
		}
		return nil, fmt.Errorf("store responded with status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("json.Decode: %w", decodeErr)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("store error: %s", body.Error)
	}

	products := make([]domain.Product, 0, len(body.Products))
	for _, dto := range body.Products {
		p := mapProductDTOToDomain(dto)
		if p.ID == "" {
			continue
		}
		if p.Price.IsNegative() {
			c.logger.Warn("skipping product with negative price", zap.String("product_id", p.ID), zap.String("price", p.Price.String()))
			continue
		}
		products = append(products, p)
	}

	c.logger.Debug("fetched products", zap.Int("count", len(products)))

	return products, nil
}

// PlaceOrder posts the payload once. Every failure is a *domain.SubmitError.
func (c *Client) PlaceOrder(ctx context.Context, payload domain.OrderPayload) (string, error) {
	data, err := json.Marshal(mapPayloadToRequest(payload))
	if err != nil {
		return "", &domain.SubmitError{Kind: domain.SubmitNetworkError, Err: fmt.Errorf("json.Marshal: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String(), bytes.NewReader(data))
	if err != nil {
		return "", &domain.SubmitError{Kind: domain.SubmitNetworkError, Err: fmt.Errorf("http.NewRequestWithContext: %w", err)}
	}
	req.Header.Set("Content-Type", orderContentType)

	token := payload.Token
	if token == "" {
		token = c.token
	}
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	var body orderResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body)
	if decodeErr != nil && isTimeout(ctx, decodeErr) {
		return "", &domain.SubmitError{Kind: domain.SubmitTimeout, Err: decodeErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fmt.Sprintf("store responded with status %d", resp.StatusCode)
		if decodeErr == nil && body.Error != "" {
			message = body.Error
		}
		return "", &domain.SubmitError{Kind: domain.SubmitServerRejected, Message: message}
	}

	if decodeErr != nil {
		return "", &domain.SubmitError{
			Kind:    domain.SubmitServerRejected,
			Message: "unexpected response from store",
			Err:     fmt.Errorf("json.Decode: %w", decodeErr),
		}
	}

	if !body.OK || body.Error != "" {
		message := body.Error
		if message == "" {
			message = "order was rejected by the store"
		}
		return "", &domain.SubmitError{Kind: domain.SubmitServerRejected, Message: message}
	}

	return body.OrderID, nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if isTimeout(ctx, err) {
		return &domain.SubmitError{Kind: domain.SubmitTimeout, Err: err}
	}
	return &domain.SubmitError{Kind: domain.SubmitNetworkError, Err: err}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
