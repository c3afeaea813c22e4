package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/storefront/internal/storeapi"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	maxProxyBodyBytes = 1 << 20
	proxyContentType  = "text/plain;charset=utf-8"
)

// Proxy forwards catalog and order requests to the store API and adds the
// server-side token, so browsers never see it.
type Proxy struct {
	upstream   *url.URL
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewProxy forwards to upstream. httpClient may be nil.
func NewProxy(upstream, token string, httpClient *http.Client, logger *zap.Logger) (*Proxy, error) {
	if upstream == "" {
		return nil, fmt.Errorf("upstream is empty")
	}

	u, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream[%s] must be http or https", upstream)
	}

	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Proxy{
		upstream:   u,
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// GET /proxy?action=products
// Only the catalog is reachable, client query parameters are not forwarded.
func (p *Proxy) Products(c *gin.Context) {
	if action := c.Query("action"); action != "" && action != "products" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("action[%s] is not supported", action)})
		return
	}

	u := *p.upstream
	q := u.Query()
	q.Set("action", "products")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, u.String(), nil)
	if err != nil {
		p.fail(c, fmt.Errorf("http.NewRequestWithContext: %w", err))
		return
	}

	p.forward(c, req)
}

// POST /proxy
// The body is an order payload, the token field is overwritten with the server-side token.
func (p *Proxy) Order(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxProxyBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "could not read order payload"})
		return
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil || payload == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid order payload"})
		return
	}

	if p.token != "" {
		payload["token"] = p.token
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.fail(c, fmt.Errorf("json.Marshal: %w", err))
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, p.upstream.String(), bytes.NewReader(body))
	if err != nil {
		p.fail(c, fmt.Errorf("http.NewRequestWithContext: %w", err))
		return
	}
	req.Header.Set("Content-Type", proxyContentType)

	p.forward(c, req)
}

// forward relays the upstream status and body unchanged.
func (p *Proxy) forward(c *gin.Context, req *http.Request) {
	if p.token != "" {
		req.Header.Set(storeapi.TokenHeader, p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.fail(c, fmt.Errorf("httpClient.Do: %w", err))
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	c.DataFromReader(resp.StatusCode, resp.ContentLength, contentType, resp.Body, nil)
}

func (p *Proxy) fail(c *gin.Context, err error) {
	p.logger.Warn("proxy upstream", zap.String("method", c.Request.Method), zap.Error(err))
	c.JSON(http.StatusBadGateway, errorResponse{Error: "store is unreachable"})
}
