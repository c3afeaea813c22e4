package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/storefront/internal/cache"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/nikolayk812/storefront/internal/storeapi"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

const productsJSON = `{"products":[
	{"id":"P1","category":"fruit","name":"Apples","unit":"kg","price":500,"sort":1},
	{"id":"P2","category":"dairy","name":"Milk","unit":"l","price":"89.90","sort":2}
]}`

// newUpstream serves the catalog on GET and hands POST requests to order.
func newUpstream(t *testing.T, products string, order http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, products)
			return
		}
		if order == nil {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		order(w, r)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestRouter(t *testing.T, upstreamURL, token string) *gin.Engine {
	t.Helper()

	client, err := storeapi.New(upstreamURL)
	require.NoError(t, err)

	catalog, err := service.NewCatalog(client, cache.NewMemory(), time.Second, zap.NewNop())
	require.NoError(t, err)

	submitter, err := service.NewSubmitter(client, service.SubmitterConfig{
		Policy:  domain.DefaultDeliveryPolicy(currency.RUB),
		Token:   token,
		Timeout: 2 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	sessions, err := service.NewSessions(submitter, nil, zap.NewNop())
	require.NoError(t, err)

	h, err := NewHandler(catalog, sessions, zap.NewNop())
	require.NoError(t, err)

	proxy, err := NewProxy(upstreamURL, token, nil, zap.NewNop())
	require.NoError(t, err)

	return NewRouter(h, proxy, zap.NewNop())
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// openSession loads the catalog and starts a session, returning its id.
func openSession(t *testing.T, router http.Handler) string {
	t.Helper()

	rec := do(t, router, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[sessionResponse](t, rec).ID
}

func intPtr(v int) *int {
	return &v
}
