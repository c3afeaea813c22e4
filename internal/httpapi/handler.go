// Package httpapi exposes the storefront core over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/service"
	"go.uber.org/zap"
)

type Handler struct {
	catalog  *service.Catalog
	sessions *service.Sessions
	logger   *zap.Logger
}

func NewHandler(catalog *service.Catalog, sessions *service.Sessions, logger *zap.Logger) (*Handler, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("sessions is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
	}, nil
}

// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/products
// Responds with the first list the catalog shows: a fresh cached list right away, otherwise
// the network list. The network refresh keeps running after a cached response.
func (h *Handler) Products(c *gin.Context) {
	type shownList struct {
		products []domain.Product
		source   service.Source
	}

	// at most two shows per load, buffered so the refresh never blocks
	shown := make(chan shownList, 2)
	loaded := make(chan error, 1)

	go func() {
		loaded <- h.catalog.Load(context.WithoutCancel(c.Request.Context()), func(products []domain.Product, source service.Source) {
			shown <- shownList{products: products, source: source}
		})
	}()

	var list shownList
	select {
	case list = <-shown:
	case err := <-loaded:
		if err != nil {
			h.logger.Warn("load catalog", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "catalog is unavailable"})
			return
		}
		list = <-shown
	case <-c.Request.Context().Done():
		c.Status(http.StatusRequestTimeout)
		return
	}

	c.JSON(http.StatusOK, catalogResponse{
		Products:   mapProducts(list.products),
		Categories: service.CategoriesOf(list.products),
		Source:     list.source.String(),
	})
}

type openSessionRequest struct {
	ID string `json:"id"`
}

// POST /api/sessions
// The body is optional, an id resumes a persisted cart.
func (h *Handler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	session, err := h.sessions.Open(c.Request.Context(), req.ID)
	if err != nil {
		h.logger.Error("open session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not open session"})
		return
	}

	c.JSON(http.StatusCreated, mapSession(session))
}

// GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, mapSession(session))
}

// DELETE /api/sessions/:id
func (h *Handler) CloseSession(c *gin.Context) {
	if !h.sessions.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, errorResponse{Error: service.ErrSessionNotFound.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// GET /api/sessions/:id/cart
func (h *Handler) GetCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, mapCartView(session.View()))
}

// POST /api/sessions/:id/cart/items
// Without qty the product is added once, with qty the entry is set to exactly qty.
func (h *Handler) AddItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Quantity != nil {
		if err := checkQuantity(*req.Quantity); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	product, ok := h.catalog.Product(req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "product not found"})
		return
	}

	var view service.CartView
	if req.Quantity == nil {
		view = session.Add(c.Request.Context(), product)
	} else {
		view = session.Put(c.Request.Context(), product, *req.Quantity)
	}

	c.JSON(http.StatusOK, mapCartView(view))
}

// PUT /api/sessions/:id/cart/items/:productId
func (h *Handler) SetQuantity(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := checkQuantity(*req.Quantity); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	productID := c.Param("productId")

	var view service.CartView
	if product, ok := h.catalog.Product(productID); ok {
		view = session.Put(c.Request.Context(), product, *req.Quantity)
	} else {
		view = session.SetQuantity(c.Request.Context(), productID, *req.Quantity)
	}

	c.JSON(http.StatusOK, mapCartView(view))
}

// POST /api/sessions/:id/cart/items/:productId/increment
func (h *Handler) Increment(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, mapCartView(session.Increment(c.Request.Context(), c.Param("productId"))))
}

// POST /api/sessions/:id/cart/items/:productId/decrement
func (h *Handler) Decrement(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, mapCartView(session.Decrement(c.Request.Context(), c.Param("productId"))))
}

// DELETE /api/sessions/:id/cart/items/:productId
func (h *Handler) RemoveItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, mapCartView(session.Remove(c.Request.Context(), c.Param("productId"))))
}

// DELETE /api/sessions/:id/cart
func (h *Handler) ClearCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, mapCartView(session.Clear(c.Request.Context())))
}

// POST /api/sessions/:id/checkout
func (h *Handler) Checkout(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	confirmation, err := session.Checkout(c.Request.Context(), req.fields(), req.user())
	if err != nil {
		status, body := h.checkoutError(session.ID(), err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, checkoutResponse{
		OK:        true,
		OrderID:   confirmation.OrderID,
		Reference: confirmation.Reference.String(),
		Totals:    mapTotals(confirmation.Totals),
	})
}

func (h *Handler) checkoutError(sessionID string, err error) (int, errorResponse) {
	var (
		validationErr *domain.ValidationError
		submitErr     *domain.SubmitError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, errorResponse{Error: validationErr.Error(), Code: validationErr.Code.String()}
	case errors.Is(err, service.ErrSubmitInFlight):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.As(err, &submitErr):
		h.logger.Warn("submit order",
			zap.String("session_id", sessionID),
			zap.Stringer("kind", submitErr.Kind),
			zap.Error(err),
			zap.NamedError("cause", submitErr.Err))

		status := http.StatusBadGateway
		if submitErr.Kind == domain.SubmitTimeout {
			status = http.StatusGatewayTimeout
		}
		return status, errorResponse{Error: submitErr.Error(), Code: submitErr.Kind.String()}
	default:
		h.logger.Error("submit order", zap.String("session_id", sessionID), zap.Error(err))
		return http.StatusInternalServerError, errorResponse{Error: domain.GenericSubmitMessage}
	}
}

func checkQuantity(qty int) error {
	if qty < 0 || qty > domain.MaxQuantity {
		return fmt.Errorf("qty[%d] must be between 0 and %d", qty, domain.MaxQuantity)
	}
	return nil
}

func (h *Handler) session(c *gin.Context) (*service.Session, bool) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return nil, false
	}
	return session, true
}
