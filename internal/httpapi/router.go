package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the engine. proxy may be nil when the token proxy is disabled.
func NewRouter(h *Handler, proxy *Proxy, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(recovery(logger))
	router.Use(requestLogger(logger))

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/products", h.Products)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", h.OpenSession)
			sessions.GET("/:id", h.GetSession)
			sessions.DELETE("/:id", h.CloseSession)

			sessions.GET("/:id/cart", h.GetCart)
			sessions.DELETE("/:id/cart", h.ClearCart)
			sessions.POST("/:id/cart/items", h.AddItem)
			sessions.PUT("/:id/cart/items/:productId", h.SetQuantity)
			sessions.DELETE("/:id/cart/items/:productId", h.RemoveItem)
			sessions.POST("/:id/cart/items/:productId/increment", h.Increment)
			sessions.POST("/:id/cart/items/:productId/decrement", h.Decrement)

			sessions.POST("/:id/checkout", h.Checkout)
		}
	}

	if proxy != nil {
		router.GET("/proxy", proxy.Products)
		router.POST("/proxy", proxy.Order)
	}

	return router
}
