package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"pos-service/internal/service"
	"pos-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	register  *service.Register
	catalog   *service.CatalogService
	dashboard *service.DashboardService
}

// NewHandler creates a new HTTP handler
func NewHandler(register *service.Register, catalog *service.CatalogService, dashboard *service.DashboardService) *Handler {
	return &Handler{
		register:  register,
		catalog:   catalog,
		dashboard: dashboard,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.POST("/products", h.createProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.PATCH("/products/:id/stock", h.setProductStock)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addToCart)
		v1.PATCH("/cart/items/:id", h.updateQuantity)
		v1.DELETE("/cart/items/:id", h.removeFromCart)
		v1.POST("/cart/refresh", h.refreshCatalog)

		v1.POST("/checkout", h.checkout)
		v1.DELETE("/checkout", h.cancelCheckout)

		v1.GET("/sales", h.listSales)
		v1.GET("/dashboard", h.getDashboard)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts handles catalog listing with optional ?q= search
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.Products(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch products",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// createProduct handles product creation
func (h *Handler) createProduct(c *gin.Context) {
	var input service.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalog.Create(c.Request.Context(), input)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidProduct) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// deleteProduct handles product deletion
func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// setProductStock handles direct stock edits (restock/correction)
func (h *Handler) setProductStock(c *gin.Context) {
	var body struct {
		Stock float64 `json:"stock"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := h.catalog.SetStock(c.Request.Context(), c.Param("id"), body.Stock)
	if err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, product)
}

// getCart returns the register's current cart and total
func (h *Handler) getCart(c *gin.Context) {
	cart := h.register.Cart()
	c.JSON(http.StatusOK, gin.H{
		"items": cart,
		"total": h.register.Total(),
		"state": h.register.State(),
	})
}

// addToCart adds one unit step of a product to the cart
func (h *Handler) addToCart(c *gin.Context) {
	var body struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.register.AddToCart(body.ProductID); err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}

	h.getCart(c)
}

// updateQuantity sets the absolute quantity of a cart line
func (h *Handler) updateQuantity(c *gin.Context) {
	var body struct {
		Quantity float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.register.UpdateQuantity(c.Param("id"), body.Quantity); err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}

	h.getCart(c)
}

// removeFromCart drops a cart line
func (h *Handler) removeFromCart(c *gin.Context) {
	if err := h.register.RemoveFromCart(c.Param("id")); err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}

	h.getCart(c)
}

// refreshCatalog re-fetches products and re-seeds the virtual stock
func (h *Handler) refreshCatalog(c *gin.Context) {
	if err := h.register.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to refresh catalog",
			"details": err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// checkout runs the tendered-payment validation and the commit sequence
func (h *Handler) checkout(c *gin.Context) {
	var body struct {
		Tendered       float64 `json:"tendered" binding:"required"`
		IdempotencyKey string  `json:"idempotency_key"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.IdempotencyKey == "" {
		body.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	if _, err := h.register.BeginCheckout(); err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}

	result, err := h.register.ConfirmSale(c.Request.Context(), body.Tendered, body.IdempotencyKey)
	if err != nil {
		status := validationStatus(err)
		c.JSON(status, gin.H{"error": err.Error(), "state": h.register.State()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// cancelCheckout closes the confirmation step with no side effects
func (h *Handler) cancelCheckout(c *gin.Context) {
	if err := h.register.CancelCheckout(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// listSales handles sales history
func (h *Handler) listSales(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	sales, err := h.dashboard.RecentSales(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch sales",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// getDashboard handles the dashboard summary
func (h *Handler) getDashboard(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to build dashboard",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// validationStatus maps domain errors to HTTP statuses. Validation
// rejections are client errors; anything else is a persistence failure.
func validationStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnknownProduct):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCheckoutInProgress),
		errors.Is(err, service.ErrDuplicateCheckout):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrQuantityExceedsStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInsufficientPayment),
		errors.Is(err, service.ErrInvalidProduct):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
