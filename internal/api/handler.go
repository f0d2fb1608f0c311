package api

import (
	"net/http"
	"strconv"
	"time"

	"lumiere-backend/config"
	"lumiere-backend/internal/service"
	"lumiere-backend/internal/store"
	"lumiere-backend/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog  *service.CatalogService
	cart     *service.CartService
	orders   *service.OrderService
	payments *service.PaymentService
	contact  *service.ContactService
	corsCfg  config.CORSConfig
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *service.CatalogService,
	cart *service.CartService,
	orders *service.OrderService,
	payments *service.PaymentService,
	contact *service.ContactService,
	corsCfg config.CORSConfig,
) *Handler {
	return &Handler{
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		payments: payments,
		contact:  contact,
		corsCfg:  corsCfg,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	// The static front end lives on a different origin; it needs the session
	// header exposed to persist the token.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     h.corsCfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", SessionHeader, "Idempotency-Key"},
		ExposeHeaders:    []string{SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(SessionMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/products", h.listProducts)
	router.GET("/categories", h.listCategories)

	router.GET("/cart", h.getCart)
	router.POST("/cart", h.addCartItem)
	router.PUT("/cart/:id", h.updateCartItem)
	router.DELETE("/cart/:id", h.removeCartItem)
	router.DELETE("/cart", h.clearCart)

	router.POST("/orders", h.createOrder)
	router.GET("/orders", h.getOrders)
	router.PUT("/orders/:id", h.updateOrderStatus)

	router.POST("/contact", h.submitContact)
	router.POST("/payments/create-intent", h.createPaymentIntent)
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

// listProducts handles product listing, single-product lookup via ?id=, and
// the featured subset via ?featured=true.
func (h *Handler) listProducts(c *gin.Context) {
	if idStr := c.Query("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			h.respondError(c, service.Validation("invalid product id"))
			return
		}
		product, err := h.catalog.GetProduct(c.Request.Context(), id)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
		return
	}

	if c.Query("featured") == "true" {
		products, err := h.catalog.GetFeatured(c.Request.Context())
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
		return
	}

	filter := store.ProductFilter{
		CategorySlug: c.Query("category"),
		Search:       c.Query("search"),
		Material:     c.Query("material"),
		Gemstone:     c.Query("gemstone"),
	}

	if minStr := c.Query("minPrice"); minStr != "" {
		min, err := decimal.NewFromString(minStr)
		if err != nil {
			h.respondError(c, service.Validation("invalid minPrice"))
			return
		}
		filter.MinPrice = &min
	}
	if maxStr := c.Query("maxPrice"); maxStr != "" {
		max, err := decimal.NewFromString(maxStr)
		if err != nil {
			h.respondError(c, service.Validation("invalid maxPrice"))
			return
		}
		filter.MaxPrice = &max
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// listCategories handles category listing
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// getCart returns the session's cart
func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.cart.GetCart(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// addCartItem adds a product to the session's cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, service.Validation("invalid request body"))
		return
	}

	item, err := h.cart.AddItem(c.Request.Context(), sessionID(c), req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// updateCartItem sets a cart line's quantity; zero or less removes the line
func (h *Handler) updateCartItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, service.Validation("invalid cart item id"))
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, service.Validation("invalid request body"))
		return
	}

	if err := h.cart.UpdateQuantity(c.Request.Context(), sessionID(c), itemID, *req.Quantity); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// removeCartItem deletes a single cart line
func (h *Handler) removeCartItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, service.Validation("invalid cart item id"))
		return
	}

	if err := h.cart.RemoveItem(c.Request.Context(), sessionID(c), itemID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// clearCart deletes all cart lines for the session
func (h *Handler) clearCart(c *gin.Context) {
	if err := h.cart.ClearCart(c.Request.Context(), sessionID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// createOrder converts the session's cart into an order
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, service.Validation("invalid request body"))
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.orders.CreateOrder(c.Request.Context(), sessionID(c), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// getOrders returns one order via ?id= or all of the session's orders
func (h *Handler) getOrders(c *gin.Context) {
	if idStr := c.Query("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			h.respondError(c, service.Validation("invalid order id"))
			return
		}
		order, err := h.orders.GetOrder(c.Request.Context(), sessionID(c), id)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type updateOrderStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// updateOrderStatus applies a status transition to an order
func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, service.Validation("invalid order id"))
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, service.Validation("invalid request body"))
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), orderID, req.Status, req.PaymentIntentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// submitContact stores a contact-form submission
func (h *Handler) submitContact(c *gin.Context) {
	var req service.SubmitContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, service.Validation("name, email, subject and message are required"))
		return
	}

	submission, err := h.contact.Submit(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":      submission.ID,
		"message": "thank you, we will be in touch shortly",
	})
}

// createPaymentIntent obtains a payment authorization handle
func (h *Handler) createPaymentIntent(c *gin.Context) {
	var req service.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, service.Validation("invalid request body"))
		return
	}

	intent, err := h.payments.CreateIntent(c.Request.Context(), sessionID(c), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// statusForError maps the error taxonomy to HTTP statuses. A processor-set
// status wins over the default for its code.
func statusForError(appErr *service.Error) int {
	if appErr.Status != 0 {
		return appErr.Status
	}
	switch appErr.Code {
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeConflict:
		return http.StatusConflict
	case service.CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := service.AsError(err)

	if appErr.Code == service.CodeInternal || appErr.Code == service.CodeUpstream {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", string(appErr.Code)),
			zap.Error(err))
	}

	c.JSON(statusForError(appErr), gin.H{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
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
