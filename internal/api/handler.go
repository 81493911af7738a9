package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"techstore-admin/internal/models"
	"techstore-admin/internal/service"
	"techstore-admin/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ReadyCheck reports whether a dependency can serve requests.
type ReadyCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	svc    *service.Services
	tokens *TokenIssuer
	checks []ReadyCheck
	logger *zap.Logger
}

func NewHandler(svc *service.Services, tokens *TokenIssuer, checks ...ReadyCheck) *Handler {
	return &Handler{
		svc:    svc,
		tokens: tokens,
		checks: checks,
		logger: util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", h.login)

	authed := v1.Group("", h.requireAuth())
	{
		authed.POST("/auth/logout", h.logout)
		authed.GET("/me", h.me)
		authed.GET("/dashboard", h.dashboard)
		authed.GET("/search", h.search)
		authed.GET("/preferences/theme", h.getTheme)
		authed.PUT("/preferences/theme", h.setTheme)
		authed.POST("/invoices/generate", h.generateInvoices)

		register(authed.Group("/products"), h, productResource(h.svc.Products))
		register(authed.Group("/categories"), h, categoryResource(h.svc.Categories))
		register(authed.Group("/clients"), h, clientResource(h.svc.Clients))
		register(authed.Group("/orders"), h, orderResource(h.svc.Orders))
		register(authed.Group("/invoices"), h, invoiceResource(h.svc.Invoices))
		register(authed.Group("/users", requireRole(models.RoleAdmin)), h, userResource(h.svc.Users))
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for _, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"details": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) dashboard(c *gin.Context) {
	summary, err := h.svc.Dashboard.Summary(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) search(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"results": h.svc.Search.Quick(c.Request.Context(), c.Query("q")),
	})
}

func (h *Handler) getTheme(c *gin.Context) {
	theme, err := h.svc.Preferences.Theme(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

func (h *Handler) setTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !h.bind(c, &req) {
		return
	}
	if err := h.svc.Preferences.SetTheme(c.Request.Context(), req.Theme); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}

func (h *Handler) generateInvoices(c *gin.Context) {
	n, err := h.svc.Invoices.EnsureGenerated(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"generated": n})
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

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
