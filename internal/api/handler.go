package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"stock-reconciler/internal/cache"
	"stock-reconciler/internal/engine"
	"stock-reconciler/internal/service"
	"stock-reconciler/internal/store"
	"stock-reconciler/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	cache         *cache.Cache
	aggregator    *engine.VariationAggregator
	store         *store.Store
	updateService *service.StockUpdateService
	reportService *service.ReportService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	c *cache.Cache,
	aggregator *engine.VariationAggregator,
	st *store.Store,
	updateService *service.StockUpdateService,
	reportService *service.ReportService,
) *Handler {
	return &Handler{
		cache:         c,
		aggregator:    aggregator,
		store:         st,
		updateService: updateService,
		reportService: reportService,
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
		v1.GET("/stock/:sku", h.resolveStock)
		v1.POST("/stock/bulk", h.resolveBulk)
		v1.DELETE("/stock/:sku/cache", h.invalidateStock)
		v1.GET("/stock/:sku/log", h.stockUpdateLog)
		v1.GET("/listings/:id/stock", h.resolveListingStock)
		v1.POST("/listings/:id/variations/:variationID/stock", h.updateVariationStock)
		v1.GET("/reports/stock-issues", h.stockIssues)
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

// resolveStock answers sellable stock for one SKU. Always 200: "no data" is
// a zero-stock result, not an error.
func (h *Handler) resolveStock(c *gin.Context) {
	sku := c.Param("sku")
	if cache.Key(sku) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty SKU"})
		return
	}

	result := h.cache.Resolve(c.Request.Context(), sku)
	c.JSON(http.StatusOK, result)
}

// BulkStockRequest is the bulk resolution payload.
type BulkStockRequest struct {
	SKUs []string `json:"skus" binding:"required,min=1"`
}

// resolveBulk resolves a batch of SKUs in one request.
func (h *Handler) resolveBulk(c *gin.Context) {
	var req BulkStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	results := h.cache.ResolveBulk(c.Request.Context(), req.SKUs)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// invalidateStock forces the next resolve for a SKU to bypass the cache, on
// this instance and, via the broadcast event, on every sibling.
func (h *Handler) invalidateStock(c *gin.Context) {
	sku := c.Param("sku")
	if err := h.updateService.InvalidateStock(c.Request.Context(), sku); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to invalidate cache entry",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sku": sku, "invalidated": true})
}

// stockUpdateLog returns recent audit rows for a SKU.
func (h *Handler) stockUpdateLog(c *gin.Context) {
	sku := c.Param("sku")
	logs, err := h.store.GetStockUpdateLog(c.Request.Context(), sku, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to read stock update log",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sku": sku, "updates": logs})
}

// resolveListingStock answers per-variation and item-level stock for a
// listing.
func (h *Handler) resolveListingStock(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	listing, err := h.store.GetListingByID(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Listing not found",
			"details": err.Error(),
		})
		return
	}

	stock := h.aggregator.ResolveListing(c.Request.Context(), *listing)
	c.JSON(http.StatusOK, stock)
}

// updateVariationStock sets one variation's marketplace quantity.
func (h *Handler) updateVariationStock(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}
	variationID, err := strconv.ParseInt(c.Param("variationID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid variation ID"})
		return
	}

	var req service.UpdateVariationStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	logEntry, err := h.updateService.UpdateVariationStock(c.Request.Context(), listingID, variationID, &req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Failed to update variation stock",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, logEntry)
}

// stockIssues builds the stock-issues report. An optional comma-separated
// "skus" query parameter scopes the scan.
func (h *Handler) stockIssues(c *gin.Context) {
	var skus []string
	if raw := c.Query("skus"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skus = append(skus, s)
			}
		}
	}

	report, err := h.reportService.StockIssues(c.Request.Context(), skus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to build stock issues report",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, report)
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
