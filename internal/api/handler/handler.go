package handler

import (
	"log"
	"net/http"
	"sort"
	"time"

	"campusreport/backend/internal/config"
	"campusreport/backend/internal/localization"
	"campusreport/backend/internal/observability"
	"campusreport/backend/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler holds the dependencies of the HTTP surface.
type Handler struct {
	Reports   *report.Service
	Localizer *localization.Localizer
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer

	JWTSecret string
	JWTIssuer string
	// TrustedProxies feeds gin's SetTrustedProxies; nil trusts none.
	TrustedProxies []string
}

func NewHandler(reports *report.Service, l *localization.Localizer, m *observability.Metrics) *Handler {
	return &Handler{Reports: reports, Localizer: l, Metrics: m, Gatherer: prometheus.DefaultGatherer}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(h.TrustedProxies); err != nil {
		log.Printf("ERROR: Invalid trusted proxies %v, trusting none: %v", h.TrustedProxies, err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Logger(), gin.Recovery(), h.observe())
	r.MaxMultipartMemory = 32 << 20
	h.Register(r)
	return r
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/categories", h.ListCategories)
	api.POST("/reports", h.SubmitReport)
	api.GET("/track", h.TrackReport)
	api.POST("/track", h.TrackReport)
	api.POST("/donations", h.SubmitDonation)

	admin := api.Group("/admin", h.RequireAdmin())
	admin.GET("/reports", h.ListReports)
	admin.GET("/reports/:id", h.GetReport)
	admin.PATCH("/reports/:id/status", h.UpdateStatus)
	admin.GET("/reports/:id/transitions", h.AllowedTransitions)
	admin.POST("/reports/:id/feedback", h.SendFeedback)
	admin.GET("/reports/:id/feedback", h.ListFeedback)
}

func (h *Handler) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.Metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListCategories returns the fixed landing-page taxonomy in id order.
func (h *Handler) ListCategories(c *gin.Context) {
	list := make([]config.Category, 0, len(config.Categories))
	for _, cat := range config.Categories {
		list = append(list, cat)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	c.JSON(http.StatusOK, gin.H{"categories": list})
}

func (h *Handler) lang(c *gin.Context) string {
	if h.Localizer == nil {
		return localization.DefaultLanguage
	}
	return h.Localizer.Pick(c.GetHeader("Accept-Language"))
}

func (h *Handler) text(c *gin.Context, key string) string {
	if h.Localizer == nil {
		return key
	}
	return h.Localizer.GetString(h.lang(c), key)
}
