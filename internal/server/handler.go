// Package server exposes profiles and repository activity as a JSON API
// for the browser front-end.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/github-activity/internal/domain"
	"github.com/naka-gawa/github-activity/internal/presenter"
)

// Service is the use case the handlers depend on.
type Service interface {
	Profile(ctx context.Context, handle string) (*domain.UserProfile, error)
	Aggregate(ctx context.Context, handle string, windowDays int) ([]*domain.EnrichedRepository, error)
	Analyze(ctx context.Context, handle string, windowDays int) (*domain.Report, error)
}

// Handler handles API requests.
type Handler struct {
	service       Service
	cache         *resultCache
	defaultWindow int
	logger        logrus.FieldLogger
}

// NewHandler creates a new API handler. Successful results are reused for cacheTTL.
func NewHandler(service Service, defaultWindow int, cacheTTL time.Duration, logger logrus.FieldLogger) *Handler {
	return &Handler{
		service:       service,
		cache:         newResultCache(cacheTTL),
		defaultWindow: domain.NormalizeWindow(defaultWindow),
		logger:        logger,
	}
}

// HealthCheck returns the health status.
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetUser returns a user's profile.
// GET /api/v1/users/:handle
func (h *Handler) GetUser(c *gin.Context) {
	handle := c.Param("handle")

	value, err := h.cached(c, "user:"+strings.ToLower(handle), func(ctx context.Context) (any, error) {
		return h.service.Profile(ctx, handle)
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": value})
}

// GetRepositories returns a user's repositories with commit activity.
// GET /api/v1/users/:handle/repos?window=30&q=&sort=updated&direction=desc
func (h *Handler) GetRepositories(c *gin.Context) {
	handle := c.Param("handle")
	window, err := h.parseWindow(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	key, err := presenter.ParseSortKey(c.Query("sort"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	dir, err := presenter.ParseDirection(c.Query("direction"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	value, err := h.cached(c, fmt.Sprintf("repos:%s:%d", strings.ToLower(handle), window), func(ctx context.Context) (any, error) {
		return h.service.Aggregate(ctx, handle, window)
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	repos := presenter.Sort(presenter.Filter(value.([]*domain.EnrichedRepository), c.Query("q")), key, dir)
	c.JSON(http.StatusOK, gin.H{
		"data": repos,
		"meta": gin.H{"window_days": window, "count": len(repos)},
	})
}

// GetReport returns a user's profile together with the enriched repositories.
// GET /api/v1/users/:handle/report?window=30
func (h *Handler) GetReport(c *gin.Context) {
	handle := c.Param("handle")
	window, err := h.parseWindow(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	value, err := h.cached(c, fmt.Sprintf("report:%s:%d", strings.ToLower(handle), window), func(ctx context.Context) (any, error) {
		return h.service.Analyze(ctx, handle, window)
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": value})
}

// cached returns the memoized result for key, or calls load and memoizes a successful result.
// A "Cache-Control: no-cache" request always reloads.
func (h *Handler) cached(c *gin.Context, key string, load func(ctx context.Context) (any, error)) (any, error) {
	if !strings.Contains(c.GetHeader("Cache-Control"), "no-cache") {
		if value, ok := h.cache.get(key); ok {
			c.Header("X-Cache", "HIT")
			return value, nil
		}
	}
	value, err := load(c.Request.Context())
	if err != nil {
		return nil, err
	}
	h.cache.set(key, value)
	c.Header("X-Cache", "MISS")
	return value, nil
}

func (h *Handler) parseWindow(c *gin.Context) (int, error) {
	raw := c.Query("window")
	if raw == "" {
		return h.defaultWindow, nil
	}
	window, err := strconv.Atoi(raw)
	if err != nil || window < 1 || window > 365 {
		return 0, fmt.Errorf("window must be an integer between 1 and 365, got %q", raw)
	}
	return window, nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	message := "internal error"

	var fetchErr *domain.FetchError
	switch {
	case domain.IsNotFound(err):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case domain.IsFetchFailed(err):
		status, code = http.StatusBadGateway, "FETCH_FAILED"
	}
	if errors.As(err, &fetchErr) {
		message = fetchErr.Message
	}

	h.logger.WithError(err).WithFields(logrus.Fields{
		"path":       c.Request.URL.Path,
		"status":     status,
		"request_id": c.GetString(requestIDKey),
	}).Warn("request failed")
	c.JSON(status, gin.H{"error": errorBody{Code: code, Message: message}})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Code: "BAD_REQUEST", Message: err.Error()}})
}
