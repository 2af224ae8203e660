package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mikeboe/devweb/pkg/search"
)

type Handler struct {
	Service *Service
	MCP     http.Handler
}

func NewHandler(s *Service, mcpHandler http.Handler) *Handler {
	return &Handler{Service: s, MCP: mcpHandler}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	if h.MCP != nil {
		r.Any("/mcp", gin.WrapH(h.MCP))
	}

	api := r.Group("/api")
	{
		api.POST("/search", h.search)
		api.GET("/searches", h.listSearches)
		api.GET("/searches/:id", h.getSearch)
		api.GET("/searches/:id/logs", h.getSearchLogs)
	}
}

func (h *Handler) search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	resp, err := h.Service.Search(c.Request.Context(), req.Query)
	if err != nil {
		var cfgErr *search.ConfigurationError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listSearches(c *gin.Context) {
	records, err := h.Service.ListSearches(c.Request.Context())
	if err != nil {
		c.JSON(historyStatus(err), gin.H{"error": err.Error()})
		return
	}
	// Return empty list instead of null
	if records == nil {
		records = []SearchRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) getSearch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	record, err := h.Service.GetSearch(c.Request.Context(), id)
	if err != nil {
		c.JSON(historyStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) getSearchLogs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	logs, err := h.Service.GetSearchLogs(c.Request.Context(), id)
	if err != nil {
		c.JSON(historyStatus(err), gin.H{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []LogEntry{}
	}
	c.JSON(http.StatusOK, logs)
}

func historyStatus(err error) int {
	switch {
	case errors.Is(err, ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrSearchNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
