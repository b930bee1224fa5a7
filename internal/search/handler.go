package search

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ayalaw/clickjob/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the search service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches search routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search/cv", h.searchCV)
	rg.GET("/search/candidates", h.searchIndexed)
}

type naiveSearchResponse struct {
	Results []Result `json:"results"`
	Count   int      `json:"count"`
}

func (h *Handler) searchCV(c *gin.Context) {
	positive := splitKeywords(c.Query("pos"))
	negative := splitKeywords(c.Query("neg"))
	if len(positive) == 0 && len(negative) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one keyword is required", nil)
		return
	}
	includeNotes := c.Query("notes") == "true"
	limit := intQueryParam(c, "limit", 0)

	results, err := h.Svc.Search(c.Request.Context(), positive, negative, includeNotes, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "search_failed", "failed to search cv content", nil)
		return
	}
	respond.OK(c, naiveSearchResponse{Results: results, Count: len(results)})
}

func (h *Handler) searchIndexed(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	limit := intQueryParam(c, "limit", 20)
	offset := intQueryParam(c, "offset", 0)

	results, total, err := h.Svc.SearchIndexed(c.Request.Context(), query, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "search_failed", "failed to search candidates", nil)
		return
	}
	respond.OK(c, gin.H{
		"candidates": results,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(k); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func intQueryParam(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
