package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ayalaw/clickjob/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.create)
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:id", h.get)
	rg.PUT("/jobs/:id", h.update)
}

type jobRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	ClientName   string `json:"clientName"`
	Location     string `json:"location"`
	Status       string `json:"status"`
}

func (r jobRequest) toModel() Job {
	return Job{
		Title:        r.Title,
		Description:  r.Description,
		Requirements: r.Requirements,
		ClientName:   r.ClientName,
		Location:     r.Location,
		Status:       r.Status,
	}
}

func (h *Handler) create(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), req.toModel())
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "create_failed", "failed to create job", nil)
		return
	}
	c.Set("jobId", created.ID)
	respond.JSON(c, http.StatusCreated, created)
}

func (h *Handler) get(c *gin.Context) {
	job, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "get_failed", "failed to load job", nil)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) update(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	job := req.toModel()
	job.ID = c.Param("id")
	if err := h.Svc.Update(c.Request.Context(), job); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "update_failed", "failed to update job", nil)
		}
		return
	}
	updated, err := h.Svc.Get(c.Request.Context(), job.ID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "get_failed", "failed to load job", nil)
		return
	}
	respond.OK(c, updated)
}

func (h *Handler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	items, total, err := h.Svc.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list_failed", "failed to list jobs", nil)
		return
	}
	respond.OK(c, gin.H{
		"jobs":   items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
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
