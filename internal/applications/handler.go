package applications

import (
	"errors"
	"net/http"

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

// RegisterRoutes attaches application routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", h.create)
	rg.GET("/applications", h.list)
	rg.GET("/applications/:id", h.get)
	rg.PUT("/applications/:id/status", h.updateStatus)
}

type applicationRequest struct {
	CandidateID string `json:"candidateId"`
	JobID       string `json:"jobId"`
	Note        string `json:"note"`
}

func (h *Handler) create(c *gin.Context) {
	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	created, err := h.Svc.Submit(c.Request.Context(), req.CandidateID, req.JobID, req.Note)
	if err != nil {
		var dup *DuplicateError
		switch {
		case errors.As(err, &dup):
			respond.Error(c, http.StatusConflict, "duplicate_application",
				"candidate already applied to this job", dup.Existing)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "create_failed", "failed to create application", nil)
		}
		return
	}
	c.Set("candidateId", created.CandidateID)
	c.Set("jobId", created.JobID)
	respond.JSON(c, http.StatusCreated, created)
}

func (h *Handler) get(c *gin.Context) {
	app, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "get_failed", "failed to load application", nil)
		return
	}
	respond.OK(c, app)
}

func (h *Handler) list(c *gin.Context) {
	candidateID := c.Query("candidateId")
	jobID := c.Query("jobId")

	var (
		items []Application
		err   error
	)
	switch {
	case candidateID != "":
		items, err = h.Svc.ListByCandidate(c.Request.Context(), candidateID)
	case jobID != "":
		items, err = h.Svc.ListByJob(c.Request.Context(), jobID)
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "candidateId or jobId is required", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list_failed", "failed to list applications", nil)
		return
	}
	respond.OK(c, gin.H{"applications": items, "count": len(items)})
}

type statusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	err := h.Svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "update_failed", "failed to update application", nil)
		}
		return
	}
	app, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "get_failed", "failed to load application", nil)
		return
	}
	respond.OK(c, app)
}
