package candidates

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ayalaw/clickjob/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches candidate routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/candidates", h.create)
	rg.GET("/candidates", h.list)
	rg.GET("/candidates/:id", h.get)
	rg.PUT("/candidates/:id", h.update)
	rg.GET("/candidates/:id/events", h.events)
	rg.POST("/candidates/:id/cv", h.uploadCV)
	rg.POST("/candidates/parse-cv", h.parseCV)
}

func (h *Handler) create(c *gin.Context) {
	var req candidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Svc.Create(c.Request.Context(), req.toModel())
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "create_failed", "failed to create candidate", nil)
		return
	}

	c.Set("candidateId", result.Candidate.ID)
	status := http.StatusCreated
	if result.Merged {
		status = http.StatusOK
	}
	respond.JSON(c, status, createResponse{Candidate: result.Candidate, Merged: result.Merged})
}

func (h *Handler) get(c *gin.Context) {
	candidate, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "get_failed", "failed to load candidate", nil)
		return
	}
	respond.OK(c, candidate)
}

func (h *Handler) update(c *gin.Context) {
	var req candidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	candidate := req.toModel()
	candidate.ID = c.Param("id")
	if err := h.Svc.Update(c.Request.Context(), candidate); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "update_failed", "failed to update candidate", nil)
		}
		return
	}

	updated, err := h.Svc.Get(c.Request.Context(), candidate.ID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "get_failed", "failed to load candidate", nil)
		return
	}
	respond.OK(c, updated)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		Status:     c.Query("status"),
		Profession: c.Query("profession"),
		Query:      c.Query("q"),
		Limit:      intQuery(c, "limit", 20),
		Offset:     intQuery(c, "offset", 0),
	}
	items, total, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list_failed", "failed to list candidates", nil)
		return
	}
	respond.OK(c, listResponse{Items: items, Total: total})
}

func (h *Handler) events(c *gin.Context) {
	events, err := h.Svc.Events(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "events_failed", "failed to load events", nil)
		return
	}
	respond.OK(c, gin.H{"items": events})
}

func (h *Handler) uploadCV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	candidate, fields, err := h.Svc.UploadCV(c.Request.Context(), c.Param("id"), fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "upload_failed", "failed to upload cv", nil)
		return
	}
	c.Set("candidateId", candidate.ID)
	respond.OK(c, uploadCVResponse{Candidate: candidate, Extracted: fields})
}

func (h *Handler) parseCV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	fields, err := h.Svc.ParseCV(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "parse_failed", "failed to parse cv", nil)
		return
	}
	respond.OK(c, gin.H{"extracted": fields})
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
