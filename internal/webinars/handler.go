package webinars

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/middleware"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/response"
)

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// CreateRequest is the body for POST /webinars.
type CreateRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	StartsAt        string `json:"starts_at" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"required"`
	Capacity        int    `json:"capacity"`
}

// UpdateRequest is the body for PATCH /webinars/:id. Absent fields are left untouched.
type UpdateRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	StartsAt        *string `json:"starts_at"`
	DurationMinutes *int    `json:"duration_minutes"`
	Capacity        *int    `json:"capacity"`
}

// Handler handles webinar HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a webinar handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Create handles POST /webinars.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	startsAt, err := parseTime(req.StartsAt)
	if err != nil {
		response.BadRequest(c, "invalid starts_at")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	w, err := h.svc.Create(c.Request.Context(), CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		StartsAt:        startsAt,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
		CreatedBy:       userID,
	})
	if err != nil {
		h.logger.Warn("create webinar failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.Created(c, w)
}

// List handles GET /webinars?page=&limit=.
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, total, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"webinars": list, "total": total, "page": page, "limit": limit})
}

// GetByID handles GET /webinars/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	w, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, w)
}

// Update handles PATCH /webinars/:id (creator or admin).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	if !h.requireOwnership(c, id) {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	in := UpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
	}
	if req.StartsAt != nil {
		t, err := parseTime(*req.StartsAt)
		if err != nil {
			response.BadRequest(c, "invalid starts_at")
			return
		}
		in.StartsAt = &t
	}
	w, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, w)
}

// Delete handles DELETE /webinars/:id (creator or admin).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	if !h.requireOwnership(c, id) {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Start handles POST /webinars/:id/start (creator or admin).
func (h *Handler) Start(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	if !h.requireOwnership(c, id) {
		return
	}
	w, err := h.svc.Start(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, w)
}

// End handles POST /webinars/:id/end (creator or admin).
func (h *Handler) End(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	if !h.requireOwnership(c, id) {
		return
	}
	w, err := h.svc.End(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, w)
}

// requireOwnership loads the webinar and checks the caller created it or is
// an admin. Writes the error response itself when the check fails.
func (h *Handler) requireOwnership(c *gin.Context, id uuid.UUID) bool {
	w, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return false
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.Get(middleware.ContextUserRole)
	if w.CreatedBy != userID && role != string(models.RoleAdmin) {
		response.Forbidden(c, "only the creator can manage this webinar")
		return false
	}
	return true
}
