package registrations

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/response"
)

// RegisterRequest is the body for POST /webinars/:id/register.
type RegisterRequest struct {
	UserName      string            `json:"user_name" binding:"required"`
	UserEmail     string            `json:"user_email" binding:"required"`
	MobileNumber  string            `json:"mobile_number"`
	FormResponses map[string]string `json:"form_responses"`
}

// SaveFormRequest is the body for POST /webinars/:id/registration.
type SaveFormRequest struct {
	RequireRegistration *bool              `json:"require_registration"`
	AutoApprove         *bool              `json:"auto_approve"`
	MaxAttendees        *int               `json:"max_attendees"`
	DeadlineHours       *int               `json:"registration_deadline"`
	Fields              []models.FormField `json:"form_schema"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register handles POST /webinars/:id/register (public).
func (h *Handler) Register(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	reg, err := h.svc.Submit(c.Request.Context(), SubmitInput{
		WebinarID:    webinarID,
		UserName:     req.UserName,
		UserEmail:    req.UserEmail,
		MobileNumber: req.MobileNumber,
		Responses:    req.FormResponses,
		Source: models.SourceData{
			UserAgent:   c.Request.UserAgent(),
			IP:          c.ClientIP(),
			SubmittedAt: time.Now(),
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg)
}

// GetForm handles GET /webinars/:id/registration (public form schema).
func (h *Handler) GetForm(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	form, err := h.svc.GetForm(c.Request.Context(), webinarID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, form)
}

// SaveForm handles POST /webinars/:id/registration (organizer upsert).
func (h *Handler) SaveForm(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var req SaveFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	form, err := h.svc.SaveForm(c.Request.Context(), webinarID, SaveFormInput{
		RequireRegistration: req.RequireRegistration,
		AutoApprove:         req.AutoApprove,
		MaxAttendees:        req.MaxAttendees,
		DeadlineHours:       req.DeadlineHours,
		Fields:              req.Fields,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, form)
}

// List handles GET /webinars/:id/registrations (organizer moderation).
func (h *Handler) List(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	list, err := h.svc.List(c.Request.Context(), webinarID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"registrations": list, "total": len(list)})
}

// Approve handles PATCH /registrations/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	h.setStatus(c, models.RegistrationApproved)
}

// Reject handles PATCH /registrations/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	h.setStatus(c, models.RegistrationRejected)
}

func (h *Handler) setStatus(c *gin.Context, status models.RegistrationStatus) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	reg, err := h.svc.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, reg)
}

// ValidateJoin handles GET /join/validate/:token (public).
func (h *Handler) ValidateJoin(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "token required")
		return
	}
	info, err := h.svc.ValidateJoin(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, info)
}
