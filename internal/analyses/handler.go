package analyses

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-critic/internal/shared/server/middleware"
	"resume-critic/internal/shared/server/respond"
)

// multipartOverhead bounds the non-file parts of an analyze request.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. A non-positive maxUploadBytes disables the size check.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches the session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.analyze)
	rg.POST("/sessions/current/optimize", h.optimize)
	rg.GET("/sessions/current", h.current)
	rg.DELETE("/sessions/current", h.reset)
}

type analyzeForm struct {
	JobDescription string `form:"jobDescription" binding:"required"`
	Email          string `form:"email" binding:"required,email"`
	Consent        string `form:"consent" binding:"required"`
}

// parseConsent accepts the checkbox value browsers send ("on") as well as
// strconv booleans.
func parseConsent(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes":
		return true, true
	case "off", "no":
		return false, true
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return v, err == nil
}

func (h *Handler) analyze(c *gin.Context) {
	c.Set("phase", "analysis")
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+multipartOverhead)
	}

	var issues []Issue
	var form analyzeForm
	if err := c.ShouldBind(&form); err != nil {
		if tooLarge(err) {
			h.rejectTooLarge(c)
			return
		}
		issues = append(issues, issuesFromBinding(err)...)
	}
	var consent bool
	if form.Consent != "" {
		v, ok := parseConsent(form.Consent)
		switch {
		case !ok:
			issues = append(issues, Issue{Field: "consent", Issue: "invalid"})
		case !v:
			issues = append(issues, Issue{Field: "consent", Issue: "required"})
		}
		consent = v
	}
	fh, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			h.rejectTooLarge(c)
			return
		}
		issues = append(issues, Issue{Field: "file", Issue: "required"})
	}
	if len(issues) > 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "missing or invalid fields", issues)
		return
	}
	if h.MaxUploadBytes > 0 && fh.Size > h.MaxUploadBytes {
		h.rejectTooLarge(c)
		return
	}

	file, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read uploaded file", []Issue{{Field: "file", Issue: "unreadable"}})
		return
	}
	defer file.Close()

	out, err := h.Svc.Analyze(c.Request.Context(), AnalyzeInput{
		SessionID:      middleware.SessionIDFromContext(c),
		FileName:       fh.Filename,
		File:           file,
		JobDescription: form.JobDescription,
		Email:          form.Email,
		Consent:        consent,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	middleware.SetSessionID(c, out.Session.ID)
	c.Set("stateTransition", string(out.From)+"->"+string(out.Session.State))
	respond.JSON(c, http.StatusOK, NewView(out.Session, out.Warnings))
}

func (h *Handler) optimize(c *gin.Context) {
	c.Set("phase", "optimization")
	out, err := h.Svc.Optimize(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set("stateTransition", string(out.From)+"->"+string(out.Session.State))
	respond.JSON(c, http.StatusOK, NewView(out.Session, out.Warnings))
}

func (h *Handler) current(c *gin.Context) {
	sess, err := h.Svc.Current(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, NewView(sess, nil))
}

func (h *Handler) reset(c *gin.Context) {
	if err := h.Svc.Reset(c.Request.Context(), middleware.SessionIDFromContext(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "validation_error", "missing or invalid fields", verr.Issues)
	case errors.Is(err, ErrExtraction):
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "We could not read text from the uploaded file.", nil)
	case errors.Is(err, ErrCompletion):
		respond.Error(c, http.StatusBadGateway, "completion_failed", "The analysis service is unavailable. Please try again.", nil)
	case errors.Is(err, ErrPersistence):
		respond.Error(c, http.StatusBadGateway, "record_failed", "The result could not be saved. Please try again.", nil)
	case errors.Is(err, ErrAnalysisRequired):
		respond.Error(c, http.StatusConflict, "analysis_required", "Run an analysis before requesting a rewrite.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "request failed", nil)
	}
}

func (h *Handler) rejectTooLarge(c *gin.Context) {
	respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "uploaded file exceeds the size limit", []map[string]any{
		{"field": "file", "maxBytes": h.MaxUploadBytes},
	})
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
