package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/polyglot-faq/internal/domain/auth"
	"github.com/yanqian/polyglot-faq/internal/domain/faq"
	apperrors "github.com/yanqian/polyglot-faq/pkg/errors"
	"github.com/yanqian/polyglot-faq/pkg/metrics"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	faqSvc   faq.Service
	authSvc  auth.Service
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(faqSvc faq.Service, authSvc auth.Service, recorder *metrics.Recorder, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		faqSvc:   faqSvc,
		authSvc:  authSvc,
		recorder: recorder,
		logger:   logger.With("component", "http.handler"),
	}
}

// ListFAQs returns every entry rendered in the requested language.
func (h *Handler) ListFAQs(c *gin.Context) {
	views, err := h.faqSvc.List(c.Request.Context(), c.Query("lang"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, views)
}

// AvailableLanguages lists the supported language codes and names.
func (h *Handler) AvailableLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": h.faqSvc.Languages()})
}

// GetFAQ returns one entry rendered in the requested language.
func (h *Handler) GetFAQ(c *gin.Context) {
	id, ok := h.faqID(c)
	if !ok {
		return
	}
	view, err := h.faqSvc.Get(c.Request.Context(), id, c.Query("lang"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// FAQTranslations returns the primary content plus every persisted translation.
func (h *Handler) FAQTranslations(c *gin.Context) {
	id, ok := h.faqID(c)
	if !ok {
		return
	}
	view, err := h.faqSvc.Translations(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateFAQ stores a new entry in the primary language.
func (h *Handler) CreateFAQ(c *gin.Context) {
	var req faq.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	view, err := h.faqSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.audit(c, "faq created", view.ID)
	c.JSON(http.StatusCreated, view)
}

// ReplaceFAQ handles PUT and requires both question and answer.
func (h *Handler) ReplaceFAQ(c *gin.Context) {
	id, ok := h.faqID(c)
	if !ok {
		return
	}
	var req faq.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if req.Question == nil || req.Answer == nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "question and answer are required", nil))
		return
	}
	h.update(c, id, req)
}

// PatchFAQ applies a partial update.
func (h *Handler) PatchFAQ(c *gin.Context) {
	id, ok := h.faqID(c)
	if !ok {
		return
	}
	var req faq.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	h.update(c, id, req)
}

func (h *Handler) update(c *gin.Context, id int64, req faq.UpdateRequest) {
	view, err := h.faqSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.audit(c, "faq updated", id)
	c.JSON(http.StatusOK, view)
}

// DeleteFAQ removes an entry.
func (h *Handler) DeleteFAQ(c *gin.Context) {
	id, ok := h.faqID(c)
	if !ok {
		return
	}
	if err := h.faqSvc.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.audit(c, "faq deleted", id)
	c.Status(http.StatusNoContent)
}

// ExportTranslations writes a translation catalog snapshot to object storage.
func (h *Handler) ExportTranslations(c *gin.Context) {
	result, err := h.faqSvc.ExportTranslations(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.audit(c, "translations exported", 0)
	c.JSON(http.StatusCreated, result)
}

// Login issues editor tokens.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Health reports cache and store reachability.
func (h *Handler) Health(c *gin.Context) {
	report := h.faqSvc.Health(c.Request.Context())
	status := http.StatusOK
	if report.Status == faq.HealthUnavailable {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// faqID parses the :id segment. Anything that is not a positive integer
// cannot name an entry, so it is reported as not found.
func (h *Handler) faqID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, NewHTTPError(http.StatusNotFound, apperrors.CodeNotFound, "faq "+raw+" not found", err))
		return 0, false
	}
	return id, true
}

func (h *Handler) audit(c *gin.Context, msg string, id int64) {
	attrs := []any{"request_id", requestID(c)}
	if claims, ok := getClaims(c); ok {
		attrs = append(attrs, "editor", claims.Username)
	}
	if id > 0 {
		attrs = append(attrs, "faq_id", id)
	}
	h.logger.Info(msg, attrs...)
}
