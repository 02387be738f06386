package assessment

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/CareFusion/internal/risk"
)

type Handler struct {
	svc           *Service
	policy        risk.Policy
	defaultUserID string
}

func NewHandler(svc *Service, policy risk.Policy, defaultUserID string) *Handler {
	return &Handler{svc: svc, policy: policy, defaultUserID: defaultUserID}
}

func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.POST("/assessment", h.CreateAssessment)
	r.POST("/risk/classify", h.Classify)
	r.GET("/history/:userId", h.ListHistory)
	r.GET("/history/:userId/latest", h.LatestAssessment)
}

func (h *Handler) CreateAssessment(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, fmt.Errorf("%w: mentalInput and physicalInput must be strings: %w", ErrValidation, err))
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = h.defaultUserID
	}

	out, err := h.svc.Assess(c.Request.Context(), userID, req.MentalInput, req.PhysicalInput)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type classifyRequest struct {
	OverallRisk   *float64 `json:"overallRisk" binding:"required"`
	MentalScore   float64  `json:"mentalScore"`
	PhysicalScore float64  `json:"physicalScore"`
}

func (h *Handler) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation_failed",
			"message": "overallRisk is required",
		})
		return
	}
	level, route := h.policy.Classify(*req.OverallRisk, req.MentalScore, req.PhysicalScore)
	c.JSON(http.StatusOK, gin.H{
		"level":   level,
		"route":   route,
		"target":  risk.Target(route),
		"display": risk.DisplayFor(level),
	})
}

func (h *Handler) ListHistory(c *gin.Context) {
	items, err := h.svc.History(c.Request.Context(), c.Param("userId"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) LatestAssessment(c *gin.Context) {
	latest, err := h.svc.Latest(c.Request.Context(), c.Param("userId"))
	if err != nil {
		WriteError(c, err)
		return
	}
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "no assessments yet"})
		return
	}
	c.JSON(http.StatusOK, latest)
}

// WriteError maps the error kinds of this package to HTTP responses.
func WriteError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	msg := err.Error()
	switch {
	case errors.Is(err, ErrValidation):
		status, code = http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, ErrConfig):
		status, code = http.StatusServiceUnavailable, "config_error"
	case errors.Is(err, ErrUpstream):
		status, code = http.StatusBadGateway, "upstream_error"
		msg = "The assessment service could not produce a result. Please try again."
	case errors.Is(err, ErrPersistence):
		status, code = http.StatusServiceUnavailable, "persistence_error"
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": code, "message": msg})
}
