package portal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the portal API on api and the legacy bed roster
// path on root.
func RegisterRoutes(api, root gin.IRouter, h *Handler) {
	api.GET("/users/:id", h.GetProfile)
	api.POST("/users", h.SaveProfile)

	api.GET("/appointments", h.ListAppointments)
	api.POST("/appointments", h.BookAppointment)

	api.GET("/medications/:userId", h.ListMedications)
	api.POST("/medications", h.AddMedication)
	api.POST("/medications/:id/taken", h.ToggleTaken)

	api.GET("/beds", h.ListBeds)
	root.GET("/beds", h.ListBeds)
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) SaveProfile(c *gin.Context) {
	var p Profile
	if !bind(c, &p) {
		return
	}
	if err := h.svc.SaveProfile(c.Request.Context(), &p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	items, err := h.svc.ListAppointments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var a Appointment
	if !bind(c, &a) {
		return
	}
	if err := h.svc.BookAppointment(c.Request.Context(), &a); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListMedications(c *gin.Context) {
	items, err := h.svc.ListMedications(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) AddMedication(c *gin.Context) {
	var m Medication
	if !bind(c, &m) {
		return
	}
	if err := h.svc.AddMedication(c.Request.Context(), &m); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) ToggleTaken(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	m, err := h.svc.ToggleTaken(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) ListBeds(c *gin.Context) {
	beds, err := h.svc.ListBeds(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, beds)
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "message": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
