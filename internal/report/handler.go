package report

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/CareFusion/internal/assessment"
)

type HistorySource interface {
	History(ctx context.Context, userID string) ([]assessment.Result, error)
}

type Handler struct {
	history HistorySource
	now     func() time.Time
}

func NewHandler(history HistorySource) *Handler {
	return &Handler{history: history, now: time.Now}
}

func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.GET("/history/:userId/report.pdf", h.Download)
}

func (h *Handler) Download(c *gin.Context) {
	userID := c.Param("userId")
	items, err := h.history.History(c.Request.Context(), userID)
	if err != nil {
		assessment.WriteError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := Render(&buf, userID, items, h.now()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report_failed"})
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": fmt.Sprintf("carefusion-%s.pdf", userID),
	}))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
