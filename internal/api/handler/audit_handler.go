package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

// AuditHandler exposes the gateway's own audit trail to administrators.
type AuditHandler struct {
	recorder ports.AuditRecorder
}

func NewAuditHandler(recorder ports.AuditRecorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

type auditResponse struct {
	Entries []domain.AuditEntry `json:"entries"`
}

// Recent returns the newest audit entries, most recent first.
//
// @Summary      Recent audit entries
// @Tags         audit
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of entries (default 100)"
// @Success      200    {object}  auditResponse
// @Router       /api/audit [get]
func (h *AuditHandler) Recent(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	entries, err := h.recorder.Recent(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return c.JSON(http.StatusOK, auditResponse{Entries: entries})
}
