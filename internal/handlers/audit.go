package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/models"
	"github.com/Sam-D-04/access-control-building/internal/services"
	"github.com/Sam-D-04/access-control-building/pkg/errors"
	"github.com/Sam-D-04/access-control-building/pkg/response"
)

// AuditHandler exposes the access decision trail for review and export.
type AuditHandler struct {
	svc *services.AccessLogService
}

func NewAuditHandler(db *gorm.DB) (*AuditHandler, error) {
	svc, err := services.NewAccessLogService(db)
	if err != nil {
		return nil, err
	}
	return &AuditHandler{svc: svc}, nil
}

// GET /api/access-logs
func (h *AuditHandler) List(c *gin.Context) {
	filters, err := parseLogFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	opts := services.AccessLogListOptions{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 50),
		Filters:  filters,
	}

	logs, total, err := h.svc.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, logs, paginationMeta(opts.Page, opts.PageSize, total))
}

// GET /api/access-logs/export
func (h *AuditHandler) ExportCSV(c *gin.Context) {
	filters, err := parseLogFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	logs, err := h.svc.Export(requestContext(c), filters)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("access-logs-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"id", "access_time", "status", "denial_reason", "card_id", "user_id", "door_id"})
	for _, entry := range logs {
		_ = writer.Write([]string{
			entry.ID,
			entry.AccessTime.UTC().Format(time.RFC3339),
			string(entry.Status),
			entry.DenialReason,
			deref(entry.CardID),
			deref(entry.UserID),
			deref(entry.DoorID),
		})
	}
	writer.Flush()
}

func parseLogFilters(c *gin.Context) (services.AccessLogFilters, error) {
	filters := services.AccessLogFilters{
		CardID: strings.TrimSpace(c.Query("card_id")),
		UserID: strings.TrimSpace(c.Query("user_id")),
		DoorID: strings.TrimSpace(c.Query("door_id")),
	}

	if status := strings.ToLower(strings.TrimSpace(c.Query("status"))); status != "" {
		if status != string(models.AccessGranted) && status != string(models.AccessDenied) {
			return filters, errors.NewBadRequest("status must be granted or denied")
		}
		filters.Status = status
	}

	if since, err := parseTimeQuery(c, "since"); err != nil {
		return filters, err
	} else {
		filters.Since = since
	}
	if until, err := parseTimeQuery(c, "until"); err != nil {
		return filters, err
	} else {
		filters.Until = until
	}

	return filters, nil
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, errors.NewBadRequest(fmt.Sprintf("%s must be an RFC 3339 timestamp", key))
	}
	return &parsed, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
