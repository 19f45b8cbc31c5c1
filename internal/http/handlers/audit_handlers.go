package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// AuditHandlers handles audit ledger HTTP requests. Read-only; the ledger is
// written through the recorder, never through this surface.
type AuditHandlers struct {
	auditSvc domain.AuditService
}

// NewAuditHandlers creates new audit handlers
func NewAuditHandlers(auditSvc domain.AuditService) *AuditHandlers {
	return &AuditHandlers{auditSvc: auditSvc}
}

// auditDateLayout is the format of the from/to query parameters. Bounds are
// interpreted as whole days: from starts at midnight, to ends just before the
// next one.
const auditDateLayout = "2006-01-02"

// Query returns one page of the filtered, sorted ledger
func (h *AuditHandlers) Query(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.auditSvc.Query(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Audit query failed"})
		return
	}

	records := make([]gin.H, 0, len(page.Records))
	for i := range page.Records {
		records = append(records, auditRecordPayload(&page.Records[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"records":     records,
			"total":       page.Total,
			"page":        page.Page,
			"page_size":   page.PageSize,
			"total_pages": page.TotalPages,
		},
	})
}

// Export streams the entire filtered ledger as a CSV download
func (h *AuditHandlers) Export(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.auditSvc.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Audit export failed"})
		return
	}

	filename := "audit-" + time.Now().UTC().Format(auditDateLayout) + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", out)
}

func parseAuditFilter(c *gin.Context) (domain.AuditFilter, error) {
	filter := domain.AuditFilter{
		Search: c.Query("search"),
		Action: c.Query("action"),
		SortBy: c.DefaultQuery("sort_by", "timestamp"),
	}

	if order := c.Query("order"); order == "desc" {
		filter.SortDesc = true
	}

	if page := c.Query("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return filter, errInvalidParam("page")
		}
		filter.Page = n
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(auditDateLayout, from)
		if err != nil {
			return filter, errInvalidParam("from")
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(auditDateLayout, to)
		if err != nil {
			return filter, errInvalidParam("to")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}

	return filter, nil
}

func auditRecordPayload(record *domain.AuditRecord) gin.H {
	return gin.H{
		"id":        record.ID,
		"user_id":   record.ActorRef(),
		"action":    record.Action,
		"entity_id": record.EntityID,
		"details":   record.Detail,
		"timestamp": record.CreatedAt.UTC().Format(domain.AuditTimeLayout),
	}
}

func errInvalidParam(name string) error {
	return fmt.Errorf("invalid %s parameter", name)
}
