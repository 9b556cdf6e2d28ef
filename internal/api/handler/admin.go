package handler

import (
	"net/http"
	"strconv"
	"strings"

	"campusreport/backend/internal/analysis"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/report"
	"campusreport/backend/internal/storage"
	"campusreport/backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type reportItem struct {
	models.Report
	Priority    int    `json:"priority"`
	StatusLabel string `json:"status_label"`
}

type attachmentView struct {
	models.Attachment
	URL string `json:"url"`
}

type reportDetail struct {
	*models.Report
	Attachments []attachmentView `json:"attachments"`
	StatusLabel string           `json:"status_label"`
}

// MetaInfo is the pagination block of list responses.
type MetaInfo struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

func reportID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, report.ErrNotFound
	}
	return id, nil
}

func filterFromQuery(c *gin.Context) storage.ReportFilter {
	f := storage.ReportFilter{
		ReportType: models.ReportType(c.Query("type")),
		Search:     strings.TrimSpace(c.Query("q")),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Statuses = append(f.Statuses, models.ReportStatus(s))
			}
		}
	}
	f.CategoryColumn, _ = strconv.Atoi(c.Query("category"))
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))
	return f.Normalized()
}

func (h *Handler) ListReports(c *gin.Context) {
	f := filterFromQuery(c)
	page, err := h.Reports.ListReports(c.Request.Context(), callerFrom(c), f)
	if err != nil {
		h.writeError(c, err, true)
		return
	}

	items := make([]reportItem, 0, len(page.Reports))
	for _, r := range page.Reports {
		items = append(items, reportItem{
			Report:      r,
			Priority:    analysis.GetPriority(r.CategoryColumn),
			StatusLabel: h.text(c, "status."+string(r.Status)),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"reports": items,
		"summary": page.Summary,
		"meta":    MetaInfo{Limit: f.Limit, Offset: f.Offset, Total: page.Total},
	})
}

func (h *Handler) GetReport(c *gin.Context) {
	id, err := reportID(c)
	if err != nil {
		h.writeError(c, err, true)
		return
	}
	r, err := h.Reports.GetReport(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		h.writeError(c, err, true)
		return
	}

	detail := reportDetail{
		Report:      r,
		Attachments: make([]attachmentView, 0, len(r.Attachments)),
		StatusLabel: h.text(c, "status."+string(r.Status)),
	}
	for _, a := range r.Attachments {
		detail.Attachments = append(detail.Attachments, attachmentView{Attachment: a, URL: h.Reports.AttachmentURL(a)})
	}
	c.JSON(http.StatusOK, gin.H{"report": detail})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := reportID(c)
	if err != nil {
		h.writeError(c, err, true)
		return
	}
	var p validation.StatusPayload
	if err := c.ShouldBind(&p); err != nil {
		h.badRequest(c, err, &p)
		return
	}

	r, err := h.Reports.UpdateStatus(c.Request.Context(), callerFrom(c), id, p)
	if err != nil {
		h.writeError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           r.ID,
		"status":       r.Status,
		"status_label": h.text(c, "status."+string(r.Status)),
		"updated_at":   r.UpdatedAt,
	})
}

func (h *Handler) AllowedTransitions(c *gin.Context) {
	id, err := reportID(c)
	if err != nil {
		h.writeError(c, err, true)
		return
	}
	targets, err := h.Reports.AllowedTransitions(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		h.writeError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitions": targets})
}

func (h *Handler) SendFeedback(c *gin.Context) {
	id, err := reportID(c)
	if err != nil {
		h.writeError(c, err, true)
		return
	}
	var p validation.FeedbackPayload
	if err := c.ShouldBind(&p); err != nil {
		h.badRequest(c, err, &p)
		return
	}

	receipt, err := h.Reports.SendFeedback(c.Request.Context(), callerFrom(c), id, p)
	if err != nil {
		h.writeError(c, err, true)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"feedback":      receipt.Feedback,
		"delivery_link": receipt.DeliveryLink,
	})
}

func (h *Handler) ListFeedback(c *gin.Context) {
	id, err := reportID(c)
	if err != nil {
		h.writeError(c, err, true)
		return
	}
	list, err := h.Reports.ListFeedback(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		h.writeError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": list})
}
