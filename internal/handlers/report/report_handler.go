// internal/handlers/report/report_handler.go
package report

import (
	"net/http"
	"time"

	"sparkhub-service/internal/domain/audit"
	"sparkhub-service/internal/pkg/response"
	auditsvc "sparkhub-service/internal/service/audit"
	reportsvc "sparkhub-service/internal/service/report"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *reportsvc.ReportService
	recorder      *auditsvc.Recorder
}

func NewReportHandler(reportService *reportsvc.ReportService, recorder *auditsvc.Recorder) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		recorder:      recorder,
	}
}

// DownloadActivityReport streams the activity/financial log as an xlsx file
func (h *ReportHandler) DownloadActivityReport(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		response.ValidationError(c, "invalid date range", err)
		return
	}

	data, name, err := h.reportService.BuildActivityReport(c.Request.Context(), from, to)
	if err != nil {
		response.FromError(c, "failed to build report", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ListAuditEvents retrieves audit events for the review screen
func (h *ReportHandler) ListAuditEvents(c *gin.Context) {
	var filters audit.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	events, err := h.recorder.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list audit events", err)
		return
	}

	response.Success(c, http.StatusOK, "audit events retrieved", events)
}

func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	from, err := time.Parse(layout, c.DefaultQuery("from", time.Now().AddDate(0, 0, -7).Format(layout)))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(layout, c.DefaultQuery("to", time.Now().AddDate(0, 0, 1).Format(layout)))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
