package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adscenter/reports/internal/apperror"
	"github.com/adscenter/reports/internal/domain/models"
	"github.com/adscenter/reports/internal/service/export"
	"github.com/adscenter/reports/internal/service/reports"
)

// ReportHandler handles the report CRUD and export HTTP endpoints.
type ReportHandler struct {
	svc       *reports.Service
	exportSvc *export.Service
	logger    *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc *reports.Service, exportSvc *export.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, exportSvc: exportSvc, logger: logger}
}

// Create persists a new daily report.
func (h *ReportHandler) Create(c *gin.Context) {
	var input models.InsertReport
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid report payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	report, err := h.svc.Save(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// List returns all reports, newest date first.
func (h *ReportHandler) List(c *gin.Context) {
	all, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

// Get returns one report by its storage id.
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetByDate returns the report for a calendar date.
func (h *ReportHandler) GetByDate(c *gin.Context) {
	report, err := h.svc.GetByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		if apperror.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found for this date"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Update applies a sparse patch. `?recompute=true` additionally recomputes the
// totals from the patched line items.
func (h *ReportHandler) Update(c *gin.Context) {
	var patch models.ReportPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn("invalid patch payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	opts := reports.UpdateOptions{RecomputeTotals: c.Query("recompute") == "true"}
	if err := h.svc.Update(c.Request.Context(), c.Param("id"), patch, opts); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete permanently removes a report.
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Export streams all reports as a CSV or JSON download.
func (h *ReportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	var (
		data        []byte
		err         error
		contentType string
		extension   string
	)
	switch format {
	case "csv":
		data, err = h.exportSvc.RenderCSV(c.Request.Context())
		contentType = "text/csv"
		extension = "csv"
	case "json":
		data, err = h.exportSvc.RenderJSON(c.Request.Context())
		contentType = "application/json"
		extension = "json"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or json"})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("reports-%s.%s", time.Now().Format("2006-01-02"), extension)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// respondError maps application errors onto HTTP responses. Unknown errors are
// logged and reported as a bare 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if appErr, ok := apperror.As(err); ok {
		body := gin.H{"error": appErr.Message, "code": appErr.Code}
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("code", appErr.Code), zap.Error(err))
		}
		c.JSON(appErr.HTTPStatus, body)
		return
	}

	logger.Error("request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
