package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"asthma-care-server/internal/charts"
	"asthma-care-server/internal/service"
	"asthma-care-server/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves the clinic overview.
type DashboardHandler struct {
	Clinic *service.Clinic
	Logger *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(clinic *service.Clinic, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Clinic: clinic, Logger: logger}
}

// GetDashboard returns KPIs and chart data.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	utils.Success(c, "Dashboard retrieved successfully", h.Clinic.Dashboard(c.Request.Context()))
}

// ControlChart renders the control-level donut.
func (h *DashboardHandler) ControlChart(c *gin.Context) {
	d := h.Clinic.Dashboard(c.Request.Context())
	h.render(c, func() (string, error) { return charts.ControlDonut(d.ControlTally) })
}

// AgeChart renders the age histogram.
func (h *DashboardHandler) AgeChart(c *gin.Context) {
	d := h.Clinic.Dashboard(c.Request.Context())
	h.render(c, func() (string, error) { return charts.AgeHistogram(d.AgeHistogram) })
}

// TrendChart renders visits per month.
func (h *DashboardHandler) TrendChart(c *gin.Context) {
	d := h.Clinic.Dashboard(c.Request.Context())
	h.render(c, func() (string, error) { return charts.MonthlyTrend(d.MonthlyTrend) })
}

func (h *DashboardHandler) render(c *gin.Context, draw func() (string, error)) {
	html, err := draw()
	if err != nil {
		h.Logger.Error("Failed to render chart", zap.Error(err))
		utils.InternalServerError(c, "Failed to render chart: "+err.Error())
		return
	}
	utils.HTML(c, html)
}

// Export downloads both tables as a workbook.
func (h *DashboardHandler) Export(c *gin.Context) {
	data, err := h.Clinic.ExportWorkbook(c.Request.Context())
	if err != nil {
		h.Logger.Error("Export failed", zap.Error(err))
		utils.BadGateway(c, "Failed to read the clinic sheet")
		return
	}
	filename := fmt.Sprintf("asthma_export_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
