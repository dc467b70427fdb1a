package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"landscape_dispatch/internal/services"
)

// ReportController serves the dashboard aggregations and the CSV export.
// It reads assignments through the engine and hands them to the pure
// aggregator, so every endpoint sees the same numbers for the same filter.
type ReportController struct {
	Engine *services.AssignmentEngine
}

func NewReportController(engine *services.AssignmentEngine) *ReportController {
	return &ReportController{Engine: engine}
}

func (ctl *ReportController) buildReport(c *gin.Context) (*services.Report, bool) {
	filter, err := parseAssignmentFilter(c)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	assignments, err := ctl.Engine.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	// List already applied the filter; Aggregate re-checking it is a no-op.
	report := services.Aggregate(assignments, filter)
	return &report, true
}

// Timeline returns the monthly buckets.
func (ctl *ReportController) Timeline(c *gin.Context) {
	report, ok := ctl.buildReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report.Timeline})
}

// ByDriver returns per-driver totals, busiest first, capped for the
// dashboard (default 8, override with ?limit=N, 0 for all).
func (ctl *ReportController) ByDriver(c *gin.Context) {
	report, ok := ctl.buildReport(c)
	if !ok {
		return
	}

	limit := 8
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	rows := report.ByDriver
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ByStatus returns the status proportions for the pie chart.
func (ctl *ReportController) ByStatus(c *gin.Context) {
	report, ok := ctl.buildReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report.ByStatus})
}

// ExportCSV streams the filtered assignments as a CSV download.
func (ctl *ReportController) ExportCSV(c *gin.Context) {
	filter, err := parseAssignmentFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}
	assignments, err := ctl.Engine.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="assignments.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Order ID", "Driver", "Vehicle", "Status", "Date", "Amount", "Address"})
	for _, a := range assignments {
		driverName := a.Driver.Name
		if driverName == "" {
			driverName = a.DriverName
		}
		_ = w.Write([]string{
			a.OrderID,
			driverName,
			a.Vehicle.Registration,
			string(a.Status),
			a.CreatedAt.Format("2006-01-02"),
			fmt.Sprintf("%.2f", a.Amount),
			a.Address,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logrus.WithError(err).Error("failed to stream CSV export")
	}
}
