package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"landscape_dispatch/internal/apperr"
	"landscape_dispatch/internal/models"
	"landscape_dispatch/internal/services"
)

// AssignmentController exposes the assignment engine over HTTP.
type AssignmentController struct {
	Engine *services.AssignmentEngine
}

func NewAssignmentController(engine *services.AssignmentEngine) *AssignmentController {
	return &AssignmentController{Engine: engine}
}

type createAssignmentInput struct {
	OrderID   string `json:"order_id" binding:"required"`
	DriverID  uint   `json:"driver_id" binding:"required"`
	VehicleID uint   `json:"vehicle_id" binding:"required"`
}

// CreateAssignment binds a paid order to a driver and vehicle.
func (ctl *AssignmentController) CreateAssignment(c *gin.Context) {
	var input createAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment input: " + err.Error()})
		return
	}

	assignment, err := ctl.Engine.Create(c.Request.Context(), input.OrderID, input.DriverID, input.VehicleID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

// ListAssignments returns assignments, optionally filtered by driver,
// vehicle, status and date range query params.
func (ctl *AssignmentController) ListAssignments(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

// GetAssignment fetches one assignment by id.
func (ctl *AssignmentController) GetAssignment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format."})
		return
	}

	assignment, err := ctl.Engine.Get(c.Request.Context(), uint(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// UpdateAssignmentStatus applies one state-machine transition.
func (ctl *AssignmentController) UpdateAssignmentStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format."})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	status, ok := models.ParseAssignmentStatus(input.Status)
	if !ok {
		writeError(c, fmt.Errorf("unknown status %q: %w", input.Status, apperr.Validation))
		return
	}

	assignment, err := ctl.Engine.UpdateStatus(c.Request.Context(), uint(id), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// parseAssignmentFilter reads the shared filter query params used by the
// assignment list, the reports and the CSV export.
func parseAssignmentFilter(c *gin.Context) (services.AssignmentFilter, error) {
	var filter services.AssignmentFilter

	if raw := c.Query("driver_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, fmt.Errorf("driver_id must be numeric: %w", apperr.Validation)
		}
		v := uint(id)
		filter.DriverID = &v
	}
	if raw := c.Query("vehicle_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, fmt.Errorf("vehicle_id must be numeric: %w", apperr.Validation)
		}
		v := uint(id)
		filter.VehicleID = &v
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseAssignmentStatus(raw)
		if !ok {
			return filter, fmt.Errorf("unknown status %q: %w", raw, apperr.Validation)
		}
		filter.Status = &status
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("from must be YYYY-MM-DD: %w", apperr.Validation)
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("to must be YYYY-MM-DD: %w", apperr.Validation)
		}
		// Include the whole end day
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}

	return filter, nil
}
