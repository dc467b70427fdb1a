package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"landscape_dispatch/internal/apperr"
	"landscape_dispatch/internal/models"
)

// VehicleController is the vehicle registry over HTTP.
type VehicleController struct {
	DB *gorm.DB
}

func NewVehicleController(db *gorm.DB) *VehicleController {
	return &VehicleController{DB: db}
}

type updateVehicleInput struct {
	Registration *string `json:"registration"`
	Status       *string `json:"status"`
}

// CreateVehicle registers a new vehicle; status defaults to Available.
func (ctl *VehicleController) CreateVehicle(c *gin.Context) {
	var input struct {
		Registration string `json:"registration" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}

	vehicle := models.Vehicle{
		Registration: input.Registration,
		Status:       models.VehicleAvailable,
	}
	if err := ctl.DB.Create(&vehicle).Error; err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			writeError(c, fmt.Errorf("registration %s already exists: %w", input.Registration, apperr.Conflict))
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

// ListVehicles returns the whole registry.
func (ctl *VehicleController) ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := ctl.DB.Find(&vehicles).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

// GetVehicle fetches a single vehicle by id.
func (ctl *VehicleController) GetVehicle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID format."})
		return
	}

	var vehicle models.Vehicle
	if err := ctl.DB.First(&vehicle, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, fmt.Errorf("vehicle %d: %w", id, apperr.NotFound))
		} else {
			writeError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// UpdateVehicle merges the provided fields into the vehicle record.
func (ctl *VehicleController) UpdateVehicle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID format."})
		return
	}

	var vehicle models.Vehicle
	if err := ctl.DB.First(&vehicle, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, fmt.Errorf("vehicle %d: %w", id, apperr.NotFound))
		} else {
			writeError(c, err)
		}
		return
	}

	var input updateVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if input.Registration != nil {
		vehicle.Registration = *input.Registration
	}
	if input.Status != nil {
		status := models.VehicleStatus(*input.Status)
		if !status.Valid() {
			writeError(c, fmt.Errorf("status must be Available or Assigned: %w", apperr.Validation))
			return
		}
		vehicle.Status = status
	}

	if err := ctl.DB.Save(&vehicle).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// DeleteVehicle removes a vehicle from the registry; no cascade to
// historical assignments.
func (ctl *VehicleController) DeleteVehicle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID format."})
		return
	}

	var vehicle models.Vehicle
	if err := ctl.DB.First(&vehicle, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, fmt.Errorf("vehicle %d: %w", id, apperr.NotFound))
		} else {
			writeError(c, err)
		}
		return
	}

	if err := ctl.DB.Delete(&vehicle).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted"})
}
