package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"landscape_dispatch/internal/apperr"
	"landscape_dispatch/internal/models"
)

// DriverController is the driver registry over HTTP.
type DriverController struct {
	DB *gorm.DB
}

func NewDriverController(db *gorm.DB) *DriverController {
	return &DriverController{DB: db}
}

type createDriverInput struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	LicenseNumber string `json:"license_number" binding:"required"`
}

// updateDriverInput uses pointers so absent fields are left untouched.
type updateDriverInput struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	LicenseNumber *string `json:"license_number"`
	Availability  *string `json:"availability"`
}

// CreateDriver registers a new driver; availability defaults to Available.
func (ctl *DriverController) CreateDriver(c *gin.Context) {
	var input createDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver input: " + err.Error()})
		return
	}
	if !models.ValidatePhone(input.Phone) {
		writeError(c, fmt.Errorf("phone must be a 10-digit number: %w", apperr.Validation))
		return
	}

	driver := models.Driver{
		Name:          input.Name,
		Phone:         input.Phone,
		LicenseNumber: input.LicenseNumber,
		Availability:  models.DriverAvailable,
	}
	if err := ctl.DB.Create(&driver).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"driver": driver})
}

// ListDrivers returns the whole registry.
func (ctl *DriverController) ListDrivers(c *gin.Context) {
	var drivers []models.Driver
	if err := ctl.DB.Find(&drivers).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

// GetDriver fetches a single driver by id.
func (ctl *DriverController) GetDriver(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var driver models.Driver
	if err := ctl.DB.First(&driver, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, fmt.Errorf("driver %d: %w", id, apperr.NotFound))
		} else {
			writeError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

// UpdateDriver merges the provided fields into the driver record.
func (ctl *DriverController) UpdateDriver(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var driver models.Driver
	if err := ctl.DB.First(&driver, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, fmt.Errorf("driver %d: %w", id, apperr.NotFound))
		} else {
			writeError(c, err)
		}
		return
	}

	var input updateDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if input.Name != nil {
		driver.Name = *input.Name
	}
	if input.Phone != nil {
		if !models.ValidatePhone(*input.Phone) {
			writeError(c, fmt.Errorf("phone must be a 10-digit number: %w", apperr.Validation))
			return
		}
		driver.Phone = *input.Phone
	}
	if input.LicenseNumber != nil {
		driver.LicenseNumber = *input.LicenseNumber
	}
	if input.Availability != nil {
		availability := models.DriverAvailability(*input.Availability)
		if !availability.Valid() {
			writeError(c, fmt.Errorf("availability must be Available, Assigned or On Leave: %w", apperr.Validation))
			return
		}
		driver.Availability = availability
	}

	if err := ctl.DB.Save(&driver).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

// DeleteDriver removes a driver from the registry. Historical assignments
// keep the dangling driver id; reports fall back to the snapshotted name.
func (ctl *DriverController) DeleteDriver(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var driver models.Driver
	if err := ctl.DB.First(&driver, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, fmt.Errorf("driver %d: %w", id, apperr.NotFound))
		} else {
			writeError(c, err)
		}
		return
	}

	if err := ctl.DB.Delete(&driver).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted"})
}
