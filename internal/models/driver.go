// internal/models/driver.go
package models

import (
	"regexp"

	"gorm.io/gorm"
)

type DriverAvailability string

// List of possible driver availability states
const (
	DriverAvailable DriverAvailability = "Available"
	DriverAssigned  DriverAvailability = "Assigned"
	DriverOnLeave   DriverAvailability = "On Leave"
)

// Valid checks if the DriverAvailability is one of the enumerated values
func (a DriverAvailability) Valid() bool {
	switch a {
	case DriverAvailable, DriverAssigned, DriverOnLeave:
		return true
	default:
		return false
	}
}

type Driver struct {
	gorm.Model
	Name          string             `json:"name"`
	Phone         string             `json:"phone"` // 10-digit numeric string
	LicenseNumber string             `json:"license_number"`
	Availability  DriverAvailability `json:"availability" gorm:"default:Available;index"`
}

// rePhone matches the 10-digit phone format required for drivers
var rePhone = regexp.MustCompile(`^\d{10}$`)

// ValidatePhone validates the driver phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
