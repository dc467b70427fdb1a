// internal/models/vehicle.go
package models

import "gorm.io/gorm"

type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "Available"
	VehicleAssigned  VehicleStatus = "Assigned"
)

// Valid checks if the VehicleStatus is one of the enumerated values
func (s VehicleStatus) Valid() bool {
	return s == VehicleAvailable || s == VehicleAssigned
}

type Vehicle struct {
	gorm.Model
	Registration string        `json:"registration" gorm:"unique"`
	Status       VehicleStatus `json:"status" gorm:"default:Available;index"`
}
