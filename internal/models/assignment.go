// internal/models/assignment.go
package models

import (
	"strings"

	"gorm.io/gorm"
)

type AssignmentStatus string

// Assignment lifecycle statuses. "Failed" is terminal and only ever set by
// manual correction through the status endpoint; the engine itself never
// produces it.
const (
	StatusAssigned  AssignmentStatus = "Assigned"
	StatusInTransit AssignmentStatus = "In Transit"
	StatusDelivered AssignmentStatus = "Delivered"
	StatusCancelled AssignmentStatus = "Cancelled"
	StatusFailed    AssignmentStatus = "Failed"
)

// Valid checks if the AssignmentStatus is one of the enumerated values
func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusAssigned, StatusInTransit, StatusDelivered, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status ends the assignment lifecycle.
// Terminal assignments are retained for reporting and never mutated again.
func (s AssignmentStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	switch s {
	case StatusAssigned:
		return next == StatusInTransit || next == StatusCancelled || next == StatusFailed
	case StatusInTransit:
		return next == StatusDelivered || next == StatusCancelled || next == StatusFailed
	default:
		return false
	}
}

// ParseAssignmentStatus normalizes a raw status string to the canonical
// enumeration. The legacy single-l spelling "Canceled" is accepted and
// mapped to "Cancelled".
func ParseAssignmentStatus(raw string) (AssignmentStatus, bool) {
	switch strings.TrimSpace(raw) {
	case "Assigned":
		return StatusAssigned, true
	case "In Transit":
		return StatusInTransit, true
	case "Delivered":
		return StatusDelivered, true
	case "Cancelled", "Canceled":
		return StatusCancelled, true
	case "Failed":
		return StatusFailed, true
	default:
		return "", false
	}
}

// Assignment binds one paid order to one driver and one vehicle.
// Rows are append-only history: terminal assignments are never deleted.
// Driver name, order amount and delivery address are snapshotted at creation
// so reports and exports survive registry deletes and upstream outages.
type Assignment struct {
	gorm.Model
	Reference  string           `json:"reference" gorm:"uniqueIndex"`
	OrderID    string           `json:"order_id" gorm:"index"`
	DriverID   uint             `json:"driver_id" gorm:"index"`
	VehicleID  uint             `json:"vehicle_id" gorm:"index"`
	Driver     Driver           `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	Vehicle    Vehicle          `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	DriverName string           `json:"driver_name"`
	Amount     float64          `json:"amount"`
	Address    string           `json:"address"`
	Status     AssignmentStatus `json:"status" gorm:"index"`
}
