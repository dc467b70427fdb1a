package models

import "gorm.io/gorm"

// User is a staff account for the dispatch back office.
type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`
	Role     string `json:"role"` // "admin", "dispatcher"
}
