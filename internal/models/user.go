package models

import "time"

// User represents a registered customer.
type User struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"required"`
	Name        string     `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Email       string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Password    string     `json:"-" gorm:"type:varchar(255);not null" validate:"required"` // bcrypt hash
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AgeOn returns the number of full years between dob and now.
func AgeOn(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}
