package model

import "time"

// User is a registered community member. Email is always stored lowercased;
// uniqueness is enforced by the users_email_lower_idx index.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     string    `gorm:"size:100;not null" json:"last_name"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	Age          int       `gorm:"not null" json:"age"`
	SchoolOrWork string    `gorm:"size:255;not null" json:"school_or_work"`
	Location     string    `gorm:"size:255;not null" json:"location"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	PasswordSalt string    `gorm:"size:64;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
