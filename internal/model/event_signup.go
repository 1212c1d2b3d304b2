package model

import "time"

// EventSignup is one RSVP row. Date, time and location are free text copied
// from the event listing.
type EventSignup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventName string    `gorm:"column:eventname;size:255;not null" json:"eventname"`
	Date      string    `gorm:"size:128" json:"date"`
	Time      string    `gorm:"size:128" json:"time"`
	Location  string    `gorm:"size:255" json:"location"`
	UserEmail string    `gorm:"size:255;not null;index" json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
}

func (EventSignup) TableName() string {
	return "events"
}
