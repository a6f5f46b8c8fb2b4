package model

import "time"

// AppointmentStatus enumerates the lifecycle states of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a booked exam slot. EndTime is derived from the resource's
// estimated duration and never stored.
type Appointment struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	RequesterID string            `gorm:"size:36;index;not null" json:"requester_id"`
	ResourceID  string            `gorm:"size:36;index;not null" json:"resource_id"`
	StartTime   time.Time         `gorm:"not null;index" json:"start_time"`
	PickupTime  *time.Time        `json:"pickup_time"`
	Status      AppointmentStatus `gorm:"size:20;not null;default:'SCHEDULED'" json:"status"`
	Notes       string            `gorm:"size:512" json:"notes"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}
