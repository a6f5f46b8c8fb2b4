package model

import "time"

// ExamResource represents a bookable exam or piece of equipment. Each resource
// admits exactly one appointment per slot; Active is a soft-delete flag and
// only active resources may be booked.
type ExamResource struct {
	ID                       string    `gorm:"primaryKey;size:36" json:"id"`
	Name                     string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	EstimatedDurationMinutes int       `gorm:"not null" json:"estimated_duration_minutes"`
	Active                   bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt                time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt                time.Time `gorm:"not null" json:"updated_at"`
}
