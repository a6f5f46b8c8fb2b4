package model

import "time"

// PushSubscription holds a requester's browser push subscription. It is the
// contact channel the notification workers deliver booking confirmations to.
type PushSubscription struct {
	Endpoint    string    `gorm:"primaryKey"`
	P256DH      string    `gorm:"column:p256dh;not null"`
	Auth        string    `gorm:"not null"`
	RequesterID string    `gorm:"size:36;index;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}
