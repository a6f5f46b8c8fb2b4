package model

import "time"

// Product is a stock catalog entry. Plain CRUD, no business rules.
type Product struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Code       string    `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Name       string    `gorm:"size:256;not null" json:"name"`
	Unit       string    `gorm:"size:32" json:"unit"`
	UnitPrice  float64   `json:"unit_price"`
	SupplierID string    `gorm:"size:36;index" json:"supplier_id"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// Supplier is a purchasing contact. Plain CRUD, no business rules.
type Supplier struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:256;not null" json:"name"`
	TaxID     string    `gorm:"size:32" json:"tax_id"`
	Email     string    `gorm:"size:256" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
