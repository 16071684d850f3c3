package domain

import "time"

// Quantity tracking modes. Once a product is created its mode determines
// whether pantry stock is counted in discrete units or kilograms.
const (
	QuantityTypeUnit   = "unit"
	QuantityTypeWeight = "weight"
)

// Product is a catalog entry shared by all pantry records.
type Product struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"index" json:"name"`
	Brand        string    `json:"brand"`
	Category     string    `gorm:"index" json:"category"`
	Barcode      string    `gorm:"size:64" json:"barcode"`
	Unit         string    `gorm:"size:64" json:"unit"` // display label, e.g. "1L", "12 pieces"
	QuantityType string    `gorm:"size:16" json:"quantityType"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsWeightTracked reports whether stock of this product is measured in kilograms.
func (p Product) IsWeightTracked() bool {
	return p.QuantityType == QuantityTypeWeight
}
