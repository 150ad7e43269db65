package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vintrack/vintrack-backend/pkg/enums"
)

// Wine is a single collection item. Quantity is only ever written through the
// stock mutation service; children are owned compositionally and cascade on
// delete.
type Wine struct {
	ID            int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string           `gorm:"column:name;size:255;not null"`
	Type          *enums.WineType  `gorm:"column:type;size:100"`
	Producer      *string          `gorm:"column:producer;size:255"`
	Vintage       *int             `gorm:"column:vintage"`
	Country       *string          `gorm:"column:country;size:100"`
	District      *string          `gorm:"column:district;size:100"`
	Subdistrict   *string          `gorm:"column:subdistrict;size:100"`
	PurchasePrice *decimal.Decimal `gorm:"column:purchase_price;type:numeric(12,2)"`
	Quantity      *int             `gorm:"column:quantity"`

	DrinkAfterDate  *time.Time `gorm:"column:drink_after_date;type:date"`
	DrinkBeforeDate *time.Time `gorm:"column:drink_before_date;type:date"`

	GrapeCompositions []GrapeComposition `gorm:"foreignKey:WineID;constraint:OnDelete:CASCADE"`
	InventoryLogs     []InventoryLog     `gorm:"foreignKey:WineID;constraint:OnDelete:CASCADE"`
	TastingNotes      []TastingNote      `gorm:"foreignKey:WineID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CurrentQuantity treats a null quantity as zero bottles.
func (w Wine) CurrentQuantity() int {
	if w.Quantity == nil {
		return 0
	}
	return *w.Quantity
}
