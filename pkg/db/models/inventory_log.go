package models

import "time"

// InventoryLog is the append-only audit record of a quantity change. Rows are
// never updated or deleted except by cascade when the owning wine is removed.
type InventoryLog struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	WineID         int64     `gorm:"column:wine_id;not null;index"`
	ChangeType     string    `gorm:"column:change_type;size:100;not null"`
	QuantityChange int       `gorm:"column:quantity_change;not null"`
	NewQuantity    int       `gorm:"column:new_quantity;not null"`
	Notes          *string   `gorm:"column:notes"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
