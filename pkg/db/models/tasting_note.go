package models

import "time"

// TastingNote captures an optional rating and text recorded when a bottle is
// consumed.
type TastingNote struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	WineID    int64     `gorm:"column:wine_id;not null;index"`
	UserID    int64     `gorm:"column:user_id;not null"`
	Rating    *int      `gorm:"column:rating"`
	Notes     *string   `gorm:"column:notes;size:1000"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
