package models

// GrapeComposition holds one grape variety's share of a wine. Rows are created
// together with their owning wine and replaced wholesale, never edited in place.
type GrapeComposition struct {
	ID           int64   `gorm:"column:id;primaryKey;autoIncrement"`
	WineID       int64   `gorm:"column:wine_id;not null;index"`
	GrapeVariety string  `gorm:"column:grape_variety;size:100;not null"`
	Percentage   float64 `gorm:"column:percentage;not null"`
}
