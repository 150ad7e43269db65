package wines

import (
	"time"

	"github.com/vintrack/vintrack-backend/pkg/db/models"
)

const dateLayout = "2006-01-02"

// WineRecord is the full wine payload returned by detail and mutation
// endpoints.
type WineRecord struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	Type             *string            `json:"type"`
	Producer         *string            `json:"producer"`
	Vintage          *int               `json:"vintage"`
	Country          *string            `json:"country"`
	District         *string            `json:"district"`
	Subdistrict      *string            `json:"subdistrict"`
	PurchasePrice    *float64           `json:"purchase_price"`
	Quantity         *int               `json:"quantity"`
	DrinkAfterDate   *string            `json:"drink_after_date"`
	DrinkBeforeDate  *string            `json:"drink_before_date"`
	GrapeComposition []GrapeShareRecord `json:"grape_composition"`
}

// GrapeShareRecord is one grape variety's share in responses.
type GrapeShareRecord struct {
	ID           int64   `json:"id"`
	GrapeVariety string  `json:"grape_variety"`
	Percentage   float64 `json:"percentage"`
}

// WineListItem is the reduced payload used by the paginated listing. It keeps
// quantity and composition but drops the region detail and purchase price.
type WineListItem struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	Type             *string            `json:"type"`
	Producer         *string            `json:"producer"`
	Vintage          *int               `json:"vintage"`
	Country          *string            `json:"country"`
	Quantity         *int               `json:"quantity"`
	DrinkAfterDate   *string            `json:"drink_after_date"`
	DrinkBeforeDate  *string            `json:"drink_before_date"`
	GrapeComposition []GrapeShareRecord `json:"grape_composition"`
}

// WinePage is the paginated listing envelope.
type WinePage struct {
	Items      []WineListItem `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

// InventoryLogRecord is one audit trail entry in responses.
type InventoryLogRecord struct {
	ID             int64   `json:"id"`
	WineID         int64   `json:"wine_id"`
	ChangeType     string  `json:"change_type"`
	QuantityChange int     `json:"quantity_change"`
	NewQuantity    int     `json:"new_quantity"`
	Notes          *string `json:"notes"`
	CreatedAt      string  `json:"created_at"`
}

// TastingNoteRecord is the tasting note payload returned on consumption.
type TastingNoteRecord struct {
	ID        int64   `json:"id"`
	WineID    int64   `json:"wine_id"`
	UserID    int64   `json:"user_id"`
	Rating    *int    `json:"rating"`
	Notes     *string `json:"notes"`
	CreatedAt string  `json:"created_at"`
}

// ConsumeResult bundles everything a consumption event produced.
type ConsumeResult struct {
	Wine         WineRecord         `json:"wine"`
	InventoryLog InventoryLogRecord `json:"inventory_log"`
	TastingNote  *TastingNoteRecord `json:"tasting_note"`
}

func toWineRecord(wine *models.Wine) WineRecord {
	return WineRecord{
		ID:               wine.ID,
		Name:             wine.Name,
		Type:             wineTypeString(wine),
		Producer:         wine.Producer,
		Vintage:          wine.Vintage,
		Country:          wine.Country,
		District:         wine.District,
		Subdistrict:      wine.Subdistrict,
		PurchasePrice:    priceFloat(wine),
		Quantity:         wine.Quantity,
		DrinkAfterDate:   formatDate(wine.DrinkAfterDate),
		DrinkBeforeDate:  formatDate(wine.DrinkBeforeDate),
		GrapeComposition: toGrapeShares(wine.GrapeCompositions),
	}
}

func toWineListItem(wine *models.Wine) WineListItem {
	return WineListItem{
		ID:               wine.ID,
		Name:             wine.Name,
		Type:             wineTypeString(wine),
		Producer:         wine.Producer,
		Vintage:          wine.Vintage,
		Country:          wine.Country,
		Quantity:         wine.Quantity,
		DrinkAfterDate:   formatDate(wine.DrinkAfterDate),
		DrinkBeforeDate:  formatDate(wine.DrinkBeforeDate),
		GrapeComposition: toGrapeShares(wine.GrapeCompositions),
	}
}

func toGrapeShares(rows []models.GrapeComposition) []GrapeShareRecord {
	shares := make([]GrapeShareRecord, 0, len(rows))
	for _, row := range rows {
		shares = append(shares, GrapeShareRecord{
			ID:           row.ID,
			GrapeVariety: row.GrapeVariety,
			Percentage:   row.Percentage,
		})
	}
	return shares
}

func toInventoryLogRecord(log *models.InventoryLog) InventoryLogRecord {
	return InventoryLogRecord{
		ID:             log.ID,
		WineID:         log.WineID,
		ChangeType:     log.ChangeType,
		QuantityChange: log.QuantityChange,
		NewQuantity:    log.NewQuantity,
		Notes:          log.Notes,
		CreatedAt:      log.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTastingNoteRecord(note *models.TastingNote) TastingNoteRecord {
	return TastingNoteRecord{
		ID:        note.ID,
		WineID:    note.WineID,
		UserID:    note.UserID,
		Rating:    note.Rating,
		Notes:     note.Notes,
		CreatedAt: note.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func wineTypeString(wine *models.Wine) *string {
	if wine.Type == nil {
		return nil
	}
	v := wine.Type.String()
	return &v
}

func priceFloat(wine *models.Wine) *float64 {
	if wine.PurchasePrice == nil {
		return nil
	}
	v := wine.PurchasePrice.InexactFloat64()
	return &v
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}
