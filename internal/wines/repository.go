package wines

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vintrack/vintrack-backend/pkg/db/models"
	"github.com/vintrack/vintrack-backend/pkg/enums"
	pkgerrors "github.com/vintrack/vintrack-backend/pkg/errors"
	"github.com/vintrack/vintrack-backend/pkg/pagination"
)

// approachingDeadlineDays is the look-ahead used by the approaching_deadline
// drinking window filter.
const approachingDeadlineDays = 30

// Repository wires together all wine-related persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the wine with its grape composition batch-preloaded.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Wine, error) {
	var wine models.Wine
	err := r.db.WithContext(ctx).
		Preload("GrapeCompositions").
		First(&wine, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &wine, nil
}

// FindForUpdate loads the bare wine row for a read-modify-write cycle. On
// postgres the row is locked with FOR UPDATE; every dialect additionally
// relies on the guarded quantity update below.
func (r *Repository) FindForUpdate(ctx context.Context, id int64) (*models.Wine, error) {
	qb := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		qb = qb.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var wine models.Wine
	if err := qb.First(&wine, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &wine, nil
}

// CreateWine inserts the wine and its composition rows in one statement batch.
func (r *Repository) CreateWine(ctx context.Context, wine *models.Wine) error {
	return r.db.WithContext(ctx).Create(wine).Error
}

// UpdateQuantity persists the new quantity only when the stored value still
// matches the previously observed one, so racing adjustments cannot both
// commit from the same stale read.
func (r *Repository) UpdateQuantity(ctx context.Context, id int64, previous, next int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Wine{}).
		Where("id = ? AND COALESCE(quantity, 0) = ?", id, previous).
		Update("quantity", next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "wine quantity changed concurrently").
			WithDetails(map[string]any{"wine_id": id})
	}
	return nil
}

// CreateInventoryLog appends one audit row.
func (r *Repository) CreateInventoryLog(ctx context.Context, log *models.InventoryLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// CreateTastingNote inserts a tasting note row.
func (r *Repository) CreateTastingNote(ctx context.Context, note *models.TastingNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// ListInventoryLogs returns the audit trail for a wine, newest first.
func (r *Repository) ListInventoryLogs(ctx context.Context, wineID int64) ([]models.InventoryLog, error) {
	var rows []models.InventoryLog
	err := r.db.WithContext(ctx).
		Where("wine_id = ?", wineID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).
		Error
	return rows, err
}

// List executes the filtered, sorted, paginated wine query together with a
// count over the same predicate.
func (r *Repository) List(ctx context.Context, filters ListFilters, sort SortSpec, page pagination.Params) ([]models.Wine, int64, error) {
	if !sort.Field.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sort field %q", sort.Field))
	}
	if !sort.Order.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sort order %q", sort.Order))
	}

	today := dateOnly(time.Now().UTC())

	var total int64
	countQuery := applyFilters(r.db.WithContext(ctx).Model(&models.Wine{}), filters, today)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var rows []models.Wine
	listQuery := applyFilters(r.db.WithContext(ctx).Model(&models.Wine{}), filters, today).
		Preload("GrapeCompositions").
		Order(orderClause(sort)).
		Offset(page.Offset()).
		Limit(page.PageSize)
	if err := listQuery.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// ListAll executes the filtered query without pagination.
func (r *Repository) ListAll(ctx context.Context, filters ListFilters, sort SortSpec) ([]models.Wine, error) {
	if !sort.Field.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sort field %q", sort.Field))
	}
	if !sort.Order.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sort order %q", sort.Order))
	}

	today := dateOnly(time.Now().UTC())
	var rows []models.Wine
	err := applyFilters(r.db.WithContext(ctx).Model(&models.Wine{}), filters, today).
		Preload("GrapeCompositions").
		Order(orderClause(sort)).
		Find(&rows).
		Error
	return rows, err
}

// applyFilters adds every supplied predicate to the query. Both the list and
// the count paths go through here so they always see the same row set.
func applyFilters(qb *gorm.DB, filters ListFilters, today time.Time) *gorm.DB {
	if search := strings.TrimSpace(filters.SearchTerm); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(producer) LIKE ?)", pattern, pattern)
	}
	if filters.WineType != nil {
		qb = qb.Where("type = ?", *filters.WineType)
	}
	if filters.Vintage != nil {
		qb = qb.Where("vintage = ?", *filters.Vintage)
	}
	if filters.Country != nil {
		qb = qb.Where("country = ?", *filters.Country)
	}
	if filters.District != nil {
		qb = qb.Where("district = ?", *filters.District)
	}
	if filters.Subdistrict != nil {
		qb = qb.Where("subdistrict = ?", *filters.Subdistrict)
	}

	if filters.WindowStatus != nil {
		switch *filters.WindowStatus {
		case enums.DrinkingWindowReadyToDrink:
			qb = qb.Where("drink_after_date IS NOT NULL").
				Where("drink_before_date IS NOT NULL").
				Where("drink_after_date <= ?", today).
				Where("drink_before_date >= ?", today)
		case enums.DrinkingWindowApproachingDeadline:
			deadline := today.AddDate(0, 0, approachingDeadlineDays)
			qb = qb.Where("drink_before_date IS NOT NULL").
				Where("drink_before_date <= ?", deadline).
				Where("drink_before_date >= ?", today)
		case enums.DrinkingWindowNotReady:
			qb = qb.Where("drink_after_date IS NOT NULL").
				Where("drink_after_date > ?", today)
		}
		// Empty bottles never participate in drinking window alerts.
		qb = qb.Where("quantity > 0")
	}

	return qb
}

// orderClause builds the ORDER BY from whitelisted values only. A secondary
// id ordering keeps pagination stable across ties.
func orderClause(sort SortSpec) string {
	direction := "ASC"
	if sort.Order == enums.SortOrderDesc {
		direction = "DESC"
	}
	primary := fmt.Sprintf("%s %s", sort.Field.Column(), direction)
	if sort.Field == enums.WineSortFieldID {
		return primary
	}
	return fmt.Sprintf("%s, id %s", primary, direction)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
