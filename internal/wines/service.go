package wines

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/vintrack/vintrack-backend/pkg/db"
	"github.com/vintrack/vintrack-backend/pkg/db/models"
	"github.com/vintrack/vintrack-backend/pkg/enums"
	pkgerrors "github.com/vintrack/vintrack-backend/pkg/errors"
	"github.com/vintrack/vintrack-backend/pkg/metrics"
	"github.com/vintrack/vintrack-backend/pkg/pagination"
)

// PlaceholderUserID owns tasting notes until accounts exist.
const PlaceholderUserID int64 = 1

const (
	ChangeTypeManualAdjustment = "manual_adjustment"
	ChangeTypeConsume          = "consume"

	consumeNotes = "Bottle consumed"

	compositionTarget    = 100.0
	compositionTolerance = 0.5
)

// Service owns wine inventory semantics: creation, listing, stock mutations
// and the audit trail.
type Service interface {
	CreateWine(ctx context.Context, input CreateWineInput) (*WineRecord, error)
	GetWine(ctx context.Context, id int64) (*WineRecord, error)
	ListWines(ctx context.Context, filters ListFilters) ([]WineRecord, error)
	ListWinesPage(ctx context.Context, input ListPageInput) (*WinePage, error)
	AdjustQuantity(ctx context.Context, input AdjustQuantityInput) (*WineRecord, error)
	Consume(ctx context.Context, input ConsumeInput) (*ConsumeResult, error)
	InventoryHistory(ctx context.Context, wineID int64) ([]InventoryLogRecord, error)
}

type service struct {
	client  *db.Client
	repo    *Repository
	metrics *metrics.APIMetrics
}

func NewService(client *db.Client, repo *Repository, apiMetrics *metrics.APIMetrics) Service {
	return &service{
		client:  client,
		repo:    repo,
		metrics: apiMetrics,
	}
}

// CreateWineInput carries an already-decoded creation request. Dates are
// normalized to UTC midnight by the caller.
type CreateWineInput struct {
	Name             string
	Type             *enums.WineType
	Producer         *string
	Vintage          *int
	Country          *string
	District         *string
	Subdistrict      *string
	PurchasePrice    *float64
	Quantity         *int
	DrinkAfterDate   *time.Time
	DrinkBeforeDate  *time.Time
	GrapeComposition []GrapeShareInput
}

// GrapeShareInput is one variety's share of a wine's blend.
type GrapeShareInput struct {
	GrapeVariety string
	Percentage   float64
}

// AdjustQuantityInput applies a signed delta to a wine's stock.
type AdjustQuantityInput struct {
	WineID         int64
	QuantityChange int
	Notes          *string
}

// ConsumeInput removes a single bottle, optionally recording a tasting note.
type ConsumeInput struct {
	WineID int64
	Rating *int
	Notes  *string
}

func (s *service) CreateWine(ctx context.Context, input CreateWineInput) (*WineRecord, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be blank")
	}
	if err := validateDrinkingWindow(input.DrinkAfterDate, input.DrinkBeforeDate); err != nil {
		return nil, err
	}
	if err := validateComposition(input.GrapeComposition); err != nil {
		return nil, err
	}

	wine := &models.Wine{
		Name:            input.Name,
		Type:            input.Type,
		Producer:        input.Producer,
		Vintage:         input.Vintage,
		Country:         input.Country,
		District:        input.District,
		Subdistrict:     input.Subdistrict,
		Quantity:        input.Quantity,
		DrinkAfterDate:  input.DrinkAfterDate,
		DrinkBeforeDate: input.DrinkBeforeDate,
	}
	if input.PurchasePrice != nil {
		price := decimal.NewFromFloat(*input.PurchasePrice)
		wine.PurchasePrice = &price
	}
	for _, share := range input.GrapeComposition {
		wine.GrapeCompositions = append(wine.GrapeCompositions, models.GrapeComposition{
			GrapeVariety: share.GrapeVariety,
			Percentage:   share.Percentage,
		})
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateWine(ctx, wine)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "wine conflicts with an existing record")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create wine")
	}

	record := toWineRecord(wine)
	return &record, nil
}

func (s *service) GetWine(ctx context.Context, id int64) (*WineRecord, error) {
	wine, err := s.findWine(ctx, id)
	if err != nil {
		return nil, err
	}
	record := toWineRecord(wine)
	return &record, nil
}

func (s *service) ListWines(ctx context.Context, filters ListFilters) ([]WineRecord, error) {
	rows, err := s.repo.ListAll(ctx, filters, DefaultSort())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list wines")
	}
	records := make([]WineRecord, 0, len(rows))
	for i := range rows {
		records = append(records, toWineRecord(&rows[i]))
	}
	return records, nil
}

func (s *service) ListWinesPage(ctx context.Context, input ListPageInput) (*WinePage, error) {
	page := input.Pagination.Normalize()
	rows, total, err := s.repo.List(ctx, input.Filters, input.Sort, page)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list wines")
	}

	items := make([]WineListItem, 0, len(rows))
	for i := range rows {
		items = append(items, toWineListItem(&rows[i]))
	}
	return &WinePage{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: total,
		TotalPages: pagination.TotalPages(total, page.PageSize),
	}, nil
}

func (s *service) AdjustQuantity(ctx context.Context, input AdjustQuantityInput) (*WineRecord, error) {
	var wine *models.Wine
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindForUpdate(ctx, input.WineID)
		if err != nil {
			return notFoundOrInternal(err, input.WineID)
		}

		current := found.CurrentQuantity()
		next := current + input.QuantityChange
		if next < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity change would result in negative stock").
				WithDetails(map[string]any{
					"current_quantity": current,
					"quantity_change":  input.QuantityChange,
				})
		}

		if err := repo.UpdateQuantity(ctx, input.WineID, current, next); err != nil {
			return err
		}
		if err := repo.CreateInventoryLog(ctx, &models.InventoryLog{
			WineID:         input.WineID,
			ChangeType:     ChangeTypeManualAdjustment,
			QuantityChange: input.QuantityChange,
			NewQuantity:    next,
			Notes:          input.Notes,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to record inventory change")
		}

		found.Quantity = &next
		wine = found
		return nil
	})
	s.metrics.IncStockMutation(ChangeTypeManualAdjustment, outcomeLabel(err))
	if err != nil {
		return nil, err
	}

	record := toWineRecord(wine)
	return &record, nil
}

func (s *service) Consume(ctx context.Context, input ConsumeInput) (*ConsumeResult, error) {
	var result *ConsumeResult
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindForUpdate(ctx, input.WineID)
		if err != nil {
			return notFoundOrInternal(err, input.WineID)
		}

		current := found.CurrentQuantity()
		if current <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no bottles remaining to consume").
				WithDetails(map[string]any{
					"current_quantity": current,
				})
		}
		next := current - 1

		if err := repo.UpdateQuantity(ctx, input.WineID, current, next); err != nil {
			return err
		}

		notes := consumeNotes
		log := &models.InventoryLog{
			WineID:         input.WineID,
			ChangeType:     ChangeTypeConsume,
			QuantityChange: -1,
			NewQuantity:    next,
			Notes:          &notes,
		}
		if err := repo.CreateInventoryLog(ctx, log); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to record consumption")
		}

		var noteRecord *TastingNoteRecord
		if hasTastingFeedback(input) {
			note := &models.TastingNote{
				WineID: input.WineID,
				UserID: PlaceholderUserID,
				Rating: input.Rating,
				Notes:  input.Notes,
			}
			if err := repo.CreateTastingNote(ctx, note); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to record tasting note")
			}
			record := toTastingNoteRecord(note)
			noteRecord = &record
		}

		found.Quantity = &next
		result = &ConsumeResult{
			Wine:         toWineRecord(found),
			InventoryLog: toInventoryLogRecord(log),
			TastingNote:  noteRecord,
		}
		return nil
	})
	s.metrics.IncStockMutation(ChangeTypeConsume, outcomeLabel(err))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) InventoryHistory(ctx context.Context, wineID int64) ([]InventoryLogRecord, error) {
	if _, err := s.findWine(ctx, wineID); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListInventoryLogs(ctx, wineID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load inventory history")
	}
	records := make([]InventoryLogRecord, 0, len(logs))
	for i := range logs {
		records = append(records, toInventoryLogRecord(&logs[i]))
	}
	return records, nil
}

func (s *service) findWine(ctx context.Context, id int64) (*models.Wine, error) {
	wine, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, id)
	}
	return wine, nil
}

func notFoundOrInternal(err error, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("wine %d not found", id))
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load wine")
}

// hasTastingFeedback reports whether a consume request actually carries
// something worth recording. Blank notes alone do not make a tasting note.
func hasTastingFeedback(input ConsumeInput) bool {
	if input.Rating != nil {
		return true
	}
	return input.Notes != nil && strings.TrimSpace(*input.Notes) != ""
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// validateDrinkingWindow rejects windows where the drink-after date is not
// strictly before the drink-before date. A single bound is always acceptable.
func validateDrinkingWindow(after, before *time.Time) error {
	if after == nil || before == nil {
		return nil
	}
	if !after.Before(*before) {
		return pkgerrors.New(pkgerrors.CodeValidation, "drink_after_date must be before drink_before_date").
			WithDetails(map[string]any{
				"drink_after_date":  after.Format(dateLayout),
				"drink_before_date": before.Format(dateLayout),
			})
	}
	return nil
}

// validateComposition checks that a non-empty blend sums to 100 within
// tolerance and names each variety at most once, comparing case-insensitively.
func validateComposition(shares []GrapeShareInput) error {
	if len(shares) == 0 {
		return nil
	}

	var violations error
	seen := make(map[string]struct{}, len(shares))
	sum := 0.0
	for _, share := range shares {
		sum += share.Percentage
		if share.Percentage < 0 || share.Percentage > 100 {
			violations = multierr.Append(violations,
				fmt.Errorf("grape variety %q has percentage %.2f outside [0, 100]", share.GrapeVariety, share.Percentage))
		}
		key := strings.ToLower(strings.TrimSpace(share.GrapeVariety))
		if _, ok := seen[key]; ok {
			violations = multierr.Append(violations,
				fmt.Errorf("grape variety %q listed more than once", share.GrapeVariety))
		}
		seen[key] = struct{}{}
	}
	if math.Abs(sum-compositionTarget) > compositionTolerance {
		violations = multierr.Append(violations,
			fmt.Errorf("grape composition sums to %.2f, expected %.1f within %.1f", sum, compositionTarget, compositionTolerance))
	}

	if violations == nil {
		return nil
	}
	details := make([]string, 0)
	for _, v := range multierr.Errors(violations) {
		details = append(details, v.Error())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid grape composition").
		WithDetails(map[string]any{
			"violations": details,
		})
}
