package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vintrack/vintrack-backend/api/responses"
	"github.com/vintrack/vintrack-backend/api/validators"
	winesvc "github.com/vintrack/vintrack-backend/internal/wines"
	"github.com/vintrack/vintrack-backend/pkg/enums"
	pkgerrors "github.com/vintrack/vintrack-backend/pkg/errors"
	"github.com/vintrack/vintrack-backend/pkg/logger"
)

// CreateWine handles POST /api/wines.
func CreateWine(svc winesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createWineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wine, err := svc.CreateWine(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, wine)
	}
}

// GetWine handles GET /api/wines/{id}.
func GetWine(svc winesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := wineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wine, err := svc.GetWine(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, wine)
	}
}

// AdjustQuantity handles PATCH /api/wines/{id}/quantity.
func AdjustQuantity(svc winesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := wineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithWineID(ctx, id)
		}

		wine, err := svc.AdjustQuantity(ctx, winesvc.AdjustQuantityInput{
			WineID:         id,
			QuantityChange: *payload.QuantityChange,
			Notes:          payload.Notes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, wine)
	}
}

// ConsumeWine handles POST /api/wines/{id}/consume. The body is optional.
func ConsumeWine(svc winesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := wineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload consumeRequest
		if err := decodeOptionalBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithWineID(ctx, id)
		}

		result, err := svc.Consume(ctx, winesvc.ConsumeInput{
			WineID: id,
			Rating: payload.Rating,
			Notes:  payload.Notes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// InventoryHistory handles GET /api/wines/{id}/inventory-log.
func InventoryHistory(svc winesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := wineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logs, err := svc.InventoryHistory(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, logs)
	}
}

type createWineRequest struct {
	Name             string              `json:"name" validate:"required,max=255"`
	Type             *string             `json:"type,omitempty"`
	Producer         *string             `json:"producer,omitempty" validate:"omitempty,max=255"`
	Vintage          *int                `json:"vintage,omitempty" validate:"omitempty,gte=1800,lte=2100"`
	Country          *string             `json:"country,omitempty" validate:"omitempty,max=100"`
	District         *string             `json:"district,omitempty" validate:"omitempty,max=100"`
	Subdistrict      *string             `json:"subdistrict,omitempty" validate:"omitempty,max=100"`
	PurchasePrice    *float64            `json:"purchase_price,omitempty" validate:"omitempty,gte=0"`
	Quantity         *int                `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	DrinkAfterDate   *string             `json:"drink_after_date,omitempty"`
	DrinkBeforeDate  *string             `json:"drink_before_date,omitempty"`
	GrapeComposition []grapeShareRequest `json:"grape_composition,omitempty" validate:"omitempty,dive"`
}

type grapeShareRequest struct {
	GrapeVariety string  `json:"grape_variety" validate:"required,max=100"`
	Percentage   float64 `json:"percentage" validate:"gte=0,lte=100"`
}

type adjustQuantityRequest struct {
	QuantityChange *int    `json:"quantity_change" validate:"required"`
	Notes          *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type consumeRequest struct {
	Rating *int    `json:"rating,omitempty" validate:"omitempty,gte=1,lte=10"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (req createWineRequest) toCreateInput() (winesvc.CreateWineInput, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return winesvc.CreateWineInput{}, pkgerrors.New(pkgerrors.CodeValidation, "name must not be blank")
	}

	input := winesvc.CreateWineInput{
		Name:          name,
		Producer:      req.Producer,
		Vintage:       req.Vintage,
		Country:       req.Country,
		District:      req.District,
		Subdistrict:   req.Subdistrict,
		PurchasePrice: req.PurchasePrice,
		Quantity:      req.Quantity,
	}

	if req.Type != nil {
		wineType, err := enums.ParseWineType(strings.TrimSpace(*req.Type))
		if err != nil {
			return winesvc.CreateWineInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wine type")
		}
		input.Type = &wineType
	}

	var err error
	if input.DrinkAfterDate, err = parseOptionalDate("drink_after_date", req.DrinkAfterDate); err != nil {
		return winesvc.CreateWineInput{}, err
	}
	if input.DrinkBeforeDate, err = parseOptionalDate("drink_before_date", req.DrinkBeforeDate); err != nil {
		return winesvc.CreateWineInput{}, err
	}

	for _, share := range req.GrapeComposition {
		input.GrapeComposition = append(input.GrapeComposition, winesvc.GrapeShareInput{
			GrapeVariety: strings.TrimSpace(share.GrapeVariety),
			Percentage:   share.Percentage,
		})
	}

	return input, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := validators.ParseDate(field, strings.TrimSpace(*value))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func wineIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "wine id must be a positive integer").
			WithDetails(map[string]any{"id": raw})
	}
	return id, nil
}

// decodeOptionalBody behaves like validators.DecodeJSONBody but treats an
// absent or empty body as an empty payload.
func decodeOptionalBody(r *http.Request, dest any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := validators.DecodeJSONBody(r, dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
