package controllers

import (
	"net/http"
	"strconv"

	"github.com/vintrack/vintrack-backend/api/responses"
	"github.com/vintrack/vintrack-backend/api/validators"
	winesvc "github.com/vintrack/vintrack-backend/internal/wines"
	"github.com/vintrack/vintrack-backend/pkg/enums"
	pkgerrors "github.com/vintrack/vintrack-backend/pkg/errors"
	"github.com/vintrack/vintrack-backend/pkg/logger"
	"github.com/vintrack/vintrack-backend/pkg/pagination"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// ListWines handles GET /api/wines, the unpaginated filtered listing.
func ListWines(svc winesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wines, err := svc.ListWines(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, wines)
	}
}

// ListWinesPage handles GET /api/wines/page with sorting and pagination on
// top of the shared filters.
func ListWinesPage(svc winesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sort, err := parseSortSpec(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "page_size", defaultPageSize, 1, maxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListWinesPage(r.Context(), winesvc.ListPageInput{
			Filters:    filters,
			Sort:       sort,
			Pagination: pagination.Params{Page: page, PageSize: pageSize},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseListFilters(r *http.Request) (winesvc.ListFilters, error) {
	filters := winesvc.ListFilters{
		SearchTerm: validators.QueryString(r, "search_term"),
	}

	if raw := validators.QueryString(r, "wine_type"); raw != "" {
		wineType, err := enums.ParseWineType(raw)
		if err != nil {
			return winesvc.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wine_type filter")
		}
		filters.WineType = &wineType
	}

	if raw := validators.QueryString(r, "vintage"); raw != "" {
		vintage, err := strconv.Atoi(raw)
		if err != nil {
			return winesvc.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "vintage filter must be numeric").
				WithDetails(map[string]any{"vintage": raw})
		}
		filters.Vintage = &vintage
	}

	if raw := validators.QueryString(r, "country"); raw != "" {
		filters.Country = &raw
	}
	if raw := validators.QueryString(r, "district"); raw != "" {
		filters.District = &raw
	}
	if raw := validators.QueryString(r, "subdistrict"); raw != "" {
		filters.Subdistrict = &raw
	}

	if raw := validators.QueryString(r, "drinking_window_status"); raw != "" {
		status, err := enums.ParseDrinkingWindowStatus(raw)
		if err != nil {
			return winesvc.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid drinking_window_status filter")
		}
		filters.WindowStatus = &status
	}

	return filters, nil
}

func parseSortSpec(r *http.Request) (winesvc.SortSpec, error) {
	sort := winesvc.DefaultSort()

	if raw := validators.QueryString(r, "sort_by"); raw != "" {
		field, err := enums.ParseWineSortField(raw)
		if err != nil {
			return winesvc.SortSpec{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort_by value")
		}
		sort.Field = field
	}
	if raw := validators.QueryString(r, "sort_order"); raw != "" {
		order, err := enums.ParseSortOrder(raw)
		if err != nil {
			return winesvc.SortSpec{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort_order value")
		}
		sort.Order = order
	}

	return sort, nil
}
