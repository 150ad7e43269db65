package controllers

import (
	"net/http"
	"strconv"

	"github.com/vintrack/vintrack-backend/api/responses"
	"github.com/vintrack/vintrack-backend/api/validators"
	"github.com/vintrack/vintrack-backend/internal/suggestions"
	"github.com/vintrack/vintrack-backend/pkg/enums"
	pkgerrors "github.com/vintrack/vintrack-backend/pkg/errors"
	"github.com/vintrack/vintrack-backend/pkg/logger"
)

// DrinkingWindowSuggestion handles GET /api/wines/drinking-window-suggestions.
func DrinkingWindowSuggestion(provider suggestions.Provider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawType := validators.QueryString(r, "wine_type")
		if rawType == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "wine_type is required"))
			return
		}
		wineType, err := enums.ParseWineType(rawType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wine_type"))
			return
		}

		rawVintage := validators.QueryString(r, "vintage")
		if rawVintage == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vintage is required"))
			return
		}
		vintage, err := strconv.Atoi(rawVintage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vintage must be numeric").
				WithDetails(map[string]any{"vintage": rawVintage}))
			return
		}

		suggestion, err := provider.DrinkingWindow(r.Context(), wineType, vintage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, suggestion)
	}
}
