package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vintrack/vintrack-backend/api/controllers"
	"github.com/vintrack/vintrack-backend/api/middleware"
	"github.com/vintrack/vintrack-backend/internal/suggestions"
	winesvc "github.com/vintrack/vintrack-backend/internal/wines"
	"github.com/vintrack/vintrack-backend/pkg/config"
	"github.com/vintrack/vintrack-backend/pkg/logger"
	"github.com/vintrack/vintrack-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store controllers.Pinger,
	wineService winesvc.Service,
	suggestionProvider suggestions.Provider,
	apiMetrics *metrics.APIMetrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, apiMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/wines", func(r chi.Router) {
		r.Post("/", controllers.CreateWine(wineService, logg))
		r.Get("/", controllers.ListWines(wineService, logg))
		r.Get("/page", controllers.ListWinesPage(wineService, logg))
		r.Get("/drinking-window-suggestions", controllers.DrinkingWindowSuggestion(suggestionProvider, logg))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.GetWine(wineService, logg))
			r.Patch("/quantity", controllers.AdjustQuantity(wineService, logg))
			r.Post("/consume", controllers.ConsumeWine(wineService, logg))
			r.Get("/inventory-log", controllers.InventoryHistory(wineService, logg))
		})
	})

	return r
}
