package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vintrack/vintrack-backend/internal/suggestions"
	winesvc "github.com/vintrack/vintrack-backend/internal/wines"
	"github.com/vintrack/vintrack-backend/pkg/config"
	"github.com/vintrack/vintrack-backend/pkg/db"
	"github.com/vintrack/vintrack-backend/pkg/db/models"
	"github.com/vintrack/vintrack-backend/pkg/logger"
	"github.com/vintrack/vintrack-backend/pkg/metrics"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvDev
	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := db.New(context.Background(), config.DBConfig{Driver: config.DriverSQLite, DSN: dsn}, logg)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	err = client.DB().AutoMigrate(
		&models.Wine{},
		&models.GrapeComposition{},
		&models.InventoryLog{},
		&models.TastingNote{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	registry := prometheus.NewRegistry()
	apiMetrics := metrics.NewAPIMetrics(registry)

	repo := winesvc.NewRepository(client.DB())
	wineService := winesvc.NewService(client, repo, apiMetrics)
	provider := suggestions.NewClient(config.WineAPIConfig{}, apiMetrics)

	return NewRouter(cfg, logg, client, wineService, provider, apiMetrics, registry)
}

func doJSON(t *testing.T, handler http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("%s %s: failed to decode body %q: %v", method, target, rec.Body.String(), err)
		}
	}
	return rec, payload
}

func TestRouterWineLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec, wine := doJSON(t, router, http.MethodPost, "/api/wines",
		`{"name":"Barolo Riserva","type":"Red","vintage":2018,"quantity":6,"grape_composition":[{"grape_variety":"Nebbiolo","percentage":100}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%v)", rec.Code, wine)
	}
	id := int64(wine["id"].(float64))

	rec, got := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/wines/%d", id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	if got["name"] != "Barolo Riserva" {
		t.Fatalf("get: unexpected wine %v", got)
	}

	rec, updated := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/wines/%d/quantity", id),
		`{"quantity_change":-2,"notes":"shared at dinner"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("adjust: expected 200, got %d (%v)", rec.Code, updated)
	}
	if updated["quantity"].(float64) != 4 {
		t.Fatalf("adjust: expected quantity 4, got %v", updated["quantity"])
	}

	rec, result := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/wines/%d/consume", id),
		`{"rating":9,"notes":"singular"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("consume: expected 200, got %d (%v)", rec.Code, result)
	}
	if result["tasting_note"] == nil {
		t.Fatalf("consume: expected tasting note, got %v", result)
	}
	if result["wine"].(map[string]any)["quantity"].(float64) != 3 {
		t.Fatalf("consume: expected quantity 3, got %v", result["wine"])
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/wines/%d/inventory-log", id), nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", recorder.Code)
	}
	var logs []map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &logs); err != nil {
		t.Fatalf("history: failed to decode %q: %v", recorder.Body.String(), err)
	}
	if len(logs) != 2 {
		t.Fatalf("history: expected 2 entries, got %d", len(logs))
	}
	if logs[0]["change_type"] != "consume" || logs[1]["change_type"] != "manual_adjustment" {
		t.Fatalf("history: unexpected order %v", logs)
	}
}

func TestRouterListAndPage(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 3; i++ {
		rec, _ := doJSON(t, router, http.MethodPost, "/api/wines",
			fmt.Sprintf(`{"name":"Wine %d","type":"Red","vintage":%d}`, i, 2015+i))
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed %d: expected 201, got %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/wines?wine_type=Red", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("list: failed to decode: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list: expected 3 wines, got %d", len(list))
	}

	recorder, page := doJSON(t, router, http.MethodGet, "/api/wines/page?page=1&page_size=2&sort_by=vintage&sort_order=asc", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("page: expected 200, got %d (%v)", recorder.Code, page)
	}
	if page["total_items"].(float64) != 3 || page["total_pages"].(float64) != 2 {
		t.Fatalf("page: unexpected envelope %v", page)
	}
	items := page["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("page: expected 2 items, got %d", len(items))
	}
	if items[0].(map[string]any)["vintage"].(float64) != 2015 {
		t.Fatalf("page: expected oldest vintage first, got %v", items[0])
	}

	recorder, _ = doJSON(t, router, http.MethodGet, "/api/wines/page?sort_by=color", "")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("page: expected 400 for unknown sort, got %d", recorder.Code)
	}
}

func TestRouterSuggestionNotConfigured(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/wines/drinking-window-suggestions?wine_type=Red&vintage=2019", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d (%v)", rec.Code, body)
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/health/live", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", rec.Code)
	}
	rec, _ = doJSON(t, router, http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", recorder.Code)
	}
}
