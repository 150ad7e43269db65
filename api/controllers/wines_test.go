package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vintrack/vintrack-backend/api/responses"
	winesvc "github.com/vintrack/vintrack-backend/internal/wines"
	pkgerrors "github.com/vintrack/vintrack-backend/pkg/errors"
	"github.com/vintrack/vintrack-backend/pkg/logger"
)

type stubWineService struct {
	createInput  *winesvc.CreateWineInput
	adjustInput  *winesvc.AdjustQuantityInput
	consumeInput *winesvc.ConsumeInput
	err          error
}

func (s *stubWineService) CreateWine(ctx context.Context, input winesvc.CreateWineInput) (*winesvc.WineRecord, error) {
	s.createInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return &winesvc.WineRecord{ID: 1, Name: input.Name}, nil
}

func (s *stubWineService) GetWine(ctx context.Context, id int64) (*winesvc.WineRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &winesvc.WineRecord{ID: id, Name: "stub"}, nil
}

func (s *stubWineService) ListWines(ctx context.Context, filters winesvc.ListFilters) ([]winesvc.WineRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []winesvc.WineRecord{}, nil
}

func (s *stubWineService) ListWinesPage(ctx context.Context, input winesvc.ListPageInput) (*winesvc.WinePage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &winesvc.WinePage{Items: []winesvc.WineListItem{}, Page: input.Pagination.Page}, nil
}

func (s *stubWineService) AdjustQuantity(ctx context.Context, input winesvc.AdjustQuantityInput) (*winesvc.WineRecord, error) {
	s.adjustInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return &winesvc.WineRecord{ID: input.WineID}, nil
}

func (s *stubWineService) Consume(ctx context.Context, input winesvc.ConsumeInput) (*winesvc.ConsumeResult, error) {
	s.consumeInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return &winesvc.ConsumeResult{Wine: winesvc.WineRecord{ID: input.WineID}}, nil
}

func (s *stubWineService) InventoryHistory(ctx context.Context, wineID int64) ([]winesvc.InventoryLogRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []winesvc.InventoryLogRecord{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withWineID(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) responses.ErrorEnvelope {
	t.Helper()
	var body responses.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	return body
}

func TestCreateWineReturns201(t *testing.T) {
	svc := &stubWineService{}
	body := `{"name":"Barolo","type":"Red","vintage":2018,"grape_composition":[{"grape_variety":"Nebbiolo","percentage":100}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/wines", strings.NewReader(body))
	rec := httptest.NewRecorder()

	CreateWine(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.createInput == nil || svc.createInput.Name != "Barolo" {
		t.Fatalf("unexpected input %+v", svc.createInput)
	}
	if svc.createInput.Type == nil || svc.createInput.Type.String() != "Red" {
		t.Fatalf("expected parsed wine type, got %+v", svc.createInput.Type)
	}
	if len(svc.createInput.GrapeComposition) != 1 {
		t.Fatalf("expected composition forwarded, got %+v", svc.createInput.GrapeComposition)
	}
}

func TestCreateWineRejectsUnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/wines", strings.NewReader(`{"name":"x","color":"red"}`))
	rec := httptest.NewRecorder()

	CreateWine(&stubWineService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateWineRejectsBlankName(t *testing.T) {
	svc := &stubWineService{}
	req := httptest.NewRequest(http.MethodPost, "/api/wines", strings.NewReader(`{"name":"   "}`))
	rec := httptest.NewRecorder()

	CreateWine(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.createInput != nil {
		t.Fatalf("blank name must not reach the service, got %+v", svc.createInput)
	}
}

func TestCreateWineAcceptsZeroPercentage(t *testing.T) {
	svc := &stubWineService{}
	body := `{"name":"Field Blend","grape_composition":[{"grape_variety":"Nebbiolo","percentage":100},{"grape_variety":"Barbera","percentage":0}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/wines", strings.NewReader(body))
	rec := httptest.NewRecorder()

	CreateWine(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.createInput == nil || len(svc.createInput.GrapeComposition) != 2 {
		t.Fatalf("expected both shares forwarded, got %+v", svc.createInput)
	}
}

func TestCreateWineRejectsBadType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/wines", strings.NewReader(`{"name":"x","type":"orange"}`))
	rec := httptest.NewRecorder()

	CreateWine(&stubWineService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateWineRejectsBadDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/wines", strings.NewReader(`{"name":"x","drink_after_date":"01/02/2030"}`))
	rec := httptest.NewRecorder()

	CreateWine(&stubWineService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetWineInvalidID(t *testing.T) {
	req := withWineID(httptest.NewRequest(http.MethodGet, "/api/wines/abc", nil), "abc")
	rec := httptest.NewRecorder()

	GetWine(&stubWineService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetWineNotFound(t *testing.T) {
	svc := &stubWineService{err: pkgerrors.New(pkgerrors.CodeNotFound, "wine 9 not found")}
	req := withWineID(httptest.NewRequest(http.MethodGet, "/api/wines/9", nil), "9")
	rec := httptest.NewRecorder()

	GetWine(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected error code %s", body.Error.Code)
	}
}

func TestAdjustQuantityRequiresChange(t *testing.T) {
	req := withWineID(httptest.NewRequest(http.MethodPatch, "/api/wines/1/quantity", strings.NewReader(`{"notes":"x"}`)), "1")
	rec := httptest.NewRecorder()

	AdjustQuantity(&stubWineService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdjustQuantityForwardsDelta(t *testing.T) {
	svc := &stubWineService{}
	req := withWineID(httptest.NewRequest(http.MethodPatch, "/api/wines/3/quantity", strings.NewReader(`{"quantity_change":-2,"notes":"gift"}`)), "3")
	rec := httptest.NewRecorder()

	AdjustQuantity(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.adjustInput == nil || svc.adjustInput.WineID != 3 || svc.adjustInput.QuantityChange != -2 {
		t.Fatalf("unexpected input %+v", svc.adjustInput)
	}
	if svc.adjustInput.Notes == nil || *svc.adjustInput.Notes != "gift" {
		t.Fatalf("expected notes forwarded, got %v", svc.adjustInput.Notes)
	}
}

func TestConsumeAcceptsEmptyBody(t *testing.T) {
	svc := &stubWineService{}
	req := withWineID(httptest.NewRequest(http.MethodPost, "/api/wines/5/consume", nil), "5")
	rec := httptest.NewRecorder()

	ConsumeWine(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.consumeInput == nil || svc.consumeInput.WineID != 5 {
		t.Fatalf("unexpected input %+v", svc.consumeInput)
	}
	if svc.consumeInput.Rating != nil || svc.consumeInput.Notes != nil {
		t.Fatalf("expected empty feedback, got %+v", svc.consumeInput)
	}
}

func TestConsumeForwardsFeedback(t *testing.T) {
	svc := &stubWineService{}
	req := withWineID(httptest.NewRequest(http.MethodPost, "/api/wines/5/consume", strings.NewReader(`{"rating":8,"notes":"great"}`)), "5")
	rec := httptest.NewRecorder()

	ConsumeWine(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.consumeInput.Rating == nil || *svc.consumeInput.Rating != 8 {
		t.Fatalf("expected rating forwarded, got %+v", svc.consumeInput)
	}
}

func TestConsumeRejectsOutOfRangeRating(t *testing.T) {
	req := withWineID(httptest.NewRequest(http.MethodPost, "/api/wines/5/consume", strings.NewReader(`{"rating":11}`)), "5")
	rec := httptest.NewRecorder()

	ConsumeWine(&stubWineService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListWinesPageRejectsBadSort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/wines/page?sort_by=purchase_price", nil)
	rec := httptest.NewRecorder()

	ListWinesPage(&stubWineService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListWinesPageRejectsOversizedPage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/wines/page?page_size=500", nil)
	rec := httptest.NewRecorder()

	ListWinesPage(&stubWineService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListWinesRejectsBadStatusFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/wines?drinking_window_status=soon", nil)
	rec := httptest.NewRecorder()

	ListWines(&stubWineService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
