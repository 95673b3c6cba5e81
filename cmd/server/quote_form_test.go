package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Simplici0/cotiza3d/internal/db"
	"github.com/Simplici0/cotiza3d/internal/migrations"
	"github.com/Simplici0/cotiza3d/internal/pricing"
	"github.com/Simplici0/cotiza3d/internal/store"
)

type fakeRates map[string]float64

func (f fakeRates) Rate(_ context.Context, code string) (float64, error) {
	rate, ok := f[code]
	if !ok {
		return 0, errors.New("no rate")
	}
	return rate, nil
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newTestServer(t *testing.T) *server {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return &server{
		auth:  newAuthService("owner@taller3d.uy", "secreto", "test-secret", false),
		store: store.New(database),
		rates: fakeRates{"UYU": 40},
	}
}

// do sends an authenticated JSON request through the full router.
func do(t *testing.T, srv *server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: srv.auth.createSessionValue(srv.auth.email)})

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

// seedCatalog stores one material, one machine and pricing settings.
func seedCatalog(t *testing.T, srv *server) (pricing.Material, pricing.Machine) {
	t.Helper()

	ctx := context.Background()
	mat, err := srv.store.CreateMaterial(ctx, pricing.Material{Name: "PLA Pro", Type: "PLA", CostPerKg: 25})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	mach, err := srv.store.CreateMachine(ctx, pricing.Machine{Name: "Ender 3", DepreciationCostPerHour: 0.5, PowerConsumptionWatts: 150})
	if err != nil {
		t.Fatalf("CreateMachine: %v", err)
	}
	settings := store.DefaultSettings()
	settings.Settings = pricing.Settings{
		LaborCostPerHour:        10,
		ProfitMarginPercent:     30,
		PeakEnergyCostPerKwh:    0.25,
		OffPeakEnergyCostPerKwh: 0.12,
	}
	settings.CompanyName = "Taller 3D"
	if err := srv.store.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	return mat, mach
}

func TestCalcRequestJob_FoldsTime(t *testing.T) {
	var req calcRequest
	body := `{"machineId":"m1","parts":[{"materialId":"a","massGrams":50}],
		"printHours":1,"printMinutes":30,"printSeconds":36,"laborMinutes":15}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	job, err := req.job()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !nearlyEqual(job.PrintHours, 1.51) {
		t.Fatalf("PrintHours = %v, want 1.51", job.PrintHours)
	}
	if !nearlyEqual(job.LaborHours, 0.25) {
		t.Fatalf("LaborHours = %v, want 0.25", job.LaborHours)
	}
	if job.Tariff != pricing.TariffOffPeak {
		t.Fatalf("Tariff = %q, want off-peak default", job.Tariff)
	}
}

func TestCalcRequestJob_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown tariff", `{"tariffType":"night"}`},
		{"negative grams", `{"parts":[{"materialId":"a","massGrams":-1}]}`},
		{"missing material", `{"parts":[{"massGrams":10}]}`},
		{"negative override", `{"finalPriceOverride":-5}`},
		{"extra without description", `{"extraCosts":[{"amount":2}]}`},
		{"negative print minutes", `{"printHours":1,"printMinutes":-60}`},
		{"negative print seconds", `{"printSeconds":-1}`},
		{"negative labor minutes", `{"laborHours":1,"laborMinutes":-30}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req calcRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if _, err := req.job(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestHandleCalculate(t *testing.T) {
	srv := newTestServer(t)
	mat, mach := seedCatalog(t, srv)

	rr := do(t, srv, http.MethodPost, "/api/calculate", map[string]any{
		"machineId":  mach.ID,
		"parts":      []map[string]any{{"materialId": mat.ID, "massGrams": 200}},
		"printHours": 4,
		"laborHours": 0.5,
		"tariffType": "peak",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp calcResponse
	decodeBody(t, rr, &resp)
	if resp.Breakdown == nil {
		t.Fatalf("expected breakdown")
	}
	// 5 + 2 + 0.15 + 5 = 12.15, +30%
	if !nearlyEqual(resp.Breakdown.CostSubtotal, 12.15) || !nearlyEqual(resp.Breakdown.Total, 15.795) {
		t.Fatalf("unexpected breakdown: %+v", *resp.Breakdown)
	}
	if resp.Local == nil || resp.Local.Currency != "UYU" || !nearlyEqual(resp.Local.Total, 631.8) {
		t.Fatalf("unexpected local figures: %+v", resp.Local)
	}
	if resp.Local.Formatted != "$U 631,80" {
		t.Fatalf("Formatted = %q", resp.Local.Formatted)
	}
}

func TestHandleCalculate_MissingMachineIsIncomplete(t *testing.T) {
	srv := newTestServer(t)
	seedCatalog(t, srv)

	rr := do(t, srv, http.MethodPost, "/api/calculate", map[string]any{
		"machineId":  "deleted",
		"printHours": 2,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"breakdown":null`) {
		t.Fatalf("expected null breakdown, got %s", rr.Body.String())
	}
}

func TestHandleCalculate_ValidationErrorsAreFields(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/calculate", map[string]any{
		"printHours": -1,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rr, &body)
	if _, ok := body.Fields["printHours"]; !ok {
		t.Fatalf("expected printHours field error, got %+v", body)
	}
}

func TestHandleCalculate_NegativeMinutesCannotHidePrintTime(t *testing.T) {
	srv := newTestServer(t)
	seedCatalog(t, srv)

	rr := do(t, srv, http.MethodPost, "/api/calculate", map[string]any{
		"machineId":    "deleted",
		"printHours":   1,
		"printMinutes": -60,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rr, &body)
	if _, ok := body.Fields["printMinutes"]; !ok {
		t.Fatalf("expected printMinutes field error, got %+v", body)
	}
}

func TestWriteFailureMapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", validation.Errors{"name": errors.New("cannot be blank")}, http.StatusBadRequest},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"bad request", errBadRequest, http.StatusBadRequest},
		{"rate", errRateUnavailable, http.StatusBadGateway},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeFailure(rr, "thing", tt.err)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
