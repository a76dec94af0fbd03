package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seenimoa/futureskit/internal/config"
	"github.com/seenimoa/futureskit/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Datasource: config.DatasourceConfig{Provider: "demo"},
		Continuous: config.ContinuousConfig{
			Roll:   "calendar",
			Offset: -5,
			Adjust: "back",
			Field:  "settlement",
		},
		Vendors: map[string]config.VendorConfig{
			"BRN": {
				TradingViewSymbol:   "BRN",
				TradingViewExchange: "ICEEUR",
				RefinitivSymbol:     "LCO",
			},
		},
	}
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// ════════════════════════════════════════════════════════════════════
// Health handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("expected success=true")
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatal("data should be a map")
	}
	if data["status"] != "ok" {
		t.Errorf("status: got %q", data["status"])
	}
	if data["provider"] != "demo" {
		t.Errorf("provider: got %q", data["provider"])
	}
}

// ════════════════════════════════════════════════════════════════════
// Parse handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleParse(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/parse?symbol=BRN_2026F")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Success bool          `json:"success"`
		Data    ParseResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || !resp.Data.Valid {
		t.Fatalf("expected a valid parse, got %+v", resp.Data)
	}
	if resp.Data.Parsed.Root != "BRN" || resp.Data.Parsed.Year != 2026 || resp.Data.Parsed.Month != "F" {
		t.Errorf("unexpected parse: %+v", resp.Data.Parsed)
	}
}

func TestHandleParse_Continuous(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/parse?symbol=BRN.n.1")

	var resp struct {
		Success bool          `json:"success"`
		Data    ParseResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Data.Parsed.Continuous {
		t.Error("expected continuous=true")
	}
	if resp.Data.Parsed.RollRule != "n" || resp.Data.Parsed.ContractIndex != 1 {
		t.Errorf("unexpected parse: %+v", resp.Data.Parsed)
	}
}

func TestHandleParse_MissingSymbol(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/parse")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := decodeResponse(t, rec)
	if resp.Success {
		t.Error("expected success=false")
	}
}

// ════════════════════════════════════════════════════════════════════
// Convert handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleConvert_SingleFormat(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/convert?symbol=BRN_2026F&format=cme")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Success bool            `json:"success"`
		Data    ConvertResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if got := resp.Data.Formats["cme"]; got != "@BRN26F" {
		t.Errorf("cme: got %q, want @BRN26F", got)
	}
	if len(resp.Data.Formats) != 1 {
		t.Errorf("expected only the requested format, got %v", resp.Data.Formats)
	}
}

func TestHandleConvert_AllFormats(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/convert?symbol=BRN_2026F")

	var resp struct {
		Success bool            `json:"success"`
		Data    ConvertResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	// Vendor-mapped formats use the configured BRN mappings.
	if got := resp.Data.Formats["refinitiv"]; got != "LCOF6" {
		t.Errorf("refinitiv: got %q, want LCOF6", got)
	}
	if got := resp.Data.Formats["tradingview"]; got != "ICEEUR:BRNF26" {
		t.Errorf("tradingview: got %q, want ICEEUR:BRNF26", got)
	}
	if got := resp.Data.Formats["ice"]; got != "BRN26F" {
		t.Errorf("ice: got %q, want BRN26F", got)
	}
}

func TestHandleConvert_UnknownFormat(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/convert?symbol=BRN_2026F&format=nonexistent")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleConvert_BadSymbol(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/convert?symbol=%21%21%21&format=cme")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleFormats(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/formats")

	resp := decodeResponse(t, rec)
	arr, ok := resp.Data.([]interface{})
	if !ok {
		t.Fatalf("data should be an array, got %T", resp.Data)
	}

	found := map[string]bool{}
	for _, v := range arr {
		if s, ok := v.(string); ok {
			found[s] = true
		}
	}
	for _, want := range []string{"cme", "ice", "bloomberg", "tradingview", "refinitiv"} {
		if !found[want] {
			t.Errorf("formats missing %q: %v", want, arr)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Chain handler tests (demo source, offline)
// ════════════════════════════════════════════════════════════════════

func TestHandleChain(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/chain/cl")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Success bool         `json:"success"`
		Data    models.Chain `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Root != "CL" {
		t.Errorf("root: got %q, want CL", resp.Data.Root)
	}
	if len(resp.Data.Contracts) != 12 {
		t.Errorf("contracts: got %d, want 12", len(resp.Data.Contracts))
	}
}

func TestHandleChainURLs(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/chain/BRN/urls?year=2026&month=H")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Success bool                         `json:"success"`
		Data    map[string]map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if _, ok := resp.Data["tradingview"]; !ok {
		t.Error("missing tradingview URLs")
	}
	if _, ok := resp.Data["refinitiv"]; !ok {
		t.Error("missing refinitiv URLs")
	}
}

func TestHandleChainURLs_Validation(t *testing.T) {
	srv := testServer(t)

	if rec := doGet(t, srv, "/api/v1/chain/BRN/urls?month=H"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing year: got %d, want 400", rec.Code)
	}
	if rec := doGet(t, srv, "/api/v1/chain/BRN/urls?year=2026&month=A"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad month: got %d, want 400", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// Continuous handler tests (demo source, offline)
// ════════════════════════════════════════════════════════════════════

func TestHandleContinuousSeries(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/continuous/CL.c.1?field=settlement")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Symbol string        `json:"symbol"`
			Field  string        `json:"field"`
			Points models.Series `json:"points"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Symbol != "CL.c.1" {
		t.Errorf("symbol: got %q, want CL.c.1", resp.Data.Symbol)
	}
	if resp.Data.Field != "settlement" {
		t.Errorf("field: got %q", resp.Data.Field)
	}
	if len(resp.Data.Points) == 0 {
		t.Error("expected a non-empty series from the demo source")
	}
}

func TestHandleContinuousSeries_NotContinuous(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/continuous/CL_2026H")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleContinuousSeries_BadDates(t *testing.T) {
	srv := testServer(t)

	if rec := doGet(t, srv, "/api/v1/continuous/CL.c.1?start=garbage"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad start: got %d, want 400", rec.Code)
	}
	if rec := doGet(t, srv, "/api/v1/continuous/CL.c.1?start=2026-02-01&end=2026-01-01"); rec.Code != http.StatusBadRequest {
		t.Errorf("inverted range: got %d, want 400", rec.Code)
	}
}

func TestHandleRollSchedule(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/continuous/CL.c.1/schedule")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Rolls []struct {
				From models.Contract `json:"from"`
				To   models.Contract `json:"to"`
				Date string          `json:"date"`
			} `json:"rolls"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	// The demo chain has 12 contracts, so depth 1 produces 11 rolls.
	if len(resp.Data.Rolls) != 11 {
		t.Fatalf("rolls: got %d, want 11", len(resp.Data.Rolls))
	}
	first := resp.Data.Rolls[0]
	if first.From.Root != "CL" || first.To.Root != "CL" {
		t.Errorf("unexpected roll contracts: %+v", first)
	}
}

func TestHandleActiveContract(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/continuous/CL.c.1/active")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Success bool                   `json:"success"`
		Data    ActiveContractResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Active.Root != "CL" {
		t.Errorf("active root: got %q, want CL", resp.Data.Active.Root)
	}
}

func TestHandleActiveContract_BadDate(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/continuous/CL.c.1/active?as_of=not-a-date")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// ════════════════════════════════════════════════════════════════════
// Config handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleGetConfig(t *testing.T) {
	srv := testServer(t)
	rec := doGet(t, srv, "/api/v1/config")

	var resp struct {
		Success bool          `json:"success"`
		Data    config.Config `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Datasource.Provider != "demo" {
		t.Errorf("provider: got %q, want demo", resp.Data.Datasource.Provider)
	}
	if resp.Data.Continuous.Offset != -5 {
		t.Errorf("offset: got %d, want -5", resp.Data.Continuous.Offset)
	}
}

// ════════════════════════════════════════════════════════════════════
// writeJSON / writeError tests
// ════════════════════════════════════════════════════════════════════

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, APIResponse{
		Success: true,
		Data:    "hello",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success || resp.Data != "hello" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}

	resp := decodeResponse(t, rec)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != "not found" {
		t.Errorf("error: got %q, want %q", resp.Error, "not found")
	}
}
