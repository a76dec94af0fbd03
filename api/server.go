// Package api provides the HTTP REST API server for futureskit.
//
// It exposes endpoints for symbol parsing, vendor symbology conversion,
// contract chains, continuous series, roll schedules, and commodity news.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/futureskit/internal/config"
	"github.com/seenimoa/futureskit/internal/datasource"
	"github.com/seenimoa/futureskit/internal/futures"
	"github.com/seenimoa/futureskit/internal/notation"
	"github.com/seenimoa/futureskit/internal/symbology"
	"github.com/seenimoa/futureskit/pkg/models"
	"github.com/seenimoa/futureskit/pkg/utils"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	news   *datasource.News
	parser *notation.Parser
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	srv := &Server{
		cfg:    cfg,
		news:   datasource.NewNews(),
		parser: notation.NewParser(),
	}
	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Symbol grammar
		r.Get("/parse", s.handleParse)
		r.Get("/convert", s.handleConvert)
		r.Get("/formats", s.handleFormats)

		// Contract chains
		r.Get("/chain/{root}", s.handleChain)
		r.Get("/chain/{root}/urls", s.handleChainURLs)

		// Continuous series
		r.Get("/continuous/{symbol}", s.handleContinuousSeries)
		r.Get("/continuous/{symbol}/schedule", s.handleRollSchedule)
		r.Get("/continuous/{symbol}/active", s.handleActiveContract)

		// News
		r.Get("/news", s.handleMarketNews)
		r.Get("/news/{root}", s.handleCommodityNews)

		// Configuration (read-only)
		r.Get("/config", s.handleGetConfig)
	})

	return r
}

// sourceFor builds the configured data source with vendor mappings for a root.
func (s *Server) sourceFor(root string) datasource.FuturesDataSource {
	vendors := symbology.VendorMap(s.cfg.VendorMap(root))
	switch strings.ToLower(s.cfg.Datasource.Provider) {
	case "yahoo":
		return datasource.NewYahoo(vendors)
	case "tradingview":
		return datasource.NewTradingView()
	case "refinitiv":
		return datasource.NewRefinitivWithBaseURL(s.cfg.Datasource.RefinitivBaseURL)
	default:
		return datasource.NewDemo(time.Time{}, 0)
	}
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ParseResponse is returned by GET /api/v1/parse.
type ParseResponse struct {
	Symbol string                `json:"symbol"`
	Valid  bool                  `json:"valid"`
	Parsed notation.ParsedSymbol `json:"parsed"`
}

// ConvertResponse is returned by GET /api/v1/convert.
type ConvertResponse struct {
	Symbol  string            `json:"symbol"`
	Formats map[string]string `json:"formats"`
}

// ActiveContractResponse is returned by GET /api/v1/continuous/{symbol}/active.
type ActiveContractResponse struct {
	Symbol string          `json:"symbol"`
	AsOf   string          `json:"as_of"`
	Active models.Contract `json:"active"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  "dev",
			"provider": s.cfg.Datasource.Provider,
			"time":     time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	parsed := s.parser.Parse(symbol)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ParseResponse{
			Symbol: symbol,
			Valid:  parsed.IsValid(),
			Parsed: parsed,
		},
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	format := r.URL.Query().Get("format")

	parsed := s.parser.Parse(symbol)
	if !parsed.IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("cannot parse symbol: %s", symbol))
		return
	}

	vendors := symbology.VendorMap(s.cfg.VendorMap(parsed.Root))

	// A single requested format returns just that one; otherwise render all.
	formats := symbology.Formats()
	if format != "" {
		formats = []string{format}
	}

	out := make(map[string]string, len(formats))
	for _, f := range formats {
		if converted, ok := symbology.Convert(parsed, f, vendors); ok {
			out[f] = converted
		}
	}
	if format != "" && len(out) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("cannot convert %s to format %q", symbol, format))
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConvertResponse{
			Symbol:  symbol,
			Formats: out,
		},
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    symbology.Formats(),
	})
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	root := strings.ToUpper(chi.URLParam(r, "root"))
	if root == "" {
		writeError(w, http.StatusBadRequest, "root is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	source := s.sourceFor(root)
	contracts, err := source.ContractChain(ctx, root)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	// ?data=true prefetches price tables for the whole chain.
	if r.URL.Query().Get("data") == "true" {
		contracts, err = datasource.LoadChainData(ctx, source, contracts)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    models.NewChain(root, contracts, ""),
	})
}

func (s *Server) handleChainURLs(w http.ResponseWriter, r *http.Request) {
	root := strings.ToUpper(chi.URLParam(r, "root"))
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year is required; use a 4-digit year")
		return
	}
	month := strings.ToUpper(r.URL.Query().Get("month"))
	if !models.IsMonthCode(month) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid month code: %q", month))
		return
	}

	vendors := symbology.VendorMap(s.cfg.VendorMap(root))
	urls := map[string]map[string]string{
		"tradingview": datasource.NewTradingView().ContractURLs(root, year, month, vendors),
		"refinitiv":   datasource.NewRefinitivWithBaseURL(s.cfg.Datasource.RefinitivBaseURL).ContractURLs(root, year, month, vendors),
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    urls,
	})
}

// continuousFromRequest resolves the {symbol} path param into a loaded
// continuous future, reporting parse and config errors as 400s.
func (s *Server) continuousFromRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (*futures.ContinuousFuture, bool) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return nil, false
	}

	parsed := s.parser.Parse(symbol)
	vendors := symbology.VendorMap(s.cfg.VendorMap(parsed.Root))
	source := s.sourceFor(parsed.Root)

	_, cont, err := futures.FromNotation(ctx, symbol, source, vendors)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if cont == nil {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("not a continuous symbol: %s; use ROOT.rule.index notation", symbol))
		return nil, false
	}
	return cont, true
}

func (s *Server) handleContinuousSeries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	cont, ok := s.continuousFromRequest(ctx, w, r)
	if !ok {
		return
	}

	field := r.URL.Query().Get("field")
	if field == "" {
		field = s.cfg.Continuous.Field
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := cont.Series(ctx, field, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"symbol": cont.Symbol(),
			"field":  field,
			"points": series,
		},
	})
}

func (s *Server) handleRollSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	cont, ok := s.continuousFromRequest(ctx, w, r)
	if !ok {
		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    cont.Schedule(start, end),
	})
}

func (s *Server) handleActiveContract(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	cont, ok := s.continuousFromRequest(ctx, w, r)
	if !ok {
		return
	}

	asOf := time.Now().UTC()
	if v := r.URL.Query().Get("as_of"); v != "" {
		var err error
		asOf, err = utils.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of date; use YYYY-MM-DD")
			return
		}
	}

	active, found := cont.ActiveContract(asOf)
	if !found {
		writeError(w, http.StatusNotFound, "no active contract for the requested date")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ActiveContractResponse{
			Symbol: cont.Symbol(),
			AsOf:   utils.FormatDate(asOf),
			Active: active,
		},
	})
}

func (s *Server) handleMarketNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	articles, err := s.news.MarketNews(ctx, parseLimit(r, 20))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    articles,
	})
}

func (s *Server) handleCommodityNews(w http.ResponseWriter, r *http.Request) {
	root := strings.ToUpper(chi.URLParam(r, "root"))
	if root == "" {
		writeError(w, http.StatusBadRequest, "root is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	articles, err := s.news.CommodityNews(ctx, root, parseLimit(r, 20))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    articles,
	})
}

// handleGetConfig returns the running configuration.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.cfg,
	})
}

// ============================================================
// Helpers
// ============================================================

// parseDateRange reads optional start/end query params in YYYY-MM-DD form.
// Missing values come back zero; the series builder applies its own window.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if v := r.URL.Query().Get("start"); v != "" {
		start, err = utils.ParseDate(v)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date; use YYYY-MM-DD")
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		end, err = utils.ParseDate(v)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date; use YYYY-MM-DD")
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("end date is before start date")
	}
	return start, end, nil
}

// parseLimit reads a positive ?limit= query param, falling back to def.
func parseLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
