package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/date"
	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve reports over HTTP" }
func (*serveCmd) Usage() string {
	return `lots serve [-addr <host:port>]

  Serves JSON reports computed over the ledger file:

    GET  /api/v1/reports   filters as query parameters (dateFrom, dateTo, ownerId,
                           symbol, currency, assetType, operationType,
                           includeVoided, sort, exact)
    POST /api/v1/reports   {"filter": {...}, "sort": "...", "exact": false,
                            "records": [...]}; records default to the ledger file
    GET  /api/v1/symbols   distinct symbols, optionally for one ownerId
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Defaults to the [server] section of the configuration.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	addr := c.addr
	if addr == "" {
		addr = cfg.Server.Addr()
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(NewReportHandler(cfg, logger), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info().Str("addr", addr).Str("ledger", cfg.LedgerFile).Msg("serving reports")

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error serving on %s: %v\n", addr, err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error shutting down: %v\n", err)
			return subcommands.ExitFailure
		}
		logger.Info().Msg("server stopped")
	}
	return subcommands.ExitSuccess
}

// NewRouter creates the gin engine serving h.
func NewRouter(h *ReportHandler, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	h.RegisterRoutes(router)
	return router
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// ReportHandler serves reports computed over a ledger file. The file is read
// on every request, each request runs its own computation.
type ReportHandler struct {
	cfg    *Config
	logger zerolog.Logger
}

// NewReportHandler creates the handler for the ledger file of cfg.
func NewReportHandler(cfg *Config, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{cfg: cfg, logger: logger}
}

// RegisterRoutes binds the handler methods to router.
func (h *ReportHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/reports", h.GetReport)
		api.POST("/reports", h.PostReport)
		api.GET("/symbols", h.ListSymbols)
	}
}

// reportRequest is the body of POST /reports.
type reportRequest struct {
	Filter  lotbook.Filter   `json:"filter"`
	Sort    string           `json:"sort"`
	Exact   bool             `json:"exact"`
	Records []lotbook.Record `json:"records"`
}

// GetReport computes a report over the ledger file, filters are read from the
// query string.
func (h *ReportHandler) GetReport(c *gin.Context) {
	var req reportRequest
	var err error
	if req.Filter.From, err = queryDate(c, "dateFrom"); err != nil {
		badRequest(c, err)
		return
	}
	if req.Filter.To, err = queryDate(c, "dateTo"); err != nil {
		badRequest(c, err)
		return
	}
	req.Filter.Owner = c.Query("ownerId")
	req.Filter.Symbol = c.Query("symbol")
	req.Filter.Currency = c.Query("currency")
	req.Filter.AssetType = c.Query("assetType")
	req.Filter.Operation = c.Query("operationType")
	if req.Filter.IncludeVoided, err = queryBool(c, "includeVoided", h.cfg.IncludeVoided); err != nil {
		badRequest(c, err)
		return
	}
	if req.Exact, err = queryBool(c, "exact", false); err != nil {
		badRequest(c, err)
		return
	}
	req.Sort = c.Query("sort")
	h.report(c, req)
}

// PostReport computes a report over the records of the body, or over the
// ledger file when the body has none.
func (h *ReportHandler) PostReport(c *gin.Context) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	var req reportRequest
	if err := dec.Decode(&req); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}
	h.report(c, req)
}

// ListSymbols lists the symbols of the ledger file.
func (h *ReportHandler) ListSymbols(c *gin.Context) {
	records, err := DecodeRecords(h.cfg.LedgerFile)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load ledger")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	filter := lotbook.Filter{Owner: c.Query("ownerId"), IncludeVoided: h.cfg.IncludeVoided}
	txs, _, err := lotbook.Normalize(records, filter)
	if err != nil {
		badRequest(c, err)
		return
	}
	symbols := lotbook.Symbols(txs)
	if symbols == nil {
		symbols = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

func (h *ReportHandler) report(c *gin.Context, req reportRequest) {
	sortName := req.Sort
	if sortName == "" {
		sortName = h.cfg.Sort
	}
	order, err := lotbook.ParseSortOrder(sortName)
	if err != nil {
		badRequest(c, err)
		return
	}

	records := req.Records
	if records == nil {
		if records, err = DecodeRecords(h.cfg.LedgerFile); err != nil {
			h.logger.Error().Err(err).Msg("failed to load ledger")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	report, err := lotbook.Compute(records, req.Filter,
		lotbook.WithSort(order),
		lotbook.WithExact(req.Exact),
		lotbook.WithLogger(h.logger),
	)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func queryDate(c *gin.Context, key string) (date.Date, error) {
	v := c.Query(key)
	if v == "" {
		return date.Date{}, nil
	}
	d, err := date.Parse(v)
	if err != nil {
		return d, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func queryBool(c *gin.Context, key string, def bool) (bool, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
