package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mcclellann/fredPayroll/pkg/config"
	"github.com/mcclellann/fredPayroll/pkg/payroll"
	"github.com/mcclellann/fredPayroll/pkg/receipt"
	"github.com/mcclellann/fredPayroll/pkg/roster"
	"github.com/mcclellann/fredPayroll/pkg/store"
)

// Server holds the roster and the default payroll strategy.
type Server struct {
	roster   *roster.Roster
	storage  store.Storage // Keep a reference to the storage to close it
	strategy payroll.DeductionStrategy
	cfg      config.Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewServer(s store.Storage, cfg config.Config, logger *zap.Logger) (*Server, error) {
	strategy, err := payroll.StrategyByName(cfg.DeductionStrategy)
	if err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return &Server{
		roster:   roster.NewRoster(s, logger),
		storage:  s,
		strategy: strategy,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/employees", s.listEmployeesHandler).Methods("GET")
	router.HandleFunc("/employees", s.createEmployeeHandler).Methods("POST")
	router.HandleFunc("/employees/{id}", s.getEmployeeHandler).Methods("GET")
	router.HandleFunc("/employees/{id}", s.updateEmployeeHandler).Methods("PUT")
	router.HandleFunc("/employees/{id}", s.deleteEmployeeHandler).Methods("DELETE")
	router.HandleFunc("/employees/{id}/{kind:advances|loans}", s.addEntryHandler).Methods("POST")
	router.HandleFunc("/employees/{id}/{kind:advances|loans}/{entryID}", s.updateEntryHandler).Methods("PATCH")
	router.HandleFunc("/employees/{id}/{kind:advances|loans}/{entryID}", s.deleteEntryHandler).Methods("DELETE")
	router.HandleFunc("/employees/{id}/payroll", s.employeePayrollHandler).Methods("GET")
	router.HandleFunc("/employees/{id}/receipts", s.createReceiptHandler).Methods("POST")

	router.HandleFunc("/payroll/monthly", s.monthlyPayrollHandler).Methods("GET")
	router.HandleFunc("/payroll/yearly", s.yearlyPayrollHandler).Methods("GET")
	router.HandleFunc("/stats", s.statsHandler).Methods("GET")
	router.HandleFunc("/locations", s.locationsHandler).Methods("GET")

	router.HandleFunc("/export/employees.csv", s.exportEmployeesHandler).Methods("GET")
	router.HandleFunc("/export/monthly.csv", s.exportMonthlyHandler).Methods("GET")
	router.HandleFunc("/import/employees.csv", s.importEmployeesHandler).Methods("POST")

	router.HandleFunc("/receipts", s.listReceiptsHandler).Methods("GET")
	router.HandleFunc("/receipts/{id}", s.getReceiptHandler).Methods("GET")
	router.HandleFunc("/receipts/{id}/pdf", s.receiptPDFHandler).Methods("GET")

	return router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", rid)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("request_id", rid),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrEmployeeNotFound):
		http.Error(w, "Employee not found", http.StatusNotFound)
	case errors.Is(err, store.ErrReceiptNotFound):
		http.Error(w, "Receipt not found", http.StatusNotFound)
	case errors.Is(err, roster.ErrEntryNotFound):
		http.Error(w, "Entry not found", http.StatusNotFound)
	case errors.Is(err, roster.ErrDuplicateEmployeeID):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, roster.ErrEmployeeIDRequired),
		errors.Is(err, roster.ErrNameRequired),
		errors.Is(err, roster.ErrInvalidKind),
		errors.Is(err, receipt.ErrUnknownType),
		errors.Is(err, payroll.ErrUnknownStrategy):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("request failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func openStorage(cfg config.Config) (store.Storage, error) {
	if cfg.DatabasePath == ":memory:" {
		return store.NewMemoryStore(), nil
	}
	return store.NewSQLiteStore(cfg.DatabasePath)
}

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	storage, err := openStorage(cfg)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.String("path", cfg.DatabasePath), zap.Error(err))
	}
	defer storage.Close()

	server, err := NewServer(storage, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Recompute cached payroll fields of records edited outside the roster.
	go server.roster.Run(ctx, cfg.ReconcileInterval)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Addr),
			zap.String("strategy", server.strategy.Name()),
			zap.String("database", cfg.DatabasePath),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
