package main

import (
	"fmt"
	"os"

	"github.com/nurpe/gigledger/internal/auth"
	"github.com/nurpe/gigledger/internal/config"
	"github.com/nurpe/gigledger/internal/db"
	"github.com/nurpe/gigledger/internal/excel"
	httphandler "github.com/nurpe/gigledger/internal/http"
	"github.com/nurpe/gigledger/internal/http/middleware"
	"github.com/nurpe/gigledger/internal/logger"
	"github.com/nurpe/gigledger/internal/pdf"
	"github.com/nurpe/gigledger/internal/repository"
	"github.com/nurpe/gigledger/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	jobRepo := repository.NewJobRepository(database)
	ledgerRepo := repository.NewLedgerRepository(database, cfg.Ledger.TxRetries)
	reportRepo := repository.NewReportRepository(database)

	queryService := service.NewQueryService(contractRepo, jobRepo, pdf.NewGenerator())
	ledgerService := service.NewLedgerService(ledgerRepo, cfg, log)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(queryService, ledgerService, reportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting ledger service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
