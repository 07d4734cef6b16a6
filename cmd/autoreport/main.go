package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/chart"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/collector"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/config"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/fundamentals"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/mailer"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/recorder"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/report"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] spongecake-autoreport starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init price fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] price source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, cfg.DataSource.MarketSuffix, cfg.Report.LookbackDays, cfg.Report.FetchDays)

	// Init fundamentals scraper
	src := fundamentals.NewICSource(cfg.DataSource.FundamentalsURL, cfg.Proxy)
	log.Printf("[INFO] fundamentals source: %s", src.Name())

	// Init orchestrator
	orch := report.NewOrchestrator(col, src, chart.NewRenderer(), cfg.Report.TmpDir)

	// Init mailer
	m := mailer.New(cfg.Mail)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, orch, m, rec, cfg)
	if err := sched.RegisterAll(cfg.Schedule.ReportCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing report task now")
		go sched.RunNow()
	}

	log.Println("[INFO] spongecake-autoreport is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] spongecake-autoreport stopped")
}
