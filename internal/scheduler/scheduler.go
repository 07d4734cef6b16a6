package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/assembler"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/config"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/mailer"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/recorder"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/report"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/watchlist"
)

// Scheduler runs report generation on a cron schedule and delivers the
// result by mail.
type Scheduler struct {
	Cron         *cron.Cron
	Orchestrator *report.Orchestrator
	Mailer       *mailer.Mailer
	Recorder     recorder.Recorder
	Cfg          *config.Config
	Ctx          context.Context
}

// NewScheduler creates a Scheduler.
func NewScheduler(ctx context.Context, orch *report.Orchestrator, m *mailer.Mailer, rec recorder.Recorder, cfg *config.Config) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Orchestrator: orch,
		Mailer:       m,
		Recorder:     rec,
		Cfg:          cfg,
		Ctx:          ctx,
	}
}

// RegisterAll registers the report task.
func (s *Scheduler) RegisterAll(reportCron string) error {
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the report task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.reportTask()
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running report task")

	entries, err := watchlist.Load(s.Cfg.Report.WatchlistPath)
	if err != nil {
		log.Printf("[ERROR] load watchlist: %v", err)
		return
	}

	doc, results, err := s.Orchestrator.Run(entries)
	if err != nil {
		log.Printf("[ERROR] report run: %v", err)
		return
	}
	if len(doc.Sections) == 0 {
		log.Println("[WARN] all instruments skipped, nothing to send")
		s.record(doc, results, "")
		return
	}

	runDate := doc.GeneratedAt.Format("2006-01-02")

	asm := assembler.New()
	asm.AppendDocument(doc)
	pdfPath, err := asm.WriteFile(filepath.Join(doc.WorkDir, "spongecake_"+runDate))
	if err != nil {
		log.Printf("[ERROR] assemble pdf: %v", err)
		return
	}

	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		log.Printf("[ERROR] read pdf: %v", err)
		return
	}

	subject := fmt.Sprintf("%s %s", s.Cfg.Report.SubjectPrefix, runDate)
	body := fmt.Sprintf("Report for %s attached: %d instruments, %d skipped.",
		runDate, len(doc.Sections), len(results)-len(doc.Sections))
	attachment := mailer.Attachment{
		Filename:    filepath.Base(pdfPath),
		ContentType: "application/pdf",
		Content:     pdfBytes,
	}
	if err := s.Mailer.SendWithRetry(s.Ctx, subject, body, []mailer.Attachment{attachment}, 3); err != nil {
		log.Printf("[ERROR] send report: %v", err)
		return
	}
	log.Printf("[INFO] report sent: %s (%d sections)", pdfPath, len(doc.Sections))

	s.record(doc, results, pdfPath)
}

func (s *Scheduler) record(doc *model.ReportDocument, results []model.InstrumentResult, pdfPath string) {
	if err := s.Recorder.RecordRun(recorder.RunRecord{
		GeneratedAt:  doc.GeneratedAt,
		DocumentPath: pdfPath,
		SectionCount: len(doc.Sections),
		SkippedCount: len(results) - len(doc.Sections),
	}, results); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}
