// Command worker is the scheduled worker core's process entrypoint: it
// wires the Sheet Gateway, Config Store, Row Lock Manager, Browser
// Session Provider, Subscription Workflow, Result Writer, and notify
// Dispatcher together and runs the Worker Loop until a shutdown signal
// arrives. Assembly follows the teacher's cmd/scheduler/main.go: load
// config, build a logger, wire dependencies by hand, start background
// goroutines, block on signal.NotifyContext, shut down with a bounded
// grace period.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/averyhale/ytprem-scheduler/config"
	"github.com/averyhale/ytprem-scheduler/internal/admin"
	"github.com/averyhale/ytprem-scheduler/internal/admin/handler"
	"github.com/averyhale/ytprem-scheduler/internal/browsersession"
	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/configstore"
	"github.com/averyhale/ytprem-scheduler/internal/health"
	"github.com/averyhale/ytprem-scheduler/internal/metrics"
	"github.com/averyhale/ytprem-scheduler/internal/notify"
	"github.com/averyhale/ytprem-scheduler/internal/obslog"
	"github.com/averyhale/ytprem-scheduler/internal/resultwriter"
	"github.com/averyhale/ytprem-scheduler/internal/rowlock"
	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
	"github.com/averyhale/ytprem-scheduler/internal/worker"
)

const (
	integratedWorkerTab = "Integrated Worker"
	profileMappingTab   = "Profile Mapping"
	lockColumn          = "J"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c, err := clock.New(cfg.TimeZone)
	if err != nil {
		stop()
		log.Fatalf("clock: %v", err)
	}

	gw, err := sheetsgw.New(ctx, cfg.SheetsCredentialsPath, cfg.GoogleSheetsID, logger)
	if err != nil {
		stop()
		log.Fatalf("sheets gateway: %v", err)
	}
	logger.Info("sheets gateway connected", "spreadsheet_id", cfg.GoogleSheetsID)

	metrics.Register()
	checker := health.NewChecker(gw, logger, prometheus.DefaultRegisterer)
	metrics.WorkerStartTime.SetToCurrentTime()

	cfgStore := configstore.New(gw, logger)

	workerID := rowlock.WorkerID(0)
	lockMgr := rowlock.New(gw, c, integratedWorkerTab, lockColumn, workerID)

	sessions := browsersession.New(browsersession.Config{
		ProfileServiceURL: cfg.ProfileServiceURL,
	})

	dispatcher := buildNotifyDispatcher(cfg, logger)

	allChannels := notify.EnabledChannels(true, true, true, true)
	digestScheduler := notify.NewDigestScheduler(logger, cfg.DigestCronExpr, func(fireCtx context.Context, events []notify.Event) {
		dispatcher.Dispatch(fireCtx, notify.Event{
			Category: "digest",
			Summary:  fmt.Sprintf("%d event(s) since last digest", len(events)),
		}, allChannels)
		for _, ev := range events {
			logger.Info("digest item", "category", ev.Category, "email", ev.Email, "summary", ev.Summary)
		}
	})
	go digestScheduler.Run(ctx)

	cols := resultwriter.Columns{
		Status:                    "F",
		NextBillingDate:           "G",
		ResultText:                "I",
		RetryCount:                "K",
		LockValue:                 lockColumn,
		PaymentPendingFirstSeenAt: "L",
		PaymentPendingNextRetryAt: "M",
	}
	writer := resultwriter.New(gw, c, dispatcher, digestScheduler, integratedWorkerTab, cols, logger)

	rows := worker.NewSheetRows(gw, c, integratedWorkerTab, profileMappingTab)

	loop := worker.New(c, cfgStore, rows, lockMgr, sessions, writer, workerID, logger)

	loopDone := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(loopDone)
	}()

	rowFinder := handler.NewSheetRowFinder(gw, integratedWorkerTab)
	rowHandler := handler.NewRowHandler(rowFinder, lockMgr)
	router := admin.NewRouter(logger, checker, rowHandler, []byte(cfg.AdminJWTSecret))
	adminSrv := &http.Server{Addr: ":" + cfg.AdminPort, Handler: router}

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)

	go func() {
		logger.Info("admin server started", "port", cfg.AdminPort)
		if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin server", "error", err)
		}
	}()
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutdown signal received, draining in-flight tick")
	<-loopDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	metrics.WorkerShutdownsTotal.Inc()
	logger.Info("worker shut down")
}

func buildNotifyDispatcher(cfg *config.Config, logger *slog.Logger) *notify.Dispatcher {
	var senders []notify.Notifier
	senders = append(senders, notify.NewConsoleSender(logger))
	if cfg.ResendAPIKey != "" {
		senders = append(senders, notify.NewResendSender(cfg.ResendAPIKey, cfg.ResendFrom, cfg.ResendFrom))
	}
	if cfg.NotifyWebhookURL != "" {
		senders = append(senders, notify.NewWebhookSender(cfg.NotifyWebhookURL))
	}
	return notify.NewDispatcher(logger, senders...)
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(obslog.NewContextHandler(inner))
}
