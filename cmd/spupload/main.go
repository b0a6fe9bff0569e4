// cmd/spupload/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spupload/internal/orchestrator"
	"spupload/internal/report"
	"spupload/internal/routing"
	"spupload/internal/upload"
	"spupload/pkg/config"
	"spupload/pkg/db"
	"spupload/pkg/graph"
	"spupload/pkg/logger"
	"spupload/pkg/metrics"
	"spupload/pkg/tracing"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogDir)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, traced := tracing.Init(ctx, log)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(sctx)
	}()
	transport := tracing.Transport(nil, traced)

	var preflight error
	rules := routing.DefaultRules()
	if cfg.RoutingRulesFile != "" {
		loaded, err := routing.LoadFile(cfg.RoutingRulesFile)
		if err != nil {
			log.Errorw("routing rules", "file", cfg.RoutingRulesFile, "err", err)
			preflight = err
		} else {
			rules = loaded
			log.Infow("routing rules loaded", "file", cfg.RoutingRulesFile, "rules", rules.Len())
		}
	}

	client := graph.NewClient(cfg.GraphBaseURL, cfg.HTTPTimeout, transport)
	rec := metrics.New()
	svc := &orchestrator.Service{
		Tokens:   graph.NewTokenProvider(cfg.AuthorityHost, cfg.HTTPTimeout, transport),
		Resolver: client,
		Uploader: upload.New(client, rules, upload.WithMetrics(rec)),
		Reporter: report.New(client, cfg.SenderEmail, cfg.Recipients(), report.WithLogger(log)),
		Settings: orchestrator.Settings{
			Credential:   graph.Credential{TenantID: cfg.TenantID, ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret},
			Domain:       cfg.Domain,
			SiteName:     cfg.SiteName,
			DriveName:    cfg.DriveName,
			SourceFolder: cfg.SourceFolder,
		},
		Preflight: preflight,
		LogPath:   cfg.LogFilePath,
		Log:       log,
		Metrics:   rec,
	}

	// Overlapping scheduled runs are kept apart by a Redis lock when one is
	// configured. Without Redis the job runs unlocked.
	rdb, err := db.Redis(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Warnw("redis unavailable, running without run lock", "err", err)
	}
	if rdb != nil {
		defer rdb.Close()
		lock := db.NewRunLock(rdb, db.RunLockKey(cfg.SiteName, cfg.DriveName), "", cfg.RunLockTTL)
		switch err := lock.Acquire(ctx); {
		case errors.Is(err, db.ErrLockHeld):
			log.Infow("another run holds the lock, exiting", "key", lock.Key())
			return
		case err != nil:
			log.Warnw("run lock not acquired, running without it", "key", lock.Key(), "err", err)
		default:
			defer func() {
				if err := lock.Release(context.Background()); err != nil {
					log.Warnw("run lock release", "key", lock.Key(), "err", err)
				}
			}()
		}
	}

	res := svc.Run(ctx)
	log.Infow("spupload finished", "result", res.String(), "log", res.LogPath)

	if err := rec.Push(ctx, cfg.PushgatewayURL, tracing.ServiceName, cfg.SiteName); err != nil {
		log.Warnw("metrics push", "url", cfg.PushgatewayURL, "err", err)
	}
}
