package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/raewoo0908/mp3Extractor/internal/config"
	"github.com/raewoo0908/mp3Extractor/internal/extract"
	"github.com/raewoo0908/mp3Extractor/internal/httpapi"
	"github.com/raewoo0908/mp3Extractor/internal/jobs"
	"github.com/raewoo0908/mp3Extractor/pkg/log"
)

type cronRunner interface {
	Start()
	Stop() context.Context
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	log.InitLogger(log.ParseLevel(cfg.Server.LogLevel))

	if err := os.MkdirAll(cfg.Jobs.DownloadDir, 0o755); err != nil {
		log.Fatal("Failed to create download directory %s: %v", cfg.Jobs.DownloadDir, err)
	}

	cookieFile := cfg.Extract.CookieFile
	if cookieFile == "" {
		cookieFile = extract.FindCookieFile()
	}
	if cookieFile != "" {
		extract.LogCookieSummary(cookieFile)
	} else {
		log.Warn("No cookie file found - using guest mode")
	}

	store := jobs.NewStore(cfg.Jobs.MaxConcurrent)
	runner := jobs.NewRunner(
		store,
		extract.NewYtDlp(cfg.Extract.YtDlpPath, cookieFile),
		extract.NewFFmpeg(cfg.Extract.FFmpegPath),
		cfg.Jobs.DownloadDir,
	)
	reaper := jobs.NewReaper(store, cfg.Jobs.TTL)

	cronJobs := cron.New()
	if _, err := cronJobs.AddFunc(cfg.Jobs.GCInterval, func() {
		if reclaimed := reaper.Sweep(); reclaimed > 0 {
			log.Info("Periodic cleanup: %d task(s) reclaimed", reclaimed)
		}
	}); err != nil {
		log.Fatal("Failed to schedule cleanup: %v", err)
	}

	server := httpapi.NewServer(store,
		func(jobID, url string) {
			go runner.Run(context.Background(), jobID, url)
		},
		httpapi.WithUI(cfg.Server.UIDir, cfg.Server.UIEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runWithComponents(ctx, cfg, cronJobs, server); err != nil {
		log.Fatal("Server exited: %v", err)
	}
}

func runWithComponents(ctx context.Context, cfg *config.Config, cronJobs cronRunner, srv httpServer) error {
	cronJobs.Start()
	defer cronJobs.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
