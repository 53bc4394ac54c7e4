package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rfpwriter/api/internal/app"
	"rfpwriter/api/internal/catalog"
	"rfpwriter/api/internal/config"
	"rfpwriter/api/internal/export"
	"rfpwriter/api/internal/logger"
	"rfpwriter/api/internal/session"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal("catalog load failed", "path", cfg.CatalogPath, "error", err)
	}

	var sessions session.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Info("using Redis for answer sessions")
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatal("redis connection failed", "error", err)
		}
		sessions = redisStore
	} else {
		log.Info("using in-memory answer sessions")
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}
	defer sessions.Close()

	exporter := export.NewService(export.Options{
		PDFEngine:     cfg.PDFEngine,
		ChromeTimeout: cfg.ChromeTimeout,
		DefaultTitle:  cfg.DocumentTitle,
		Logger:        log.With("component", "export"),
	})
	service := app.New(cfg, cat, sessions, exporter, log)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, log.With("component", "http"))
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// chrome printing can take a while
		WriteTimeout: cfg.ChromeTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("RFP API listening",
			"addr", cfg.Addr,
			"sections", len(cat.Sections()),
			"questions", cat.QuestionCount(),
			"pdf_engine", cfg.PDFEngine,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}
