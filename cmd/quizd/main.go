package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	api "github.com/mind-engage/selfcheck/internal/api/http"
	auth "github.com/mind-engage/selfcheck/internal/auth/middleware"
	"github.com/mind-engage/selfcheck/internal/catalogue"
	"github.com/mind-engage/selfcheck/internal/config"
	"github.com/mind-engage/selfcheck/internal/controller"
	"github.com/mind-engage/selfcheck/internal/db"
	"github.com/mind-engage/selfcheck/internal/metrics"
	"github.com/mind-engage/selfcheck/internal/question"
	"github.com/mind-engage/selfcheck/internal/session"
	"github.com/mind-engage/selfcheck/internal/storage"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	importOnly := flag.Bool("import", false, "copy every set under BLOB_BASE_PATH/sets into the SQL catalogue and exit")
	addFile := flag.String("add", "", "validate a set document, store it in the configured catalogue and exit")
	deleteID := flag.String("delete", "", "remove a set from the SQL catalogue and exit")
	flag.Parse()

	cfg := config.Load(*envFile)
	logger := newLogger(cfg)
	defer logger.Sync()

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		logger.Fatal("blob store", zap.Error(err))
	}
	files := catalogue.NewFileSource(bs)

	var (
		src   catalogue.Source = files
		dbh   *sql.DB
		ready func(context.Context) error
	)
	if *addFile != "" && cfg.CatalogueSource != "sql" {
		addSet(logger, *addFile, files.Add)
		return
	}

	if cfg.CatalogueSource == "sql" || *importOnly || *deleteID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		dbh, err = db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			logger.Fatal("db open failed", zap.Error(err), zap.String("driver", cfg.DBDriver))
		}
		defer dbh.Close()
		sqlStore := catalogue.NewSQLStore(dbh)

		if *importOnly {
			n, err := catalogue.Import(context.Background(), files, sqlStore)
			if err != nil {
				logger.Fatal("import failed", zap.Error(err), zap.Int("imported", n))
			}
			logger.Info("import finished", zap.Int("sets", n), zap.String("from", cfg.BlobBasePath))
			return
		}
		if *deleteID != "" {
			if err := sqlStore.Delete(context.Background(), *deleteID); err != nil {
				logger.Fatal("delete failed", zap.Error(err), zap.String("set", *deleteID))
			}
			logger.Info("set deleted", zap.String("set", *deleteID))
			return
		}
		if *addFile != "" {
			addSet(logger, *addFile, func(ctx context.Context, name string, b []byte) (question.Set, error) {
				set, err := catalogue.Decode(b)
				if err != nil {
					return question.Set{}, fmt.Errorf("%s: %w", name, err)
				}
				return set, sqlStore.Put(ctx, set)
			})
			return
		}
		src = sqlStore
		ready = dbh.PingContext
	}

	m := metrics.New()
	pages := session.NewStore(src, logger,
		session.WithPolicy(controller.ParsePolicy(cfg.UnparsedPolicy)),
		session.WithIdleTTL(cfg.PageIdleTTL),
		session.WithObserver(m),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go pages.Run(ctx, time.Minute)

	handler := api.NewRouter(api.Deps{
		Catalogue:   src,
		Pages:       pages,
		Auth:        auth.NewAuthService(cfg.PageTokenSecret, cfg.PageTokenTTL),
		Metrics:     m,
		Blobs:       bs,
		CORSOrigins: cfg.CORSOrigins,
		Ready:       ready,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("mode", string(cfg.Mode)),
			zap.String("catalogue", cfg.CatalogueSource),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan
	logger.Info("shutting down")
	stop()

	sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exited")
}

func addSet(logger *zap.Logger, name string, add func(context.Context, string, []byte) (question.Set, error)) {
	b, err := os.ReadFile(name)
	if err != nil {
		logger.Fatal("read set document", zap.Error(err), zap.String("file", name))
	}
	set, err := add(context.Background(), name, b)
	if err != nil {
		logger.Fatal("add failed", zap.Error(err), zap.String("file", name))
	}
	logger.Info("set added", zap.String("set", set.ID), zap.Int("questions", len(set.Questions)))
}

func newLogger(cfg config.Config) *zap.Logger {
	zc := zap.NewProductionConfig()
	if cfg.Mode == config.ModeOffline {
		zc = zap.NewDevelopmentConfig()
	}
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zc.Level = lvl
	}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
