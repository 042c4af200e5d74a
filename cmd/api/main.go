package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/filedrop/filedrop/internal/checksum"
	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/counter"
	"github.com/filedrop/filedrop/internal/file"
	"github.com/filedrop/filedrop/internal/logger"
	"github.com/filedrop/filedrop/internal/mirror"
	"github.com/filedrop/filedrop/internal/notify"
	"github.com/filedrop/filedrop/internal/object"
	"github.com/filedrop/filedrop/internal/server"
	"github.com/filedrop/filedrop/internal/thumbnail"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		logg.Fatal("create data dir", zap.Error(err))
	}

	store, err := object.NewStore(cfg.Storage.FilesDir)
	if err != nil {
		logg.Fatal("open object store", zap.Error(err))
	}

	sums, err := checksum.Open(cfg.Storage.ChecksumPath())
	if err != nil {
		logg.Fatal("open checksum cache", zap.Error(err))
	}

	counts, err := counter.Open(cfg.Storage.CounterPath())
	if err != nil {
		logg.Fatal("open counter ledger", zap.Error(err))
	}

	var replica *mirror.Mirror
	if cfg.Mirror.Enabled() {
		client, err := mirror.NewClient(cfg.Mirror.Endpoint, cfg.Mirror.AccessKey, cfg.Mirror.SecretKey, cfg.Mirror.UseSSL)
		if err != nil {
			logg.Fatal("connect mirror", zap.Error(err))
		}
		replica = mirror.New(client, cfg.Mirror.Bucket)
		if err := replica.EnsureBucket(ctx); err != nil {
			logg.Fatal("ensure mirror bucket", zap.Error(err))
		}
	}

	thumbs := thumbnail.New(cfg.Thumbnail.FFmpegPath, cfg.Thumbnail.Timeout)
	hook := notify.New(cfg.Webhook.URL, cfg.Webhook.Name, logg)

	fileService := file.NewService(store, sums, counts, thumbs, hook, replica, cfg.Server.BaseURL, logg)

	router := server.NewRouter(server.Dependencies{
		Config:      cfg,
		FileService: fileService,
		Log:         logg,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("filedrop API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}

	// let detached thumbnail, mirror, and webhook tasks settle
	fileService.Wait()
	hook.Wait()
}
