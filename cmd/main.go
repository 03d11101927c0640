package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecosort/config"
	"ecosort/internal/api/rest"
	"ecosort/internal/api/telegram"
	app "ecosort/internal/application"
	"ecosort/internal/container"
	"ecosort/internal/domain/port"
	"ecosort/internal/infrastructure/camera"
	"ecosort/internal/infrastructure/gemini"
	"ecosort/internal/infrastructure/storage"
	"ecosort/internal/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Модель подключается только при наличии ключа, иначе демо-режим
	var model port.VisionModel
	var client *gemini.Client
	if cfg.MockMode() {
		lg.Warn("GOOGLE_API_KEY is not set, running in demo mode")
	} else {
		client = gemini.New(cfg.GoogleAPIKey, cfg.GeminiModel, lg)
		model = client
		defer func() {
			if err := client.Close(); err != nil {
				lg.Error("close gemini client", "error", err)
			}
		}()
	}

	// Собираем сервисы приложения
	appContainer := container.New(container.Settings{
		Engine: app.EngineConfig{
			APIKey:             cfg.GoogleAPIKey,
			Model:              cfg.GeminiModel,
			MinRequestInterval: cfg.MinRequestInterval,
			QuotaCooldown:      cfg.QuotaCooldown,
			SharedQuota:        cfg.SharedQuota,
		},
		DetectionInterval:   cfg.DetectionInterval,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	}, model, storage.NewMemorySessionRepository(), lg)

	server := rest.NewServer(appContainer, rest.Options{
		Addr:        cfg.HTTPAddr,
		CORSOrigins: cfg.CORSOrigins,
		Model:       cfg.GeminiModel,
	}, lg)
	go func() {
		if err := server.Start(); err != nil {
			lg.Error("http server failed", "error", err)
			cancel()
		}
	}()

	if cfg.CameraDevice != "" {
		capture := camera.NewCapture(cfg.CameraDevice, appContainer.FrameProcessor, lg)
		go func() {
			if err := capture.Run(ctx); err != nil {
				lg.Error("camera capture failed", "device", cfg.CameraDevice, "error", err)
			}
		}()
	}

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, lg)
		if err != nil {
			lg.Error("failed to create telegram bot", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := bot.Run(ctx); err != nil {
				lg.Error("telegram bot stopped", "error", err)
			}
		}()
	} else {
		lg.Info("TELEGRAM_TOKEN is not set, telegram bot disabled")
	}

	lg.Info("EcoSort is running", "address", cfg.HTTPAddr, "demo_mode", appContainer.MockMode())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		lg.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		lg.Error("stop http server", "error", err)
	}

	lg.Info("shutdown complete")
}
