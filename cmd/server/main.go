package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	"liveqa/bot"
	"liveqa/impl/core"
	"liveqa/impl/repository"
	"liveqa/internal/config"
	"liveqa/internal/database"
	"liveqa/internal/http-server/api"
	"liveqa/internal/live"
	"liveqa/lib/logger"
	"liveqa/lib/sl"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	log := logger.SetupLogger(conf.Env, *logPath)
	log.Info("starting liveqa", slog.String("config", *configPath), slog.String("env", conf.Env))

	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.ApiKey, log, bot.BotConfig{
			AdminIds:       conf.Telegram.AdminIds,
			DigestInterval: conf.Telegram.DigestInterval,
		})
		if err != nil {
			log.Error("telegram bot", sl.Err(err))
		} else {
			level, ok := bot.ParseLevel(conf.Telegram.LogLevel)
			if !ok {
				level = slog.LevelError
			}
			log = logger.WithTelegram(log, tgBot, level)
		}
	}

	injector := setupDI(conf, log)

	handler, err := do.Invoke[*core.Core](injector)
	if err != nil {
		log.Error("core initialization", sl.Err(err))
		os.Exit(1)
	}

	if tgBot != nil {
		tgBot.SetCore(handler)
		go func() {
			if err := tgBot.Start(); err != nil {
				log.Error("starting telegram bot", sl.Err(err))
			}
		}()
	}

	server := api.New(conf, log, handler)
	done := make(chan struct{})
	go func() {
		if err := server.Start(); err != nil {
			log.Error("api server", sl.Err(err))
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("shutting down")
	case <-done:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = server.Shutdown(ctx); err != nil {
		log.Error("api server shutdown", sl.Err(err))
	}
	if hub, err := do.Invoke[*live.Hub](injector); err == nil {
		hub.Close()
	}
	if tgBot != nil {
		tgBot.Stop()
	}
	if store, err := do.Invoke[repository.Store](injector); err == nil {
		store.Close()
	}
	log.Info("service stopped")
}

func setupDI(conf *config.Config, log *slog.Logger) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, log)
	database.RegisterDI(injector)
	live.RegisterDI(injector)
	core.RegisterDI(injector)

	return injector
}
