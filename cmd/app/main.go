// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"telegram-announce-bot/internal/application"
	"telegram-announce-bot/internal/config"
	"telegram-announce-bot/internal/domain/ports/adapter"
	"telegram-announce-bot/internal/domain/ports/repository"
	tele "telegram-announce-bot/internal/infra/adapters/telegram"
	pg "telegram-announce-bot/internal/infra/db/postgres"
	"telegram-announce-bot/internal/infra/logging"
	"telegram-announce-bot/internal/infra/memory"
	"telegram-announce-bot/internal/infra/metrics"
	red "telegram-announce-bot/internal/infra/redis"
	"telegram-announce-bot/internal/infra/web"
	"telegram-announce-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs and outbound deliveries diverted to a log-only transport (inbound polling still uses the real bot token)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Registries ----
	admins := cfg.AdminRegistry()
	destinations := cfg.DestinationRegistry()
	logger.Info().
		Int("super_admins", admins.SuperAdminCount()).
		Int("destinations", destinations.Len()).
		Msg("registries loaded")

	// ---- Redis (optional: rate limiting + session expiry) ----
	var rateLimiter *red.RateLimiter
	var sessions repository.SessionRepository
	var sessionCounter web.SessionCounter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
		sessions = red.NewSessionRepo(redisClient, cfg.Redis.SessionTTL)
		logger.Info().Dur("session_ttl", cfg.Redis.SessionTTL).Msg("redis session store enabled")
	} else {
		memStore := memory.NewSessionRepo()
		sessions = memStore
		sessionCounter = memStore
	}

	// ---- Postgres (optional: delivery audit log) ----
	var deliveries repository.DeliveryLogRepository
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		deliveries = pg.NewDeliveryLogRepo(pool)
		logger.Info().Msg("delivery audit log enabled")
	}

	// ---- Facade over the announcement flow ----
	// The real adapter is both inbound transport and the outbound send the
	// dispatcher uses, so wire it in two steps.
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, rateLimiter, logger)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	var sender adapter.TelegramBotAdapter = botAdapter
	if cfg.Runtime.Dev {
		// Announcements are logged instead of broadcast while testing flows.
		sender = tele.NewNoopBotAdapter()
		logger.Warn().Msg("dev mode: deliveries go to the noop transport")
	}
	deliveryUC := usecase.NewDeliveryUseCase(sender, deliveries, logger)
	announceUC := usecase.NewAnnounceUseCase(admins, sessions, destinations, deliveryUC, logger)
	facade := application.NewBotFacade(announceUC, admins, destinations, logger)
	botAdapter.SetFacade(facade)

	if strings.ToLower(cfg.Bot.Mode) != "" && strings.ToLower(cfg.Bot.Mode) != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Ops HTTP server ----
	opsSrv := web.NewServer(sessionCounter, destinations.Len(), cfg.Ops.APIKey, logger)
	mux := http.NewServeMux()
	opsSrv.Register(mux)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Ops.Port), Handler: mux}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("ops server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	botAdapter.StopPolling()
	_ = server.Close()
	cancel()
}
