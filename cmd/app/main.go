package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"telegram-offers-bot/internal/config"
	"telegram-offers-bot/internal/domain/ports/adapter"
	tele "telegram-offers-bot/internal/infra/adapters/telegram"
	"telegram-offers-bot/internal/infra/feed"
	httpapi "telegram-offers-bot/internal/infra/http"
	"telegram-offers-bot/internal/infra/logging"
	"telegram-offers-bot/internal/infra/metrics"
	"telegram-offers-bot/internal/infra/sched"
	"telegram-offers-bot/internal/infra/state"
	"telegram-offers-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop-friendly)")
	flag.Parse()

	// .env is optional; BOT_TOKEN may come from it.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Persistence ----
	states := state.NewStateFile(cfg.State.Path, logger)
	taxonomies := state.NewTaxonomyFile(cfg.State.TaxonomyPath, logger)

	// ---- Feed ----
	fetcher := feed.NewCSVFetcher(cfg.Feed.URL, logger)

	// ---- Telegram ----
	// A dev run may omit the token; broadcasts and notices then go through
	// the logging noop adapter and polling is skipped.
	var bot adapter.BotAdapter
	var realBot *tele.RealBotAdapter
	if cfg.Bot.Token == "" {
		logger.Warn().Msg("no bot token configured, using noop telegram adapter")
		bot = tele.NewNoopBotAdapter()
	} else {
		realBot, err = tele.NewRealBotAdapter(cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		bot = realBot
	}

	// ---- Use cases ----
	deliverer := usecase.NewDeliverer(bot, cfg.Delivery.Pace, cfg.Branding.LogoURL, logger)
	taxonomyUC := usecase.NewTaxonomyUseCase(taxonomies, fetcher, logger)
	refreshUC := usecase.NewRefreshUseCase(fetcher, states, taxonomyUC, deliverer, bot, cfg.Channel.ID, logger)
	queryUC := usecase.NewQueryUseCase(fetcher, deliverer, bot, logger)

	if realBot != nil {
		realBot.Bind(refreshUC, queryUC, taxonomyUC)
		go func() {
			if err := realBot.StartPolling(ctx); err != nil && err != context.Canceled {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Scheduled refresh ----
	worker := sched.NewRefreshWorker(cfg.InitialDelay(), cfg.PollInterval(), refreshUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Metrics / health server ----
	var srv *httpapi.Server
	if cfg.Metrics.Port > 0 {
		srv = httpapi.NewServer(cfg.Metrics.Port, logger)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("http server error")
			}
		}()
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	if realBot != nil {
		realBot.StopPolling()
	}
	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
