package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"ledgerbot/internal/amqp"
	"ledgerbot/internal/backend"
	"ledgerbot/internal/bot"
	"ledgerbot/internal/cache"
	"ledgerbot/internal/cli"
	"ledgerbot/internal/config"
	ledgerhttp "ledgerbot/internal/http"
	"ledgerbot/internal/ledger"
	applog "ledgerbot/internal/log"
	"ledgerbot/internal/notify"
	"ledgerbot/internal/session"
	"ledgerbot/internal/telegram"
	"ledgerbot/internal/tts"
)

const (
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.ShutdownContext(context.Background(), logger)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Bot stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close storage", applog.FieldError, err)
		}
	}()

	store, err := ledger.Open(ctx, res.Repository)
	if err != nil {
		return err
	}
	snap := store.Snapshot(ctx)
	logger.Info("Ledger loaded",
		"backend", backendCfg.Type.String(),
		"entries", len(snap.Entries),
		applog.FieldTotal, snap.Total.String())

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return err
	}
	logger.Info("Authorized on Telegram", "username", api.Self.UserName)
	gateway := telegram.NewGateway(api)

	var sinks []notify.Sink
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		sinks = append(sinks, client)
		logger.Info("Publishing ledger events",
			"exchange", cfg.AMQPExchange,
			"routing_key", cfg.AMQPRoutingKey)
	}
	notifier := notify.NewDispatcher(gateway, cfg.BroadcastChatID, logger, sinks...)

	var voice bot.Synthesizer
	if cfg.TTSEnabled {
		g, err := tts.NewGoogle(ctx, tts.Config{
			Language:           cfg.TTSLanguage,
			VoiceName:          cfg.TTSVoice,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.CredentialsFile(),
		})
		if err != nil {
			// Voice is optional; the bot still answers in text.
			logger.Warn("Text-to-speech disabled", applog.FieldError, err)
		} else {
			voice = g
		}
	}

	sessions := session.NewStore(cfg.SessionMaxChats, cfg.SessionTTL)
	ctrl := bot.NewController(bot.Deps{
		Ledger:   store,
		Sessions: sessions,
		Gateway:  gateway,
		Notifier: notifier,
		Voice:    voice,
		Logger:   logger,
	})
	serializer := bot.NewSerializer(ctrl.Handle, logger)
	receiver := telegram.NewReceiver(api, serializer, int(cfg.PollTimeout.Seconds()), logger)

	sweeper := cache.NewManager()
	sweeper.Register(sessions.Cleaner())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return receiver.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx, sessionSweepInterval) })

	if cfg.HTTPPort != "" {
		srv := ledgerhttp.NewServer(":"+cfg.HTTPPort, store, res.Repository, logger)
		g.Go(func() error {
			logger.Info("Ops server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	logger.Info("Bot started", applog.FieldOperation, applog.OpStartup)
	err = g.Wait()

	logger.Info("Draining in-flight chats", "active", serializer.Active(), applog.FieldOperation, applog.OpShutdown)
	serializer.Wait()
	return err
}
