package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/config"
	"github.com/ykvlv/ice-bot/internal/i18n"
	"github.com/ykvlv/ice-bot/internal/ice"
	"github.com/ykvlv/ice-bot/internal/relay"
	"github.com/ykvlv/ice-bot/internal/scheduler"
	"github.com/ykvlv/ice-bot/internal/store"
	"github.com/ykvlv/ice-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI // nil when BOT_TOKEN is empty
	httpSrv *http.Server
	records *store.Guard
	dir     *store.Directory
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	if cfg.BotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		bot.Debug = false
		a.bot = bot
	}

	dir, err := store.LoadDirectory(cfg.UsersPath)
	if err != nil {
		return nil, fmt.Errorf("users directory: %w", err)
	}
	a.dir = dir
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting ice-bot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Bool("telegram", a.bot != nil),
		zap.Int("users", a.dir.Len()),
		zap.Duration("sweep_interval", a.cfg.SweepInterval),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath, a.log)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.records = store.NewGuard(repo)
	a.log.Info("sqlite ready")

	fb := relay.NewDispatcher(a.dir, i18n.New(a.cfg.Locale), a.log)
	svc := ice.NewService(a.records, a.log)
	registry := ice.NewRegistry(svc, fb, a.log)

	var mail relay.Sink = relay.NewLogSink(a.log)
	if a.cfg.SMTPHost != "" {
		mail = relay.NewMailSink(relay.MailConfig{
			Host:     a.cfg.SMTPHost,
			Port:     a.cfg.SMTPPort,
			User:     a.cfg.SMTPUser,
			Password: a.cfg.SMTPPassword,
			From:     a.cfg.SMTPFrom,
			FromName: a.cfg.SMTPFromName,
		}, a.dir, a.log)
	}
	var chat relay.Sink
	if a.bot != nil {
		a.router = telegram.NewRouter(a.bot, a.log, registry, a.dir)
		chat = relay.NewChatSink(a.router, a.dir)
	}
	sink := relay.NewMux(mail, chat, a.log)
	if a.router != nil {
		a.router.SetSink(sink)
	}

	a.httpSrv = &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      newMux(registry, sink, a.log),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(a.records, fb, sink, a.log, a.cfg.SweepInterval)
	go sched.Run(ctx)

	// A nil channel blocks forever, leaving only the shutdown case.
	var updCh tgbotapi.UpdatesChannel
	if a.bot != nil {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		updCh = a.bot.GetUpdatesChan(u)
	}

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			return a.shutdown()

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

func (a *App) shutdown() error {
	if a.bot != nil {
		a.bot.StopReceivingUpdates()
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}

	if a.records != nil {
		if err := a.records.Close(); err != nil {
			a.log.Warn("close store failed", zap.Error(err))
		}
	}
	return nil
}
