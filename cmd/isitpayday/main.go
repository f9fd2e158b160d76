package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"isitpayday/internal/app"
	"isitpayday/internal/infra/config"
	"isitpayday/internal/infra/httpapi"
	"isitpayday/internal/infra/logger"
	"isitpayday/internal/infra/metrics"
	"isitpayday/internal/infra/scheduler"
	"isitpayday/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

var cfg *config.AppConfig

var rootCmd = &cobra.Command{
	Use:           "isitpayday",
	Short:         "IsItPayday - next payday calculator",
	Long:          "IsItPayday computes the next payday for recurring pay schedules, moving paydays off weekends and public holidays.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the payday tracker",
	Long:  "Start the HTTP API, the payday poller and, when a token is configured, the Telegram bot",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg, os.Stdout)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	log := logger.Component("main")
	log.WithFields(logrus.Fields{
		"environment":    cfg.Environment,
		"holiday_source": cfg.HolidaySource,
		"cache_backend":  cfg.CacheBackend,
		"today_policy":   cfg.TodayPolicy,
	}).Info("IsItPayday starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	stack := buildHolidayStack(ctx, cfg, m)
	defer stack.Close()
	log.Info("Holiday source initialized.")

	engine := app.NewPaydayEngine(stack.Cached, cfg.TodayPolicy, logger.Component("engine"), m)

	profiles, closeProfiles, err := buildProfileRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProfiles()
	log.Info("Profile repository initialized.")

	var (
		bot      *telebot.Bot
		notifier app.Notifier
	)
	if cfg.TelegramToken != "" {
		bot, err = newBot(cfg.TelegramToken, logger.Component("telebot"))
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
		if cfg.TelegramChatID != 0 {
			notifier = telegram.NewPaydayNotifier(telegram.NewTelebotAdapter(bot), cfg.TelegramChatID, logger.Component("notifier"))
		} else {
			log.Warn("TELEGRAM_CHAT_ID is not set, payday notices are disabled.")
		}
	} else {
		log.Info("TELEGRAM_TOKEN is not set, Telegram bot is disabled.")
	}

	tracker := app.NewTrackerService(engine, profiles, notifier, m, logger.Component("tracker"))
	profileService := app.NewProfileService(profiles, tracker, cfg.TelegramAdminID, logger.Component("profiles"))

	paydayScheduler := scheduler.NewPaydayScheduler(
		tracker,
		stack.Cached,
		logger.Component("scheduler"),
		cfg.CronSpecPoll,
		cfg.CronSpecCacheReset,
	)
	if err := paydayScheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer paydayScheduler.Stop()

	if bot != nil {
		telegram.RegisterPaydayHandlers(bot, tracker, logger.Component("telegram"))
		telegram.RegisterAdminHandlers(ctx, bot, profileService, logger.Component("telegram"))
		go bot.Start()
		defer bot.Stop()
		log.Info("Telegram bot started.")
	}

	handler := &httpapi.Handler{
		Engine:    engine,
		Tracker:   tracker,
		Profiles:  profileService,
		Countries: stack.Countries,
		Logger:    logger.Component("http"),
		APIToken:  cfg.APIToken,
	}
	if cfg.APIToken == "" {
		log.Warn("API_TOKEN is not set, profile changes over HTTP are disabled.")
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(handler, m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.WithField("addr", cfg.HTTPAddr).Info("Application setup complete. HTTP server listening.")
	if err := httpapi.Serve(ctx, srv); err != nil {
		return err
	}

	log.Info("Shutting down application...")
	return nil
}

func newBot(token string, log *logrus.Entry) (*telebot.Bot, error) {
	return telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{
					"sender_id": c.Sender().ID,
					"chat_id":   c.Chat().ID,
				})
			}
			entry.Error("Telegram handler failed")
		},
	})
}
