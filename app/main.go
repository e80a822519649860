package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/quillpress/internal/blogservice"
	"github.com/sushihentaime/quillpress/internal/common"
	"github.com/sushihentaime/quillpress/internal/genservice"
	"github.com/sushihentaime/quillpress/internal/mailservice"
	"github.com/sushihentaime/quillpress/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	blogService *blogservice.BlogService
	mailService *mailservice.MailService
	broker      *common.MessageBroker
	limiter     common.RateLimiter
}

func main() {
	bootLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		bootLogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := cfg.validate(); err != nil {
		bootLogger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := initLogger(cfg)

	db, err := common.NewDB(common.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Name:     cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	broker, err := common.NewMessageBroker(cfg.rabbitMQURI())
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupBlogExchange(broker)
	if err != nil {
		logger.Error("failed to setup the blog exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	limiter, closeLimiter, err := newRateLimiter(cfg)
	if err != nil {
		logger.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeLimiter()

	cache := common.NewCache(userservice.UserCacheTime, 2*userservice.UserCacheTime)
	userService := userservice.NewUserService(db, cache, logger)

	gen := genservice.NewClient(genservice.Config{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		TextModel:    cfg.OpenAI.TextModel,
		ImageModel:   cfg.OpenAI.ImageModel,
		ImageSize:    cfg.OpenAI.ImageSize,
		ImageQuality: cfg.OpenAI.ImageQuality,
	}, logger)

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userService,
		blogService: blogservice.NewBlogService(db, userService, gen, broker, blogservice.Config{
			TextTimeout:  cfg.Gen.TextTimeout,
			ImageTimeout: cfg.Gen.ImageTimeout,
		}, logger),
		mailService: mailservice.NewMailService(broker, mailservice.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.User,
			Password: cfg.Mail.Password,
			Sender:   cfg.Mail.Sender,
			AppURL:   cfg.Mail.AppURL,
		}, logger),
		broker:  broker,
		limiter: limiter,
	}

	app.mailService.SendPostGeneratedEmails()

	err = app.serve()
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func initLogger(cfg *Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newRateLimiter shares buckets through Redis when REDIS_URL is set and falls back to
// per-process buckets otherwise.
func newRateLimiter(cfg *Config) (common.RateLimiter, func(), error) {
	if cfg.RedisURL == "" {
		return common.NewLocalRateLimiter(cfg.Gen.RatePerMinute, cfg.Gen.Burst), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	limiter, err := common.NewRedisRateLimiter(ctx, cfg.RedisURL, cfg.Gen.RatePerMinute, cfg.Gen.Burst)
	if err != nil {
		return nil, nil, err
	}

	return limiter, func() { limiter.Close() }, nil
}
