package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"marina-guard/backend/config"
	"marina-guard/backend/internal/api/handler"
	"marina-guard/backend/internal/api/router"
	"marina-guard/backend/internal/repository"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/database"
	"marina-guard/backend/pkg/jwt"
	applogger "marina-guard/backend/pkg/logger"
	"marina-guard/backend/pkg/mq"
	"marina-guard/backend/pkg/redis"
	"marina-guard/backend/pkg/validation"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("MARINA_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting marina guard api",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Schedule.Timezone),
	)

	// 3. database and migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	// 4. redis: token revocation and the generation lock depend on it
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}

	// 5. notification queue
	var notifier mq.Notifier = mq.Nop{}
	var publisher *mq.Publisher
	if cfg.Queue.Enabled {
		publisher, err = mq.Dial(&cfg.Queue, logger)
		if err != nil {
			logger.Fatal("connect rabbitmq", zap.Error(err))
		}
		notifier = publisher
	} else {
		logger.Info("notification queue disabled")
	}

	// 6. request validation
	if err := validation.RegisterGin(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}

	// 7. Repository -> Service -> Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, notifier, logger)
	h := handler.NewHandler(svc, &handler.CookieConfig{
		Path:     "/api/v1/auth",
		Secure:   cfg.Server.Secure(),
		MaxAge:   cfg.Auth.RefreshTokenTTL,
		SameSite: http.SameSiteStrictMode,
	})

	engine := router.Setup(cfg, h, jwtMgr, router.Deps{
		Blacklist: rdb,
		Limiter:   rdb,
		Ready: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			if err := rdb.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		},
	}, logger)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn("close rabbitmq", zap.Error(err))
		}
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("close redis", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database", zap.Error(err))
	}

	logger.Info("server stopped")
}
