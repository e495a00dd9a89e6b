package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"marina-guard/backend/config"
	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/repository"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/database"
	"marina-guard/backend/pkg/jwt"
	applogger "marina-guard/backend/pkg/logger"
	"marina-guard/backend/pkg/mq"
	"marina-guard/backend/pkg/redis"
)

// app holds what every subcommand needs
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func newRootCmd() *cobra.Command {
	var configPath string
	a := &app{}

	root := &cobra.Command{
		Use:          "guardctl",
		Short:        "Marina guard operational jobs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := applogger.NewLogger(&cfg.Log)
			if err != nil {
				return err
			}
			db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
			if err != nil {
				return err
			}
			a.cfg, a.logger, a.db = cfg, logger, db
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.db != nil {
				if sqlDB, err := a.db.DB(); err == nil {
					sqlDB.Close()
				}
			}
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("MARINA_CONFIG"), "config file path")

	root.AddCommand(
		newMigrateCmd(a),
		newGenerateShiftsCmd(a),
		newGenerateTimesheetsCmd(a),
	)
	return root
}

func newMigrateCmd(a *app) *cobra.Command {
	var down int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations, or roll back with --down",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			if down > 0 {
				return database.RollbackMigrations(sqlDB, down, a.logger)
			}
			return database.RunMigrations(sqlDB, a.logger)
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "number of migrations to roll back")
	return cmd
}

func newGenerateShiftsCmd(a *app) *cobra.Command {
	var from string
	var days int
	cmd := &cobra.Command{
		Use:   "generate-shifts",
		Short: "Expand active shift patterns into concrete shifts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd.Context(), func(ctx context.Context, svc *service.Service, actor string) error {
				result, err := svc.Pattern.GenerateShifts(ctx, actor, &dto.GenerateShiftsRequest{From: from, Days: days})
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&days, "days", 0, "window length in days (default schedule.generation_days)")
	return cmd
}

func newGenerateTimesheetsCmd(a *app) *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "generate-timesheets",
		Short: "Generate draft timesheets for every active user for one week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if week == "" {
				return fmt.Errorf("--week is required")
			}
			return a.withServices(cmd.Context(), func(ctx context.Context, svc *service.Service, actor string) error {
				result, err := svc.Timesheet.BulkGenerate(ctx, actor, &dto.BulkGenerateRequest{WeekDate: week})
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "any date inside the week, YYYY-MM-DD")
	return cmd
}

// withServices wires the service layer the way the API does and runs fn as
// the configured system user
func (a *app) withServices(parent context.Context, fn func(ctx context.Context, svc *service.Service, actor string) error) error {
	actor := a.cfg.Auth.SystemUserID
	if actor == "" {
		return fmt.Errorf("auth.system_user_id is required")
	}

	rdb, err := redis.NewClient(&a.cfg.Redis, a.logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var notifier mq.Notifier = mq.Nop{}
	if a.cfg.Queue.Enabled {
		publisher, err := mq.Dial(&a.cfg.Queue, a.logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifier = publisher
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := service.NewService(a.cfg, repository.NewRepository(a.db), jwt.NewManager(&a.cfg.Auth), rdb, notifier, a.logger)
	return fn(ctx, svc, actor)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
