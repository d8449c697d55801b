package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/cmd/cli/commands"
	"github.com/suvidhaen/railsathi-be/internal/config"
	"github.com/suvidhaen/railsathi-be/pkg/cache"
	"github.com/suvidhaen/railsathi-be/pkg/clients/gmailclient"
	"github.com/suvidhaen/railsathi-be/pkg/clients/notifyclient"
	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
	"github.com/suvidhaen/railsathi-be/pkg/postgres"
	"github.com/suvidhaen/railsathi-be/pkg/utils/logging"
)

var (
	env      string
	logsDir  string
	logLevel string
	app      = &commands.AppContext{}
	database *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "railsathi",
		Short: "RailSathi CLI - Resolve support contacts for passenger complaints",
		Long:  `A CLI tool for listing passenger complaints with the on-duty staff responsible for each coach.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if database != nil {
				database.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: local, uat, prod)")
	rootCmd.PersistentFlags().StringVar(&logsDir, "logs-dir", "logs", "Directory for JSON log files")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Console log level")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.ComplaintsCmd(app))
	rootCmd.AddCommand(commands.SupportContactCmd(app))
	rootCmd.AddCommand(commands.WarRoomContactCmd(app))
	rootCmd.AddCommand(commands.CheckAssignmentCmd(app))
	rootCmd.AddCommand(commands.ExportComplaintsCmd(app))
	rootCmd.AddCommand(commands.NotifyComplaintCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, cache, and clients
func initApp() error {
	var err error
	app.Ctx = context.Background()
	app.Env = env
	app.Now = time.Now

	// Initialize logger
	var logFile string
	app.Logger, logFile, err = logging.InitLogger(env, logging.Options{LogsDir: logsDir, ConsoleLevel: logLevel})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env), zap.String("log_file", logFile))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("timezone", app.Cfg.Timezone),
		zap.Int("schedule_overrides", len(app.Cfg.ScheduleOverrides)))

	app.Overrides, err = app.Cfg.Overrides()
	if err != nil {
		return fmt.Errorf("failed to load schedule overrides: %w", err)
	}

	// Connect to database
	app.Logger.Info("Connecting to database")
	database, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Database = database
	app.Logger.Info("Database connected successfully")

	builder := routing.NewBuilder(database, app.Overrides, app.Logger)

	// Initialize index cache
	if app.Cfg.Cache.RedisAddr != "" {
		app.Logger.Info("Connecting to index cache", zap.String("addr", app.Cfg.Cache.RedisAddr))
		client, err := cache.NewRedisClient(app.Ctx, app.Cfg.Cache.RedisAddr, app.Cfg.Cache.RedisPassword, app.Cfg.Cache.RedisDB)
		if err != nil {
			// The cache only saves work, so run without it
			app.Logger.Warn("Index cache unavailable, continuing without it", zap.Error(err))
		} else {
			builder = builder.WithCache(cache.NewIndexCache(cache.NewRedisKVStore(client), app.Cfg.Cache.TTL, app.Logger))
		}
	}
	app.Builder = builder

	// Initialize notification client
	if app.Cfg.Notification.Enabled {
		app.Logger.Info("Initializing notification client", zap.String("base_url", app.Cfg.Notification.BaseURL))
		app.Notifier = notifyclient.NewClient(app.Cfg.Notification.BaseURL, app.Cfg.Notification.Timeout, app.Logger)
	}

	// Initialize gmail client
	if app.Cfg.Mail.ServiceAccountFile != "" {
		app.Logger.Info("Initializing gmail client")
		app.Mailer, err = gmailclient.NewClient(app.Ctx, app.Cfg.Mail.ServiceAccountFile, app.Cfg.Mail.Sender)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
		app.Logger.Debug("Gmail client initialized successfully")
	}

	return nil
}
