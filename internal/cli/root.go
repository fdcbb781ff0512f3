// Package cli provides the storefront command line: the HTTP server and
// the maintenance commands that share its configuration.
package cli

import (
	"fmt"
	"strings"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type runtime struct {
	v   *viper.Viper
	cfg *config.Config
}

// NewRootCommand builds the storefront command tree. Every call returns
// independent flag and configuration state.
func NewRootCommand() *cobra.Command {
	rt := &runtime{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront API server and maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.load()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level: debug|info|warn|error")
	flags.String("db-driver", "postgres", "database driver: postgres|sqlite")

	config.SetDefaults(rt.v)
	_ = rt.v.BindPFlag("config", flags.Lookup("config"))
	_ = rt.v.BindPFlag("LOG_LEVEL", flags.Lookup("log-level"))
	_ = rt.v.BindPFlag("DB_DRIVER", flags.Lookup("db-driver"))
	rt.v.AutomaticEnv()

	rootCmd.AddCommand(
		newServeCommand(rt),
		newMigrateCommand(rt),
		newSeedCommand(rt),
		newReconcileCommand(rt),
	)
	return rootCmd
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (rt *runtime) load() error {
	config.LoadEnvFile()

	if file := rt.v.GetString("config"); file != "" {
		rt.v.SetConfigFile(file)
		if err := rt.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg, err := config.Load(rt.v)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	log.SetLevel(logLevel(cfg.LogLevel))
	return nil
}

func logLevel(name string) log.Level {
	switch strings.ToLower(name) {
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

// openStore connects to the configured database and migrates the schema.
func (rt *runtime) openStore() (*gorm.DB, *repositories.GORMStore, error) {
	level := logger.Warn
	if rt.cfg.LogLevel == "debug" {
		level = logger.Info
	}
	db, err := database.Open(database.Options{
		Driver:   rt.cfg.DBDriver,
		DSN:      rt.cfg.DatabaseDSN,
		LogLevel: level,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := models.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, repositories.NewGORMStore(db), nil
}
