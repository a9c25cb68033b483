package main

import (
	"fmt"
	"strconv"

	"okapi-care-network/config"
	"okapi-care-network/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	migrator *database.Migrator
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tool for the Okapi portal",
	Long: `Database migration tool for the Okapi portal.
Applies the schema migrations embedded in the binary using golang-migrate.`,
	PersistentPreRunE: setupMigrator,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if migrator != nil {
			if err := migrator.Close(); err != nil {
				logrus.Warnf("Failed to close migrator: %+v", err)
			}
		}
	},
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		changed, err := migrator.Up()
		if err != nil {
			return err
		}
		if changed {
			logrus.Info("Migration up completed successfully")
		} else {
			logrus.Info("No migrations to apply")
		}
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback migrations (default: 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return errInvalidArg("steps", args[0])
			}
			steps = n
		}

		changed, err := migrator.Down(steps)
		if err != nil {
			return err
		}
		if changed {
			logrus.Infof("Rolled back %d migration(s)", steps)
		} else {
			logrus.Info("No migrations to rollback")
		}
		return nil
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return errInvalidArg("version", args[0])
		}

		changed, err := migrator.Goto(uint(version))
		if err != nil {
			return err
		}
		if changed {
			logrus.Infof("Migrated to version %d", version)
		} else {
			logrus.Infof("Already at version %d", version)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current migration version",
	RunE: func(cmd *cobra.Command, args []string) error {
		version, dirty, applied, err := migrator.Version()
		if err != nil {
			return err
		}
		switch {
		case !applied:
			logrus.Info("Current version: no migrations applied yet")
		case dirty:
			logrus.Warnf("Current version: %d (dirty - migration may have failed)", version)
		default:
			logrus.Infof("Current version: %d", version)
		}
		return nil
	},
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Force set migration version (use with caution)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return errInvalidArg("version", args[0])
		}
		if err := migrator.Force(version); err != nil {
			return err
		}
		logrus.Infof("Migration forced to version %d", version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "Path to the env file")

	rootCmd.AddCommand(upCmd, downCmd, gotoCmd, versionCmd, forceCmd)
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("Failed to execute command: %v", err)
	}
}

func setupMigrator(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigFrom(envFile)
	if err != nil {
		return err
	}

	migrator, err = database.NewMigrator(cfg.DB)
	if err != nil {
		return err
	}

	logrus.Infof("Connected to database: %s@%s:%s/%s", cfg.DB.User, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	return nil
}

func errInvalidArg(name, value string) error {
	return fmt.Errorf("invalid %s %q", name, value)
}
