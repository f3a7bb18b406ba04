// Command atwctl runs maintenance tasks against the workspace database:
// schema setup, sample seeding, token minting and fine-tuning exports.
package main

import (
	"os"

	"github.com/atwlabs/novel-workspace/internal/config"
	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/internal/utils"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "atwctl",
		Short:        "Maintenance commands for the novel translation workspace",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config.yaml")

	root.AddCommand(
		newSetupCmd(),
		newSeedCmd(),
		newExportCmd(),
		newTokenCmd(),
	)
	return root
}

// openWorkspace loads config, initialises logging and returns a migrated DB.
func openWorkspace() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.Log.Level)
	utils.SetJWTSecret(cfg.Session.Secret)

	db, err := models.Open(&cfg.Database, cfg.Log.SQLLevel)
	if err != nil {
		return nil, nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
