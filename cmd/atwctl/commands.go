package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/internal/services"
	"github.com/atwlabs/novel-workspace/internal/storage"
	"github.com/atwlabs/novel-workspace/internal/utils"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Drop every table, recreate the schema and load the sample novel",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openWorkspace()
			if err != nil {
				return err
			}
			if err := models.ResetSchema(db); err != nil {
				return err
			}
			novel, err := models.SeedSampleData(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database initialized. Sample novel: %s\n", novel.ID)
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample novel when the catalog is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openWorkspace()
			if err != nil {
				return err
			}
			novel, err := models.SeedSampleData(db)
			if err != nil {
				return err
			}
			if novel == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog already has novels, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded sample novel %s\n", novel.ID)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		email string
		hours int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openWorkspace()
			if err != nil {
				return err
			}
			var user models.User
			if err := db.Where("email = ?", email).First(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("no user with email %q", email)
				}
				return err
			}
			if hours <= 0 {
				hours = cfg.Session.ExpireHour
			}
			token, err := utils.GenerateToken(user.ID, user.Email, user.Role, hours)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user to sign for")
	cmd.Flags().IntVar(&hours, "hours", 0, "token lifetime in hours (defaults to session.expire_hour)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		outDir       string
		schedule     string
		verifiedOnly bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write human-edited chapters as JSONL fine-tuning data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openWorkspace()
			if err != nil {
				return err
			}

			var uploader services.Uploader
			if cfg.Export.S3.Bucket != "" {
				s3Uploader, err := storage.NewS3Uploader(&cfg.Export.S3)
				if err != nil {
					return err
				}
				uploader = s3Uploader
			}

			exporter := services.NewExportService(db, &cfg.Export, uploader)
			opts := services.ExportOptions{OutputDir: outDir, VerifiedOnly: verifiedOnly}

			if schedule == "" {
				return runExport(cmd, exporter, opts)
			}
			return scheduleExports(cmd, exporter, opts, schedule)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (defaults to export.output_dir)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression; keep running and export on schedule")
	cmd.Flags().BoolVar(&verifiedOnly, "verified-only", false, "only export chapters verified for training")
	return cmd
}

func runExport(cmd *cobra.Command, exporter *services.ExportService, opts services.ExportOptions) error {
	result, err := exporter.Export(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if result.Records == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No edited chapters found")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", result.Records, result.Path)
	if result.RemoteKey != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded as %s\n", result.RemoteKey)
	}
	return nil
}

func scheduleExports(cmd *cobra.Command, exporter *services.ExportService, opts services.ExportOptions, spec string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Component("scheduler")
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		result, err := exporter.Export(ctx, opts)
		if err != nil {
			log.Error().Err(err).Msg("Scheduled export failed")
			return
		}
		log.Info().Int("records", result.Records).Str("path", result.Path).Msg("Scheduled export finished")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info().Str("schedule", spec).Msg("Export scheduler started")
	fmt.Fprintf(cmd.OutOrStdout(), "Exporting on schedule %q, press Ctrl+C to stop\n", spec)

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("Export scheduler stopped")
	return nil
}
