package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"venuehub/internal/catalog"
	"venuehub/internal/reconcile"
	"venuehub/pkg/database"
	"venuehub/pkg/utils"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	cmd := &cli.Command{
		Name:  "reconcile",
		Usage: "Synchronize the audio catalogue with the files on disk",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory to scan (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would change without touching the database",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := utils.Load(c.String("config"))
			if err != nil {
				return err
			}

			dir := cfg.Media.ScanDir
			if d := c.String("dir"); d != "" {
				dir = d
			}

			dbCfg := database.DefaultConfig()
			if cfg.Database.Path != "" {
				dbCfg = database.Config{Path: cfg.Database.Path}
			}
			db := database.MustOpen(dbCfg)
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}

			r := &reconcile.Reconciler{
				Repo:        catalog.NewRepo(db),
				Dir:         dir,
				ServePrefix: cfg.Media.ServePrefix,
				DryRun:      c.Bool("dry-run"),
				Logger:      logger,
			}

			res, err := r.Run(ctx)
			if err != nil {
				return err
			}

			logger.Info("reconciliation complete",
				"scanned", res.Scanned,
				"inserted", res.Inserted,
				"deleted", res.Deleted,
				"skipped", res.Skipped,
			)
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Fatal("reconciliation failed", "err", err)
	}
}
