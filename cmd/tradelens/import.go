package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/tradelens/internal/service"
	"github.com/newthinker/tradelens/internal/tradefile"
)

var importOpts struct {
	user string
	file string
}

var importCmd = &cobra.Command{
	Use:     "import",
	Short:   "Import a trade file into the configured repository",
	Example: `  tradelens import -c config.yaml --user alice -f trades.csv`,
	RunE:    runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importOpts.user, "user", "u", "", "user the trades belong to")
	importCmd.Flags().StringVarP(&importOpts.file, "file", "f", "", "trade file (.json, .yaml, .yml or .csv)")
	_ = importCmd.MarkFlagRequired("user")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	if cfg.Storage.Trades.Type == "memory" || cfg.Storage.Trades.Type == "" {
		log.Warn("in-memory trade repository: imported trades are discarded on exit")
	}

	records, err := tradefile.Load(importOpts.file)
	if err != nil {
		return err
	}

	store, err := openArchive(cfg.Storage.Archive)
	if err != nil {
		return fmt.Errorf("opening archive storage: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo, closeRepo, err := openRepository(ctx, cfg, store, log)
	if err != nil {
		return fmt.Errorf("opening trade repository: %w", err)
	}
	defer closeRepo()

	svc := service.New(repo, service.Options{Logger: log})
	res, err := svc.Import(ctx, importOpts.user, records)
	if err != nil {
		return err
	}

	log.Debug("import finished", zap.Strings("ids", res.IDs))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s trades for %s\n", humanize.Comma(int64(res.Imported)), importOpts.user)
	return nil
}
