package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"chapter-quiz-service/internal/config"
	pgstore "chapter-quiz-service/internal/infra/postgres"
	"chapter-quiz-service/internal/infra/source"
	"chapter-quiz-service/internal/logger"
	"github.com/spf13/cobra"
)

// NewImportCmd loads <subject>.json bank files into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import question bank files into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "banks", "directory of <subject>.json files")
	return cmd
}

func runImport(ctx context.Context, configPath, dir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}

	deps, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close()

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	reader := source.NewFileLoader(dir)
	store := pgstore.NewBankLoader(deps.pool)
	for _, file := range files {
		subject := strings.TrimSuffix(filepath.Base(file), ".json")
		bank, err := reader.LoadBank(ctx, subject)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if err := store.SaveBank(ctx, bank); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		log.Info().Str("subject", subject).Int("chapters", len(bank.Chapters)).Msg("bank imported")
	}
	return nil
}
