package cli

import (
	"context"
	"os"

	"chapter-quiz-service/internal/config"
	"chapter-quiz-service/internal/logger"
	"chapter-quiz-service/internal/report"
	"github.com/spf13/cobra"
)

// NewExportCmd writes an archived result to an .xlsx file.
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <result-id>",
		Short: "Export an archived quiz result as a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), *configPath, args[0], out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", report.Filename, "output file")
	return cmd
}

func runExport(ctx context.Context, configPath, id, out string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	deps, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close()

	result, err := deps.resultStore(cfg).GetResult(ctx, id)
	if err != nil {
		return err
	}
	data, err := report.Workbook(result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	log.Info().Str("result_id", id).Str("file", out).Msg("report exported")
	return nil
}
