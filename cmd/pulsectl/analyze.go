package main

import (
	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/studentpulse/internal/render"
	"github.com/kiranshivaraju/studentpulse/internal/service"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

func (a *app) analyzeCmd() *cobra.Command {
	var (
		file   string
		format string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a student data file offline",
		Long: `Analyze reads grades, attendance and study habit records from a JSON or
YAML file and prints the full performance analysis. Malformed rows are
skipped and listed unless --strict is set.`,
		Example: "  pulsectl analyze --file student.yaml\n  pulsectl analyze --file student.json --format json --strict",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var data models.StudentData
			if err := readDocument(file, &data); err != nil {
				return err
			}

			svc := service.New(nil, nil, nil, service.Options{Logger: a.logger})
			res, err := svc.Analyze(cmd.Context(), data, strict)
			if err != nil {
				return err
			}
			a.logger.Debug("analysis complete", "file", file, "skipped", len(res.Skipped))
			return render.Write(cmd.OutOrStdout(), format, res.Analysis, res.Skipped)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "student data file (.json, .yaml)")
	cmd.Flags().StringVarP(&format, "format", "o", render.FormatTable, "output format: table or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on the first malformed record")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
