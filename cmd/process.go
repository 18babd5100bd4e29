package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/leadfile"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run outreach for leads read from a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		path, _ := cmd.Flags().GetString("csv")
		limit, _ := cmd.Flags().GetInt("limit")
		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			cfg.Outreach.DryRun = true
		}

		leads, err := loadLeads(path, limit)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx, config.ModeProcess)
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := env.Store.CreateRun(ctx, model.RunSourceCSV, nil)
		if err != nil {
			return eris.Wrap(err, "create run")
		}
		zap.L().Info("run created", zap.String("run_id", run.ID), zap.String("file", path), zap.Int("leads", len(leads)))

		rep, err := executeRun(ctx, env.Store, env.Archiver, run.ID, func(ctx context.Context) (*model.Report, error) {
			return env.Pipeline.RunAs(ctx, run.ID, leads), nil
		})
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		if err := writeOutputs(rep, output, xlsxPath); err != nil {
			return err
		}

		fmt.Fprint(os.Stdout, pipeline.FormatReport(rep))
		return nil
	},
}

// loadLeads reads leads from path and keeps at most limit of them when
// limit is positive.
func loadLeads(path string, limit int) ([]model.Lead, error) {
	leads, err := leadfile.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read leads from %s", path)
	}
	if limit > 0 && len(leads) > limit {
		leads = leads[:limit]
	}
	return leads, nil
}

func init() {
	f := processCmd.Flags()
	f.String("csv", "", "input lead file, CSV or XLSX (required)")
	f.Int("limit", 0, "process at most this many leads (0 = all)")
	f.Bool("dry-run", false, "generate emails without sending")
	f.String("output", "", "write the lead table to this CSV or XLSX file")
	f.String("xlsx", "", "also write the lead table to this XLSX file")
	_ = processCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(processCmd)
}
