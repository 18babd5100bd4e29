package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/discovery"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Discover leads by web search and run outreach",
	Long:  "Builds a search query from the given criteria, normalizes the organic results into leads, and runs each lead through research, email generation, and delivery.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		c, err := criteriaFromFlags(cmd)
		if err != nil {
			return err
		}
		num, _ := cmd.Flags().GetInt("num")
		if num <= 0 {
			num = cfg.SerpAPI.MaxResults
		}
		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			cfg.Outreach.DryRun = true
		}

		env, err := initPipeline(ctx, config.ModeGenerate)
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := env.Store.CreateRun(ctx, model.RunSourceSearch, &c)
		if err != nil {
			return eris.Wrap(err, "create run")
		}
		zap.L().Info("run created", zap.String("run_id", run.ID))

		rep, err := executeRun(ctx, env.Store, env.Archiver, run.ID, func(ctx context.Context) (*model.Report, error) {
			return env.Pipeline.RunSearch(ctx, run.ID, c, num)
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

// criteriaFromFlags reads search criteria and refuses any set that would
// produce an empty query.
func criteriaFromFlags(cmd *cobra.Command) (model.SearchCriteria, error) {
	f := cmd.Flags()
	var c model.SearchCriteria
	c.Keyword, _ = f.GetString("keyword")
	c.Website, _ = f.GetString("website")
	c.Location, _ = f.GetString("location")
	c.Position, _ = f.GetString("position")
	c.IncludeEmailHints, _ = f.GetBool("email-hints")
	c.IncludePhoneHints, _ = f.GetBool("phone-hints")

	if q, _ := discovery.BuildQuery(c); q == "" {
		return c, eris.New("at least one of --keyword, --website, --position, --email-hints, --phone-hints is required")
	}
	return c, nil
}

func init() {
	f := generateCmd.Flags()
	f.String("keyword", "", "industry or topic keyword")
	f.String("website", "", "restrict results to this site")
	f.String("location", "", "geographic location passed to the search service")
	f.String("position", "", "contact position, e.g. \"CTO\"")
	f.Bool("email-hints", false, "bias results toward pages listing email addresses")
	f.Bool("phone-hints", false, "bias results toward pages listing phone numbers")
	f.Int("num", 0, "maximum search results (default from config)")
	f.Bool("dry-run", false, "generate emails without sending")
	f.String("output", "", "write the lead table to this CSV or XLSX file")
	f.String("xlsx", "", "also write the lead table to this XLSX file")
	rootCmd.AddCommand(generateCmd)
}
