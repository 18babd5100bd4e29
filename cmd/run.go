package main

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/archive"
	"github.com/sells-group/prospect-cli/internal/leadfile"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

// executeRun drives one persisted run: it marks the run running, calls
// exec, and records the outcome. Archive failures are logged only.
func executeRun(ctx context.Context, st store.Store, arch *archive.Archiver, runID string, exec func(context.Context) (*model.Report, error)) (*model.Report, error) {
	log := zap.L().With(zap.String("run_id", runID))

	if err := st.UpdateRunStatus(ctx, runID, model.RunStatusRunning); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			if ferr := st.FailRun(context.WithoutCancel(ctx), runID, err.Error()); ferr != nil {
				log.Error("record run failure", zap.Error(ferr))
			}
		}
		return nil, eris.Wrap(err, "mark run running")
	}

	rep, err := exec(ctx)
	if err != nil {
		// Record the failure even when ctx was what stopped us.
		if ferr := st.FailRun(context.WithoutCancel(ctx), runID, err.Error()); ferr != nil {
			log.Error("record run failure", zap.Error(ferr))
		}
		return nil, err
	}

	if err := st.CompleteRun(context.WithoutCancel(ctx), runID, rep); err != nil {
		return rep, eris.Wrap(err, "record run completion")
	}

	if arch != nil {
		keys, err := arch.ArchiveReport(ctx, rep)
		if err != nil {
			log.Warn("archive report failed", zap.Error(err))
		} else {
			log.Info("report archived", zap.Strings("keys", keys))
		}
	}

	log.Info("run complete",
		zap.Int("attempted", rep.Summary.Attempted),
		zap.Int("succeeded", rep.Summary.Succeeded),
		zap.Int("failed", rep.Summary.Failed),
		zap.Int("skipped", rep.Summary.Skipped),
	)
	return rep, nil
}

// writeOutputs exports the report's lead table. Either path may be empty.
func writeOutputs(rep *model.Report, outputPath, xlsxPath string) error {
	records := leadfile.FromReport(rep)
	if outputPath != "" {
		if err := leadfile.WriteFile(outputPath, records); err != nil {
			return eris.Wrapf(err, "write %s", outputPath)
		}
		zap.L().Info("lead table written", zap.String("path", outputPath), zap.Int("rows", len(records)))
	}
	if xlsxPath != "" {
		if err := leadfile.WriteXLSX(xlsxPath, records); err != nil {
			return eris.Wrapf(err, "write %s", xlsxPath)
		}
		zap.L().Info("lead table written", zap.String("path", xlsxPath), zap.Int("rows", len(records)))
	}
	return nil
}
