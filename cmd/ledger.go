package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eligibility-cli/internal/model"
	"github.com/sells-group/eligibility-cli/internal/store"
)

// recordRun wraps a stage body with a ledger entry. The body reports its row
// counts on the StageRun it receives; the entry is finished with the body's
// error either way.
func recordRun(ctx context.Context, stage model.Stage, inputs []string, body func(run *model.StageRun) error) error {
	ledger, err := store.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	if err := ledger.Migrate(ctx); err != nil {
		return err
	}

	run, err := ledger.Begin(ctx, stage, inputs)
	if err != nil {
		return err
	}

	bodyErr := body(run)
	if err := ledger.Finish(ctx, run, bodyErr); err != nil {
		zap.L().Error("ledger: finish run", zap.Error(err))
	}
	if bodyErr != nil {
		return eris.Wrapf(bodyErr, "%s", stage)
	}

	zap.L().Info("stage complete",
		zap.String("stage", string(stage)),
		zap.Int64("rows_in", run.RowsIn),
		zap.Int64("rows_out", run.RowsOut),
		zap.Int64("rows_skipped", run.RowsSkipped),
		zap.Duration("duration", run.Duration()),
	)
	return nil
}
