package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eligibility-cli/internal/model"
)

func openLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	require.NoError(t, l.Migrate(context.Background()))
	return l
}

func TestLedgerBeginFinish(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t)

	run, err := l.Begin(ctx, model.StageParse, []string{"cleaned.jsonl"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	run.RowsIn = 100
	run.RowsOut = 90
	run.RowsSkipped = 10
	require.NoError(t, l.Finish(ctx, run, nil))
	assert.Equal(t, model.RunStatusSucceeded, run.Status)

	runs, err := l.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, model.StageParse, got.Stage)
	assert.Equal(t, []string{"cleaned.jsonl"}, got.Inputs)
	assert.Equal(t, model.RunStatusSucceeded, got.Status)
	assert.Equal(t, int64(100), got.RowsIn)
	assert.Equal(t, int64(90), got.RowsOut)
	assert.Equal(t, int64(10), got.RowsSkipped)
	assert.Empty(t, got.Error)
	assert.False(t, got.FinishedAt.IsZero())
	assert.True(t, got.Duration() >= 0)
}

func TestLedgerFinishFailed(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t)

	run, err := l.Begin(ctx, model.StageTrain, nil)
	require.NoError(t, err)
	require.NoError(t, l.Finish(ctx, run, eris.New("matrix has non-numeric cell")))

	runs, err := l.List(ctx, model.StageTrain, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "non-numeric")
}

func TestLedgerFinishUnknownRun(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t)

	err := l.Finish(ctx, &model.StageRun{ID: "does-not-exist"}, nil)
	assert.Error(t, err)
}

func TestLedgerListFilterAndLimit(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t)

	for _, stage := range []model.Stage{model.StageClean, model.StageParse, model.StageParse} {
		run, err := l.Begin(ctx, stage, nil)
		require.NoError(t, err)
		require.NoError(t, l.Finish(ctx, run, nil))
		time.Sleep(2 * time.Millisecond) // distinct started_at for ordering
	}

	runs, err := l.List(ctx, model.StageParse, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, model.StageParse, r.Stage)
	}
	assert.True(t, !runs[0].StartedAt.Before(runs[1].StartedAt), "newest first")

	runs, err = l.List(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = l.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestLedgerListRunning(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t)

	_, err := l.Begin(ctx, model.StageBuild, []string{"a.csv", "b.csv"})
	require.NoError(t, err)

	runs, err := l.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusRunning, runs[0].Status)
	assert.True(t, runs[0].FinishedAt.IsZero(), "unfinished runs report a zero finish time")
	assert.Equal(t, time.Duration(0), runs[0].Duration())
	assert.Equal(t, []string{"a.csv", "b.csv"}, runs[0].Inputs)
}
