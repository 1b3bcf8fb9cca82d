package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	c := testConfig()
	c.Store = config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "history.db")}
	return c
}

func runHistory(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	historyCmd.SetOut(&out)
	historyCmd.SetContext(context.Background())
	t.Cleanup(func() { historyCmd.SetOut(nil) })
	require.NoError(t, historyCmd.RunE(historyCmd, args))
	return out.String()
}

func TestHistory_ListsRuns(t *testing.T) {
	cfg = sqliteConfig(t)
	ctx := context.Background()

	st, err := store.Open(ctx, cfg.Store)
	require.NoError(t, err)
	run, err := st.CreateRun(ctx, "prospects.csv", true)
	require.NoError(t, err)

	res := model.NewProcessingResult(model.NewProspect(model.ProspectFields{
		Email: "a@b.com", FirstName: "ann", CompanyName: "Acme", CompanyURL: "acme.test",
	}), time.Now())
	res.Success = true
	res.StepsCompleted = []model.Step{model.StepWebsiteAnalysis, model.StepTestModeComplete}
	require.NoError(t, st.SaveResult(ctx, run.ID, res))
	require.NoError(t, st.FinishRun(ctx, run.ID, model.Totals(model.RunStatusComplete, []*model.ProcessingResult{res})))
	require.NoError(t, st.Close())

	list := runHistory(t)
	assert.Contains(t, list, run.ID)
	assert.Contains(t, list, "prospects.csv")
	assert.Contains(t, list, "dry-run")
	assert.Contains(t, list, "complete")

	detail := runHistory(t, run.ID)
	assert.Contains(t, detail, "a@b.com")
	assert.Contains(t, detail, "test_mode_complete")
}

func TestHistory_Empty(t *testing.T) {
	cfg = sqliteConfig(t)
	assert.Contains(t, runHistory(t), "No runs found.")
}

func TestOpenStore_NoneConfigured(t *testing.T) {
	cfg = testConfig()
	_, err := openStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run history")
}

func TestRunDuration(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "-", runDuration(model.Run{StartedAt: start}))

	end := start.Add(90*time.Second + 400*time.Millisecond)
	assert.Equal(t, "1m30s", runDuration(model.Run{StartedAt: start, FinishedAt: &end}))
}

func TestFormatResults(t *testing.T) {
	var out bytes.Buffer
	failed := &model.ProcessingResult{Errors: []string{"Website analysis failed"}}
	formatResults(&out, []model.StoredResult{
		{Email: "x@y.test", Company: "Down", Result: failed},
		{Email: "z@y.test", Company: "Nil"},
	})
	s := out.String()
	assert.Contains(t, s, "Website analysis failed")
	assert.Contains(t, s, "z@y.test")

	out.Reset()
	formatResults(&out, nil)
	assert.Equal(t, "No results found.\n", out.String())
}
