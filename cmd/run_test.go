package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/leadfile"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleReport(runID string) *model.Report {
	email := "jane@acme.com"
	return &model.Report{
		RunID: runID,
		Rows: []model.ReportRow{
			{Index: 0, Lead: model.Lead{CompanyName: "Acme", ContactEmail: &email, EmailSent: true}, State: model.StateSent},
			{Index: 1, Lead: model.Lead{CompanyName: "Beta"}, State: model.StateOutreachSkipped, Error: "no contact email"},
		},
		Summary: model.Summary{Attempted: 2, Succeeded: 1, Failed: 1},
	}
}

func TestExecuteRun_Completes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunSourceCSV, nil)
	require.NoError(t, err)

	var sawRunning bool
	rep, err := executeRun(ctx, st, nil, run.ID, func(ctx context.Context) (*model.Report, error) {
		got, err := st.GetRun(ctx, run.ID)
		require.NoError(t, err)
		sawRunning = got.Status == model.RunStatusRunning
		return sampleReport(run.ID), nil
	})
	require.NoError(t, err)
	assert.True(t, sawRunning)
	assert.Equal(t, 1, rep.Summary.Succeeded)

	stored, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, stored.Status)
	require.NotNil(t, stored.Report)
	assert.Len(t, stored.Report.Rows, 2)
}

func TestExecuteRun_RecordsFailure(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunSourceSearch, &model.SearchCriteria{Keyword: "dentist"})
	require.NoError(t, err)

	_, err = executeRun(ctx, st, nil, run.ID, func(context.Context) (*model.Report, error) {
		return nil, errors.New("search unavailable")
	})
	require.Error(t, err)

	stored, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, stored.Status)
	assert.Equal(t, "search unavailable", stored.Error)
}

func TestExecuteRun_CancelledContextStillRecordsFailure(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	run, err := st.CreateRun(ctx, model.RunSourceCSV, nil)
	require.NoError(t, err)

	_, err = executeRun(ctx, st, nil, run.ID, func(ctx context.Context) (*model.Report, error) {
		cancel()
		return nil, ctx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)

	stored, err := st.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, stored.Status)
}

func TestExecuteRun_UnknownRun(t *testing.T) {
	st := newTestStore(t)

	called := false
	_, err := executeRun(context.Background(), st, nil, "missing", func(context.Context) (*model.Report, error) {
		called = true
		return nil, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, called)
}

// flakyStatusStore fails every status update but records the rest.
type flakyStatusStore struct {
	store.Store
}

func (flakyStatusStore) UpdateRunStatus(context.Context, string, model.RunStatus) error {
	return errors.New("database is locked")
}

func TestExecuteRun_StatusUpdateFailureRecorded(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunSourceCSV, nil)
	require.NoError(t, err)

	called := false
	_, err = executeRun(ctx, flakyStatusStore{st}, nil, run.ID, func(context.Context) (*model.Report, error) {
		called = true
		return nil, nil
	})
	require.Error(t, err)
	assert.False(t, called)

	stored, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, stored.Status)
	assert.Contains(t, stored.Error, "database is locked")
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out.csv")
	xlsxPath := filepath.Join(dir, "out.xlsx")

	require.NoError(t, writeOutputs(sampleReport("r1"), csvPath, xlsxPath))

	fromCSV, err := leadfile.ReadFile(csvPath)
	require.NoError(t, err)
	require.Len(t, fromCSV, 2)
	assert.Equal(t, "Acme", fromCSV[0].CompanyName)
	assert.True(t, fromCSV[0].EmailSent)

	fromXLSX, err := leadfile.ReadFile(xlsxPath)
	require.NoError(t, err)
	require.Len(t, fromXLSX, 2)
	assert.Equal(t, "Beta", fromXLSX[1].CompanyName)
}

func TestWriteOutputs_NoPaths(t *testing.T) {
	assert.NoError(t, writeOutputs(sampleReport("r1"), "", ""))
}

func TestLoadLeads_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	content := "company_name,contact_email\nAcme,a@acme.com\nBeta,b@beta.com\nGamma,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	all, err := loadLeads(path, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	two, err := loadLeads(path, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "Beta", two[1].CompanyName)
}

func TestLoadLeads_Missing(t *testing.T) {
	_, err := loadLeads(filepath.Join(t.TempDir(), "nope.csv"), 0)
	assert.Error(t, err)
}

func newCriteriaCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	f := cmd.Flags()
	f.String("keyword", "", "")
	f.String("website", "", "")
	f.String("location", "", "")
	f.String("position", "", "")
	f.Bool("email-hints", false, "")
	f.Bool("phone-hints", false, "")
	require.NoError(t, f.Parse(args))
	return cmd
}

func TestCriteriaFromFlags(t *testing.T) {
	cmd := newCriteriaCmd(t, "--keyword", "dentist", "--location", "Austin, TX", "--email-hints")
	c, err := criteriaFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, "dentist", c.Keyword)
	assert.Equal(t, "Austin, TX", c.Location)
	assert.True(t, c.IncludeEmailHints)
}

func TestCriteriaFromFlags_LocationOnlyRefused(t *testing.T) {
	cmd := newCriteriaCmd(t, "--location", "Austin, TX")
	_, err := criteriaFromFlags(cmd)
	assert.Error(t, err)
}

func TestCriteriaFromFlags_EmptyRefused(t *testing.T) {
	_, err := criteriaFromFlags(newCriteriaCmd(t))
	assert.Error(t, err)
}

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Source:    model.RunSourceSearch,
			Criteria:  &model.SearchCriteria{Keyword: "dentist", Location: "Austin"},
			Status:    model.RunStatusComplete,
			Report:    sampleReport("abc12345"),
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Source:    model.RunSourceCSV,
			Status:    model.RunStatusRunning,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "dentist @Austin")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "2m0s")
}

func TestComputeRunStats(t *testing.T) {
	now := time.Now()
	runs := []model.Run{
		{Status: model.RunStatusComplete, Report: sampleReport("a"), CreatedAt: now, UpdatedAt: now.Add(10 * time.Second)},
		{Status: model.RunStatusComplete, Report: sampleReport("b"), CreatedAt: now, UpdatedAt: now.Add(20 * time.Second)},
		{Status: model.RunStatusFailed, CreatedAt: now, UpdatedAt: now},
		{Status: model.RunStatusQueued, CreatedAt: now, UpdatedAt: now},
	}

	s := computeRunStats(runs)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Complete)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Other)
	assert.Equal(t, 4, s.Leads)
	assert.Equal(t, 2, s.Sent)
	assert.Equal(t, 2, s.LeadFailed)
	assert.InDelta(t, 15.0, s.AvgDurSecs, 0.01)

	var buf bytes.Buffer
	formatRunStats(&buf, s)
	assert.Contains(t, buf.String(), "Avg duration:")
}

func TestRunsSince(t *testing.T) {
	now := time.Now()
	runs := []model.Run{
		{ID: "old", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "new", CreatedAt: now.Add(-time.Hour)},
	}
	got := runsSince(runs, now.Add(-24*time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
	assert.Len(t, runs, 2)
}

func TestReadThread(t *testing.T) {
	msgs, err := readThread("-", strings.NewReader("Hi there\n---\nNot now, thanks\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi there", "Not now, thanks"}, msgs)

	path := filepath.Join(t.TempDir(), "thread.txt")
	require.NoError(t, os.WriteFile(path, []byte("One\n---\nTwo\n---\nThree"), 0o644))
	msgs, err = readThread(path, nil)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}
