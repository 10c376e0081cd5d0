package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/marcmerge/internal/appcontext"
	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/logging"
	"github.com/agentstation/marcmerge/pkg/merge"
	"github.com/agentstation/marcmerge/pkg/record"
)

const rules = `
fields:
  "001":
    action: controlfield
  "245":
    action: copy
`

func writeRecord(t *testing.T, path, id, title string) {
	t.Helper()
	rec := record.New("",
		record.NewControlField("001", id),
		record.NewDataField("245", "1", "0", record.Subfield{Code: "a", Value: title}),
	)
	require.NoError(t, record.WriteFile(path, rec))
}

// setup writes rules, two good pairs and one pair with a missing file.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "records"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(rules), 0o600))

	writeRecord(t, filepath.Join(dir, "records", "a1.json"), "a1", "First")
	writeRecord(t, filepath.Join(dir, "records", "b1.json"), "b1", "First")
	writeRecord(t, filepath.Join(dir, "records", "a2.json"), "a2", "Second")
	writeRecord(t, filepath.Join(dir, "records", "b2.json"), "b2", "Another")

	manifest := `
rules: rules.yaml
outDir: merged
pairs:
  - name: one
    preferred: records/a1.json
    other: records/b1.json
  - name: two
    preferred: records/a2.json
    other: records/b2.json
  - name: broken
    preferred: records/a1.json
    other: records/missing.json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "batch.yaml"), []byte(manifest), 0o600))
	return dir
}

func TestLoadManifest(t *testing.T) {
	dir := setup(t)

	m, err := LoadManifest(filepath.Join(dir, "batch.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rules.yaml"), m.Rules)
	assert.Equal(t, filepath.Join(dir, "merged"), m.OutDir)
	require.Len(t, m.Pairs, 3)
	assert.Equal(t, filepath.Join(dir, "records", "a1.json"), m.Pairs[0].Preferred)
	assert.Equal(t, filepath.Join(dir, "merged", "one.json"), m.Pairs[0].Output)
}

func TestLoadManifestInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no pairs", content: "rules: r.yaml\n"},
		{name: "missing other", content: "pairs:\n  - preferred: a.json\n"},
		{name: "duplicate names", content: "pairs:\n  - {name: x, preferred: a.json, other: b.json}\n  - {name: x, preferred: c.json, other: d.json}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "batch.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := LoadManifest(path)
			assert.True(t, errors.IsValidationError(err), "got %v", err)
		})
	}
}

func TestManifestDefaultName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pairs:\n  - {preferred: in/rec42.json, other: b.json}\n"), 0o600))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "rec42", m.Pairs[0].Name)
}

func TestRun(t *testing.T) {
	dir := setup(t)
	m, err := LoadManifest(filepath.Join(dir, "batch.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(m.OutDir, 0o755))

	cfg, err := merge.LoadConfig(m.Rules)
	require.NoError(t, err)
	merger, err := merge.New(*cfg)
	require.NoError(t, err)

	results, err := Run(context.Background(), merger, m.Pairs, 4)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Results keep manifest order regardless of completion order.
	assert.Equal(t, "one", results[0].Name)
	assert.Equal(t, StatusMerged, results[0].Status)
	assert.Equal(t, 2, results[0].Fields)

	// Second pair's 245 differs, so copy inserts it.
	assert.Equal(t, StatusMerged, results[1].Status)
	assert.Equal(t, 3, results[1].Fields)
	assert.Equal(t, 1, results[1].Inserted)

	assert.Equal(t, StatusFailed, results[2].Status)
	assert.NotEmpty(t, results[2].Error)

	rec, err := record.ReadFile(filepath.Join(dir, "merged", "two.json"))
	require.NoError(t, err)
	assert.Equal(t, "a2", rec.ID())
	assert.NoFileExists(t, filepath.Join(dir, "merged", "broken.json"))
}

func TestRunLogsFailedPair(t *testing.T) {
	dir := setup(t)
	m, err := LoadManifest(filepath.Join(dir, "batch.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(m.OutDir, 0o755))
	merger, err := merge.New(merge.Config{})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ctx := logging.WithLogger(context.Background(), &logger)

	_, err = Run(ctx, merger, m.Pairs, 1)
	require.NoError(t, err)

	logs := buf.String()
	assert.Contains(t, logs, `"message":"Pair failed"`)
	assert.Contains(t, logs, `"pair":"broken"`)
	assert.Contains(t, logs, `"error":`)
	assert.Contains(t, logs, `"pair":"one"`)
	assert.Contains(t, logs, `"output":"`+filepath.Join(dir, "merged", "one.json")+`"`)
}

func TestRunCanceled(t *testing.T) {
	dir := setup(t)
	m, err := LoadManifest(filepath.Join(dir, "batch.yaml"))
	require.NoError(t, err)
	merger, err := merge.New(merge.Config{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, merger, m.Pairs, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	var buf bytes.Buffer
	err := Summarize(&buf, []Result{{Status: StatusMerged}, {Status: StatusMerged}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "2 merged")

	buf.Reset()
	err = Summarize(&buf, []Result{{Status: StatusMerged}, {Status: StatusFailed}})
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "1 failed")
}

func TestBatchCommand(t *testing.T) {
	dir := setup(t)

	cmd := NewCommand(&appcontext.Mock{})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{filepath.Join(dir, "batch.yaml"), "-j", "2"})

	err := cmd.Execute()
	require.Error(t, err, "the broken pair fails the run")
	assert.Contains(t, stdout.String(), `"name": "one"`)
	assert.True(t, strings.Contains(stderr.String(), "2 merged"), stderr.String())
	assert.FileExists(t, filepath.Join(dir, "merged", "one.json"))
}
