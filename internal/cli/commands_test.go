package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const earlyDoc = `name: early
variables: [a, b]
predicates:
  - compare:
      lhs: {selector: {field: tx_from}}
      op: "<"
      rhs: {literal: "2020-01-01"}
`

const globalOnlyDoc = `name: global
predicates:
  - compare:
      lhs: {selector: {field: tx_from}}
      op: "<"
      rhs: {literal: "2020-01-01"}
`

const overlapDoc = `name: overlap
bindings:
  - {variable: a, label: Person}
  - {variable: b, label: Person}
predicates:
  - compare:
      lhs: {property: {variable: a, key: name}}
      op: "<"
      rhs: {property: {variable: b, key: name}}
  - compare:
      lhs: {selector: {field: val_from}}
      op: "<="
      rhs: {selector: {field: val_to}}
elements:
  - id: alice
    label: Person
    valid: {from: "2020-01-01", to: "2020-06-01"}
    properties: {name: Alice}
  - id: bob
    label: Person
    valid: {from: "2020-03-01"}
    properties: {name: Bob}
  - id: carol
    label: Person
    valid: {from: "2020-07-01", to: "2020-08-01"}
    properties: {name: Carol}
  - id: acme
    label: Company
    properties: {name: Acme}
`

type response[T any] struct {
	Status  string    `json:"status"`
	Data    T         `json:"data"`
	Error   *CLIError `json:"error"`
	TraceID string    `json:"trace_id"`
}

func executeCommand(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := newRootCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeResponse[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func TestUnfold_Text(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "early.yaml", earlyDoc)

	stdout, _, err := executeCommand(t, &RootOptions{}, "unfold", path)
	require.NoError(t, err)
	assert.Equal(t, "early: (a.TX_FROM < 2020-01-01T00:00:00 AND b.TX_FROM < 2020-01-01T00:00:00)\n", stdout)
}

func TestUnfold_JSON(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "early.yaml", earlyDoc)
	opts := &RootOptions{TraceIDs: NewFixedGenerator("trace-123")}

	stdout, _, err := executeCommand(t, opts, "--format", "json", "unfold", path)
	require.NoError(t, err)

	resp := decodeResponse[[]UnfoldResult](t, stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "trace-123", resp.TraceID)
	require.Len(t, resp.Data, 1)

	got := resp.Data[0]
	assert.Equal(t, "early", got.Name)
	assert.Equal(t, path, got.Path)
	assert.Equal(t, []string{"a", "b"}, got.Variables)
	assert.Contains(t, got.Original, "TX_FROM < 2020-01-01T00:00:00")
	assert.Contains(t, got.Unfolded, "b.TX_FROM < 2020-01-01T00:00:00")
	assert.Equal(t, 2, got.Comparisons)
	assert.Len(t, got.Fingerprint, 64)
}

func TestUnfold_Glob(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, "one.yaml", earlyDoc)
	writeDocument(t, dir, "nested/two.yml", overlapDoc)
	writeDocument(t, dir, "nested/ignored.txt", "not a document")

	stdout, _, err := executeCommand(t, &RootOptions{}, "unfold", filepath.Join(dir, "**", "*.{yaml,yml}"))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace([]byte(stdout)), []byte("\n"))
	require.Len(t, lines, 2)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("overlap: ")), "got %s", lines[0])
	assert.True(t, bytes.HasPrefix(lines[1], []byte("early: ")), "got %s", lines[1])
}

func TestUnfold_DefaultVariablesFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "global.yaml", globalOnlyDoc)
	cfg := writeDocument(t, dir, "tpgm.yaml", "variables: [x, y]\n")

	stdout, _, err := executeCommand(t, &RootOptions{}, "--config", cfg, "unfold", path)
	require.NoError(t, err)
	assert.Equal(t, "global: (x.TX_FROM < 2020-01-01T00:00:00 AND y.TX_FROM < 2020-01-01T00:00:00)\n", stdout)
}

func TestUnfold_NoVariables(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "global.yaml", globalOnlyDoc)

	stdout, _, err := executeCommand(t, &RootOptions{}, "unfold", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E004]")
}

func TestUnfold_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeDocument(t, dir, "bad.yaml", `predicates: [{compare: {lhs: {constant: 1}, op: "~", rhs: {constant: 2}}}]`)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"missing_file", []string{"unfold", filepath.Join(dir, "missing.yaml")}, ExitCommandError, ErrCodeNoFiles},
		{"empty_glob", []string{"unfold", filepath.Join(dir, "*.cue")}, ExitCommandError, ErrCodeNoFiles},
		{"directory", []string{"unfold", dir}, ExitCommandError, ErrCodeNoFiles},
		{"bad_document", []string{"unfold", bad}, ExitFailure, ErrCodeLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &RootOptions{}
			stdout, _, err := executeCommand(t, opts, append([]string{"--format", "json"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))

			resp := decodeResponse[any](t, stdout)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestSQL_Text(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "early.yaml", earlyDoc)

	stdout, _, err := executeCommand(t, &RootOptions{}, "sql", path)
	require.NoError(t, err)
	assert.Equal(t, "-- early\n(a_tx_from < ? AND b_tx_from < ?)\n-- params: [1577836800000 1577836800000]\n", stdout)
}

func TestSQL_JSON(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "early.yaml", earlyDoc)

	stdout, _, err := executeCommand(t, &RootOptions{}, "--format", "json", "sql", path)
	require.NoError(t, err)

	resp := decodeResponse[[]SQLResult](t, stdout)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "(a_tx_from < ? AND b_tx_from < ?)", resp.Data[0].Where)
	assert.Equal(t, []any{float64(1577836800000), float64(1577836800000)}, resp.Data[0].Params)
	assert.NotEmpty(t, resp.TraceID)
}

func TestEval(t *testing.T) {
	stdout, _, err := executeCommand(t, &RootOptions{}, "eval", "2020-01-01", "2020-06-01T12:30:00.250", "86400000")
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01\t1577836800000\t2020-01-01T00:00:00\n"+
		"2020-06-01T12:30:00.250\t1591014600250\t2020-06-01T12:30:00.25\n"+
		"86400000\t86400000\tConstant(86400000)\n", stdout)
}

func TestEval_JSON(t *testing.T) {
	stdout, _, err := executeCommand(t, &RootOptions{}, "--format", "json", "eval", "1970-01-02")
	require.NoError(t, err)

	resp := decodeResponse[[]EvalResult](t, stdout)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, EvalResult{Input: "1970-01-02", Kind: "literal", Millis: 86400000, Text: "1970-01-02T00:00:00"}, resp.Data[0])
}

func TestEval_Invalid(t *testing.T) {
	stdout, _, err := executeCommand(t, &RootOptions{}, "eval", "yesterday")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E007]")
}

func TestImportAndMatch(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "overlap.yaml", overlapDoc)
	db := filepath.Join(dir, "graph.db")

	stdout, _, err := executeCommand(t, &RootOptions{}, "import", "--db", db, path)
	require.NoError(t, err)
	assert.Equal(t, "Imported 4 element(s) from 1 file(s) into "+db+"\n", stdout)

	// alice and bob overlap, carol starts after alice ends
	stdout, _, err = executeCommand(t, &RootOptions{}, "match", "--db", db, path)
	require.NoError(t, err)
	assert.Equal(t, "overlap: 2 match(es)\n  a=alice b=bob\n  a=bob b=carol\n", stdout)

	stdout, _, err = executeCommand(t, &RootOptions{}, "--format", "json", "match", "--db", db, path)
	require.NoError(t, err)
	resp := decodeResponse[[]MatchResult](t, stdout)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, []string{"a", "b"}, resp.Data[0].Variables)
	assert.NotContains(t, resp.Data[0].Where, "global")
	require.Len(t, resp.Data[0].Embeddings, 2)
	assert.Equal(t, "alice", resp.Data[0].Embeddings[0]["a"])
	assert.Equal(t, "bob", resp.Data[0].Embeddings[0]["b"])
}

func TestImport_InvalidElement(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "bad.yaml", `elements:
  - id: x
    label: Person
    valid: {from: "2020-02-01", to: "2020-01-01"}
`)

	_, _, err := executeCommand(t, &RootOptions{}, "import", "--db", filepath.Join(dir, "graph.db"), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestMatch_MissingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "overlap.yaml", overlapDoc)

	stdout, _, err := executeCommand(t, &RootOptions{}, "match", "--db", filepath.Join(dir, "missing.db"), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "database not found")
}

func TestMatch_RequiresDatabaseFlag(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "overlap.yaml", overlapDoc)

	_, _, err := executeCommand(t, &RootOptions{}, "match", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func writeScenarios(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeDocument(t, dir, "docs/overlap.yaml", overlapDoc)
	writeDocument(t, dir, "scenarios/pass.yaml", `name: overlap-pass
description: "overlapping people"
document: ../docs/overlap.yaml
expect:
  matches:
    - {a: alice, b: bob}
    - {a: bob, b: carol}
`)
	writeDocument(t, dir, "scenarios/fail.yaml", `name: overlap-fail
description: "wrong expectation"
document: ../docs/overlap.yaml
expect:
  matches: []
`)
	return dir
}

func TestTest_Text(t *testing.T) {
	dir := writeScenarios(t)

	stdout, _, err := executeCommand(t, &RootOptions{}, "test", filepath.Join(dir, "scenarios", "*.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ overlap-fail\n  matches: expected")
	assert.Contains(t, stdout, "✓ overlap-pass\n")
	assert.Contains(t, stdout, "1 passed, 1 failed, 2 total")
}

func TestTest_Filter(t *testing.T) {
	dir := writeScenarios(t)

	stdout, _, err := executeCommand(t, &RootOptions{}, "--format", "json",
		"test", "--filter", "*-pass", filepath.Join(dir, "**", "*.yaml"))
	require.NoError(t, err)

	resp := decodeResponse[TestResult](t, stdout)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "overlap-pass", resp.Data.Scenarios[0].Name)
}

func TestTest_InvalidScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "broken.yaml", "name: broken\n")

	stdout, _, err := executeCommand(t, &RootOptions{}, "test", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "failed to load scenario")
}
