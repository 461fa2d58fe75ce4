package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sctester/scenario/action"
	"github.com/sctester/scenario/internal/testing/fake"
	"github.com/sctester/scenario/suite"
	"github.com/sctester/scenario/suite/store"
	"github.com/stretchr/testify/require"
)

const suiteYAML = `
actions:
  - kind: create_implicit_account
    payload:
      name: alice
      balance: "1000000"
  - kind: assert_account_balance
    payload:
      account_name: alice
      balance: "1000000"
`

const resultsJSON = `[
  {"status":"success","kind":"create_implicit_account","result":{"address":"tz1abc"}},
  {"status":"failure","kind":"assert_account_balance"}
]`

func TestRun_Validate(t *testing.T) {
	dir := makeDir(t)
	defer os.RemoveAll(dir)

	path := writeFile(t, dir, "suite.yaml", suiteYAML)

	out := new(bytes.Buffer)
	err := run([]string{"sctester", "validate", "--file", path}, out)
	require.NoError(t, err)
	require.Equal(t, path+": 2 action(s), protocol any\n", out.String())

	t.Setenv("SCTESTER_PROTOCOL", "PtHangz2")

	out.Reset()
	err = run([]string{"sctester", "validate", "--file", path}, out)
	require.NoError(t, err)
	require.Equal(t, path+": 2 action(s), protocol PtHangz2\n", out.String())

	bad := writeFile(t, dir, "bad.json", `{"actions":[{"kind":"transfer","payload":{}}]}`)

	err = run([]string{"sctester", "validate", "--file", bad}, out)
	require.True(t, errors.Is(err, action.ErrUnknownKind))

	err = run([]string{"sctester", "validate"}, out)
	require.Error(t, err)
}

func TestRun_Encode(t *testing.T) {
	dir := makeDir(t)
	defer os.RemoveAll(dir)

	path := writeFile(t, dir, "suite.yaml", suiteYAML)

	out := new(bytes.Buffer)
	err := run([]string{"sctester", "encode", "--file", path}, out)
	require.NoError(t, err)
	require.Equal(t, `{"actions":[`+
		`{"kind":"create_implicit_account","payload":{"name":"alice","balance":"1000000"}},`+
		`{"kind":"assert_account_balance","payload":{"account_name":"alice","balance":"1000000"}}]}`+"\n",
		out.String())

	out.Reset()
	err = run([]string{"sctester", "encode", "--file", path, "--canonical"}, out)
	require.NoError(t, err)
	require.Equal(t, `{"actions":[`+
		`{"kind":"create_implicit_account","payload":{"balance":"1000000","name":"alice"}},`+
		`{"kind":"assert_account_balance","payload":{"account_name":"alice","balance":"1000000"}}]}`+"\n",
		out.String())
}

func TestRun_Fingerprint(t *testing.T) {
	dir := makeDir(t)
	defer os.RemoveAll(dir)

	yamlPath := writeFile(t, dir, "suite.yaml", suiteYAML)
	jsonPath := writeFile(t, dir, "suite.json", `{"actions":[`+
		`{"kind":"create_implicit_account","payload":{"balance":"1000000","name":"alice"}},`+
		`{"kind":"assert_account_balance","payload":{"balance":"1000000","account_name":"alice"}}]}`)

	first := new(bytes.Buffer)
	err := run([]string{"sctester", "fingerprint", "--file", yamlPath}, first)
	require.NoError(t, err)

	digest, err := hex.DecodeString(strings.TrimSpace(first.String()))
	require.NoError(t, err)
	require.Len(t, digest, 32)

	second := new(bytes.Buffer)
	err = run([]string{"sctester", "fingerprint", "--file", jsonPath}, second)
	require.NoError(t, err)
	require.Equal(t, first.String(), second.String())
}

func TestRun_Results(t *testing.T) {
	dir := makeDir(t)
	defer os.RemoveAll(dir)

	path := writeFile(t, dir, "suite.yaml", suiteYAML)
	results := writeFile(t, dir, "results.json", resultsJSON)

	out := new(bytes.Buffer)
	err := run([]string{"sctester", "results", "--file", path, "--results", results}, out)
	require.EqualError(t, err, "1 action(s) failed")
	require.Contains(t, out.String(), "create_implicit_account")
	require.Contains(t, out.String(), `{"address":"tz1abc"}`)
	require.Contains(t, out.String(), "failure")
	require.Contains(t, out.String(), "passed: 1, failed: 1\n")

	passed := writeFile(t, dir, "passed.json", strings.Replace(resultsJSON, "failure", "success", 1))

	out.Reset()
	err = run([]string{"sctester", "results", "--file", path, "--results", passed}, out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "passed: 2, failed: 0\n")

	short := writeFile(t, dir, "short.json", `[{"status":"success","kind":"create_implicit_account"}]`)

	err = run([]string{"sctester", "results", "--file", path, "--results", short}, out)
	require.True(t, errors.Is(err, suite.ErrCorrelation))

	err = run([]string{"sctester", "results", "--file", path,
		"--results", filepath.Join(dir, "missing.json")}, out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read results: ")
}

func TestRun_Store(t *testing.T) {
	dir := makeDir(t)
	defer os.RemoveAll(dir)

	t.Setenv("SCTESTER_DB", filepath.Join(dir, "suites.db"))

	path := writeFile(t, dir, "suite.yaml", suiteYAML)

	out := new(bytes.Buffer)
	err := run([]string{"sctester", "store", "save", "--name", "alice", "--file", path}, out)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out.String(), "alice "))

	out.Reset()
	err = run([]string{"sctester", "store", "get", "--name", "alice"}, out)
	require.NoError(t, err)
	require.Contains(t, out.String(), `"kind":"assert_account_balance"`)

	err = run([]string{"sctester", "store", "save", "--name", "suite_bob", "--file", path}, out)
	require.NoError(t, err)

	out.Reset()
	err = run([]string{"sctester", "store", "list", "--limit", "1"}, out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "alice")
	require.NotContains(t, out.String(), "suite_bob")

	out.Reset()
	err = run([]string{"sctester", "store", "list", "--prefix", "suite_"}, out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "suite_bob")
	require.NotContains(t, out.String(), "alice")

	err = run([]string{"sctester", "store", "delete", "--name", "alice"}, out)
	require.NoError(t, err)

	err = run([]string{"sctester", "store", "get", "--name", "alice"}, out)
	require.True(t, errors.Is(err, store.ErrNotFound))

	out.Reset()
	other := filepath.Join(dir, "other.db")
	err = run([]string{"sctester", "store", "list", "--db", other}, out)
	require.NoError(t, err)
	require.NotContains(t, out.String(), "suite_bob")
}

func TestRun_WriteFailure(t *testing.T) {
	dir := makeDir(t)
	defer os.RemoveAll(dir)

	t.Setenv("SCTESTER_DB", filepath.Join(dir, "suites.db"))

	path := writeFile(t, dir, "suite.yaml", suiteYAML)

	err := run([]string{"sctester", "encode", "--file", path}, badWriter{})
	require.EqualError(t, err, fake.Err("couldn't write"))

	err = run([]string{"sctester", "encode", "--file", path, "--canonical"}, badWriter{})
	require.EqualError(t, err, fake.Err("failed to canonicalize: couldn't write"))

	err = run([]string{"sctester", "store", "save", "--name", "alice", "--file", path},
		new(bytes.Buffer))
	require.NoError(t, err)

	err = run([]string{"sctester", "store", "get", "--name", "alice"}, badWriter{})
	require.EqualError(t, err, fake.Err("couldn't write"))
}

func TestRun_BadConfig(t *testing.T) {
	t.Setenv("LLVL", "chatty")

	err := run([]string{"sctester", "--version"}, new(bytes.Buffer))
	require.EqualError(t, err, "failed to load config: invalid log level: "+
		"Unknown Level String: 'chatty', defaulting to NoLevel")
}

// -----------------------------------------------------------------------------
// Utility functions

type badWriter struct{}

func (badWriter) Write([]byte) (int, error) {
	return 0, fake.GetError()
}

func makeDir(t *testing.T) string {
	dir, err := os.MkdirTemp(os.TempDir(), "sctester")
	require.NoError(t, err)

	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)

	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)

	return path
}
