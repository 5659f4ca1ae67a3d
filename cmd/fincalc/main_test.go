package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/rgehrsitz/fincalc/internal/server"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "cli-test-secret"

// isolate points the CLI at a fresh rate file and clears external services
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RATES_REFRESH", "")
	t.Setenv("RATES_FILE", filepath.Join(dir, "rates.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(dir, "missing.env")}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "fincalc", cmd.Use)

	registered := map[string]bool{}
	for _, c := range cmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range []string{"list", "calc", "batch", "compare", "serve", "rates", "version"} {
		assert.True(t, registered[name], "Should register %s", name)
	}
}

func TestListCommand(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, dir, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 45, "Should print one line per calculator")
	assert.True(t, strings.HasPrefix(lines[0], "budget_planner"))

	out, err = run(t, dir, "list", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "--param principal=")
}

func TestCalcCommand(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, dir, "calc", "emi:principal=1000000,tenure=20", "--param", "rate=8.5", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"calculator": "emi"`)
	assert.Contains(t, out, `"rate_source": "user"`)

	out, err = run(t, dir, "calc", "emi")
	require.NoError(t, err)
	assert.Contains(t, out, "EMI", "Should default to the table format")

	_, err = run(t, dir, "calc", "lottery")
	assert.Error(t, err)

	_, err = run(t, dir, "calc", "emi", "--param", "rate")
	assert.Error(t, err, "Should reject a parameter without a value")

	_, err = run(t, dir, "calc", "emi", "--format", "pdf")
	assert.Error(t, err)
}

func TestRatesCommands(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, dir, "rates", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "loan_rate", "Should seed the default rates")

	_, err = run(t, dir, "rates", "set", "fd_rate", "7.1")
	require.NoError(t, err)
	out, err = run(t, dir, "rates", "get", "fd_rate")
	require.NoError(t, err)
	assert.Equal(t, "7.1\n", out)

	_, err = run(t, dir, "rates", "set", "fd_rate", "-1")
	assert.Error(t, err)

	_, err = run(t, dir, "rates", "delete", "custom_rate")
	assert.True(t, errors.Is(err, errRateNotFound))

	_, err = run(t, dir, "rates", "set", "custom_rate", "3")
	require.NoError(t, err)
	_, err = run(t, dir, "rates", "delete", "custom_rate")
	require.NoError(t, err)
	_, err = run(t, dir, "rates", "get", "custom_rate")
	assert.True(t, errors.Is(err, errRateNotFound))
}

func TestRatesImport(t *testing.T) {
	dir := isolate(t)
	sheet := writeFile(t, dir, "sheet.xml", `<rates><rate key="fd_rate">7.4</rate><rate key="sip_rate">11</rate></rates>`)

	out, err := run(t, dir, "rates", "import", sheet, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "fd_rate\t7.4")

	out, err = run(t, dir, "rates", "import", sheet)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 rates")

	out, err = run(t, dir, "rates", "get", "sip_rate")
	require.NoError(t, err)
	assert.Equal(t, "11\n", out)
}

func TestRatesToken(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, dir, "rates", "token", "--subject", "ops")
	require.NoError(t, err)

	claims, err := server.ParseToken([]byte(testSecret), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, server.AdminRole, claims.Role)
	assert.Equal(t, "ops", claims.Subject)

	t.Setenv("JWT_SECRET", "")
	_, err = run(t, dir, "rates", "token")
	assert.Error(t, err, "Should refuse to sign without a secret")
}

func TestRefreshKeys(t *testing.T) {
	store := rates.NewMemoryStore(rates.Defaults())
	require.NoError(t, store.SetRate(context.Background(), "home_loan_rate", decimal.NewFromInt(9)))

	keys, err := refreshKeys(context.Background(), store)
	require.NoError(t, err)
	assert.Contains(t, keys, rates.KeyInterestRate, "Should track keys that have no seeded default")
	assert.Contains(t, keys, "home_loan_rate", "Should track custom stored keys")
	assert.Len(t, keys, len(rates.KnownKeys())+1)
}

func TestBatchCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "batch.yaml", `
runs:
  - name: home loan
    calculator: emi
    params: {principal: 2500000, rate: 8.75, tenure: 20}
  - name: broken
    calculator: emi
    params: {principal: lots}
  - calculator: sip
`)

	out, err := run(t, dir, "batch", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 runs failed")
	assert.Contains(t, out, "== home loan ==")
	assert.Contains(t, out, "== sip ==", "Should keep going after a failure")

	out, err = run(t, dir, "batch", path, "--fail-fast")
	require.Error(t, err)
	assert.NotContains(t, out, "== sip ==")
}

func TestCompareCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "compare.yaml", `
metric: total_interest
goal: min
base:
  name: 20 years
  calculator: emi
  params: {principal: 1000000, tenure: 20}
alternatives:
  - name: 15 years
    calculator: emi
    params: {principal: 1000000, tenure: 15}
`)

	out, err := run(t, dir, "compare", path, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"best": "15 years"`)

	out, err = run(t, dir, "compare", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Winner: 15 years")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "fincalc dev"))
}
