package cli

import (
	"bytes"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footcache/footcache/internal/cache"
	"github.com/footcache/footcache/internal/estimate"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := RunWithInput(args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

// writeConfig 生成只包含缓存路径的配置文件，返回配置与缓存文件路径。
func writeConfig(t *testing.T, groupBy string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "estimates.cache.json")
	configPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("LogLevel = \"warn\"\n\n[Cache]\nPath = %q\nDefaultGroupBy = %q\n", cachePath, groupBy)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath, cachePath
}

func TestResolveConfigPathPriority(t *testing.T) {
	t.Setenv(ConfigEnv, "/tmp/env.toml")
	assert.Equal(t, "/tmp/env.toml", ResolveConfigPath(""))
	assert.Equal(t, "/tmp/flag.toml", ResolveConfigPath("/tmp/flag.toml"))

	t.Setenv(ConfigEnv, "")
	assert.Equal(t, "config.toml", ResolveConfigPath(""))
}

func TestVersionCommand(t *testing.T) {
	res := execute(t, "", "version")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "footcache")
}

func TestCheckConfig(t *testing.T) {
	configPath, cachePath := writeConfig(t, "day")
	res := execute(t, "", "check-config", "--config", configPath)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	_, err := os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err), "check-config must not create the cache file")

	res = execute(t, "", "check-config", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Equal(t, ExitRuntimeError, res.code)
	assert.Contains(t, res.stderr, "加载配置失败")
}

func TestMissingOnFreshCacheCreatesFile(t *testing.T) {
	configPath, cachePath := writeConfig(t, "day")

	res := execute(t, "", "missing", "--config", configPath, "--start", "2022-01-01", "--end", "2022-01-03")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "2022-01-01\n2022-01-02\n2022-01-03\n", res.stdout)

	raw, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestImportThenMissing(t *testing.T) {
	configPath, cachePath := writeConfig(t, "day")

	payload := `[{"timestamp":"2022-01-02T00:00:00.000Z","serviceEstimates":[]}]`
	res := execute(t, payload, "import", "--config", configPath, "-")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "imported 1 estimates")

	raw, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	stored, err := cache.DecodeEstimates(raw)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, estimate.Day, stored[0].GroupBy)

	res = execute(t, "", "missing", "--config", configPath, "--start", "2022-01-01", "--end", "2022-01-03")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "2022-01-01\n2022-01-03\n", res.stdout)
}

func TestImportFromFileUsesGroupByFlag(t *testing.T) {
	configPath, cachePath := writeConfig(t, "day")
	input := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(input, []byte(`[{"timestamp":"2022-04-01","serviceEstimates":[]}]`), 0o600))

	res := execute(t, "", "import", "--config", configPath, "--group-by", "quarter", input)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	raw, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"groupBy":"quarter"`)
}

func TestImportRejectsMalformedInput(t *testing.T) {
	configPath, cachePath := writeConfig(t, "day")

	res := execute(t, "not json", "import", "--config", configPath, "-")
	assert.Equal(t, ExitUsageError, res.code)
	_, err := os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err))
}

func TestMissingRejectsBadArguments(t *testing.T) {
	configPath, _ := writeConfig(t, "day")

	cases := [][]string{
		{"missing", "--config", configPath, "--start", "2022-01-05", "--end", "2022-01-01"},
		{"missing", "--config", configPath, "--start", "2022-01-01", "--end", "2022-01-05", "--group-by", "hour"},
		{"missing", "--config", configPath, "--start", "nope", "--end", "2022-01-05"},
		{"missing", "--config", configPath, "--bogus"},
	}
	for _, args := range cases {
		res := execute(t, "", args...)
		assert.Equal(t, ExitUsageError, res.code, strings.Join(args, " "))
	}
}

func TestStatsReportsEntries(t *testing.T) {
	configPath, cachePath := writeConfig(t, "day")
	require.NoError(t, os.WriteFile(cachePath, []byte(`[
		{"timestamp":"2022-01-01T00:00:00.000Z","serviceEstimates":[],"groupBy":"day"},
		{"timestamp":"2022-01-02T00:00:00.000Z","serviceEstimates":[],"groupBy":"day"},
		{"timestamp":"2022-01-01T00:00:00.000Z","serviceEstimates":[],"groupBy":"month"}
	]`), 0o600))

	res := execute(t, "", "stats", "--config", configPath)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "state:   loaded")
	assert.Contains(t, res.stdout, "entries: 3")
	assert.Contains(t, res.stdout, "range:   2022-01-01 .. 2022-01-02")
	assert.Regexp(t, `day\s+2`, res.stdout)
	assert.Regexp(t, `month\s+1`, res.stdout)
}

func TestStatsOnMissingFile(t *testing.T) {
	configPath, cachePath := writeConfig(t, "day")

	res := execute(t, "", "stats", "--config", configPath)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "state:   not_found")
	_, err := os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err))
}

func TestBuildServerWiresRoutes(t *testing.T) {
	configPath, cachePath := writeConfig(t, "week")
	a := &app{configFlag: configPath, stdout: io.Discard, stderr: io.Discard, stdin: strings.NewReader("")}

	cfg, logger, err := a.bootstrap()
	require.NoError(t, err)
	fiberApp, err := a.buildServer(cfg, logger)
	require.NoError(t, err)

	resp, err := fiberApp.Test(httptest.NewRequest("GET", "/api/missing?start=2022-01-03&end=2022-01-16", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, 200, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"groupBy":"week"`)
	assert.Contains(t, string(body), `"2022-01-10"`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = fiberApp.Test(httptest.NewRequest("GET", "/-/cache", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), cachePath)
}
