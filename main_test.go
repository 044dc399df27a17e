package main

import (
	"strings"
	"testing"
)

func TestRunCheckConfigSuccess(t *testing.T) {
	useBufferWriters(t)
	code := run([]string{"check-config", "--config", configFixture(t, "valid.toml")})
	if code != 0 {
		t.Fatalf("期望退出码 0，得到 %d (stderr=%s)", code, stdErrBuffer().String())
	}
}

func TestRunCheckConfigFromEnv(t *testing.T) {
	useBufferWriters(t)
	t.Setenv("FOOTCACHE_CONFIG", configFixture(t, "minimal.toml"))
	if code := run([]string{"check-config"}); code != 0 {
		t.Fatalf("应读取环境变量中的配置路径，得到退出码 %d (stderr=%s)", code, stdErrBuffer().String())
	}
}

func TestRunCheckConfigFailure(t *testing.T) {
	useBufferWriters(t)
	code := run([]string{"check-config", "--config", configFixture(t, "missing.toml")})
	if code == 0 {
		t.Fatalf("无效配置应返回非零退出码")
	}
}

func TestRunRejectsInvalidGroupBy(t *testing.T) {
	useBufferWriters(t)
	code := run([]string{"check-config", "--config", configFixture(t, "invalid_groupby.toml")})
	if code == 0 {
		t.Fatalf("非法 DefaultGroupBy 应返回非零退出码")
	}
	if !strings.Contains(stdErrBuffer().String(), "DefaultGroupBy") {
		t.Fatalf("错误信息应指出字段，得到 %s", stdErrBuffer().String())
	}
}

func TestRunVersionOutput(t *testing.T) {
	useBufferWriters(t)
	code := run([]string{"version"})
	if code != 0 {
		t.Fatalf("version 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(stdOutBuffer().String(), "footcache") {
		t.Fatalf("version 输出应包含 footcache 标识")
	}
}

func TestRunUnknownFlagIsUsageError(t *testing.T) {
	useBufferWriters(t)
	if code := run([]string{"version", "--nope"}); code != 2 {
		t.Fatalf("未知参数应返回退出码 2，得到 %d", code)
	}
}
