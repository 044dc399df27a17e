package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/footcache/footcache/internal/cache"
	"github.com/footcache/footcache/internal/config"
	"github.com/footcache/footcache/internal/logging"
)

// 退出码：0 成功；1 运行期错误；2 参数错误。
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitUsageError   = 2
)

// ConfigEnv 在未显式传入 --config 时提供配置文件路径。
const ConfigEnv = "FOOTCACHE_CONFIG"

const defaultConfigPath = "config.toml"

// usageError 标记参数类错误，Run 据此返回 ExitUsageError。
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// app 汇总一次命令执行共享的输出与全局标志。
type app struct {
	configFlag string
	stdout     io.Writer
	stderr     io.Writer
	stdin      io.Reader
}

// Run 构建命令树并执行 args，返回进程退出码。每次调用都使用独立的命令实例。
func Run(args []string, stdout, stderr io.Writer) int {
	return RunWithInput(args, os.Stdin, stdout, stderr)
}

// RunWithInput 与 Run 相同，但允许替换 import 命令读取的标准输入。
func RunWithInput(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, stdin: stdin}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			return ExitUsageError
		}
		return ExitRuntimeError
	}
	return ExitSuccess
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "footcache",
		Short:         "File-backed cache for cloud footprint estimates",
		Long:          "footcache 维护按周期聚合的足迹估算缓存文件：计算缺失周期、合并写入新数据并通过 HTTP 暴露。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})
	root.PersistentFlags().StringVar(&a.configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 "+ConfigEnv+" 覆盖）")

	root.AddCommand(
		a.serveCommand(),
		a.missingCommand(),
		a.importCommand(),
		a.statsCommand(),
		a.checkConfigCommand(),
		a.versionCommand(),
	)
	return root
}

// configPath 计算最终的配置路径：--config > FOOTCACHE_CONFIG > config.toml。
func (a *app) configPath() string {
	return ResolveConfigPath(a.configFlag)
}

// ResolveConfigPath 结合显式标志与环境变量得到配置文件路径。
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(ConfigEnv); env != "" {
		return env
	}
	return defaultConfigPath
}

// bootstrap 加载配置并初始化日志，日志在未配置文件时写入 stderr。
func (a *app) bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(a.configPath())
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := logging.InitLogger(cfg.Global, a.stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, logger, nil
}

func (a *app) openStore(cfg *config.Config, logger logrus.FieldLogger) (cache.Store, error) {
	store, err := cache.NewStore(cfg.Cache.Path, logger, cfg.Cache.WriteOptions())
	if err != nil {
		return nil, fmt.Errorf("初始化缓存失败: %w", err)
	}
	return store, nil
}
