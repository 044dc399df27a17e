package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/footcache/footcache/internal/config"
	"github.com/footcache/footcache/internal/logging"
	"github.com/footcache/footcache/internal/version"
)

func (a *app) checkConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "仅校验配置后退出",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := a.bootstrap()
			if err != nil {
				return err
			}
			fields := logging.BaseFields("check_config", a.configPath())
			fields["cache_path"] = cfg.Cache.Path
			fields["default_group_by"] = cfg.Cache.GroupBy()
			fields["listen_port"] = cfg.Global.ListenPort
			fields["result"] = "ok"
			logger.WithFields(fields).Info("配置校验通过")
			return nil
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(a.stdout, version.Full())
		},
	}
}

// loadConfigOnly 只解析配置，不初始化日志，供只读命令使用。
func (a *app) loadConfigOnly() (*config.Config, error) {
	cfg, err := config.Load(a.configPath())
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	return cfg, nil
}
