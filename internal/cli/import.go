package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/footcache/footcache/internal/cache"
	"github.com/footcache/footcache/internal/estimate"
	"github.com/footcache/footcache/internal/logging"
)

func (a *app) importCommand() *cobra.Command {
	var groupBy string
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "把 JSON 数组形式的估算记录合并写入缓存",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var grouping estimate.GroupBy
			if groupBy != "" {
				parsed, err := estimate.ParseGroupBy(groupBy)
				if err != nil {
					return usagef("--group-by: %v", err)
				}
				grouping = parsed
			}

			raw, err := a.readInput(args[0])
			if err != nil {
				return err
			}

			cfg, logger, err := a.bootstrap()
			if err != nil {
				return err
			}
			if grouping == "" {
				grouping = cfg.Cache.GroupBy()
			}

			incoming, err := cache.DecodeIncoming(raw, grouping)
			if err != nil {
				return usagef("无法解析输入: %v", err)
			}

			store, err := a.openStore(cfg, logger)
			if err != nil {
				return err
			}
			manager := cache.NewManager(store, logger)
			if err := manager.SetEstimates(cmd.Context(), incoming, grouping); err != nil {
				return fmt.Errorf("写入缓存失败: %w", err)
			}

			fields := logging.CacheFields("import", store.Path(), grouping.String())
			fields["source"] = args[0]
			fields["fetched"] = len(manager.FetchedEstimates())
			logger.WithFields(fields).Debug("import finished")

			fmt.Fprintf(a.stdout, "imported %d estimates into %s\n", len(manager.FetchedEstimates()), store.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&groupBy, "group-by", "", "记录缺失 groupBy 时使用的粒度（默认取配置）")
	return cmd
}

// readInput 读取文件内容，"-" 表示标准输入。
func (a *app) readInput(source string) ([]byte, error) {
	if source == "-" {
		raw, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("读取标准输入失败: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", source, err)
	}
	return raw, nil
}
