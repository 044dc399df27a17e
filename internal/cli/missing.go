package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/footcache/footcache/internal/cache"
	"github.com/footcache/footcache/internal/estimate"
)

type missingFlags struct {
	start       string
	end         string
	groupBy     string
	ignoreCache bool
}

func (a *app) missingCommand() *cobra.Command {
	var flags missingFlags
	cmd := &cobra.Command{
		Use:   "missing",
		Short: "列出区间内缓存缺失的周期，每行一个日期",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}

			cfg, logger, err := a.bootstrap()
			if err != nil {
				return err
			}
			grouping := req.GroupBy
			if grouping == "" {
				grouping = cfg.Cache.GroupBy()
				req.GroupBy = grouping
			}

			store, err := a.openStore(cfg, logger)
			if err != nil {
				return err
			}
			manager := cache.NewManager(store, logger)
			missing, err := manager.MissingDates(cmd.Context(), req, grouping)
			if err != nil {
				return fmt.Errorf("分析缓存失败: %w", err)
			}
			for _, ts := range missing {
				fmt.Fprintln(a.stdout, estimate.FormatDate(ts))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.start, "start", "", "起始日期 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.end, "end", "", "结束日期 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.groupBy, "group-by", "", "聚合粒度 day|week|month|quarter|year（默认取配置）")
	cmd.Flags().BoolVar(&flags.ignoreCache, "ignore-cache", false, "忽略缓存，返回完整区间")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func (f missingFlags) request() (estimate.Request, error) {
	var req estimate.Request
	var err error

	if req.StartDate, err = estimate.ParseDate(f.start); err != nil {
		return req, usagef("--start: %v", err)
	}
	if req.EndDate, err = estimate.ParseDate(f.end); err != nil {
		return req, usagef("--end: %v", err)
	}
	if f.groupBy != "" {
		if req.GroupBy, err = estimate.ParseGroupBy(f.groupBy); err != nil {
			return req, usagef("--group-by: %v", err)
		}
	}
	req.IgnoreCache = f.ignoreCache
	if err := req.Validate(); err != nil {
		return req, usageError{err: err}
	}
	return req, nil
}
