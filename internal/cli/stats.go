package cli

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/footcache/footcache/internal/cache"
	"github.com/footcache/footcache/internal/estimate"
)

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "显示缓存文件的大小、更新时间与各粒度条目数",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfigOnly()
			if err != nil {
				return err
			}
			summary, err := cache.Summarize(cfg.Cache.Path)
			if err != nil {
				return fmt.Errorf("读取缓存失败: %w", err)
			}
			a.printSummary(summary)
			return nil
		},
	}
}

func (a *app) printSummary(summary cache.Summary) {
	out := a.stdout
	fmt.Fprintf(out, "path:    %s\n", summary.Path)
	fmt.Fprintf(out, "state:   %s\n", summary.State)
	if summary.State == cache.LoadStateNotFound {
		return
	}
	fmt.Fprintf(out, "size:    %s\n", humanize.Bytes(uint64(summary.SizeBytes)))
	fmt.Fprintf(out, "updated: %s\n", humanize.Time(summary.ModTime))
	if summary.State != cache.LoadStateLoaded {
		return
	}
	fmt.Fprintf(out, "entries: %s\n", humanize.Comma(int64(summary.Entries)))
	if summary.Oldest != nil && summary.Newest != nil {
		fmt.Fprintf(out, "range:   %s .. %s\n", estimate.FormatDate(*summary.Oldest), estimate.FormatDate(*summary.Newest))
	}

	groups := make([]string, 0, len(summary.ByGroupBy))
	for g := range summary.ByGroupBy {
		groups = append(groups, string(g))
	}
	sort.Strings(groups)
	for _, g := range groups {
		fmt.Fprintf(out, "  %-8s %s\n", g, humanize.Comma(int64(summary.ByGroupBy[estimate.GroupBy(g)])))
	}
}
