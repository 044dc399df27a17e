package cache

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/footcache/footcache/internal/estimate"
)

// Summary 汇总缓存文件的诊断信息，读取过程中不会创建或修改文件。
type Summary struct {
	Path      string                   `json:"path"`
	State     LoadState                `json:"state"`
	SizeBytes int64                    `json:"size_bytes"`
	ModTime   time.Time                `json:"mod_time"`
	Entries   int                      `json:"entries"`
	ByGroupBy map[estimate.GroupBy]int `json:"by_group_by"`
	Oldest    *time.Time               `json:"oldest,omitempty"`
	Newest    *time.Time               `json:"newest,omitempty"`
}

// Summarize 读取 path 并统计条目；文件缺失或损坏反映在 State 中而不是 error。
func Summarize(path string) (Summary, error) {
	summary := Summary{Path: path, ByGroupBy: map[estimate.GroupBy]int{}}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			summary.State = LoadStateNotFound
			return summary, nil
		}
		return summary, err
	}
	summary.SizeBytes = info.Size()
	summary.ModTime = info.ModTime()

	raw, err := os.ReadFile(path)
	if err != nil {
		return summary, err
	}
	estimates, err := DecodeEstimates(raw)
	if err != nil {
		summary.State = LoadStateCorrupt
		return summary, nil
	}

	summary.State = LoadStateLoaded
	summary.Entries = len(estimates)
	for _, est := range estimates {
		summary.ByGroupBy[est.GroupBy]++
		ts := est.Timestamp
		if summary.Oldest == nil || ts.Before(*summary.Oldest) {
			summary.Oldest = &ts
		}
		if summary.Newest == nil || ts.After(*summary.Newest) {
			summary.Newest = &ts
		}
	}
	return summary, nil
}
