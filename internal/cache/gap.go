package cache

import (
	"time"

	"github.com/footcache/footcache/internal/estimate"
)

// MissingDates 返回请求区间内、按 grouping 对齐后未出现在 cached 中的周期起点（升序）。
// 只有 GroupBy 与 grouping 一致的缓存记录参与比对；IgnoreCache 时直接返回完整区间。
func MissingDates(req estimate.Request, cached []estimate.Estimate, grouping estimate.GroupBy) []time.Time {
	requested := grouping.Range(req.StartDate, req.EndDate)
	if req.IgnoreCache || len(cached) == 0 {
		return requested
	}

	present := make(map[int64]struct{}, len(cached))
	for _, est := range cached {
		if est.GroupBy != grouping {
			continue
		}
		present[grouping.Truncate(est.Timestamp).Unix()] = struct{}{}
	}

	missing := make([]time.Time, 0, len(requested))
	for _, period := range requested {
		if _, ok := present[period.Unix()]; !ok {
			missing = append(missing, period)
		}
	}
	return missing
}
