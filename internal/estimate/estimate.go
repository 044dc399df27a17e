package estimate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout 是 CLI/HTTP 参数使用的日期格式。
const DateLayout = "2006-01-02"

// TimestampLayout 是缓存文件写出 timestamp 的格式（与 JS Date#toISOString 一致）。
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Estimate 表示某个周期内的一条足迹估算记录。
type Estimate struct {
	Timestamp        time.Time
	ServiceEstimates json.RawMessage
	PeriodStartDate  *time.Time
	PeriodEndDate    *time.Time
	GroupBy          GroupBy
}

// Key 唯一标识缓存中的一条记录。
type Key struct {
	Unix    int64
	GroupBy GroupBy
}

// Key 返回 (周期起点, groupBy) 缓存键；同一周期内的不同时刻得到同一个键。
func (e Estimate) Key() Key {
	return Key{Unix: e.GroupBy.Truncate(e.Timestamp).Unix(), GroupBy: e.GroupBy}
}

// Normalize 将 Timestamp 对齐到所属周期起点（UTC）。
func (e Estimate) Normalize() Estimate {
	e.Timestamp = e.GroupBy.Truncate(e.Timestamp)
	return e
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", time.Unix(k.Unix, 0).UTC().Format(DateLayout), k.GroupBy)
}

// Request 描述一次估算请求的区间与缓存开关。
type Request struct {
	StartDate   time.Time
	EndDate     time.Time
	IgnoreCache bool
	GroupBy     GroupBy
}

// Validate 校验粒度与区间方向。
func (r Request) Validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return errors.New("startDate and endDate are required")
	}
	if r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("endDate %s is before startDate %s",
			r.EndDate.UTC().Format(DateLayout), r.StartDate.UTC().Format(DateLayout))
	}
	if r.GroupBy != "" && !r.GroupBy.Valid() {
		return fmt.Errorf("unsupported groupBy %q", r.GroupBy)
	}
	return nil
}

// Contains 判断 e 的周期是否落在请求区间内（按 e 自身粒度对齐）。
func (r Request) Contains(e Estimate) bool {
	g := e.GroupBy
	if !g.Valid() {
		g = DefaultGroupBy
	}
	ts := g.Truncate(e.Timestamp)
	return !ts.Before(g.Truncate(r.StartDate)) && !ts.After(g.Truncate(r.EndDate))
}

// ParseDate 接受 YYYY-MM-DD、RFC 3339 或带毫秒的 ISO-8601 时间戳，统一转为 UTC。
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range []string{DateLayout, time.RFC3339Nano, TimestampLayout, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or ISO-8601)", raw)
}

// FormatDate 以 YYYY-MM-DD 输出 UTC 日期。
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
