package estimate

import (
	"fmt"
	"strings"
	"time"
)

// GroupBy 描述估算结果聚合与缓存键使用的时间粒度。
type GroupBy string

const (
	Day     GroupBy = "day"
	Week    GroupBy = "week"
	Month   GroupBy = "month"
	Quarter GroupBy = "quarter"
	Year    GroupBy = "year"
)

// DefaultGroupBy 是缺省粒度，旧版缓存文件中缺失 groupBy 字段时也按此处理。
const DefaultGroupBy = Day

const supportedGroupByList = "day|week|month|quarter|year"

// ParseGroupBy 规范化大小写与空白，并拒绝未知粒度。
func ParseGroupBy(raw string) (GroupBy, error) {
	g := GroupBy(strings.ToLower(strings.TrimSpace(raw)))
	if !g.Valid() {
		return "", fmt.Errorf("unsupported groupBy %q (expected %s)", raw, supportedGroupByList)
	}
	return g, nil
}

// Valid 判断是否为受支持的粒度。
func (g GroupBy) Valid() bool {
	switch g {
	case Day, Week, Month, Quarter, Year:
		return true
	}
	return false
}

func (g GroupBy) String() string {
	return string(g)
}

// UnmarshalText 让 JSON / 配置解码阶段即完成粒度校验。
func (g *GroupBy) UnmarshalText(text []byte) error {
	parsed, err := ParseGroupBy(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Truncate 将 t 截断到所在周期的起点（UTC 零点）。
func (g GroupBy) Truncate(t time.Time) time.Time {
	t = t.UTC()
	year, month, day := t.Date()
	switch g {
	case Week:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(year, month, day-offset, 0, 0, 0, 0, time.UTC)
	case Month:
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	case Quarter:
		first := time.Month((int(month)-1)/3*3 + 1)
		return time.Date(year, first, 1, 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}
}

// Next 返回下一个周期的起点；t 需已通过 Truncate 对齐。
func (g GroupBy) Next(t time.Time) time.Time {
	switch g {
	case Week:
		return t.AddDate(0, 0, 7)
	case Month:
		return t.AddDate(0, 1, 0)
	case Quarter:
		return t.AddDate(0, 3, 0)
	case Year:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Range 按粒度枚举 [start, end] 内的全部周期起点，升序返回。
// end 早于 start 时返回空切片。
func (g GroupBy) Range(start, end time.Time) []time.Time {
	first := g.Truncate(start)
	last := g.Truncate(end)
	if last.Before(first) {
		return []time.Time{}
	}

	periods := make([]time.Time, 0, 8)
	for d := first; !d.After(last); d = g.Next(d) {
		periods = append(periods, d)
	}
	return periods
}
