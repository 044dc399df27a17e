package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/footcache/footcache/internal/estimate"
)

// ParseError 描述缓存内容无法解析的原因，Index 为出错元素下标（整体解析失败时为 -1）。
type ParseError struct {
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("parse cache: %v", e.Err)
	}
	return fmt.Sprintf("parse cache entry #%d: %v", e.Index, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, ErrCorrupt) 对任何 ParseError 成立。
func (e *ParseError) Is(target error) bool {
	return target == ErrCorrupt
}

// wireEstimate 是缓存文件中单条记录的 JSON 形态。
type wireEstimate struct {
	Timestamp        string          `json:"timestamp"`
	ServiceEstimates json.RawMessage `json:"serviceEstimates"`
	PeriodStartDate  string          `json:"periodStartDate,omitempty"`
	PeriodEndDate    string          `json:"periodEndDate,omitempty"`
	GroupBy          string          `json:"groupBy"`
}

// DecodeEstimates 解析缓存文件原始内容并完成字段校验；任何格式问题都返回 *ParseError。
func DecodeEstimates(raw []byte) ([]estimate.Estimate, error) {
	return decodeWithDefault(raw, estimate.DefaultGroupBy)
}

// DecodeIncoming 解析调用方提交的新记录，缺失 groupBy 的条目以 grouping 补齐。
func DecodeIncoming(raw []byte, grouping estimate.GroupBy) ([]estimate.Estimate, error) {
	return decodeWithDefault(raw, grouping)
}

func decodeWithDefault(raw []byte, fallback estimate.GroupBy) ([]estimate.Estimate, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, &ParseError{Index: -1, Err: fmt.Errorf("empty content")}
	}

	var items []wireEstimate
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ParseError{Index: -1, Err: err}
	}
	if items == nil {
		return nil, &ParseError{Index: -1, Err: fmt.Errorf("expected a JSON array")}
	}

	result := make([]estimate.Estimate, 0, len(items))
	for i, item := range items {
		est, err := item.decode(fallback)
		if err != nil {
			return nil, &ParseError{Index: i, Err: err}
		}
		result = append(result, est)
	}
	return result, nil
}

func (w wireEstimate) decode(fallback estimate.GroupBy) (estimate.Estimate, error) {
	ts, err := estimate.ParseDate(w.Timestamp)
	if err != nil {
		return estimate.Estimate{}, fmt.Errorf("timestamp: %w", err)
	}

	groupBy := fallback
	if w.GroupBy != "" {
		if groupBy, err = estimate.ParseGroupBy(w.GroupBy); err != nil {
			return estimate.Estimate{}, fmt.Errorf("groupBy: %w", err)
		}
	}

	services, err := normalizeServiceEstimates(w.ServiceEstimates)
	if err != nil {
		return estimate.Estimate{}, err
	}

	est := estimate.Estimate{
		Timestamp:        groupBy.Truncate(ts),
		ServiceEstimates: services,
		GroupBy:          groupBy,
	}
	if est.PeriodStartDate, err = parseOptionalDate(w.PeriodStartDate); err != nil {
		return estimate.Estimate{}, fmt.Errorf("periodStartDate: %w", err)
	}
	if est.PeriodEndDate, err = parseOptionalDate(w.PeriodEndDate); err != nil {
		return estimate.Estimate{}, fmt.Errorf("periodEndDate: %w", err)
	}
	return est, nil
}

// normalizeServiceEstimates 只要求其为 JSON 数组，内容保持原样。
func normalizeServiceEstimates(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("[]"), nil
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("serviceEstimates: expected a JSON array")
	}
	return append(json.RawMessage(nil), trimmed...), nil
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := estimate.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EncodeOptions 控制序列化格式。
type EncodeOptions struct {
	Indent bool
}

// EncodeEstimates 序列化为 JSON 数组；空序列固定输出 `[]`。
func EncodeEstimates(estimates []estimate.Estimate, opts EncodeOptions) ([]byte, error) {
	items := make([]wireEstimate, 0, len(estimates))
	for _, est := range estimates {
		items = append(items, encodeEstimate(est))
	}
	if opts.Indent {
		return json.MarshalIndent(items, "", "  ")
	}
	return json.Marshal(items)
}

func encodeEstimate(est estimate.Estimate) wireEstimate {
	services := est.ServiceEstimates
	if len(bytes.TrimSpace(services)) == 0 {
		services = json.RawMessage("[]")
	}
	groupBy := est.GroupBy
	if groupBy == "" {
		groupBy = estimate.DefaultGroupBy
	}
	w := wireEstimate{
		Timestamp:        est.Timestamp.UTC().Format(estimate.TimestampLayout),
		ServiceEstimates: services,
		GroupBy:          string(groupBy),
	}
	if est.PeriodStartDate != nil {
		w.PeriodStartDate = est.PeriodStartDate.UTC().Format(estimate.TimestampLayout)
	}
	if est.PeriodEndDate != nil {
		w.PeriodEndDate = est.PeriodEndDate.UTC().Format(estimate.TimestampLayout)
	}
	return w
}

// Merge 按 (周期起点, groupBy) 合并两组记录，incoming 覆盖 existing，结果按时间升序且时间戳已对齐。
func Merge(existing, incoming []estimate.Estimate) []estimate.Estimate {
	index := make(map[estimate.Key]int, len(existing)+len(incoming))
	merged := make([]estimate.Estimate, 0, len(existing)+len(incoming))

	for _, set := range [][]estimate.Estimate{existing, incoming} {
		for _, est := range set {
			est = est.Normalize()
			key := est.Key()
			if pos, ok := index[key]; ok {
				merged[pos] = est
				continue
			}
			index[key] = len(merged)
			merged = append(merged, est)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.GroupBy < b.GroupBy
	})
	return merged
}
