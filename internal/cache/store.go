package cache

import (
	"context"
	"errors"

	"github.com/footcache/footcache/internal/estimate"
)

// Store 负责缓存文件的读写。磁盘上只有一个文件：
//
//	<CachePath>    # JSON 数组，元素为 Estimate
//
// Load 不以 error 形式上报可恢复状况，而是通过 LoadResult.State 区分。
type Store interface {
	// Load 读取并解析缓存文件。文件缺失时以 `[]` 创建新文件；文件损坏时保持原样。
	Load(ctx context.Context) LoadResult

	// Snapshot 与 Load 一样读取并解析缓存文件，但不创建缺失的文件，也不输出告警，
	// 供随后会整体写回的调用方使用。
	Snapshot(ctx context.Context) LoadResult

	// Write 以完整序列替换缓存文件内容。
	Write(ctx context.Context, estimates []estimate.Estimate) error

	// Path 返回缓存文件路径，用于日志与诊断。
	Path() string
}

// LoadState 表示一次 Load 的结果类别。
type LoadState string

const (
	LoadStateLoaded   LoadState = "loaded"
	LoadStateNotFound LoadState = "not_found"
	LoadStateCorrupt  LoadState = "corrupt"
	LoadStateFailed   LoadState = "failed"
)

// LoadResult 组合解析出的记录与结果类别；仅 LoadStateFailed 携带 Err。
type LoadResult struct {
	State     LoadState
	Estimates []estimate.Estimate
	Err       error
}

// Recovered 表示该结果可以作为（可能为空的）缓存继续使用。
func (r LoadResult) Recovered() bool {
	return r.State != LoadStateFailed
}

// 固定的告警文案，调用方与测试依赖其逐字内容。
const (
	msgCacheNotFound = "Cache file not found. Creating new cache file..."
	msgCacheCorrupt  = "There was an error parsing the cache file. Ignoring cache and fetching fresh estimates..."
)

var (
	// ErrNotFound 表示缓存文件不存在。
	ErrNotFound = errors.New("cache file not found")

	// ErrCorrupt 表示缓存文件存在但无法解析，ParseError 会匹配该哨兵。
	ErrCorrupt = errors.New("cache file corrupt")
)
