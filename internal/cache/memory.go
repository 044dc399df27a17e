package cache

import (
	"context"

	"github.com/footcache/footcache/internal/estimate"
)

// MemoryStore 是 Store 的内存实现，用于测试或无需落盘的会话。
// Raw 非空时 Load 会走与文件相同的解析路径，便于模拟损坏内容。
type MemoryStore struct {
	Raw    []byte
	exists bool
	writes [][]estimate.Estimate
	err    error
}

// NewMemoryStore 以 seed 作为已存在的缓存内容；不传参数时等价于内容为 `[]` 的文件。
func NewMemoryStore(seed ...estimate.Estimate) *MemoryStore {
	s := &MemoryStore{}
	s.seed(seed)
	return s
}

// NewMissingMemoryStore 模拟缓存文件不存在的情形。
func NewMissingMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewCorruptMemoryStore 构造一个内容无法解析的 MemoryStore。
func NewCorruptMemoryStore(raw string) *MemoryStore {
	return &MemoryStore{Raw: []byte(raw), exists: true}
}

// FailWith 让后续 Load/Write 返回 err，用于模拟权限或磁盘错误。
func (s *MemoryStore) FailWith(err error) {
	s.err = err
}

func (s *MemoryStore) seed(estimates []estimate.Estimate) {
	raw, _ := EncodeEstimates(estimates, EncodeOptions{})
	s.Raw = raw
	s.exists = true
}

func (s *MemoryStore) Path() string {
	return "memory://estimates"
}

func (s *MemoryStore) Load(ctx context.Context) LoadResult {
	result := s.Snapshot(ctx)
	if result.State == LoadStateNotFound {
		if err := s.Write(ctx, nil); err != nil {
			return LoadResult{State: LoadStateFailed, Err: err}
		}
	}
	return result
}

func (s *MemoryStore) Snapshot(ctx context.Context) LoadResult {
	if err := ctx.Err(); err != nil {
		return LoadResult{State: LoadStateFailed, Err: err}
	}
	if s.err != nil {
		return LoadResult{State: LoadStateFailed, Err: s.err}
	}
	if !s.exists {
		return LoadResult{State: LoadStateNotFound, Estimates: []estimate.Estimate{}}
	}
	estimates, err := DecodeEstimates(s.Raw)
	if err != nil {
		return LoadResult{State: LoadStateCorrupt, Estimates: []estimate.Estimate{}}
	}
	return LoadResult{State: LoadStateLoaded, Estimates: estimates}
}

func (s *MemoryStore) Write(ctx context.Context, estimates []estimate.Estimate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, append([]estimate.Estimate(nil), estimates...))
	s.seed(estimates)
	return nil
}

// Writes 返回每次 Write 收到的记录（按调用顺序）。
func (s *MemoryStore) Writes() [][]estimate.Estimate {
	return s.writes
}
