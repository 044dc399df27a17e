package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/footcache/footcache/internal/estimate"
)

// writeFunc 与 WriteToFile 同签名，测试中可替换以统计写入次数。
type writeFunc func(ctx context.Context, path string, estimates []estimate.Estimate, opts WriteOptions) error

// NewStore 以单个缓存文件路径构建 Store，路径会被解析为绝对路径。
func NewStore(path string, logger logrus.FieldLogger, opts WriteOptions) (Store, error) {
	if path == "" {
		return nil, errors.New("cache path required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &fileStore{
		path:   abs,
		logger: logger.WithField("cache_path", abs),
		opts:   opts,
		write:  WriteToFile,
	}, nil
}

// fileStore 不做任何加锁：同一路径只允许一个写入者。
type fileStore struct {
	path   string
	logger logrus.FieldLogger
	opts   WriteOptions
	write  writeFunc
}

func (s *fileStore) Path() string {
	return s.path
}

func (s *fileStore) Load(ctx context.Context) LoadResult {
	result, parseErr := s.snapshot(ctx)
	switch result.State {
	case LoadStateNotFound:
		s.logger.WithField("action", "cache_load").Warn(msgCacheNotFound)
		if err := s.write(ctx, s.path, nil, s.opts); err != nil {
			return LoadResult{State: LoadStateFailed, Err: err}
		}
	case LoadStateCorrupt:
		s.logger.WithFields(logrus.Fields{
			"action": "cache_load",
			"reason": parseErr.Error(),
		}).Warn(msgCacheCorrupt)
	case LoadStateLoaded:
		s.logger.WithFields(logrus.Fields{
			"action":  "cache_load",
			"entries": len(result.Estimates),
		}).Debug("cache loaded")
	}
	return result
}

func (s *fileStore) Snapshot(ctx context.Context) LoadResult {
	result, _ := s.snapshot(ctx)
	return result
}

// snapshot 读取并解析文件，不产生副作用；Corrupt 时额外返回解析错误供日志使用。
func (s *fileStore) snapshot(ctx context.Context) (LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return LoadResult{State: LoadStateFailed, Err: err}, nil
	}

	raw, err := s.read()
	switch {
	case errors.Is(err, ErrNotFound):
		return LoadResult{State: LoadStateNotFound, Estimates: []estimate.Estimate{}}, nil
	case err != nil:
		return LoadResult{State: LoadStateFailed, Err: err}, nil
	}

	estimates, err := DecodeEstimates(raw)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return LoadResult{State: LoadStateCorrupt, Estimates: []estimate.Estimate{}}, err
		}
		return LoadResult{State: LoadStateFailed, Err: err}, nil
	}
	return LoadResult{State: LoadStateLoaded, Estimates: estimates}, nil
}

func (s *fileStore) Write(ctx context.Context, estimates []estimate.Estimate) error {
	if err := s.write(ctx, s.path, estimates, s.opts); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"action":  "cache_write",
		"entries": len(estimates),
	}).Debug("cache written")
	return nil
}

func (s *fileStore) read() ([]byte, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat cache file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cache path %s is a directory", s.path)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	return raw, nil
}
