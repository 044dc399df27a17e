package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/footcache/footcache/internal/estimate"
)

// WriteOptions 控制缓存文件写入格式与权限。
type WriteOptions struct {
	Indent bool
	Perm   os.FileMode
}

func (o WriteOptions) perm() os.FileMode {
	if o.Perm == 0 {
		return 0o644
	}
	return o.Perm
}

// WriteToFile 将 estimates 序列化后写入 path。通过临时文件 + rename 替换旧内容，
// 失败时清理临时文件，保证目标文件始终是完整的 JSON 数组。
func WriteToFile(ctx context.Context, path string, estimates []estimate.Estimate, opts WriteOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := EncodeEstimates(estimates, EncodeOptions{Indent: opts.Indent})
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".estimates-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(payload)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tempName, opts.perm())
	}
	if err != nil {
		os.Remove(tempName)
		return fmt.Errorf("write cache file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
