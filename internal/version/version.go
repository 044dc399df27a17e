package version

import "fmt"

// Version/Commit/BuildDate 可在构建时通过 -ldflags 注入，例如
// -X github.com/footcache/footcache/internal/version.Commit=$(git rev-parse --short HEAD)。
var (
	Version   = "0.1.0"
	Commit    = "dev"
	BuildDate = ""
)

// Full 返回便于 CLI 打印的完整版本信息。
func Full() string {
	if BuildDate == "" {
		return fmt.Sprintf("footcache %s (%s)", Version, Commit)
	}
	return fmt.Sprintf("footcache %s (%s, built %s)", Version, Commit, BuildDate)
}
