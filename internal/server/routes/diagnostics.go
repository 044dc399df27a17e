package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/footcache/footcache/internal/cache"
)

// RegisterDiagnosticsRoutes 暴露 /-/cache 诊断接口，仅读取缓存文件，不做任何写入。
func RegisterDiagnosticsRoutes(app *fiber.App, cachePath string) {
	if app == nil {
		return
	}
	app.Get("/-/cache", func(c fiber.Ctx) error {
		summary, err := cache.Summarize(cachePath)
		if err != nil {
			return err
		}
		return c.JSON(summary)
	})
}
