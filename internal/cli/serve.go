package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/footcache/footcache/internal/config"
	"github.com/footcache/footcache/internal/logging"
	"github.com/footcache/footcache/internal/server"
	"github.com/footcache/footcache/internal/server/routes"
	"github.com/footcache/footcache/internal/version"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := a.bootstrap()
			if err != nil {
				return err
			}

			fiberApp, err := a.buildServer(cfg, logger)
			if err != nil {
				return err
			}

			fields := logging.BaseFields("startup", a.configPath())
			fields["listen_port"] = cfg.Global.ListenPort
			fields["cache_path"] = cfg.Cache.Path
			fields["default_group_by"] = cfg.Cache.GroupBy()
			fields["version"] = version.Full()
			logger.WithFields(fields).Info("配置加载完成")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return listen(ctx, fiberApp, cfg.Global.ListenPort, logger)
		},
	}
}

// buildServer 按“配置 → 缓存文件 → Fiber app → 路由”顺序组装 HTTP 服务。
func (a *app) buildServer(cfg *config.Config, logger *logrus.Logger) (*fiber.App, error) {
	store, err := a.openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	fiberApp, err := server.NewApp(server.AppOptions{
		Logger:       logger,
		ListenPort:   cfg.Global.ListenPort,
		ReadTimeout:  cfg.Global.ReadTimeout.DurationValue(),
		WriteTimeout: cfg.Global.WriteTimeout.DurationValue(),
	})
	if err != nil {
		return nil, err
	}

	routes.RegisterEstimateRoutes(fiberApp, &routes.EstimateService{
		Store:          store,
		Logger:         logger,
		DefaultGroupBy: cfg.Cache.GroupBy(),
	})
	routes.RegisterDiagnosticsRoutes(fiberApp, store.Path())
	return fiberApp, nil
}

func listen(ctx context.Context, app *fiber.App, port int, logger *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"action": "listen",
			"port":   port,
		}).Info("Fiber 服务启动")
		errCh <- app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.WithField("action", "shutdown").Info("收到退出信号，正在关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	return <-errCh
}
