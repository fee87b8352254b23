package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/provider"
	"github.com/bloom-miniapp/internal/router"
	"github.com/bloom-miniapp/internal/worker"
)

// BuildRunner 按启动模式组装 HTTP 与 Worker 服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !IsValidMode(mode) {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	if err := BootstrapAdmin(context.Background(), container); err != nil {
		return nil, err
	}
	return BuildRunnerWithContainer(cfg, container, mode)
}

// BuildRunnerWithContainer 使用已构建的容器组装服务
func BuildRunnerWithContainer(cfg *config.Config, container *provider.Container, mode string) (*Runner, error) {
	if container == nil {
		return nil, errors.New("container is nil")
	}
	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Host+":"+cfg.Server.Port, engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		if !cfg.Queue.Enabled {
			// all 模式下队列关闭时仅启动 API，订单超时由读取时懒取消兜底
			if mode == ModeWorker {
				return nil, errors.New("worker mode requires queue.enabled")
			}
		} else {
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

// BootstrapAdmin 写入预置角色，并在库中没有管理员时创建初始超级管理员
func BootstrapAdmin(ctx context.Context, container *provider.Container) error {
	if container == nil || container.AuthzService == nil || container.AdminAuthService == nil {
		return errors.New("admin services are not initialized")
	}
	if err := container.AuthzService.BootstrapBuiltinRoles(); err != nil {
		return fmt.Errorf("bootstrap builtin roles: %w", err)
	}
	if _, _, err := container.AdminAuthService.EnsureBootstrapAdmin(ctx); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	return nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Host+":"+opts.Config.Server.Port,
		"mode", opts.Mode,
		"services", runner.Names(),
		"checkout_mode", opts.Config.Checkout.Mode,
		"cart_storage", opts.Config.Cart.StorageDriver,
	)
	return RunWithOptions(runner, opts)
}
