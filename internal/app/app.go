// Package app 提供锚定系统的应用组装与生命周期管理
//
// 🏗️ **应用容器 (Application Container)**
//
// 基于uber/fx把配置、日志、事件总线、存储、指标与锚定域
// 组装成一个可启动的应用。模块组装顺序由依赖注入自动解析。
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	configModule "github.com/rayls/eth-anchor/internal/config"
	anchorModule "github.com/rayls/eth-anchor/internal/core/anchor"
	eventModule "github.com/rayls/eth-anchor/internal/core/infrastructure/event"
	logModule "github.com/rayls/eth-anchor/internal/core/infrastructure/log"
	metricsModule "github.com/rayls/eth-anchor/internal/core/infrastructure/metrics"
	badgerModule "github.com/rayls/eth-anchor/internal/core/infrastructure/storage/badger"
	anchorInterface "github.com/rayls/eth-anchor/pkg/interfaces/anchor"
	"github.com/rayls/eth-anchor/pkg/interfaces/config"
	logInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/log"
)

// startStopTimeout fx生命周期钩子的执行上限
const startStopTimeout = 30 * time.Second

// Services 应用对外暴露的服务句柄
type Services struct {
	fx.In

	Registry     anchorInterface.Registry
	Source       anchorInterface.SourceCommitter
	Orchestrator anchorInterface.Orchestrator
	Outbox       anchorInterface.Outbox
	Inbox        anchorInterface.Inbox
	Logger       logInterface.Logger
}

// App 锚定应用
type App struct {
	fxApp    *fx.App
	services Services
}

// New 组装锚定应用
func New(opts ...Option) (*App, error) {
	appOptions := newOptions(opts...)

	// 配置文件只在未直接注入配置时加载
	if appOptions.appConfig == nil && appOptions.configFilePath != "" {
		appConfig, err := configModule.LoadAppConfig(appOptions.configFilePath)
		if err != nil {
			return nil, err
		}
		appOptions.appConfig = appConfig
	}

	app := &App{}
	app.fxApp = fx.New(
		fx.NopLogger,
		fx.StartTimeout(startStopTimeout),
		fx.StopTimeout(startStopTimeout),

		fx.Provide(func() config.AppOptions { return appOptions }),

		configModule.Module(),
		logModule.Module(),
		eventModule.Module(),
		badgerModule.Module(),
		metricsModule.Module(),
		anchorModule.Module(),

		fx.Populate(&app.services),
	)

	if err := app.fxApp.Err(); err != nil {
		return nil, fmt.Errorf("应用组装失败: %w", err)
	}
	return app, nil
}

// Start 启动应用（中继编排器随之启动）
func (a *App) Start(ctx context.Context) error {
	return a.fxApp.Start(ctx)
}

// Stop 停止应用，等待在途流水线结束
func (a *App) Stop(ctx context.Context) error {
	return a.fxApp.Stop(ctx)
}

// Run 启动并阻塞到收到退出信号
func (a *App) Run() {
	a.fxApp.Run()
}

// Services 获取服务句柄
func (a *App) Services() Services {
	return a.services
}
