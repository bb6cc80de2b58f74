// Package badger 提供BadgerDB存储功能
package badger

import (
	"context"

	"go.uber.org/fx"

	badgerconfig "github.com/rayls/eth-anchor/internal/config/storage/badger"
	logInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/log"
	"github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Options *badgerconfig.BadgerOptions // 存储配置
	Logger  logInterface.Logger         // 日志记录器
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	Store storage.KVStore // 键值存储接口
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供存储服务并挂接生命周期
func ProvideServices(params ModuleParams, lc fx.Lifecycle) (ModuleOutput, error) {
	store, err := New(params.Options)
	if err != nil {
		return ModuleOutput{}, err
	}

	logger := params.Logger.With("module", "storage")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("关闭BadgerDB存储")
			return store.Close()
		},
	})

	if params.Options.InMemory {
		logger.Info("BadgerDB以内存模式启动")
	} else {
		logger.Infof("BadgerDB已打开: %s", params.Options.Dir)
	}

	return ModuleOutput{Store: store}, nil
}
