// Package event 提供事件总线功能
package event

import (
	"go.uber.org/fx"

	"github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/event"
)

// ModuleOutput 定义事件模块的输出结构
type ModuleOutput struct {
	fx.Out

	EventBus event.EventBus // 事件总线接口
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供事件总线服务
func ProvideServices() (ModuleOutput, error) {
	return ModuleOutput{
		EventBus: New(),
	}, nil
}
