// Package metrics 提供指标统计功能
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// ModuleOutput 定义指标模块的输出结构
type ModuleOutput struct {
	fx.Out

	Registry *prometheus.Registry // 指标注册表
	Relay    *RelayMetrics        // 中继指标
}

// Module 返回指标模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供指标服务
func ProvideServices() (ModuleOutput, error) {
	registry := prometheus.NewRegistry()
	return ModuleOutput{
		Registry: registry,
		Relay:    NewRelayMetrics(registry),
	}, nil
}
