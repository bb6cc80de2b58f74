// Package config 提供应用配置管理功能
package config

import (
	"go.uber.org/fx"

	logconfig "github.com/rayls/eth-anchor/internal/config/log"
	registryconfig "github.com/rayls/eth-anchor/internal/config/registry"
	relayconfig "github.com/rayls/eth-anchor/internal/config/relay"
	sourceconfig "github.com/rayls/eth-anchor/internal/config/source"
	badgerconfig "github.com/rayls/eth-anchor/internal/config/storage/badger"
	zkproofconfig "github.com/rayls/eth-anchor/internal/config/zkproof"
	"github.com/rayls/eth-anchor/pkg/interfaces/config"
	"github.com/rayls/eth-anchor/pkg/types"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	// 应用配置选项
	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	// 配置提供者
	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			// 提供具体的配置类型用于依赖注入
			func(provider config.Provider) *logconfig.LogOptions {
				return provider.GetLog()
			},
			func(provider config.Provider) *badgerconfig.BadgerOptions {
				return provider.GetStorage()
			},
			func(provider config.Provider) *registryconfig.RegistryOptions {
				return provider.GetRegistry()
			},
			func(provider config.Provider) *relayconfig.RelayOptions {
				return provider.GetRelay()
			},
			func(provider config.Provider) *sourceconfig.SourceOptions {
				return provider.GetSource()
			},
			func(provider config.Provider) *zkproofconfig.ZKProofOptions {
				return provider.GetZKProof()
			},
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}

	return ConfigOutput{
		Provider: NewProvider(appConfig),
	}, nil
}
