package config

import (
	"encoding/json"
	"fmt"
	"os"

	logconfig "github.com/rayls/eth-anchor/internal/config/log"
	registryconfig "github.com/rayls/eth-anchor/internal/config/registry"
	relayconfig "github.com/rayls/eth-anchor/internal/config/relay"
	sourceconfig "github.com/rayls/eth-anchor/internal/config/source"
	badgerconfig "github.com/rayls/eth-anchor/internal/config/storage/badger"
	zkproofconfig "github.com/rayls/eth-anchor/internal/config/zkproof"
	"github.com/rayls/eth-anchor/pkg/interfaces/config"
	"github.com/rayls/eth-anchor/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	return &Provider{
		appConfig: appConfig,
	}
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *logconfig.LogOptions {
	var userLogConfig *types.UserLogConfig
	if p.appConfig != nil {
		userLogConfig = p.appConfig.Log
	}
	return logconfig.New(userLogConfig).GetOptions()
}

// GetStorage 获取BadgerDB存储配置
func (p *Provider) GetStorage() *badgerconfig.BadgerOptions {
	var userStorageConfig *types.UserBadgerConfig
	if p.appConfig != nil {
		userStorageConfig = p.appConfig.Storage
	}
	return badgerconfig.New(userStorageConfig).GetOptions()
}

// GetRegistry 获取承诺登记处配置
func (p *Provider) GetRegistry() *registryconfig.RegistryOptions {
	var userRegistryConfig *types.UserRegistryConfig
	if p.appConfig != nil {
		userRegistryConfig = p.appConfig.Registry
	}
	return registryconfig.New(userRegistryConfig).GetOptions()
}

// GetRelay 获取中继配置
func (p *Provider) GetRelay() *relayconfig.RelayOptions {
	var userRelayConfig *types.UserRelayConfig
	if p.appConfig != nil {
		userRelayConfig = p.appConfig.Relay
	}
	return relayconfig.New(userRelayConfig).GetOptions()
}

// GetSource 获取源链生成器配置
func (p *Provider) GetSource() *sourceconfig.SourceOptions {
	var userSourceConfig *types.UserSourceConfig
	if p.appConfig != nil {
		userSourceConfig = p.appConfig.Source
	}
	return sourceconfig.New(userSourceConfig).GetOptions()
}

// GetZKProof 获取ZK证明配置
func (p *Provider) GetZKProof() *zkproofconfig.ZKProofOptions {
	var userZKProofConfig *types.UserZKProofConfig
	if p.appConfig != nil {
		userZKProofConfig = p.appConfig.ZKProof
	}
	return zkproofconfig.New(userZKProofConfig).GetOptions()
}

// LoadAppConfig 从JSON文件加载应用配置
//
// 文件不存在不是错误：返回nil配置，各模块使用默认值。
func LoadAppConfig(path string) (*types.AppConfig, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &appConfig, nil
}
