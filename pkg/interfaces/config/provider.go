// Package config provides configuration provider interfaces.
package config

import (
	logconfig "github.com/rayls/eth-anchor/internal/config/log"
	registryconfig "github.com/rayls/eth-anchor/internal/config/registry"
	relayconfig "github.com/rayls/eth-anchor/internal/config/relay"
	sourceconfig "github.com/rayls/eth-anchor/internal/config/source"
	badgerconfig "github.com/rayls/eth-anchor/internal/config/storage/badger"
	zkproofconfig "github.com/rayls/eth-anchor/internal/config/zkproof"
)

// Provider 配置提供者接口
//
// 各模块的选项类型定义在 internal/config/<module> 包中，
// Provider返回的选项已完成"默认值 + 用户覆盖"合并。
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetStorage 获取BadgerDB存储配置
	GetStorage() *badgerconfig.BadgerOptions

	// GetRegistry 获取承诺登记处配置
	GetRegistry() *registryconfig.RegistryOptions

	// GetRelay 获取中继配置
	GetRelay() *relayconfig.RelayOptions

	// GetSource 获取源链承诺生成器配置
	GetSource() *sourceconfig.SourceOptions

	// GetZKProof 获取ZK证明配置
	GetZKProof() *zkproofconfig.ZKProofOptions
}
