package source

import (
	configtypes "github.com/rayls/eth-anchor/pkg/types"
)

// defaultBatchInterval 默认批量提交间隔（源链区块数）
const defaultBatchInterval = 10

// SourceOptions 源链生成器配置选项
type SourceOptions struct {
	BatchInterval uint64 `json:"batch_interval"` // 批量提交间隔（源链区块数）
}

// Config 源链生成器配置实现
type Config struct {
	options *SourceOptions
}

// New 创建源链生成器配置实现
func New(userConfig *configtypes.UserSourceConfig) *Config {
	options := &SourceOptions{
		BatchInterval: defaultBatchInterval,
	}

	if userConfig != nil {
		if userConfig.BatchInterval != nil && *userConfig.BatchInterval > 0 {
			options.BatchInterval = *userConfig.BatchInterval
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整的源链生成器配置选项
func (c *Config) GetOptions() *SourceOptions {
	return c.options
}
