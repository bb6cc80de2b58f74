package badger

import (
	configtypes "github.com/rayls/eth-anchor/pkg/types"
)

// 默认存储配置
const (
	defaultDir      = "data/anchor"
	defaultInMemory = false

	defaultSyncWrites       = true // 写入即落盘，保证重启可恢复
	defaultValueLogFileSize = 256 << 20
	defaultNumCompactors    = 2
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	Dir      string `json:"dir"`       // 数据目录
	InMemory bool   `json:"in_memory"` // 内存模式（测试用，不落盘）

	SyncWrites       bool  `json:"sync_writes"`         // 同步写入
	ValueLogFileSize int64 `json:"value_log_file_size"` // 值日志单文件上限（字节）
	NumCompactors    int   `json:"num_compactors"`      // 压缩协程数
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置实现
func New(userConfig *configtypes.UserBadgerConfig) *Config {
	options := &BadgerOptions{
		Dir:      defaultDir,
		InMemory: defaultInMemory,

		SyncWrites:       defaultSyncWrites,
		ValueLogFileSize: defaultValueLogFileSize,
		NumCompactors:    defaultNumCompactors,
	}

	if userConfig != nil {
		if userConfig.Dir != nil {
			options.Dir = *userConfig.Dir
		}
		if userConfig.InMemory != nil {
			options.InMemory = *userConfig.InMemory
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整的存储配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}
