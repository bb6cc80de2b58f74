package registry

import (
	"github.com/ethereum/go-ethereum/common"

	configtypes "github.com/rayls/eth-anchor/pkg/types"
)

// 默认登记处配置
const (
	defaultMinCommitmentInterval = 5 // 锚定链区块数
	defaultZKModeEnabled         = false
	defaultMinZKBlockNumber      = 0
)

// RegistryOptions 承诺登记处配置选项
//
// 部署时的初始参数；运行期的修改通过登记处的管理操作完成，
// 不回写到配置。
type RegistryOptions struct {
	InitialSubmitter      common.Address `json:"initial_submitter"`       // 初始授权提交者（同时为所有者）
	MinCommitmentInterval uint64         `json:"min_commitment_interval"` // 最小提交间隔（锚定链区块数）
	ZKModeEnabled         bool           `json:"zk_mode_enabled"`         // 是否启用ZK模式
	MinZKBlockNumber      uint64         `json:"min_zk_block_number"`     // ZK公开输入的最小区块号
}

// Config 登记处配置实现
type Config struct {
	options *RegistryOptions
}

// New 创建登记处配置实现
func New(userConfig *configtypes.UserRegistryConfig) *Config {
	options := &RegistryOptions{
		MinCommitmentInterval: defaultMinCommitmentInterval,
		ZKModeEnabled:         defaultZKModeEnabled,
		MinZKBlockNumber:      defaultMinZKBlockNumber,
	}

	if userConfig != nil {
		if userConfig.InitialSubmitter != nil {
			options.InitialSubmitter = common.HexToAddress(*userConfig.InitialSubmitter)
		}
		if userConfig.MinCommitmentInterval != nil {
			options.MinCommitmentInterval = *userConfig.MinCommitmentInterval
		}
		if userConfig.ZKModeEnabled != nil {
			options.ZKModeEnabled = *userConfig.ZKModeEnabled
		}
		if userConfig.MinZKBlockNumber != nil {
			options.MinZKBlockNumber = *userConfig.MinZKBlockNumber
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整的登记处配置选项
func (c *Config) GetOptions() *RegistryOptions {
	return c.options
}
