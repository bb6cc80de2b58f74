package zkproof

import (
	configtypes "github.com/rayls/eth-anchor/pkg/types"
)

// 默认ZK证明配置
const (
	defaultArtifactDir = "data/zkproof"
	defaultValidatorID = 1
)

// ZKProofOptions ZK证明配置选项
type ZKProofOptions struct {
	ArtifactDir string `json:"artifact_dir"` // 证明工件目录（证明密钥/验证密钥/约束系统）
	ValidatorID uint64 `json:"validator_id"` // 验证者标识（电路私有输入）
}

// Config ZK证明配置实现
type Config struct {
	options *ZKProofOptions
}

// New 创建ZK证明配置实现
func New(userConfig *configtypes.UserZKProofConfig) *Config {
	options := &ZKProofOptions{
		ArtifactDir: defaultArtifactDir,
		ValidatorID: defaultValidatorID,
	}

	if userConfig != nil {
		if userConfig.ArtifactDir != nil {
			options.ArtifactDir = *userConfig.ArtifactDir
		}
		if userConfig.ValidatorID != nil {
			options.ValidatorID = *userConfig.ValidatorID
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整的ZK证明配置选项
func (c *Config) GetOptions() *ZKProofOptions {
	return c.options
}
