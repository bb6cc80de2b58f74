package relay

import (
	"time"

	configtypes "github.com/rayls/eth-anchor/pkg/types"
)

// 默认中继配置
const (
	defaultPollInterval     = 30 * time.Second
	defaultProofTimeout     = 120 * time.Second
	defaultRPCTimeout       = 10 * time.Second
	defaultTriggerQueueSize = 64
	defaultAnchorRPCURL     = "" // 为空时不连接外部RPC，高度来自本地时钟
)

// RelayOptions 中继编排器配置选项
type RelayOptions struct {
	PollInterval     time.Duration `json:"poll_interval"`      // 轮询间隔
	ProofTimeout     time.Duration `json:"proof_timeout"`      // 证明生成超时
	RPCTimeout       time.Duration `json:"rpc_timeout"`        // 链RPC调用超时
	TriggerQueueSize int           `json:"trigger_queue_size"` // 触发队列容量
	AnchorRPCURL     string        `json:"anchor_rpc_url"`     // 锚定链RPC地址
}

// Config 中继配置实现
type Config struct {
	options *RelayOptions
}

// New 创建中继配置实现
func New(userConfig *configtypes.UserRelayConfig) *Config {
	options := &RelayOptions{
		PollInterval:     defaultPollInterval,
		ProofTimeout:     defaultProofTimeout,
		RPCTimeout:       defaultRPCTimeout,
		TriggerQueueSize: defaultTriggerQueueSize,
		AnchorRPCURL:     defaultAnchorRPCURL,
	}

	if userConfig != nil {
		if userConfig.PollInterval != nil {
			if d, err := time.ParseDuration(*userConfig.PollInterval); err == nil && d > 0 {
				options.PollInterval = d
			}
		}
		if userConfig.ProofTimeout != nil {
			if d, err := time.ParseDuration(*userConfig.ProofTimeout); err == nil && d > 0 {
				options.ProofTimeout = d
			}
		}
		if userConfig.RPCTimeout != nil {
			if d, err := time.ParseDuration(*userConfig.RPCTimeout); err == nil && d > 0 {
				options.RPCTimeout = d
			}
		}
		if userConfig.TriggerQueueSize != nil && *userConfig.TriggerQueueSize > 0 {
			options.TriggerQueueSize = *userConfig.TriggerQueueSize
		}
		if userConfig.AnchorRPCURL != nil {
			options.AnchorRPCURL = *userConfig.AnchorRPCURL
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整的中继配置选项
func (c *Config) GetOptions() *RelayOptions {
	return c.options
}
