// Package types 提供锚定系统的公共类型定义
//
// 📋 **用户配置类型 (User Configuration Types)**
//
// 本文件定义用户配置文件（JSON）对应的结构体。
//
// 🔧 零值陷阱处理说明：
// 为了区分"用户未设置"和"用户设置为零值"，可选字段统一使用指针类型：
// - nil: 表示用户未在配置文件中设置该字段，将使用系统默认值
// - &value: 表示用户明确设置了该值，即使是零值（如0、false、""）也会被采用
//
// 示例：
// "min_commitment_interval": 0 → 用户明确允许无间隔提交
// 省略该字段                   → 使用系统默认值（5个锚定链区块）
package types

// AppConfig 应用配置根结构
type AppConfig struct {
	Log      *UserLogConfig      `json:"log,omitempty"`
	Storage  *UserBadgerConfig   `json:"storage,omitempty"`
	Registry *UserRegistryConfig `json:"registry,omitempty"`
	Relay    *UserRelayConfig    `json:"relay,omitempty"`
	Source   *UserSourceConfig   `json:"source,omitempty"`
	ZKProof  *UserZKProofConfig  `json:"zkproof,omitempty"`
}

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level      *string `json:"level,omitempty"`       // 日志级别 (debug, info, warn, error, fatal)
	ToConsole  *bool   `json:"to_console,omitempty"`  // 是否输出到控制台
	FilePath   *string `json:"file_path,omitempty"`   // 日志文件路径
	MaxSize    *int    `json:"max_size,omitempty"`    // 单个日志文件最大大小(MB)
	MaxBackups *int    `json:"max_backups,omitempty"` // 最大备份文件数
	MaxAge     *int    `json:"max_age,omitempty"`     // 日志文件最大保留天数
	Compress   *bool   `json:"compress,omitempty"`    // 是否压缩历史日志文件
}

// UserBadgerConfig 用户BadgerDB存储配置
type UserBadgerConfig struct {
	Dir      *string `json:"dir,omitempty"`       // 数据目录
	InMemory *bool   `json:"in_memory,omitempty"` // 是否使用内存模式（测试用）
}

// UserRegistryConfig 用户承诺登记处配置
type UserRegistryConfig struct {
	InitialSubmitter      *string `json:"initial_submitter,omitempty"`       // 初始授权提交者（十六进制地址）
	MinCommitmentInterval *uint64 `json:"min_commitment_interval,omitempty"` // 最小提交间隔（锚定链区块数）
	ZKModeEnabled         *bool   `json:"zk_mode_enabled,omitempty"`         // 是否启用ZK模式
	MinZKBlockNumber      *uint64 `json:"min_zk_block_number,omitempty"`     // ZK证明公开输入的最小区块号
}

// UserRelayConfig 用户中继配置
type UserRelayConfig struct {
	PollInterval     *string `json:"poll_interval,omitempty"`      // 轮询间隔（如 "30s"）
	ProofTimeout     *string `json:"proof_timeout,omitempty"`      // 证明生成超时（如 "120s"）
	RPCTimeout       *string `json:"rpc_timeout,omitempty"`        // 链RPC调用超时
	TriggerQueueSize *int    `json:"trigger_queue_size,omitempty"` // 触发队列容量
	AnchorRPCURL     *string `json:"anchor_rpc_url,omitempty"`     // 锚定链RPC地址
}

// UserSourceConfig 用户源链承诺生成器配置
type UserSourceConfig struct {
	BatchInterval *uint64 `json:"batch_interval,omitempty"` // 批量提交间隔（源链区块数，默认10）
}

// UserZKProofConfig 用户ZK证明配置
type UserZKProofConfig struct {
	ArtifactDir *string `json:"artifact_dir,omitempty"` // 证明工件目录（pk/vk/约束系统）
	ValidatorID *uint64 `json:"validator_id,omitempty"` // 验证者标识（电路私有输入）
}
