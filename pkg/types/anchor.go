// Package types 提供锚定系统的公共类型定义
//
// 📋 **锚定领域类型 (Anchoring Domain Types)**
//
// 本文件定义跨模块共享的锚定领域数据结构：
// - Commitment / ZKCommitment：登记处存储的两类承诺条目
// - CircuitInputs / ProofBundle：证明生成器的输入输出
// - VerificationStats / RelayOutcome：只读统计与中继结果上报
//
// 🎯 **设计原则**
// - 不可变语义：承诺条目一经写入不再修改，结构体按值传递
// - 显式缺失：读取接口返回 (值, found)，"尚未锚定"不是错误
// - 字段元素域：电路相关的数值统一使用 *big.Int，规约语义见 commitment 包
package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SubmitterID 提交者身份（锚定链上的地址形式）
type SubmitterID = common.Address

// Commitment 透明承诺条目
//
// 以源链区块号为键，登记处接受后立即不可变。
// 不变式：Value != 0；SourceBlock 严格大于此前接受的所有源链区块号。
type Commitment struct {
	Value           common.Hash  `json:"value"`            // 源链状态根（256位哈希）
	SourceBlock     uint64       `json:"source_block"`     // 源链区块号
	SourceTimestamp uint64       `json:"source_timestamp"` // 源链区块时间戳
	AnchorBlock     uint64       `json:"anchor_block"`     // 接受时的锚定链高度
	AnchorTimestamp uint64       `json:"anchor_timestamp"` // 接受时的锚定链时间
	Submitter       SubmitterID  `json:"submitter"`        // 提交者身份
	SourceTxRef     common.Hash  `json:"source_tx_ref"`    // 触发提交的源链交易引用
}

// ZKCommitment 零知识承诺条目
//
// 与 Commitment 共享单调性与唯一性不变式，但存放于独立映射。
// Verified 恒为 true：验证失败的证明不会到达存储（先验证后写入）。
type ZKCommitment struct {
	Commitment      common.Hash `json:"commitment"`       // 私有状态的哈希承诺
	SourceBlock     uint64      `json:"source_block"`     // 源链区块号
	SourceTimestamp uint64      `json:"source_timestamp"` // 源链区块时间戳
	AnchorBlock     uint64      `json:"anchor_block"`     // 接受时的锚定链高度
	AnchorTimestamp uint64      `json:"anchor_timestamp"` // 接受时的锚定链时间
	Submitter       SubmitterID `json:"submitter"`        // 提交者身份
	Verified        bool        `json:"verified"`         // 存储后恒为true
	SourceTxRef     common.Hash `json:"source_tx_ref"`    // 触发提交的源链交易引用
}

// CircuitInputs 电路输入
//
// 关系约束：Commitment == Hash(StateRoot, BlockNumber, ValidatorID, Salt)，
// 且 BlockNumber >= MinBlockNumber —— 这正是证明所证实的两条陈述。
type CircuitInputs struct {
	// 私有输入（仅证明者可见）
	StateRoot   *big.Int // 源链状态根
	ValidatorID *big.Int // 验证者标识
	Salt        *big.Int // 随机盐

	// 公开输入（验证者可见）
	Commitment     *big.Int // 哈希承诺
	BlockNumber    *big.Int // 源链区块号
	MinBlockNumber *big.Int // 允许的最小区块号
}

// ProofElementCount Groth16证明的字段元素数量（A占2个，B占4个，C占2个）
const ProofElementCount = 8

// PublicSignalCount 公开输入向量长度：[commitment, blockNumber, minBlockNumber]
const PublicSignalCount = 3

// ProofBundle 证明束（瞬态，仅在生成器与提交调用之间传递，不持久化）
//
// ProofElements 按配对编码排列：[A.X, A.Y, B.X.A1, B.X.A0, B.Y.A1, B.Y.A0, C.X, C.Y]。
// 所有权：由创建它的中继调用独占，恰好消费一次。
type ProofBundle struct {
	ProofElements [ProofElementCount]*big.Int  // 证明的8个字段元素
	PublicSignals [PublicSignalCount]*big.Int  // 公开输入向量
	VKFingerprint common.Hash                  // 生成证明所用验证密钥的指纹
}

// VerificationStats 登记处只读统计
//
// MinZKBlockNumber 同时是ZK证明的公开输入下限，中继生成证明时
// 必须使用这里读到的值，否则公开信号对不上。
type VerificationStats struct {
	Total            uint64 `json:"total"`               // 承诺总数
	TransparentCount uint64 `json:"transparent_count"`   // 透明承诺数
	ZKCount          uint64 `json:"zk_count"`            // ZK承诺数
	ZKModeEnabled    bool   `json:"zk_mode_enabled"`     // ZK模式开关
	MinZKBlockNumber uint64 `json:"min_zk_block_number"` // ZK公开输入的最小区块号
}

// SourceCommitEvent 源链承诺生成器批量提交完成事件载荷
type SourceCommitEvent struct {
	StateRoot   common.Hash `json:"state_root"`   // 批次末端的状态根
	BlockNumber uint64      `json:"block_number"` // 批次末端的源链区块号
	Timestamp   uint64      `json:"timestamp"`    // 提交时间（Unix秒）
	TxRef       common.Hash `json:"tx_ref"`       // 源链交易引用
}

// Disposition 中继单次操作的结果分类
type Disposition string

const (
	// DispositionSubmitted 成功提交并被登记处接受
	DispositionSubmitted Disposition = "submitted"

	// DispositionSkipped 目标区块已锚定或属于良性拒绝，安全跳过
	DispositionSkipped Disposition = "skipped"

	// DispositionFailed 需要运维关注的失败
	DispositionFailed Disposition = "failed"
)

// RelayOutcome 中继操作结果上报
//
// 携带可观测性所需的细节：区块号、证明生成耗时、结果分类与错误种类。
type RelayOutcome struct {
	OperationID  string        `json:"operation_id"`            // 操作唯一标识
	SourceBlock  uint64        `json:"source_block"`            // 目标源链区块
	Disposition  Disposition   `json:"disposition"`             // 结果分类
	ProofLatency time.Duration `json:"proof_latency"`           // 证明生成耗时（未生成则为0）
	ErrorKind    string        `json:"error_kind,omitempty"`    // 错误种类（失败时）
	Detail       string        `json:"detail,omitempty"`        // 补充说明
	CompletedAt  time.Time     `json:"completed_at"`            // 完成时间
}
