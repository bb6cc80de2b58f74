// Package anchor 提供锚定系统的核心领域接口定义
//
// 📋 **承诺登记处接口 (Commitment Registry Interface)**
//
// 本文件定义锚定链侧承诺登记处的操作集合：
// - 提交操作：透明提交与ZK提交，二者共享同一单调水位线
// - 读取操作：查询永不因"未找到"报错，返回显式的found标志
// - 管理操作：仅限所有者，立即生效；暂停只拦截提交，不拦截读取
//
// 🎯 **核心不变式**
// - 单调性：所有被接受的提交（无论模式）源链区块号严格递增
// - 唯一性：同一源链区块号至多一个条目（跨模式互斥）
// - 先验证后写入：未通过验证的ZK证明不会到达存储
package anchor

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rayls/eth-anchor/pkg/types"
)

// TransparentSubmission 透明承诺提交请求
type TransparentSubmission struct {
	Submitter       types.SubmitterID // 提交者身份
	StateRoot       common.Hash       // 源链状态根，不得为零
	SourceBlock     uint64            // 源链区块号
	SourceTimestamp uint64            // 源链区块时间戳
	SourceTxRef     common.Hash       // 源链交易引用
}

// ZKSubmission ZK承诺提交请求
type ZKSubmission struct {
	Submitter       types.SubmitterID                     // 提交者身份
	Commitment      common.Hash                           // 私有状态的哈希承诺，不得为零
	SourceBlock     uint64                                // 源链区块号
	SourceTimestamp uint64                                // 源链区块时间戳
	SourceTxRef     common.Hash                           // 源链交易引用
	Proof           [types.ProofElementCount]*big.Int // Groth16证明的8个字段元素
}

// Registry 承诺登记处接口
//
// 所有修改状态的操作在实现内部串行化，对外表现为原子的接受/拒绝。
type Registry interface {
	// ================== 提交操作 ==================

	// SubmitTransparent 提交透明承诺
	// 校验顺序：暂停 → 授权 → 输入 → 单调性/唯一性 → 间隔，任一失败即拒绝且不写存储
	SubmitTransparent(ctx context.Context, sub TransparentSubmission) (types.Commitment, error)

	// SubmitZK 提交ZK承诺
	// 除与透明提交相同的校验外，要求ZK模式已启用，并以
	// publicSignals = [commitment, sourceBlock, minZKBlockNumber] 调用证明验证器
	SubmitZK(ctx context.Context, sub ZKSubmission) (types.ZKCommitment, error)

	// ================== 读取操作（暂停期间仍可用） ==================

	// GetCommitment 查询透明承诺；不存在时found为false，不报错
	GetCommitment(ctx context.Context, sourceBlock uint64) (types.Commitment, bool)

	// GetZKCommitment 查询ZK承诺；不存在时found为false，不报错
	GetZKCommitment(ctx context.Context, sourceBlock uint64) (types.ZKCommitment, bool)

	// HasCommitment 检查透明承诺是否存在
	HasCommitment(ctx context.Context, sourceBlock uint64) bool

	// HasZKCommitment 检查ZK承诺是否存在
	HasZKCommitment(ctx context.Context, sourceBlock uint64) bool

	// GetVerificationStats 获取统计信息：[总数, 透明数, ZK数, ZK模式开关]
	GetVerificationStats(ctx context.Context) types.VerificationStats

	// LatestSourceBlock 当前单调水位线（尚无条目时为0）
	LatestSourceBlock(ctx context.Context) uint64

	// CommittedBlocks 按接受顺序返回所有已锚定的源链区块号
	CommittedBlocks(ctx context.Context) []uint64

	// VerifyMembership 根据已锚定的透明状态根校验Merkle包含性证明
	// 指定区块无透明条目时返回 ErrCommitmentNotFound
	VerifyMembership(ctx context.Context, sourceBlock uint64, proof types.MembershipProof) (bool, error)

	// ================== 管理操作（仅限所有者，立即生效） ==================

	// AddSubmitter 添加授权提交者
	AddSubmitter(ctx context.Context, caller, submitter types.SubmitterID) error

	// RemoveSubmitter 移除授权提交者
	RemoveSubmitter(ctx context.Context, caller, submitter types.SubmitterID) error

	// SetMinCommitmentInterval 修改最小提交间隔（锚定链区块数）
	SetMinCommitmentInterval(ctx context.Context, caller types.SubmitterID, interval uint64) error

	// SetZKModeEnabled 切换ZK模式
	SetZKModeEnabled(ctx context.Context, caller types.SubmitterID, enabled bool) error

	// SetMinZKBlockNumber 修改ZK公开输入的最小区块号
	SetMinZKBlockNumber(ctx context.Context, caller types.SubmitterID, minBlock uint64) error

	// RotateVerifier 轮换证明验证器引用
	RotateVerifier(ctx context.Context, caller types.SubmitterID, verifier ProofVerifier) error

	// Pause 暂停所有提交操作（读取不受影响）
	Pause(ctx context.Context, caller types.SubmitterID) error

	// Unpause 恢复提交操作
	Unpause(ctx context.Context, caller types.SubmitterID) error
}
