// Package anchor 提供锚定系统的核心领域接口定义
//
// 📋 **源链生成器接口 (Source-Chain Generator Interface)**
package anchor

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rayls/eth-anchor/pkg/types"
)

// SourceCommitter 源链状态根生成器
//
// 模拟源链上周期性提交状态根的组件：每到批次间隔的区块号
// 记录一次提交并发布事件，供中继观察。
type SourceCommitter interface {
	// GenerateStateRoot 在指定源链区块提交状态根
	// 仅授权提交者可调用；区块号必须命中批次间隔且严格大于上次提交
	GenerateStateRoot(ctx context.Context, caller types.SubmitterID, stateRoot common.Hash, blockNumber uint64) error

	// GetCommitment 查询指定源链区块的提交记录
	GetCommitment(ctx context.Context, blockNumber uint64) (types.SourceCommitEvent, bool)

	// LatestCommitted 最近一次提交记录；尚无提交时found为false
	LatestCommitted(ctx context.Context) (types.SourceCommitEvent, bool)

	// Pause 暂停提交（仅限所有者）
	Pause(ctx context.Context, caller types.SubmitterID) error

	// Unpause 恢复提交（仅限所有者）
	Unpause(ctx context.Context, caller types.SubmitterID) error
}
