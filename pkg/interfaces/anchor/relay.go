// Package anchor 提供锚定系统的核心领域接口定义
//
// 📋 **中继编排器接口 (Relay Orchestrator Interface)**
//
// 中继是唯一的跨链参与者：观察源链提交，驱动证明流水线，
// 将结果提交到锚定链登记处。
package anchor

import (
	"context"

	"github.com/rayls/eth-anchor/pkg/types"
)

// HeightSource 锚定链高度来源
//
// 登记处用它检查最小提交间隔，中继用它填充锚定元数据。
type HeightSource interface {
	// CurrentHeight 当前锚定链区块高度
	CurrentHeight(ctx context.Context) (uint64, error)
}

// Orchestrator 中继编排器
//
// 支持三种触发方式：单次执行、定时轮询、外部事件注入。
// 同一时刻至多一条证明流水线在执行；触发请求按源链区块号去重后
// 进入有界队列，队列满时丢弃最旧触发。
type Orchestrator interface {
	// RelayOnce 对指定源链区块执行一次完整的中继操作
	// 返回的RelayOutcome描述最终处置（submitted/skipped/failed）；
	// 良性跳过（如区块已锚定）不作为error返回
	RelayOnce(ctx context.Context, sourceBlock uint64) (types.RelayOutcome, error)

	// Trigger 注入一次中继触发（事件驱动模式）
	// 重复的区块号会被去重；编排器未启动时返回错误
	Trigger(sourceBlock uint64) error

	// Start 启动轮询循环与触发队列消费
	Start(ctx context.Context) error

	// Stop 停止编排器，等待在途流水线结束
	Stop(ctx context.Context) error
}
