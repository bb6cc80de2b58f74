// Package anchor 提供锚定系统的核心领域接口定义
//
// 📋 **抗审查通道接口 (Censorship-Resistance Channel Interface)**
//
// 出站信箱在锚定链侧累积消息，收件信箱在源链侧恰好一次地处理它们。
// 投递本身可以重复（至少一次），去重由收件信箱按消息ID完成。
package anchor

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rayls/eth-anchor/pkg/types"
)

// Outbox 出站信箱（锚定链侧）
type Outbox interface {
	// Enqueue 入队一条跨链消息，返回单调递增的消息ID
	Enqueue(ctx context.Context, sender, target common.Address, data []byte) (uint64, error)

	// Pending 按ID升序返回自fromID起尚未确认投递的消息
	Pending(ctx context.Context, fromID uint64) ([]types.OutboxMessage, error)

	// MarkDelivered 标记消息已投递（投递可重复，标记幂等）
	MarkDelivered(ctx context.Context, id uint64) error

	// NextID 下一条消息将获得的ID
	NextID(ctx context.Context) uint64
}

// CallHandler 收件信箱处理消息时调用的目标执行函数
type CallHandler func(ctx context.Context, target common.Address, data []byte) error

// Inbox 收件信箱（源链侧）
//
// 同一消息ID至多被执行一次：首次处理的结果（成功或失败）被持久记录，
// 重复投递直接返回已记录的结果，不再触碰处理函数。
type Inbox interface {
	// Deliver 投递一条消息；已见过的ID为幂等空操作
	Deliver(ctx context.Context, msg types.OutboxMessage) error

	// ProcessMessage 处理指定ID的已投递消息
	// 未投递的ID报错；已处理的ID直接返回记录的状态
	ProcessMessage(ctx context.Context, id uint64) (types.MessageStatus, error)

	// Status 查询消息处理状态
	Status(ctx context.Context, id uint64) (types.MessageStatus, bool)
}
