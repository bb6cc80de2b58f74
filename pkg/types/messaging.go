// Package types 提供锚定系统的公共类型定义
//
// 📋 **抗审查通道类型 (Censorship-Resistance Channel Types)**
//
// 出站信箱（锚定链侧）与收件信箱（源链侧）之间传递的消息结构。
// 通道语义：至少一次投递 + 按消息ID去重 = 恰好一次处理。
package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// OutboxMessage 出站信箱消息
//
// ID由出站信箱单调分配，跨消息严格递增。
type OutboxMessage struct {
	ID         uint64         `json:"id"`          // 单调递增的消息标识
	Sender     common.Address `json:"sender"`      // 发起方
	Target     common.Address `json:"target"`      // 目标（源链侧被调用方）
	Data       []byte         `json:"data"`        // 调用载荷
	EnqueuedAt time.Time      `json:"enqueued_at"` // 入队时间
}

// MessageStatus 收件信箱中消息的处理状态
type MessageStatus string

const (
	// MessageStatusPending 已投递，等待处理
	MessageStatusPending MessageStatus = "pending"

	// MessageStatusSucceeded 处理成功
	MessageStatusSucceeded MessageStatus = "succeeded"

	// MessageStatusFailed 处理失败（结果已记录，不会重复执行）
	MessageStatusFailed MessageStatus = "failed"
)

// MembershipProof Merkle包含性证明
//
// Siblings 自叶向根排列；Index 是叶在树中的位置，
// 第i位决定第i层拼接顺序（0=当前节点在左，1=在右）。
type MembershipProof struct {
	Leaf     common.Hash   `json:"leaf"`     // 待证明的叶子
	Index    uint64        `json:"index"`    // 叶子位置
	Siblings []common.Hash `json:"siblings"` // 兄弟哈希路径
}
