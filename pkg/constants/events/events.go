// Package events 定义锚定系统的事件主题常量
//
// 事件主题采用 "<域>.<对象>.<动作>" 命名，发布方与订阅方共享本包常量，
// 避免散落的字符串字面量导致主题漂移。
package events

const (
	// SourceStateRootCommitted 源链承诺生成器完成一次批量提交
	// 载荷：types.SourceCommitEvent
	SourceStateRootCommitted = "source.stateroot.committed"

	// AnchorCommitmentAccepted 登记处接受一个透明承诺
	// 载荷：types.Commitment
	AnchorCommitmentAccepted = "anchor.commitment.accepted"

	// AnchorZKCommitmentAccepted 登记处接受一个ZK承诺
	// 载荷：types.ZKCommitment
	AnchorZKCommitmentAccepted = "anchor.zkcommitment.accepted"

	// OutboxMessageEnqueued 出站信箱新增一条待中继消息
	// 载荷：types.OutboxMessage
	OutboxMessageEnqueued = "outbox.message.enqueued"
)
