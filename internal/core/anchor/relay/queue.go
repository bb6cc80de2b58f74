package relay

import "sync"

// triggerQueue 有界去重的触发队列
//
// 按源链区块号去重：队列中已存在的区块号再次入队为空操作。
// 队列满时丢弃最旧的触发（新触发通常携带更新的区块）。
type triggerQueue struct {
	mu       sync.Mutex
	capacity int
	blocks   []uint64
	present  map[uint64]struct{}
	notify   chan struct{}
}

func newTriggerQueue(capacity int) *triggerQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &triggerQueue{
		capacity: capacity,
		present:  make(map[uint64]struct{}, capacity),
		notify:   make(chan struct{}, 1),
	}
}

// push 入队一个触发
// 返回 (是否去重跳过, 被丢弃的最旧触发, 是否发生丢弃)
func (q *triggerQueue) push(sourceBlock uint64) (deduped bool, dropped uint64, didDrop bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.present[sourceBlock]; exists {
		return true, 0, false
	}

	if len(q.blocks) >= q.capacity {
		dropped = q.blocks[0]
		q.blocks = q.blocks[1:]
		delete(q.present, dropped)
		didDrop = true
	}

	q.blocks = append(q.blocks, sourceBlock)
	q.present[sourceBlock] = struct{}{}

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return false, dropped, didDrop
}

// pop 出队最旧的触发；队列为空时返回 (0, false)
func (q *triggerQueue) pop() (uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.blocks) == 0 {
		return 0, false
	}
	block := q.blocks[0]
	q.blocks = q.blocks[1:]
	delete(q.present, block)
	return block, true
}

// wait 返回队列的通知通道，有新触发入队时可读
func (q *triggerQueue) wait() <-chan struct{} {
	return q.notify
}

// len 当前队列长度
func (q *triggerQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.blocks)
}
