// Package messaging 实现抗审查的跨链消息通道
//
// 🎯 **出站/收件信箱 (Outbox / Inbox)**
//
// 通道语义分两层：
// - 投递层：至少一次。出站信箱的消息可被任意次读取与重放
// - 处理层：恰好一次。收件信箱按消息ID去重，首次处理的结果
//   （成功或失败）被持久记录，重复投递不再触碰处理函数
package messaging

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rayls/eth-anchor/pkg/constants/events"
	"github.com/rayls/eth-anchor/pkg/interfaces/anchor"
	eventInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/event"
	logInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/log"
	"github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/storage"
	"github.com/rayls/eth-anchor/pkg/types"
)

var (
	// ErrMessageNotDelivered 处理未投递的消息ID
	ErrMessageNotDelivered = errors.New("消息尚未投递")

	// ErrUnknownMessage 标记不存在的消息ID
	ErrUnknownMessage = errors.New("未知的消息ID")
)

// 存储键
var (
	outboxKeyPrefix = []byte("outbox/m/")
	outboxKeyMeta   = []byte("outbox/meta")
	inboxKeyPrefix  = []byte("inbox/m/")
)

func messageKey(prefix []byte, id uint64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], id)
	return key
}

// ================== 出站信箱 ==================

type outboxMeta struct {
	NextID uint64 `json:"next_id"`
}

type outboxRecord struct {
	Message   types.OutboxMessage `json:"message"`
	Delivered bool                `json:"delivered"`
}

// Outbox 出站信箱实现（锚定链侧）
type Outbox struct {
	mu sync.Mutex

	nextID  uint64
	records map[uint64]*outboxRecord

	kv     storage.KVStore
	events eventInterface.EventBus
	logger logInterface.Logger
}

// NewOutbox 创建出站信箱，kv非nil时恢复消息历史
func NewOutbox(ctx context.Context, kv storage.KVStore, bus eventInterface.EventBus, logger logInterface.Logger) (*Outbox, error) {
	o := &Outbox{
		nextID:  1,
		records: make(map[uint64]*outboxRecord),
		kv:      kv,
		events:  bus,
		logger:  logger,
	}

	if kv == nil {
		return o, nil
	}

	metaData, err := kv.Get(ctx, outboxKeyMeta)
	if err != nil {
		return nil, fmt.Errorf("读取出站信箱状态失败: %w", err)
	}
	if metaData != nil {
		var meta outboxMeta
		if err := json.Unmarshal(metaData, &meta); err != nil {
			return nil, fmt.Errorf("解析出站信箱状态失败: %w", err)
		}
		o.nextID = meta.NextID
	}

	var iterErr error
	err = kv.IteratePrefix(ctx, outboxKeyPrefix, func(key, value []byte) bool {
		var rec outboxRecord
		if iterErr = json.Unmarshal(value, &rec); iterErr != nil {
			return false
		}
		o.records[rec.Message.ID] = &rec
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("遍历出站消息失败: %w", err)
	}
	if iterErr != nil {
		return nil, fmt.Errorf("解析出站消息失败: %w", iterErr)
	}
	return o, nil
}

func (o *Outbox) persistRecord(ctx context.Context, rec *outboxRecord) error {
	if o.kv == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("序列化出站消息失败: %w", err)
	}
	if err := o.kv.Set(ctx, messageKey(outboxKeyPrefix, rec.Message.ID), data); err != nil {
		return err
	}
	metaData, err := json.Marshal(outboxMeta{NextID: o.nextID})
	if err != nil {
		return fmt.Errorf("序列化出站信箱状态失败: %w", err)
	}
	return o.kv.Set(ctx, outboxKeyMeta, metaData)
}

// Enqueue 入队一条跨链消息
func (o *Outbox) Enqueue(ctx context.Context, sender, target common.Address, data []byte) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	payload := make([]byte, len(data))
	copy(payload, data)

	msg := types.OutboxMessage{
		ID:         o.nextID,
		Sender:     sender,
		Target:     target,
		Data:       payload,
		EnqueuedAt: time.Now(),
	}
	rec := &outboxRecord{Message: msg}

	o.nextID++
	if err := o.persistRecord(ctx, rec); err != nil {
		o.nextID--
		return 0, err
	}
	o.records[msg.ID] = rec

	if o.logger != nil {
		o.logger.Debugf("出站消息入队: id=%d, target=%s, 载荷=%d字节", msg.ID, target.Hex(), len(payload))
	}
	if o.events != nil {
		o.events.Publish(eventInterface.EventType(events.OutboxMessageEnqueued), msg)
	}
	return msg.ID, nil
}

// Pending 按ID升序返回自fromID起尚未确认投递的消息
func (o *Outbox) Pending(ctx context.Context, fromID uint64) ([]types.OutboxMessage, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var pending []types.OutboxMessage
	for id, rec := range o.records {
		if id >= fromID && !rec.Delivered {
			pending = append(pending, rec.Message)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending, nil
}

// MarkDelivered 标记消息已投递（幂等）
func (o *Outbox) MarkDelivered(ctx context.Context, id uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	rec, ok := o.records[id]
	if !ok {
		return fmt.Errorf("%w: id=%d", ErrUnknownMessage, id)
	}
	if rec.Delivered {
		return nil
	}
	rec.Delivered = true
	if err := o.persistRecord(ctx, rec); err != nil {
		rec.Delivered = false
		return err
	}
	return nil
}

// NextID 下一条消息将获得的ID
func (o *Outbox) NextID(ctx context.Context) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nextID
}

// ================== 收件信箱 ==================

type inboxRecord struct {
	Message types.OutboxMessage `json:"message"`
	Status  types.MessageStatus `json:"status"`
	Detail  string              `json:"detail,omitempty"`
}

// Inbox 收件信箱实现（源链侧）
//
// 恰好一次处理：同一ID的首次处理结果被持久记录，
// 之后的 ProcessMessage 直接返回记录的状态。
type Inbox struct {
	mu sync.Mutex

	records map[uint64]*inboxRecord
	handler anchor.CallHandler

	kv     storage.KVStore
	logger logInterface.Logger
}

// NewInbox 创建收件信箱
func NewInbox(ctx context.Context, handler anchor.CallHandler, kv storage.KVStore, logger logInterface.Logger) (*Inbox, error) {
	in := &Inbox{
		records: make(map[uint64]*inboxRecord),
		handler: handler,
		kv:      kv,
		logger:  logger,
	}

	if kv == nil {
		return in, nil
	}

	var iterErr error
	err := kv.IteratePrefix(ctx, inboxKeyPrefix, func(key, value []byte) bool {
		var rec inboxRecord
		if iterErr = json.Unmarshal(value, &rec); iterErr != nil {
			return false
		}
		in.records[rec.Message.ID] = &rec
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("遍历收件消息失败: %w", err)
	}
	if iterErr != nil {
		return nil, fmt.Errorf("解析收件消息失败: %w", iterErr)
	}
	return in, nil
}

func (in *Inbox) persistRecord(ctx context.Context, rec *inboxRecord) error {
	if in.kv == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("序列化收件消息失败: %w", err)
	}
	return in.kv.Set(ctx, messageKey(inboxKeyPrefix, rec.Message.ID), data)
}

// Deliver 投递一条消息；已见过的ID为幂等空操作
func (in *Inbox) Deliver(ctx context.Context, msg types.OutboxMessage) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if _, seen := in.records[msg.ID]; seen {
		if in.logger != nil {
			in.logger.Debugf("重复投递忽略: id=%d", msg.ID)
		}
		return nil
	}

	rec := &inboxRecord{Message: msg, Status: types.MessageStatusPending}
	if err := in.persistRecord(ctx, rec); err != nil {
		return err
	}
	in.records[msg.ID] = rec
	return nil
}

// ProcessMessage 处理指定ID的已投递消息
//
// 首次处理执行目标调用并记录结果；之后的调用直接返回记录，
// 处理函数不会被再次触碰。
func (in *Inbox) ProcessMessage(ctx context.Context, id uint64) (types.MessageStatus, error) {
	in.mu.Lock()
	rec, ok := in.records[id]
	if !ok {
		in.mu.Unlock()
		return "", fmt.Errorf("%w: id=%d", ErrMessageNotDelivered, id)
	}
	if rec.Status != types.MessageStatusPending {
		status := rec.Status
		in.mu.Unlock()
		return status, nil
	}
	msg := rec.Message
	handler := in.handler
	in.mu.Unlock()

	// 处理函数在锁外执行，避免慢调用阻塞投递
	var callErr error
	if handler != nil {
		callErr = handler(ctx, msg.Target, msg.Data)
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	// 并发处理同一ID时以先完成者为准
	if rec.Status != types.MessageStatusPending {
		return rec.Status, nil
	}

	if callErr != nil {
		rec.Status = types.MessageStatusFailed
		rec.Detail = callErr.Error()
	} else {
		rec.Status = types.MessageStatusSucceeded
	}
	if err := in.persistRecord(ctx, rec); err != nil {
		return rec.Status, err
	}

	if in.logger != nil {
		in.logger.Debugf("收件消息已处理: id=%d, 状态=%s", id, rec.Status)
	}
	return rec.Status, nil
}

// Status 查询消息处理状态
func (in *Inbox) Status(ctx context.Context, id uint64) (types.MessageStatus, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	rec, ok := in.records[id]
	if !ok {
		return "", false
	}
	return rec.Status, true
}

// 编译期接口检查
var (
	_ anchor.Outbox = (*Outbox)(nil)
	_ anchor.Inbox  = (*Inbox)(nil)
)
