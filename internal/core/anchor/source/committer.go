// Package source 实现源链侧的状态根生成器
//
// 🎯 **源链承诺生成器 (Source-Chain Generator)**
//
// 模拟源链上周期性提交状态根的组件：
// - 只有命中批次间隔的区块号才接受提交（blockNumber % BatchInterval == 0）
// - 提交的区块号必须严格大于上次提交；重提已记录的区块返回 ErrAlreadyCommitted
// - 拒绝与存储失败都是原子的：内存水位线不前进，同一区块可重试
// - 每次提交发布 SourceStateRootCommitted 事件，驱动事件模式的中继
package source

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	sourceconfig "github.com/rayls/eth-anchor/internal/config/source"
	"github.com/rayls/eth-anchor/pkg/constants/events"
	"github.com/rayls/eth-anchor/pkg/interfaces/anchor"
	eventInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/event"
	logInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/log"
	"github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/storage"
	"github.com/rayls/eth-anchor/pkg/types"
)

// 提交被拒绝时返回的哨兵错误
var (
	// ErrPaused 生成器处于暂停状态
	ErrPaused = errors.New("源链生成器已暂停")

	// ErrNotAuthorized 调用者不是授权提交者
	ErrNotAuthorized = errors.New("调用者未授权提交状态根")

	// ErrNotOwner 管理操作的调用者不是所有者
	ErrNotOwner = errors.New("调用者不是所有者")

	// ErrZeroStateRoot 状态根为零值
	ErrZeroStateRoot = errors.New("状态根不能为零")

	// ErrOffBatchInterval 区块号未命中批次间隔
	ErrOffBatchInterval = errors.New("区块号未命中批次间隔")

	// ErrNotIncreasing 区块号未严格大于上次提交
	ErrNotIncreasing = errors.New("区块号必须严格大于上次提交")

	// ErrAlreadyCommitted 该区块已有提交记录，属良性重复
	ErrAlreadyCommitted = errors.New("该源链区块已提交过状态根")
)

// 存储键
var (
	sourceKeyPrefix = []byte("source/c/")
	sourceKeyMeta   = []byte("source/meta")
)

// sourceMeta 生成器的可变状态快照
type sourceMeta struct {
	LastBlock    uint64 `json:"last_block"`
	HasCommitted bool   `json:"has_committed"`
	Paused       bool   `json:"paused"`
}

// Committer 源链状态根生成器实现
type Committer struct {
	mu sync.Mutex

	owner         types.SubmitterID
	batchInterval uint64

	lastBlock    uint64
	hasCommitted bool
	paused       bool
	commits      map[uint64]types.SourceCommitEvent

	kv     storage.KVStore
	events eventInterface.EventBus
	logger logInterface.Logger
}

// New 创建源链生成器
//
// kv 非nil时从持久化状态恢复提交历史。
func New(
	ctx context.Context,
	options *sourceconfig.SourceOptions,
	owner types.SubmitterID,
	kv storage.KVStore,
	bus eventInterface.EventBus,
	logger logInterface.Logger,
) (*Committer, error) {
	if options == nil {
		options = sourceconfig.New(nil).GetOptions()
	}

	c := &Committer{
		owner:         owner,
		batchInterval: options.BatchInterval,
		commits:       make(map[uint64]types.SourceCommitEvent),
		kv:            kv,
		events:        bus,
		logger:        logger,
	}

	if err := c.restore(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Committer) restore(ctx context.Context) error {
	if c.kv == nil {
		return nil
	}

	metaData, err := c.kv.Get(ctx, sourceKeyMeta)
	if err != nil {
		return fmt.Errorf("读取生成器状态失败: %w", err)
	}
	if metaData == nil {
		return nil
	}

	var meta sourceMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return fmt.Errorf("解析生成器状态失败: %w", err)
	}
	c.lastBlock = meta.LastBlock
	c.hasCommitted = meta.HasCommitted
	c.paused = meta.Paused

	var iterErr error
	err = c.kv.IteratePrefix(ctx, sourceKeyPrefix, func(key, value []byte) bool {
		var ev types.SourceCommitEvent
		if iterErr = json.Unmarshal(value, &ev); iterErr != nil {
			return false
		}
		c.commits[ev.BlockNumber] = ev
		return true
	})
	if err != nil {
		return fmt.Errorf("遍历提交记录失败: %w", err)
	}
	if iterErr != nil {
		return fmt.Errorf("解析提交记录失败: %w", iterErr)
	}
	return nil
}

func (c *Committer) persist(ctx context.Context, ev types.SourceCommitEvent, meta sourceMeta) error {
	if c.kv == nil {
		return nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("序列化提交记录失败: %w", err)
	}
	key := make([]byte, len(sourceKeyPrefix)+8)
	copy(key, sourceKeyPrefix)
	binary.BigEndian.PutUint64(key[len(sourceKeyPrefix):], ev.BlockNumber)
	if err := c.kv.Set(ctx, key, data); err != nil {
		return err
	}
	return c.persistMeta(ctx, meta)
}

func (c *Committer) persistMeta(ctx context.Context, meta sourceMeta) error {
	if c.kv == nil {
		return nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("序列化生成器状态失败: %w", err)
	}
	return c.kv.Set(ctx, sourceKeyMeta, data)
}

// GenerateStateRoot 在指定源链区块提交状态根
func (c *Committer) GenerateStateRoot(ctx context.Context, caller types.SubmitterID, stateRoot common.Hash, blockNumber uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused {
		return ErrPaused
	}
	if caller != c.owner {
		return ErrNotAuthorized
	}
	if stateRoot == (common.Hash{}) {
		return ErrZeroStateRoot
	}
	if blockNumber == 0 || blockNumber%c.batchInterval != 0 {
		return ErrOffBatchInterval
	}
	if _, exists := c.commits[blockNumber]; exists {
		return ErrAlreadyCommitted
	}
	if c.hasCommitted && blockNumber <= c.lastBlock {
		return ErrNotIncreasing
	}

	ev := types.SourceCommitEvent{
		StateRoot:   stateRoot,
		BlockNumber: blockNumber,
		Timestamp:   uint64(time.Now().Unix()),
		TxRef:       randomTxRef(),
	}

	// 先持久化后更新内存：存储失败时水位线不前进，同一区块可重试
	if err := c.persist(ctx, ev, sourceMeta{LastBlock: blockNumber, HasCommitted: true, Paused: c.paused}); err != nil {
		return err
	}
	c.lastBlock = blockNumber
	c.hasCommitted = true
	c.commits[blockNumber] = ev

	if c.logger != nil {
		c.logger.Infof("源链状态根已提交: block=%d, stateRoot=%s", blockNumber, stateRoot.Hex())
	}
	if c.events != nil {
		c.events.Publish(eventInterface.EventType(events.SourceStateRootCommitted), ev)
	}
	return nil
}

// GetCommitment 查询指定源链区块的提交记录
func (c *Committer) GetCommitment(ctx context.Context, blockNumber uint64) (types.SourceCommitEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.commits[blockNumber]
	return ev, ok
}

// LatestCommitted 最近一次提交记录
func (c *Committer) LatestCommitted(ctx context.Context) (types.SourceCommitEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasCommitted {
		return types.SourceCommitEvent{}, false
	}
	ev, ok := c.commits[c.lastBlock]
	return ev, ok
}

// Pause 暂停提交
func (c *Committer) Pause(ctx context.Context, caller types.SubmitterID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if caller != c.owner {
		return ErrNotOwner
	}
	if err := c.persistMeta(ctx, sourceMeta{LastBlock: c.lastBlock, HasCommitted: c.hasCommitted, Paused: true}); err != nil {
		return err
	}
	c.paused = true
	return nil
}

// Unpause 恢复提交
func (c *Committer) Unpause(ctx context.Context, caller types.SubmitterID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if caller != c.owner {
		return ErrNotOwner
	}
	if err := c.persistMeta(ctx, sourceMeta{LastBlock: c.lastBlock, HasCommitted: c.hasCommitted, Paused: false}); err != nil {
		return err
	}
	c.paused = false
	return nil
}

// randomTxRef 生成模拟的源链交易引用
func randomTxRef() common.Hash {
	var ref common.Hash
	_, _ = rand.Read(ref[:])
	return ref
}

// 编译期接口检查
var _ anchor.SourceCommitter = (*Committer)(nil)
