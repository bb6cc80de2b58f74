// Package registry 实现锚定链侧的承诺登记处
//
// 🎯 **承诺登记处 (Commitment Registry)**
//
// 登记处是锚定系统的权威状态机：
// - 两类承诺（透明/ZK）各自独立存储，但共享同一条单调水位线
// - 同一源链区块号在两种模式间互斥，至多一个条目
// - ZK提交先验证后写入，验证失败的证明不会触碰存储
// - 所有校验失败都是原子拒绝：内存与持久化状态均不变化
//
// ⚠️ 校验顺序固定：暂停 → 授权 → 输入 → 模式 → 单调性/唯一性 → 间隔 → 证明。
// 顺序影响返回的错误种类，调整时必须同步更新测试。
package registry

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	registryconfig "github.com/rayls/eth-anchor/internal/config/registry"
	"github.com/rayls/eth-anchor/internal/core/anchor/merkle"
	"github.com/rayls/eth-anchor/pkg/constants/events"
	"github.com/rayls/eth-anchor/pkg/interfaces/anchor"
	eventInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/event"
	logInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/log"
	"github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/storage"
	"github.com/rayls/eth-anchor/pkg/types"
)

// Registry 承诺登记处实现
type Registry struct {
	mu sync.Mutex

	logger   logInterface.Logger
	events   eventInterface.EventBus
	heights  anchor.HeightSource
	verifier anchor.ProofVerifier
	st       store

	// 治理参数
	owner            types.SubmitterID
	submitters       map[types.SubmitterID]struct{}
	minInterval      uint64
	zkModeEnabled    bool
	minZKBlockNumber uint64
	paused           bool

	// 承诺状态
	latestSourceBlock uint64
	lastAnchorBlock   uint64
	hasAccepted       bool
	transparent       map[uint64]types.Commitment
	zk                map[uint64]types.ZKCommitment
	order             []uint64
}

// New 创建承诺登记处
//
// kv 非nil时优先从持久化状态恢复；全新部署时用配置初始化，
// 初始提交者同时成为所有者。
func New(
	ctx context.Context,
	options *registryconfig.RegistryOptions,
	verifier anchor.ProofVerifier,
	heights anchor.HeightSource,
	kv storage.KVStore,
	bus eventInterface.EventBus,
	logger logInterface.Logger,
) (*Registry, error) {
	if options == nil {
		options = registryconfig.New(nil).GetOptions()
	}

	r := &Registry{
		logger:   logger,
		events:   bus,
		heights:  heights,
		verifier: verifier,
		st:       store{kv: kv},
	}

	meta, transparent, zk, err := r.st.load(ctx)
	if err != nil {
		return nil, err
	}

	r.transparent = transparent
	r.zk = zk

	if meta != nil {
		r.owner = meta.Owner
		r.submitters = make(map[types.SubmitterID]struct{}, len(meta.Submitters))
		for _, s := range meta.Submitters {
			r.submitters[s] = struct{}{}
		}
		r.latestSourceBlock = meta.LatestSourceBlock
		r.lastAnchorBlock = meta.LastAnchorBlock
		r.hasAccepted = meta.HasAccepted
		r.paused = meta.Paused
		r.minInterval = meta.MinInterval
		r.zkModeEnabled = meta.ZKModeEnabled
		r.minZKBlockNumber = meta.MinZKBlockNumber
		r.order = meta.Order

		if logger != nil {
			logger.Infof("登记处状态已恢复: 条目数=%d, 水位线=%d", len(r.order), r.latestSourceBlock)
		}
		return r, nil
	}

	r.owner = options.InitialSubmitter
	r.submitters = map[types.SubmitterID]struct{}{options.InitialSubmitter: {}}
	r.minInterval = options.MinCommitmentInterval
	r.zkModeEnabled = options.ZKModeEnabled
	r.minZKBlockNumber = options.MinZKBlockNumber

	// 元数据缺失但存储里仍有条目：按条目重建水位线与接受顺序，
	// 单调性与唯一性在重启后继续成立
	if len(r.transparent)+len(r.zk) > 0 {
		r.rebuildFromEntries()
		if logger != nil {
			logger.Warnf("登记处元数据缺失，已按%d个条目重建水位线: %d", len(r.order), r.latestSourceBlock)
		}
	}

	return r, nil
}

// rebuildFromEntries 由持久化条目重建水位线、顺序与最近锚定高度
func (r *Registry) rebuildFromEntries() {
	blocks := make([]uint64, 0, len(r.transparent)+len(r.zk))
	for b := range r.transparent {
		blocks = append(blocks, b)
	}
	for b := range r.zk {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })

	r.order = blocks
	r.latestSourceBlock = blocks[len(blocks)-1]
	r.hasAccepted = true
	for _, c := range r.transparent {
		if c.AnchorBlock > r.lastAnchorBlock {
			r.lastAnchorBlock = c.AnchorBlock
		}
	}
	for _, c := range r.zk {
		if c.AnchorBlock > r.lastAnchorBlock {
			r.lastAnchorBlock = c.AnchorBlock
		}
	}
}

// ================== 提交操作 ==================

// SubmitTransparent 提交透明承诺
func (r *Registry) SubmitTransparent(ctx context.Context, sub anchor.TransparentSubmission) (types.Commitment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		return types.Commitment{}, ErrPaused
	}
	if !r.isAuthorized(sub.Submitter) {
		return types.Commitment{}, ErrNotAuthorized
	}
	if sub.StateRoot == (common.Hash{}) {
		return types.Commitment{}, ErrZeroStateRoot
	}
	if err := r.checkOrdering(sub.SourceBlock); err != nil {
		return types.Commitment{}, err
	}

	anchorHeight, err := r.checkInterval(ctx)
	if err != nil {
		return types.Commitment{}, err
	}

	entry := types.Commitment{
		Value:           sub.StateRoot,
		SourceBlock:     sub.SourceBlock,
		SourceTimestamp: sub.SourceTimestamp,
		AnchorBlock:     anchorHeight,
		AnchorTimestamp: uint64(time.Now().Unix()),
		Submitter:       sub.Submitter,
		SourceTxRef:     sub.SourceTxRef,
	}

	if err := r.st.saveTransparent(ctx, entry); err != nil {
		return types.Commitment{}, err
	}
	if err := r.st.saveMeta(ctx, r.acceptedMeta(entry.SourceBlock, anchorHeight)); err != nil {
		return types.Commitment{}, fmt.Errorf("持久化登记处状态失败: %w", err)
	}
	r.transparent[entry.SourceBlock] = entry
	r.accept(entry.SourceBlock, anchorHeight)

	if r.logger != nil {
		r.logger.Infof("接受透明承诺: sourceBlock=%d, stateRoot=%s, submitter=%s",
			entry.SourceBlock, entry.Value.Hex(), entry.Submitter.Hex())
	}
	if r.events != nil {
		r.events.Publish(eventInterface.EventType(events.AnchorCommitmentAccepted), entry)
	}
	return entry, nil
}

// SubmitZK 提交ZK承诺
func (r *Registry) SubmitZK(ctx context.Context, sub anchor.ZKSubmission) (types.ZKCommitment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		return types.ZKCommitment{}, ErrPaused
	}
	if !r.isAuthorized(sub.Submitter) {
		return types.ZKCommitment{}, ErrNotAuthorized
	}
	if sub.Commitment == (common.Hash{}) {
		return types.ZKCommitment{}, ErrZeroCommitment
	}
	if !r.zkModeEnabled {
		return types.ZKCommitment{}, ErrZKModeDisabled
	}
	if err := r.checkOrdering(sub.SourceBlock); err != nil {
		return types.ZKCommitment{}, err
	}

	anchorHeight, err := r.checkInterval(ctx)
	if err != nil {
		return types.ZKCommitment{}, err
	}

	// 先验证后写入：公开信号由登记处自身的状态构造，
	// 证明必须针对当前的minZKBlockNumber生成
	if r.verifier == nil {
		return types.ZKCommitment{}, ErrNoVerifier
	}
	publicSignals := [types.PublicSignalCount]*big.Int{
		new(big.Int).SetBytes(sub.Commitment[:]),
		new(big.Int).SetUint64(sub.SourceBlock),
		new(big.Int).SetUint64(r.minZKBlockNumber),
	}
	ok, err := r.verifier.Verify(sub.Proof, publicSignals)
	if err != nil {
		return types.ZKCommitment{}, fmt.Errorf("验证器不可用: %w", err)
	}
	if !ok {
		return types.ZKCommitment{}, ErrInvalidProof
	}

	entry := types.ZKCommitment{
		Commitment:      sub.Commitment,
		SourceBlock:     sub.SourceBlock,
		SourceTimestamp: sub.SourceTimestamp,
		AnchorBlock:     anchorHeight,
		AnchorTimestamp: uint64(time.Now().Unix()),
		Submitter:       sub.Submitter,
		Verified:        true,
		SourceTxRef:     sub.SourceTxRef,
	}

	if err := r.st.saveZK(ctx, entry); err != nil {
		return types.ZKCommitment{}, err
	}
	if err := r.st.saveMeta(ctx, r.acceptedMeta(entry.SourceBlock, anchorHeight)); err != nil {
		return types.ZKCommitment{}, fmt.Errorf("持久化登记处状态失败: %w", err)
	}
	r.zk[entry.SourceBlock] = entry
	r.accept(entry.SourceBlock, anchorHeight)

	if r.logger != nil {
		r.logger.Infof("接受ZK承诺: sourceBlock=%d, commitment=%s, submitter=%s",
			entry.SourceBlock, entry.Commitment.Hex(), entry.Submitter.Hex())
	}
	if r.events != nil {
		r.events.Publish(eventInterface.EventType(events.AnchorZKCommitmentAccepted), entry)
	}
	return entry, nil
}

// isAuthorized 检查提交者是否在授权名单中
func (r *Registry) isAuthorized(submitter types.SubmitterID) bool {
	_, ok := r.submitters[submitter]
	return ok
}

// checkOrdering 单调性与唯一性检查
func (r *Registry) checkOrdering(sourceBlock uint64) error {
	if _, exists := r.transparent[sourceBlock]; exists {
		return ErrBlockAlreadyAnchored
	}
	if _, exists := r.zk[sourceBlock]; exists {
		return ErrBlockAlreadyAnchored
	}
	if r.hasAccepted && sourceBlock <= r.latestSourceBlock {
		return ErrNonMonotonic
	}
	if sourceBlock == 0 {
		return ErrNonMonotonic
	}
	return nil
}

// checkInterval 最小提交间隔检查，返回当前锚定链高度
func (r *Registry) checkInterval(ctx context.Context) (uint64, error) {
	var height uint64
	if r.heights != nil {
		h, err := r.heights.CurrentHeight(ctx)
		if err != nil {
			return 0, fmt.Errorf("获取锚定链高度失败: %w", err)
		}
		height = h
	}
	if r.hasAccepted && height < r.lastAnchorBlock+r.minInterval {
		return 0, ErrIntervalNotElapsed
	}
	return height, nil
}

// accept 更新水位线与接受顺序
//
// 纯内存变更：状态快照必须已经通过 acceptedMeta 持久化成功，
// 否则提交整体失败，内存与存储保持一致。
func (r *Registry) accept(sourceBlock, anchorHeight uint64) {
	r.latestSourceBlock = sourceBlock
	r.lastAnchorBlock = anchorHeight
	r.hasAccepted = true
	r.order = append(r.order, sourceBlock)
}

// acceptedMeta 构造接受该提交之后的状态快照（须在持锁、内存变更之前调用）
func (r *Registry) acceptedMeta(sourceBlock, anchorHeight uint64) persistedMeta {
	meta := r.snapshotMeta()
	meta.LatestSourceBlock = sourceBlock
	meta.LastAnchorBlock = anchorHeight
	meta.HasAccepted = true
	order := make([]uint64, 0, len(r.order)+1)
	order = append(order, r.order...)
	meta.Order = append(order, sourceBlock)
	return meta
}

// snapshotMeta 生成当前状态快照（须在持锁时调用）
func (r *Registry) snapshotMeta() persistedMeta {
	submitters := make([]types.SubmitterID, 0, len(r.submitters))
	for s := range r.submitters {
		submitters = append(submitters, s)
	}
	return persistedMeta{
		Owner:             r.owner,
		Submitters:        submitters,
		LatestSourceBlock: r.latestSourceBlock,
		LastAnchorBlock:   r.lastAnchorBlock,
		HasAccepted:       r.hasAccepted,
		Paused:            r.paused,
		MinInterval:       r.minInterval,
		ZKModeEnabled:     r.zkModeEnabled,
		MinZKBlockNumber:  r.minZKBlockNumber,
		Order:             r.order,
	}
}

// ================== 读取操作 ==================

// GetCommitment 查询透明承诺
func (r *Registry) GetCommitment(ctx context.Context, sourceBlock uint64) (types.Commitment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.transparent[sourceBlock]
	return c, ok
}

// GetZKCommitment 查询ZK承诺
func (r *Registry) GetZKCommitment(ctx context.Context, sourceBlock uint64) (types.ZKCommitment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.zk[sourceBlock]
	return c, ok
}

// HasCommitment 检查透明承诺是否存在
func (r *Registry) HasCommitment(ctx context.Context, sourceBlock uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.transparent[sourceBlock]
	return ok
}

// HasZKCommitment 检查ZK承诺是否存在
func (r *Registry) HasZKCommitment(ctx context.Context, sourceBlock uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.zk[sourceBlock]
	return ok
}

// GetVerificationStats 获取统计信息
func (r *Registry) GetVerificationStats(ctx context.Context) types.VerificationStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return types.VerificationStats{
		Total:            uint64(len(r.transparent) + len(r.zk)),
		TransparentCount: uint64(len(r.transparent)),
		ZKCount:          uint64(len(r.zk)),
		ZKModeEnabled:    r.zkModeEnabled,
		MinZKBlockNumber: r.minZKBlockNumber,
	}
}

// LatestSourceBlock 当前单调水位线
func (r *Registry) LatestSourceBlock(ctx context.Context) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latestSourceBlock
}

// CommittedBlocks 按接受顺序返回所有已锚定的源链区块号
func (r *Registry) CommittedBlocks(ctx context.Context) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	blocks := make([]uint64, len(r.order))
	copy(blocks, r.order)
	return blocks
}

// VerifyMembership 根据已锚定的透明状态根校验Merkle包含性证明
func (r *Registry) VerifyMembership(ctx context.Context, sourceBlock uint64, proof types.MembershipProof) (bool, error) {
	r.mu.Lock()
	entry, ok := r.transparent[sourceBlock]
	r.mu.Unlock()
	if !ok {
		return false, ErrCommitmentNotFound
	}
	return merkle.Verify(entry.Value, proof), nil
}

// ================== 管理操作 ==================

// requireOwner 所有者校验（须在持锁时调用）
func (r *Registry) requireOwner(caller types.SubmitterID) error {
	if caller != r.owner {
		return ErrNotOwner
	}
	return nil
}

// AddSubmitter 添加授权提交者
func (r *Registry) AddSubmitter(ctx context.Context, caller, submitter types.SubmitterID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	r.submitters[submitter] = struct{}{}
	return r.st.saveMeta(ctx, r.snapshotMeta())
}

// RemoveSubmitter 移除授权提交者
func (r *Registry) RemoveSubmitter(ctx context.Context, caller, submitter types.SubmitterID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	delete(r.submitters, submitter)
	return r.st.saveMeta(ctx, r.snapshotMeta())
}

// SetMinCommitmentInterval 修改最小提交间隔，立即生效
func (r *Registry) SetMinCommitmentInterval(ctx context.Context, caller types.SubmitterID, interval uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	r.minInterval = interval
	return r.st.saveMeta(ctx, r.snapshotMeta())
}

// SetZKModeEnabled 切换ZK模式，立即生效
func (r *Registry) SetZKModeEnabled(ctx context.Context, caller types.SubmitterID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	r.zkModeEnabled = enabled
	return r.st.saveMeta(ctx, r.snapshotMeta())
}

// SetMinZKBlockNumber 修改ZK公开输入的最小区块号，立即生效
func (r *Registry) SetMinZKBlockNumber(ctx context.Context, caller types.SubmitterID, minBlock uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	r.minZKBlockNumber = minBlock
	return r.st.saveMeta(ctx, r.snapshotMeta())
}

// RotateVerifier 轮换证明验证器引用
func (r *Registry) RotateVerifier(ctx context.Context, caller types.SubmitterID, verifier anchor.ProofVerifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	r.verifier = verifier
	if r.logger != nil && verifier != nil {
		r.logger.Infof("验证器已轮换: fingerprint=%s", verifier.VKFingerprint().Hex())
	}
	return nil
}

// Pause 暂停所有提交操作
func (r *Registry) Pause(ctx context.Context, caller types.SubmitterID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	r.paused = true
	return r.st.saveMeta(ctx, r.snapshotMeta())
}

// Unpause 恢复提交操作
func (r *Registry) Unpause(ctx context.Context, caller types.SubmitterID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	r.paused = false
	return r.st.saveMeta(ctx, r.snapshotMeta())
}

// 编译期接口检查
var _ anchor.Registry = (*Registry)(nil)
