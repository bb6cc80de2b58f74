// Package relay 实现跨链中继编排器
//
// 🎯 **中继编排器 (Relay Orchestrator)**
//
// 中继是唯一的跨链参与者，串起完整的证明流水线：
//
//	源链提交 → 读取状态根 → (ZK模式: 生成证明 → 本地预验证) → 提交登记处
//
// 🏗️ **触发模型**
// - 单次执行：RelayOnce 直接驱动一条流水线
// - 定时轮询：按 PollInterval 检查源链最新提交
// - 事件驱动：订阅源链提交事件，经去重队列注入
//
// ⚠️ 同一时刻至多一条流水线在执行（pipelineMu 串行化），
// 触发队列满时丢弃最旧触发。
package relay

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	relayconfig "github.com/rayls/eth-anchor/internal/config/relay"
	"github.com/rayls/eth-anchor/internal/core/anchor/registry"
	"github.com/rayls/eth-anchor/internal/core/infrastructure/metrics"
	"github.com/rayls/eth-anchor/pkg/constants/events"
	"github.com/rayls/eth-anchor/pkg/interfaces/anchor"
	eventInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/event"
	logInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/log"
	"github.com/rayls/eth-anchor/pkg/types"
)

// ErrNotStarted 编排器未启动时注入触发
var ErrNotStarted = errors.New("编排器未启动")

// ErrNoSourceCommitment 目标区块在源链无提交记录
var ErrNoSourceCommitment = errors.New("源链无该区块的提交记录")

// Orchestrator 中继编排器实现
type Orchestrator struct {
	options *relayconfig.RelayOptions

	source    anchor.SourceCommitter
	registry  anchor.Registry
	generator anchor.ProofGenerator

	submitter   types.SubmitterID
	validatorID uint64

	queue   *triggerQueue
	events  eventInterface.EventBus
	logger  logInterface.Logger
	metrics *metrics.RelayMetrics

	// pipelineMu 串行化证明流水线
	pipelineMu sync.Mutex

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New 创建中继编排器
//
// generator 可为nil：此时只支持透明模式，ZK模式的触发会失败。
func New(
	options *relayconfig.RelayOptions,
	source anchor.SourceCommitter,
	reg anchor.Registry,
	generator anchor.ProofGenerator,
	submitter types.SubmitterID,
	validatorID uint64,
	bus eventInterface.EventBus,
	logger logInterface.Logger,
	relayMetrics *metrics.RelayMetrics,
) *Orchestrator {
	if options == nil {
		options = relayconfig.New(nil).GetOptions()
	}
	return &Orchestrator{
		options:     options,
		source:      source,
		registry:    reg,
		generator:   generator,
		submitter:   submitter,
		validatorID: validatorID,
		queue:       newTriggerQueue(options.TriggerQueueSize),
		events:      bus,
		logger:      logger,
		metrics:     relayMetrics,
	}
}

// ================== 单次中继 ==================

// RelayOnce 对指定源链区块执行一次完整的中继操作
func (o *Orchestrator) RelayOnce(ctx context.Context, sourceBlock uint64) (types.RelayOutcome, error) {
	o.pipelineMu.Lock()
	defer o.pipelineMu.Unlock()

	outcome := types.RelayOutcome{
		OperationID: uuid.NewString(),
		SourceBlock: sourceBlock,
	}

	result, err := o.runPipeline(ctx, sourceBlock, &outcome)
	outcome.Disposition = result
	outcome.CompletedAt = time.Now()
	if err != nil {
		outcome.ErrorKind = err.Error()
	}

	if o.metrics != nil {
		o.metrics.RelaysTotal.WithLabelValues(string(result)).Inc()
	}
	if o.logger != nil {
		switch result {
		case types.DispositionSubmitted:
			o.logger.Infof("中继完成: op=%s, block=%d, 证明耗时=%v",
				outcome.OperationID, sourceBlock, outcome.ProofLatency)
		case types.DispositionSkipped:
			o.logger.Debugf("中继跳过: op=%s, block=%d, 原因=%s",
				outcome.OperationID, sourceBlock, outcome.Detail)
		case types.DispositionFailed:
			o.logger.Errorf("中继失败: op=%s, block=%d, 错误=%v",
				outcome.OperationID, sourceBlock, err)
		}
	}
	return outcome, err
}

// runPipeline 执行流水线主体，返回处置结果
//
// 良性拒绝返回 (skipped, nil)，真正的失败返回 (failed, err)。
func (o *Orchestrator) runPipeline(ctx context.Context, sourceBlock uint64, outcome *types.RelayOutcome) (types.Disposition, error) {
	src, found := o.source.GetCommitment(ctx, sourceBlock)
	if !found {
		return types.DispositionFailed, fmt.Errorf("%w: block=%d", ErrNoSourceCommitment, sourceBlock)
	}

	// 提交前检查，避免为已锚定的区块白跑证明
	if o.registry.HasCommitment(ctx, sourceBlock) || o.registry.HasZKCommitment(ctx, sourceBlock) {
		outcome.Detail = "区块已锚定"
		return types.DispositionSkipped, nil
	}

	stats := o.registry.GetVerificationStats(ctx)
	var err error
	if stats.ZKModeEnabled {
		err = o.submitZK(ctx, src, sourceBlock, stats.MinZKBlockNumber, outcome)
	} else {
		err = o.submitTransparent(ctx, src, sourceBlock)
	}
	if err != nil {
		if registry.IsBenignRejection(err) {
			outcome.Detail = err.Error()
			return types.DispositionSkipped, nil
		}
		return types.DispositionFailed, err
	}
	return types.DispositionSubmitted, nil
}

func (o *Orchestrator) submitTransparent(ctx context.Context, src types.SourceCommitEvent, sourceBlock uint64) error {
	_, err := o.registry.SubmitTransparent(ctx, anchor.TransparentSubmission{
		Submitter:       o.submitter,
		StateRoot:       src.StateRoot,
		SourceBlock:     sourceBlock,
		SourceTimestamp: src.Timestamp,
		SourceTxRef:     src.TxRef,
	})
	if err != nil {
		return err
	}
	if o.metrics != nil {
		o.metrics.SubmissionsTotal.WithLabelValues("transparent").Inc()
	}
	return nil
}

func (o *Orchestrator) submitZK(ctx context.Context, src types.SourceCommitEvent, sourceBlock, minZKBlock uint64, outcome *types.RelayOutcome) error {
	if o.generator == nil {
		return errors.New("ZK模式已启用但证明生成器未配置")
	}

	salt, err := rand.Int(rand.Reader, ecc.BN254.ScalarField())
	if err != nil {
		return fmt.Errorf("生成盐失败: %w", err)
	}

	inputs := types.CircuitInputs{
		StateRoot:      new(big.Int).SetBytes(src.StateRoot[:]),
		ValidatorID:    new(big.Int).SetUint64(o.validatorID),
		Salt:           salt,
		BlockNumber:    new(big.Int).SetUint64(sourceBlock),
		MinBlockNumber: new(big.Int).SetUint64(minZKBlock),
	}

	proofCtx, cancel := context.WithTimeout(ctx, o.options.ProofTimeout)
	defer cancel()

	proofStart := time.Now()
	bundle, err := o.generator.Prove(proofCtx, inputs)
	outcome.ProofLatency = time.Since(proofStart)
	if o.metrics != nil {
		o.metrics.ProofDuration.Observe(outcome.ProofLatency.Seconds())
	}
	if err != nil {
		return fmt.Errorf("证明流水线失败: %w", err)
	}

	ok, err := o.generator.VerifyLocally(bundle)
	if err != nil {
		return fmt.Errorf("本地预验证出错: %w", err)
	}
	if !ok {
		return errors.New("本地预验证未通过，拒绝提交")
	}

	_, err = o.registry.SubmitZK(ctx, anchor.ZKSubmission{
		Submitter:       o.submitter,
		Commitment:      common.BigToHash(bundle.PublicSignals[0]),
		SourceBlock:     sourceBlock,
		SourceTimestamp: src.Timestamp,
		SourceTxRef:     src.TxRef,
		Proof:           bundle.ProofElements,
	})
	if err != nil {
		return err
	}
	if o.metrics != nil {
		o.metrics.SubmissionsTotal.WithLabelValues("zk").Inc()
	}
	return nil
}

// ================== 触发与轮询 ==================

// Trigger 注入一次中继触发（事件驱动模式）
func (o *Orchestrator) Trigger(sourceBlock uint64) error {
	o.mu.Lock()
	started := o.started
	o.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	o.enqueue(sourceBlock)
	return nil
}

func (o *Orchestrator) enqueue(sourceBlock uint64) {
	deduped, dropped, didDrop := o.queue.push(sourceBlock)
	if didDrop {
		if o.metrics != nil {
			o.metrics.TriggerQueueDropped.Inc()
		}
		if o.logger != nil {
			o.logger.Warnf("触发队列已满，丢弃最旧触发: block=%d", dropped)
		}
	}
	if deduped && o.logger != nil {
		o.logger.Debugf("触发去重: block=%d 已在队列中", sourceBlock)
	}
}

// onSourceCommit 源链提交事件回调
func (o *Orchestrator) onSourceCommit(ev types.SourceCommitEvent) {
	_ = o.Trigger(ev.BlockNumber)
}

// Start 启动轮询循环与触发队列消费
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return errors.New("编排器已启动")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.started = true

	if o.events != nil {
		if err := o.events.SubscribeAsync(eventInterface.EventType(events.SourceStateRootCommitted), o.onSourceCommit, true); err != nil {
			cancel()
			o.started = false
			return fmt.Errorf("订阅源链提交事件失败: %w", err)
		}
	}

	o.wg.Add(1)
	go o.run(runCtx)

	if o.logger != nil {
		o.logger.Infof("中继编排器已启动: 轮询间隔=%v, 队列容量=%d",
			o.options.PollInterval, o.options.TriggerQueueSize)
	}
	return nil
}

// Stop 停止编排器，等待在途流水线结束
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	if !o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = false
	cancel := o.cancel
	o.mu.Unlock()

	if o.events != nil {
		_ = o.events.Unsubscribe(eventInterface.EventType(events.SourceStateRootCommitted), o.onSourceCommit)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("等待编排器停止超时: %w", ctx.Err())
	case <-done:
	}

	if o.logger != nil {
		o.logger.Infof("中继编排器已停止")
	}
	return nil
}

// run 后台循环：轮询 + 消费触发队列
func (o *Orchestrator) run(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.options.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.pollOnce(ctx)
			o.drainQueue(ctx)
		case <-o.queue.wait():
			o.drainQueue(ctx)
		}
	}
}

// pollOnce 轮询源链最新提交，未锚定则入队
func (o *Orchestrator) pollOnce(ctx context.Context) {
	latest, found := o.source.LatestCommitted(ctx)
	if !found {
		return
	}
	if o.registry.HasCommitment(ctx, latest.BlockNumber) || o.registry.HasZKCommitment(ctx, latest.BlockNumber) {
		return
	}
	o.enqueue(latest.BlockNumber)
}

// drainQueue 逐个消费队列中的触发
func (o *Orchestrator) drainQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		block, ok := o.queue.pop()
		if !ok {
			return
		}
		_, _ = o.RelayOnce(ctx, block)
	}
}

// 编译期接口检查
var _ anchor.Orchestrator = (*Orchestrator)(nil)
