package relay

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	registryconfig "github.com/rayls/eth-anchor/internal/config/registry"
	relayconfig "github.com/rayls/eth-anchor/internal/config/relay"
	sourceconfig "github.com/rayls/eth-anchor/internal/config/source"
	"github.com/rayls/eth-anchor/internal/core/anchor/registry"
	"github.com/rayls/eth-anchor/internal/core/anchor/source"
	"github.com/rayls/eth-anchor/internal/core/infrastructure/event"
	eventInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/event"
	"github.com/rayls/eth-anchor/pkg/types"
)

// ================== 测试替身 ==================

var relaySubmitter = common.HexToAddress("0x00000000000000000000000000000000000000E1")

// acceptAllVerifier 恒通过的证明验证器
type acceptAllVerifier struct{}

func (acceptAllVerifier) Verify(proof [types.ProofElementCount]*big.Int, publicSignals [types.PublicSignalCount]*big.Int) (bool, error) {
	return true, nil
}

func (acceptAllVerifier) VKFingerprint() common.Hash {
	return common.BigToHash(big.NewInt(42))
}

// stubGenerator 返回预制证明束的生成器
type stubGenerator struct {
	commitment *big.Int
	proveCalls int
}

func (s *stubGenerator) Prove(ctx context.Context, inputs types.CircuitInputs) (*types.ProofBundle, error) {
	s.proveCalls++
	bundle := &types.ProofBundle{
		PublicSignals: [types.PublicSignalCount]*big.Int{
			new(big.Int).Set(s.commitment),
			new(big.Int).Set(inputs.BlockNumber),
			new(big.Int).Set(inputs.MinBlockNumber),
		},
		VKFingerprint: common.BigToHash(big.NewInt(42)),
	}
	for i := range bundle.ProofElements {
		bundle.ProofElements[i] = big.NewInt(int64(i) + 1)
	}
	return bundle, nil
}

func (s *stubGenerator) VerifyLocally(bundle *types.ProofBundle) (bool, error) {
	return bundle != nil, nil
}

func (s *stubGenerator) VKFingerprint() common.Hash {
	return common.BigToHash(big.NewInt(42))
}

// ================== 测试装置 ==================

type relayFixture struct {
	source    *source.Committer
	registry  *registry.Registry
	heights   *LocalHeightSource
	generator *stubGenerator
	orch      *Orchestrator
	bus       eventInterface.EventBus
}

func newRelayFixture(t *testing.T, zkEnabled bool) *relayFixture {
	t.Helper()
	ctx := context.Background()

	bus := event.New()
	// 出块间隔设到1小时，高度只通过Advance推进，测试可控
	heights := NewLocalHeightSource(time.Hour)

	committer, err := source.New(ctx, &sourceconfig.SourceOptions{BatchInterval: 10}, relaySubmitter, nil, bus, nil)
	require.NoError(t, err)

	regOptions := &registryconfig.RegistryOptions{
		InitialSubmitter:      relaySubmitter,
		MinCommitmentInterval: 5,
		ZKModeEnabled:         zkEnabled,
		MinZKBlockNumber:      0,
	}
	reg, err := registry.New(ctx, regOptions, acceptAllVerifier{}, heights, nil, nil, nil)
	require.NoError(t, err)

	generator := &stubGenerator{commitment: big.NewInt(777)}
	options := &relayconfig.RelayOptions{
		PollInterval:     50 * time.Millisecond,
		ProofTimeout:     5 * time.Second,
		RPCTimeout:       time.Second,
		TriggerQueueSize: 4,
	}
	orch := New(options, committer, reg, generator, relaySubmitter, 1, bus, nil, nil)

	return &relayFixture{
		source:    committer,
		registry:  reg,
		heights:   heights,
		generator: generator,
		orch:      orch,
		bus:       bus,
	}
}

func (f *relayFixture) commitSource(t *testing.T, block uint64) {
	t.Helper()
	root := common.BigToHash(big.NewInt(int64(block) + 500))
	require.NoError(t, f.source.GenerateStateRoot(context.Background(), relaySubmitter, root, block))
}

// ================== 单次中继 ==================

func TestRelayOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("透明模式提交成功", func(t *testing.T) {
		f := newRelayFixture(t, false)
		f.commitSource(t, 10)

		outcome, err := f.orch.RelayOnce(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, types.DispositionSubmitted, outcome.Disposition)
		assert.NotEmpty(t, outcome.OperationID)
		assert.True(t, f.registry.HasCommitment(ctx, 10))
		// 透明模式不生成证明
		assert.Zero(t, f.generator.proveCalls)

		src, _ := f.source.GetCommitment(ctx, 10)
		stored, found := f.registry.GetCommitment(ctx, 10)
		require.True(t, found)
		assert.Equal(t, src.StateRoot, stored.Value)
		assert.Equal(t, src.TxRef, stored.SourceTxRef)
	})

	t.Run("ZK模式生成并提交证明", func(t *testing.T) {
		f := newRelayFixture(t, true)
		f.commitSource(t, 10)

		outcome, err := f.orch.RelayOnce(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, types.DispositionSubmitted, outcome.Disposition)
		assert.Equal(t, 1, f.generator.proveCalls)
		assert.True(t, f.registry.HasZKCommitment(ctx, 10))
		assert.False(t, f.registry.HasCommitment(ctx, 10))

		stored, found := f.registry.GetZKCommitment(ctx, 10)
		require.True(t, found)
		assert.Equal(t, common.BigToHash(big.NewInt(777)), stored.Commitment)
		assert.True(t, stored.Verified)
	})

	t.Run("已锚定区块良性跳过", func(t *testing.T) {
		f := newRelayFixture(t, false)
		f.commitSource(t, 10)

		_, err := f.orch.RelayOnce(ctx, 10)
		require.NoError(t, err)

		outcome, err := f.orch.RelayOnce(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, types.DispositionSkipped, outcome.Disposition)
	})

	t.Run("间隔未满良性跳过", func(t *testing.T) {
		f := newRelayFixture(t, false)
		f.commitSource(t, 10)
		f.commitSource(t, 20)

		_, err := f.orch.RelayOnce(ctx, 10)
		require.NoError(t, err)

		// 锚定链高度未推进，最小间隔未满
		outcome, err := f.orch.RelayOnce(ctx, 20)
		require.NoError(t, err)
		assert.Equal(t, types.DispositionSkipped, outcome.Disposition)
		assert.False(t, f.registry.HasCommitment(ctx, 20))

		f.heights.Advance(5)
		outcome, err = f.orch.RelayOnce(ctx, 20)
		require.NoError(t, err)
		assert.Equal(t, types.DispositionSubmitted, outcome.Disposition)
	})

	t.Run("源链无提交记录属于失败", func(t *testing.T) {
		f := newRelayFixture(t, false)
		outcome, err := f.orch.RelayOnce(ctx, 10)
		assert.ErrorIs(t, err, ErrNoSourceCommitment)
		assert.Equal(t, types.DispositionFailed, outcome.Disposition)
	})
}

// ================== 触发队列 ==================

func TestTriggerQueue(t *testing.T) {
	t.Run("先进先出", func(t *testing.T) {
		q := newTriggerQueue(4)
		q.push(10)
		q.push(20)
		q.push(30)

		block, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, uint64(10), block)
		block, _ = q.pop()
		assert.Equal(t, uint64(20), block)
		block, _ = q.pop()
		assert.Equal(t, uint64(30), block)
		_, ok = q.pop()
		assert.False(t, ok)
	})

	t.Run("重复区块号去重", func(t *testing.T) {
		q := newTriggerQueue(4)
		q.push(10)
		deduped, _, _ := q.push(10)
		assert.True(t, deduped)
		assert.Equal(t, 1, q.len())
	})

	t.Run("队列满时丢弃最旧", func(t *testing.T) {
		q := newTriggerQueue(2)
		q.push(10)
		q.push(20)
		_, dropped, didDrop := q.push(30)
		require.True(t, didDrop)
		assert.Equal(t, uint64(10), dropped)
		assert.Equal(t, 2, q.len())

		block, _ := q.pop()
		assert.Equal(t, uint64(20), block)
	})

	t.Run("出队后可重新入队", func(t *testing.T) {
		q := newTriggerQueue(4)
		q.push(10)
		q.pop()
		deduped, _, _ := q.push(10)
		assert.False(t, deduped)
	})
}

// ================== 事件驱动与生命周期 ==================

func TestOrchestratorLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("未启动时Trigger报错", func(t *testing.T) {
		f := newRelayFixture(t, false)
		assert.ErrorIs(t, f.orch.Trigger(10), ErrNotStarted)
	})

	t.Run("重复启动报错", func(t *testing.T) {
		f := newRelayFixture(t, false)
		require.NoError(t, f.orch.Start(ctx))
		defer func() { _ = f.orch.Stop(ctx) }()
		assert.Error(t, f.orch.Start(ctx))
	})

	t.Run("源链提交事件驱动中继", func(t *testing.T) {
		f := newRelayFixture(t, false)
		require.NoError(t, f.orch.Start(ctx))
		defer func() { _ = f.orch.Stop(ctx) }()

		// 提交即发布事件，编排器订阅后自动中继
		f.commitSource(t, 10)

		require.Eventually(t, func() bool {
			return f.registry.HasCommitment(context.Background(), 10)
		}, 3*time.Second, 20*time.Millisecond)
	})

	t.Run("轮询兜底未中继的提交", func(t *testing.T) {
		f := newRelayFixture(t, false)
		// 先提交再启动：事件已错过，只能靠轮询发现
		f.commitSource(t, 10)

		require.NoError(t, f.orch.Start(ctx))
		defer func() { _ = f.orch.Stop(ctx) }()

		require.Eventually(t, func() bool {
			return f.registry.HasCommitment(context.Background(), 10)
		}, 3*time.Second, 20*time.Millisecond)
	})

	t.Run("停止后Trigger报错", func(t *testing.T) {
		f := newRelayFixture(t, false)
		require.NoError(t, f.orch.Start(ctx))
		require.NoError(t, f.orch.Stop(ctx))
		assert.ErrorIs(t, f.orch.Trigger(10), ErrNotStarted)
	})
}
