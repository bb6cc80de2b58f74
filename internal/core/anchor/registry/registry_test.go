package registry

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	registryconfig "github.com/rayls/eth-anchor/internal/config/registry"
	"github.com/rayls/eth-anchor/internal/core/anchor/merkle"
	"github.com/rayls/eth-anchor/pkg/interfaces/anchor"
	"github.com/rayls/eth-anchor/pkg/types"
)

// ================== 测试替身 ==================

// stubHeights 可控的锚定链高度源
type stubHeights struct {
	mu     sync.Mutex
	height uint64
	err    error
}

func (s *stubHeights) CurrentHeight(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height, s.err
}

func (s *stubHeights) advance(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.height += n
}

// stubVerifier 可控的证明验证器
type stubVerifier struct {
	ok          bool
	err         error
	fingerprint common.Hash

	lastProof   [types.ProofElementCount]*big.Int
	lastSignals [types.PublicSignalCount]*big.Int
}

func (s *stubVerifier) Verify(proof [types.ProofElementCount]*big.Int, publicSignals [types.PublicSignalCount]*big.Int) (bool, error) {
	s.lastProof = proof
	s.lastSignals = publicSignals
	return s.ok, s.err
}

func (s *stubVerifier) VKFingerprint() common.Hash {
	return s.fingerprint
}

// memKV 纯内存的键值存储，用于持久化恢复测试
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[string(key)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *memKV) Set(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[string(key)] = stored
	return nil
}

func (m *memKV) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memKV) Has(ctx context.Context, key []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

func (m *memKV) IteratePrefix(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range m.data {
		if strings.HasPrefix(key, string(prefix)) {
			if !fn([]byte(key), value) {
				break
			}
		}
	}
	return nil
}

func (m *memKV) Close() error { return nil }

// metaFailKV 在状态快照键上注入写入失败，其余写入正常
type metaFailKV struct {
	*memKV
	mu       sync.Mutex
	failMeta bool
}

func (m *metaFailKV) Set(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	fail := m.failMeta
	m.mu.Unlock()
	if fail && string(key) == string(keyMeta) {
		return errors.New("磁盘写入失败")
	}
	return m.memKV.Set(ctx, key, value)
}

func (m *metaFailKV) setFailMeta(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failMeta = fail
}

// ================== 测试工具 ==================

var (
	testOwner    = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	testOutsider = common.HexToAddress("0x00000000000000000000000000000000000000B2")
)

func testOptions() *registryconfig.RegistryOptions {
	return &registryconfig.RegistryOptions{
		InitialSubmitter:      testOwner,
		MinCommitmentInterval: 5,
		ZKModeEnabled:         false,
		MinZKBlockNumber:      0,
	}
}

func newTestRegistry(t *testing.T, options *registryconfig.RegistryOptions, verifier anchor.ProofVerifier, heights anchor.HeightSource) *Registry {
	t.Helper()
	r, err := New(context.Background(), options, verifier, heights, nil, nil, nil)
	require.NoError(t, err)
	return r
}

func transparentSub(sourceBlock uint64) anchor.TransparentSubmission {
	return anchor.TransparentSubmission{
		Submitter:       testOwner,
		StateRoot:       common.BigToHash(big.NewInt(int64(sourceBlock) + 1000)),
		SourceBlock:     sourceBlock,
		SourceTimestamp: 1700000000 + sourceBlock,
	}
}

func zkSub(sourceBlock uint64) anchor.ZKSubmission {
	sub := anchor.ZKSubmission{
		Submitter:       testOwner,
		Commitment:      common.BigToHash(big.NewInt(int64(sourceBlock) + 2000)),
		SourceBlock:     sourceBlock,
		SourceTimestamp: 1700000000 + sourceBlock,
	}
	for i := range sub.Proof {
		sub.Proof[i] = big.NewInt(int64(i) + 1)
	}
	return sub
}

// ================== 透明提交 ==================

func TestSubmitTransparent(t *testing.T) {
	ctx := context.Background()

	t.Run("首次提交成功并更新水位线", func(t *testing.T) {
		heights := &stubHeights{height: 100}
		r := newTestRegistry(t, testOptions(), nil, heights)

		entry, err := r.SubmitTransparent(ctx, transparentSub(10))
		require.NoError(t, err)
		assert.Equal(t, uint64(10), entry.SourceBlock)
		assert.Equal(t, uint64(100), entry.AnchorBlock)
		assert.Equal(t, uint64(10), r.LatestSourceBlock(ctx))

		stored, found := r.GetCommitment(ctx, 10)
		require.True(t, found)
		assert.Equal(t, entry.Value, stored.Value)
	})

	t.Run("区块号必须严格递增", func(t *testing.T) {
		heights := &stubHeights{height: 100}
		r := newTestRegistry(t, testOptions(), nil, heights)

		_, err := r.SubmitTransparent(ctx, transparentSub(10))
		require.NoError(t, err)

		heights.advance(10)
		_, err = r.SubmitTransparent(ctx, transparentSub(10))
		assert.ErrorIs(t, err, ErrBlockAlreadyAnchored)

		_, err = r.SubmitTransparent(ctx, transparentSub(5))
		assert.ErrorIs(t, err, ErrNonMonotonic)

		// 拒绝不改变状态
		assert.Equal(t, uint64(10), r.LatestSourceBlock(ctx))
		assert.False(t, r.HasCommitment(ctx, 5))
	})

	t.Run("区块号零被拒绝", func(t *testing.T) {
		r := newTestRegistry(t, testOptions(), nil, &stubHeights{height: 100})
		_, err := r.SubmitTransparent(ctx, transparentSub(0))
		assert.ErrorIs(t, err, ErrNonMonotonic)
	})

	t.Run("零状态根被拒绝", func(t *testing.T) {
		r := newTestRegistry(t, testOptions(), nil, &stubHeights{height: 100})
		sub := transparentSub(10)
		sub.StateRoot = common.Hash{}
		_, err := r.SubmitTransparent(ctx, sub)
		assert.ErrorIs(t, err, ErrZeroStateRoot)
	})

	t.Run("未授权提交者被拒绝", func(t *testing.T) {
		r := newTestRegistry(t, testOptions(), nil, &stubHeights{height: 100})
		sub := transparentSub(10)
		sub.Submitter = testOutsider
		_, err := r.SubmitTransparent(ctx, sub)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("最小间隔未满被拒绝", func(t *testing.T) {
		heights := &stubHeights{height: 100}
		r := newTestRegistry(t, testOptions(), nil, heights)

		_, err := r.SubmitTransparent(ctx, transparentSub(10))
		require.NoError(t, err)

		// 高度只前进4，不足最小间隔5
		heights.advance(4)
		_, err = r.SubmitTransparent(ctx, transparentSub(20))
		assert.ErrorIs(t, err, ErrIntervalNotElapsed)

		heights.advance(1)
		_, err = r.SubmitTransparent(ctx, transparentSub(20))
		assert.NoError(t, err)
	})

	t.Run("首次提交不受间隔约束", func(t *testing.T) {
		r := newTestRegistry(t, testOptions(), nil, &stubHeights{height: 0})
		_, err := r.SubmitTransparent(ctx, transparentSub(10))
		assert.NoError(t, err)
	})

	t.Run("高度源故障导致提交失败", func(t *testing.T) {
		heights := &stubHeights{err: errors.New("rpc不可达")}
		r := newTestRegistry(t, testOptions(), nil, heights)
		_, err := r.SubmitTransparent(ctx, transparentSub(10))
		assert.Error(t, err)
		assert.False(t, r.HasCommitment(ctx, 10))
	})
}

// ================== ZK提交 ==================

func TestSubmitZK(t *testing.T) {
	ctx := context.Background()

	zkOptions := func() *registryconfig.RegistryOptions {
		options := testOptions()
		options.ZKModeEnabled = true
		options.MinZKBlockNumber = 5
		return options
	}

	t.Run("ZK模式未启用被拒绝", func(t *testing.T) {
		r := newTestRegistry(t, testOptions(), &stubVerifier{ok: true}, &stubHeights{height: 100})
		_, err := r.SubmitZK(ctx, zkSub(10))
		assert.ErrorIs(t, err, ErrZKModeDisabled)
	})

	t.Run("有效证明被接受", func(t *testing.T) {
		v := &stubVerifier{ok: true}
		heights := &stubHeights{height: 100}
		r := newTestRegistry(t, zkOptions(), v, heights)

		sub := zkSub(10)
		entry, err := r.SubmitZK(ctx, sub)
		require.NoError(t, err)
		assert.True(t, entry.Verified)
		assert.Equal(t, uint64(10), r.LatestSourceBlock(ctx))

		// 公开信号由登记处构造：[commitment, sourceBlock, minZKBlockNumber]
		require.NotNil(t, v.lastSignals[0])
		assert.Equal(t, new(big.Int).SetBytes(sub.Commitment[:]), v.lastSignals[0])
		assert.Equal(t, uint64(10), v.lastSignals[1].Uint64())
		assert.Equal(t, uint64(5), v.lastSignals[2].Uint64())
	})

	t.Run("无效证明不触碰存储", func(t *testing.T) {
		r := newTestRegistry(t, zkOptions(), &stubVerifier{ok: false}, &stubHeights{height: 100})

		_, err := r.SubmitZK(ctx, zkSub(10))
		assert.ErrorIs(t, err, ErrInvalidProof)
		assert.False(t, r.HasZKCommitment(ctx, 10))
		assert.Equal(t, uint64(0), r.LatestSourceBlock(ctx))
	})

	t.Run("验证器故障与证明无效可区分", func(t *testing.T) {
		r := newTestRegistry(t, zkOptions(), &stubVerifier{err: errors.New("密钥损坏")}, &stubHeights{height: 100})

		_, err := r.SubmitZK(ctx, zkSub(10))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidProof)
	})

	t.Run("验证器未配置被拒绝", func(t *testing.T) {
		r := newTestRegistry(t, zkOptions(), nil, &stubHeights{height: 100})
		_, err := r.SubmitZK(ctx, zkSub(10))
		assert.ErrorIs(t, err, ErrNoVerifier)
	})

	t.Run("零承诺被拒绝", func(t *testing.T) {
		r := newTestRegistry(t, zkOptions(), &stubVerifier{ok: true}, &stubHeights{height: 100})
		sub := zkSub(10)
		sub.Commitment = common.Hash{}
		_, err := r.SubmitZK(ctx, sub)
		assert.ErrorIs(t, err, ErrZeroCommitment)
	})

	t.Run("输入校验先于模式校验", func(t *testing.T) {
		// ZK模式未启用时零承诺依旧按输入错误报告
		r := newTestRegistry(t, testOptions(), &stubVerifier{ok: true}, &stubHeights{height: 100})
		sub := zkSub(10)
		sub.Commitment = common.Hash{}
		_, err := r.SubmitZK(ctx, sub)
		assert.ErrorIs(t, err, ErrZeroCommitment)
	})

	t.Run("同一区块跨模式互斥", func(t *testing.T) {
		heights := &stubHeights{height: 100}
		r := newTestRegistry(t, zkOptions(), &stubVerifier{ok: true}, heights)

		_, err := r.SubmitTransparent(ctx, transparentSub(10))
		require.NoError(t, err)

		heights.advance(10)
		_, err = r.SubmitZK(ctx, zkSub(10))
		assert.ErrorIs(t, err, ErrBlockAlreadyAnchored)

		// 两种模式共享同一条水位线
		_, err = r.SubmitZK(ctx, zkSub(20))
		require.NoError(t, err)

		heights.advance(10)
		_, err = r.SubmitTransparent(ctx, transparentSub(15))
		assert.ErrorIs(t, err, ErrNonMonotonic)
	})

	t.Run("统计同时计入两种模式", func(t *testing.T) {
		heights := &stubHeights{height: 100}
		r := newTestRegistry(t, zkOptions(), &stubVerifier{ok: true}, heights)

		_, err := r.SubmitTransparent(ctx, transparentSub(10))
		require.NoError(t, err)
		heights.advance(10)
		_, err = r.SubmitZK(ctx, zkSub(20))
		require.NoError(t, err)

		stats := r.GetVerificationStats(ctx)
		assert.Equal(t, uint64(2), stats.Total)
		assert.Equal(t, uint64(1), stats.TransparentCount)
		assert.Equal(t, uint64(1), stats.ZKCount)
		assert.True(t, stats.ZKModeEnabled)
	})
}

// ================== 暂停与管理操作 ==================

func TestAdminOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("暂停拦截提交但读取可用", func(t *testing.T) {
		heights := &stubHeights{height: 100}
		r := newTestRegistry(t, testOptions(), nil, heights)

		_, err := r.SubmitTransparent(ctx, transparentSub(10))
		require.NoError(t, err)

		require.NoError(t, r.Pause(ctx, testOwner))

		heights.advance(10)
		_, err = r.SubmitTransparent(ctx, transparentSub(20))
		assert.ErrorIs(t, err, ErrPaused)

		// 暂停期间读取不受影响
		assert.True(t, r.HasCommitment(ctx, 10))
		assert.Equal(t, uint64(10), r.LatestSourceBlock(ctx))

		require.NoError(t, r.Unpause(ctx, testOwner))
		_, err = r.SubmitTransparent(ctx, transparentSub(20))
		assert.NoError(t, err)
	})

	t.Run("非所有者不能执行管理操作", func(t *testing.T) {
		r := newTestRegistry(t, testOptions(), nil, &stubHeights{height: 100})

		assert.ErrorIs(t, r.Pause(ctx, testOutsider), ErrNotOwner)
		assert.ErrorIs(t, r.AddSubmitter(ctx, testOutsider, testOutsider), ErrNotOwner)
		assert.ErrorIs(t, r.SetZKModeEnabled(ctx, testOutsider, true), ErrNotOwner)
		assert.ErrorIs(t, r.SetMinCommitmentInterval(ctx, testOutsider, 1), ErrNotOwner)
	})

	t.Run("添加与移除提交者", func(t *testing.T) {
		heights := &stubHeights{height: 100}
		r := newTestRegistry(t, testOptions(), nil, heights)

		require.NoError(t, r.AddSubmitter(ctx, testOwner, testOutsider))
		sub := transparentSub(10)
		sub.Submitter = testOutsider
		_, err := r.SubmitTransparent(ctx, sub)
		assert.NoError(t, err)

		require.NoError(t, r.RemoveSubmitter(ctx, testOwner, testOutsider))
		heights.advance(10)
		sub = transparentSub(20)
		sub.Submitter = testOutsider
		_, err = r.SubmitTransparent(ctx, sub)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("间隔调整立即生效", func(t *testing.T) {
		heights := &stubHeights{height: 100}
		r := newTestRegistry(t, testOptions(), nil, heights)

		_, err := r.SubmitTransparent(ctx, transparentSub(10))
		require.NoError(t, err)

		heights.advance(2)
		_, err = r.SubmitTransparent(ctx, transparentSub(20))
		assert.ErrorIs(t, err, ErrIntervalNotElapsed)

		require.NoError(t, r.SetMinCommitmentInterval(ctx, testOwner, 1))
		_, err = r.SubmitTransparent(ctx, transparentSub(20))
		assert.NoError(t, err)
	})

	t.Run("ZK模式开关与最小区块号调整", func(t *testing.T) {
		v := &stubVerifier{ok: true}
		r := newTestRegistry(t, testOptions(), v, &stubHeights{height: 100})

		_, err := r.SubmitZK(ctx, zkSub(10))
		assert.ErrorIs(t, err, ErrZKModeDisabled)

		require.NoError(t, r.SetZKModeEnabled(ctx, testOwner, true))
		require.NoError(t, r.SetMinZKBlockNumber(ctx, testOwner, 7))

		_, err = r.SubmitZK(ctx, zkSub(10))
		require.NoError(t, err)
		assert.Equal(t, uint64(7), v.lastSignals[2].Uint64())
	})

	t.Run("验证器轮换后使用新验证器", func(t *testing.T) {
		oldVerifier := &stubVerifier{ok: false}
		newVerifier := &stubVerifier{ok: true}
		options := testOptions()
		options.ZKModeEnabled = true
		r := newTestRegistry(t, options, oldVerifier, &stubHeights{height: 100})

		_, err := r.SubmitZK(ctx, zkSub(10))
		assert.ErrorIs(t, err, ErrInvalidProof)

		require.NoError(t, r.RotateVerifier(ctx, testOwner, newVerifier))
		_, err = r.SubmitZK(ctx, zkSub(10))
		assert.NoError(t, err)
	})
}

// ================== 持久化恢复 ==================

func TestPersistenceRecovery(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	heights := &stubHeights{height: 100}

	options := testOptions()
	options.ZKModeEnabled = true

	r1, err := New(ctx, options, &stubVerifier{ok: true}, heights, kv, nil, nil)
	require.NoError(t, err)

	_, err = r1.SubmitTransparent(ctx, transparentSub(10))
	require.NoError(t, err)
	heights.advance(10)
	_, err = r1.SubmitZK(ctx, zkSub(20))
	require.NoError(t, err)
	require.NoError(t, r1.AddSubmitter(ctx, testOwner, testOutsider))
	require.NoError(t, r1.SetMinCommitmentInterval(ctx, testOwner, 3))

	// 用同一存储重建，模拟进程重启
	r2, err := New(ctx, nil, &stubVerifier{ok: true}, heights, kv, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(20), r2.LatestSourceBlock(ctx))
	assert.True(t, r2.HasCommitment(ctx, 10))
	assert.True(t, r2.HasZKCommitment(ctx, 20))
	assert.Equal(t, []uint64{10, 20}, r2.CommittedBlocks(ctx))

	// 授权名单与间隔配置同样恢复
	heights.advance(10)
	sub := transparentSub(30)
	sub.Submitter = testOutsider
	_, err = r2.SubmitTransparent(ctx, sub)
	assert.NoError(t, err)

	// 水位线恢复后继续约束旧区块
	heights.advance(10)
	_, err = r2.SubmitTransparent(ctx, transparentSub(15))
	assert.ErrorIs(t, err, ErrNonMonotonic)
}

// ================== 持久化失败的原子性 ==================

func TestPersistFailureAtomicity(t *testing.T) {
	ctx := context.Background()

	t.Run("状态快照写入失败时提交整体失败", func(t *testing.T) {
		kv := &metaFailKV{memKV: newMemKV()}
		heights := &stubHeights{height: 100}
		r, err := New(ctx, testOptions(), nil, heights, kv, nil, nil)
		require.NoError(t, err)

		kv.setFailMeta(true)
		_, err = r.SubmitTransparent(ctx, transparentSub(10))
		require.Error(t, err)

		// 内存状态不变：没有条目、水位线不前进
		assert.False(t, r.HasCommitment(ctx, 10))
		assert.Equal(t, uint64(0), r.LatestSourceBlock(ctx))
		assert.Empty(t, r.CommittedBlocks(ctx))

		// 故障恢复后同一区块可以重试成功
		kv.setFailMeta(false)
		entry, err := r.SubmitTransparent(ctx, transparentSub(10))
		require.NoError(t, err)
		assert.Equal(t, uint64(10), entry.SourceBlock)
		assert.Equal(t, uint64(10), r.LatestSourceBlock(ctx))
	})

	t.Run("ZK提交的快照失败同样原子", func(t *testing.T) {
		kv := &metaFailKV{memKV: newMemKV()}
		options := testOptions()
		options.ZKModeEnabled = true
		r, err := New(ctx, options, &stubVerifier{ok: true}, &stubHeights{height: 100}, kv, nil, nil)
		require.NoError(t, err)

		kv.setFailMeta(true)
		_, err = r.SubmitZK(ctx, zkSub(10))
		require.Error(t, err)
		assert.False(t, r.HasZKCommitment(ctx, 10))
		assert.Equal(t, uint64(0), r.LatestSourceBlock(ctx))

		kv.setFailMeta(false)
		_, err = r.SubmitZK(ctx, zkSub(10))
		assert.NoError(t, err)
	})

	t.Run("元数据缺失时条目不被丢弃且水位线重建", func(t *testing.T) {
		kv := newMemKV()
		heights := &stubHeights{height: 100}
		r1, err := New(ctx, testOptions(), nil, heights, kv, nil, nil)
		require.NoError(t, err)

		_, err = r1.SubmitTransparent(ctx, transparentSub(10))
		require.NoError(t, err)
		heights.advance(10)
		_, err = r1.SubmitTransparent(ctx, transparentSub(20))
		require.NoError(t, err)

		// 模拟快照丢失后的重启
		require.NoError(t, kv.Delete(ctx, keyMeta))
		r2, err := New(ctx, testOptions(), nil, heights, kv, nil, nil)
		require.NoError(t, err)

		assert.True(t, r2.HasCommitment(ctx, 10))
		assert.True(t, r2.HasCommitment(ctx, 20))
		assert.Equal(t, uint64(20), r2.LatestSourceBlock(ctx))
		assert.Equal(t, []uint64{10, 20}, r2.CommittedBlocks(ctx))

		// 重建后的水位线继续约束旧区块
		heights.advance(10)
		_, err = r2.SubmitTransparent(ctx, transparentSub(20))
		assert.ErrorIs(t, err, ErrBlockAlreadyAnchored)
		_, err = r2.SubmitTransparent(ctx, transparentSub(15))
		assert.ErrorIs(t, err, ErrNonMonotonic)
		_, err = r2.SubmitTransparent(ctx, transparentSub(30))
		assert.NoError(t, err)
	})
}

// ================== 包含性证明 ==================

func TestVerifyMembership(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t, testOptions(), nil, &stubHeights{height: 100})

	leaves := []common.Hash{
		common.BigToHash(big.NewInt(101)),
		common.BigToHash(big.NewInt(102)),
		common.BigToHash(big.NewInt(103)),
		common.BigToHash(big.NewInt(104)),
		common.BigToHash(big.NewInt(105)),
	}
	levels := merkle.BuildTree(leaves)
	root := levels[len(levels)-1][0]

	sub := transparentSub(10)
	sub.StateRoot = root
	_, err := r.SubmitTransparent(ctx, sub)
	require.NoError(t, err)

	t.Run("有效证明通过", func(t *testing.T) {
		for i := range leaves {
			proof := merkle.ProofForLeaf(levels, uint64(i))
			ok, err := r.VerifyMembership(ctx, 10, proof)
			require.NoError(t, err)
			assert.True(t, ok, "叶子 %d 的证明应当通过", i)
		}
	})

	t.Run("篡改叶子后证明失败", func(t *testing.T) {
		proof := merkle.ProofForLeaf(levels, 2)
		proof.Leaf = common.BigToHash(big.NewInt(999))
		ok, err := r.VerifyMembership(ctx, 10, proof)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("未锚定区块返回错误", func(t *testing.T) {
		proof := merkle.ProofForLeaf(levels, 0)
		_, err := r.VerifyMembership(ctx, 99, proof)
		assert.ErrorIs(t, err, ErrCommitmentNotFound)
	})
}

// ================== 良性拒绝分类 ==================

func TestIsBenignRejection(t *testing.T) {
	assert.True(t, IsBenignRejection(ErrBlockAlreadyAnchored))
	assert.True(t, IsBenignRejection(ErrNonMonotonic))
	assert.True(t, IsBenignRejection(ErrIntervalNotElapsed))

	assert.False(t, IsBenignRejection(ErrNotAuthorized))
	assert.False(t, IsBenignRejection(ErrInvalidProof))
	assert.False(t, IsBenignRejection(ErrPaused))
	assert.False(t, IsBenignRejection(nil))
}
