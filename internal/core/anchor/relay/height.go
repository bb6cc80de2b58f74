package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/rayls/eth-anchor/pkg/interfaces/anchor"
)

// EthHeightSource 基于以太坊RPC的锚定链高度源
type EthHeightSource struct {
	client  *ethclient.Client
	timeout time.Duration
}

// NewEthHeightSource 连接锚定链RPC
func NewEthHeightSource(rpcURL string, rpcTimeout time.Duration) (*EthHeightSource, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("连接锚定链RPC失败: %w", err)
	}
	return &EthHeightSource{client: client, timeout: rpcTimeout}, nil
}

// CurrentHeight 查询当前锚定链区块高度
func (s *EthHeightSource) CurrentHeight(ctx context.Context) (uint64, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	height, err := s.client.BlockNumber(callCtx)
	if err != nil {
		return 0, fmt.Errorf("查询锚定链高度失败: %w", err)
	}
	return height, nil
}

// Close 关闭RPC连接
func (s *EthHeightSource) Close() {
	s.client.Close()
}

// LocalHeightSource 本地模拟的锚定链高度源
//
// 未配置外部RPC时使用：高度随墙钟时间按固定出块间隔推进，
// 另可通过 Advance 手动推进（测试与演示场景）。
type LocalHeightSource struct {
	mu        sync.Mutex
	genesis   time.Time
	blockTime time.Duration
	offset    uint64
}

// NewLocalHeightSource 创建本地高度源，blockTime为模拟出块间隔
func NewLocalHeightSource(blockTime time.Duration) *LocalHeightSource {
	if blockTime <= 0 {
		blockTime = time.Second
	}
	return &LocalHeightSource{
		genesis:   time.Now(),
		blockTime: blockTime,
	}
}

// CurrentHeight 当前模拟高度
func (s *LocalHeightSource) CurrentHeight(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := uint64(time.Since(s.genesis) / s.blockTime)
	return elapsed + s.offset, nil
}

// Advance 手动推进高度
func (s *LocalHeightSource) Advance(blocks uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset += blocks
}

// 编译期接口检查
var (
	_ anchor.HeightSource = (*EthHeightSource)(nil)
	_ anchor.HeightSource = (*LocalHeightSource)(nil)
)
