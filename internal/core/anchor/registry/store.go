package registry

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/storage"
	"github.com/rayls/eth-anchor/pkg/types"
)

// 存储键前缀
var (
	keyPrefixTransparent = []byte("registry/t/")
	keyPrefixZK          = []byte("registry/z/")
	keyMeta              = []byte("registry/meta")
)

// persistedMeta 登记处的可变状态快照
type persistedMeta struct {
	Owner             types.SubmitterID   `json:"owner"`
	Submitters        []types.SubmitterID `json:"submitters"`
	LatestSourceBlock uint64              `json:"latest_source_block"`
	LastAnchorBlock   uint64              `json:"last_anchor_block"`
	HasAccepted       bool                `json:"has_accepted"`
	Paused            bool                `json:"paused"`
	MinInterval       uint64              `json:"min_interval"`
	ZKModeEnabled     bool                `json:"zk_mode_enabled"`
	MinZKBlockNumber  uint64              `json:"min_zk_block_number"`
	Order             []uint64            `json:"order"`
}

// store 登记处的持久化封装
//
// kv 为nil时退化为纯内存模式（测试用），所有写入为空操作。
type store struct {
	kv storage.KVStore
}

func blockKey(prefix []byte, sourceBlock uint64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], sourceBlock)
	return key
}

func (s *store) saveTransparent(ctx context.Context, c types.Commitment) error {
	if s.kv == nil {
		return nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("序列化透明承诺失败: %w", err)
	}
	return s.kv.Set(ctx, blockKey(keyPrefixTransparent, c.SourceBlock), data)
}

func (s *store) saveZK(ctx context.Context, c types.ZKCommitment) error {
	if s.kv == nil {
		return nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("序列化ZK承诺失败: %w", err)
	}
	return s.kv.Set(ctx, blockKey(keyPrefixZK, c.SourceBlock), data)
}

func (s *store) saveMeta(ctx context.Context, meta persistedMeta) error {
	if s.kv == nil {
		return nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("序列化登记处状态失败: %w", err)
	}
	return s.kv.Set(ctx, keyMeta, data)
}

// load 恢复登记处状态
//
// 元数据缺失时仍返回扫描到的条目（meta为nil）：承诺条目与状态快照
// 分两次写入，条目永远不能因快照缺失而被悄悄丢弃。
func (s *store) load(ctx context.Context) (*persistedMeta, map[uint64]types.Commitment, map[uint64]types.ZKCommitment, error) {
	transparent := make(map[uint64]types.Commitment)
	zk := make(map[uint64]types.ZKCommitment)

	if s.kv == nil {
		return nil, transparent, zk, nil
	}

	metaData, err := s.kv.Get(ctx, keyMeta)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("读取登记处状态失败: %w", err)
	}

	var meta *persistedMeta
	if metaData != nil {
		meta = &persistedMeta{}
		if err := json.Unmarshal(metaData, meta); err != nil {
			return nil, nil, nil, fmt.Errorf("解析登记处状态失败: %w", err)
		}
	}

	var iterErr error
	err = s.kv.IteratePrefix(ctx, keyPrefixTransparent, func(key, value []byte) bool {
		var c types.Commitment
		if iterErr = json.Unmarshal(value, &c); iterErr != nil {
			return false
		}
		transparent[c.SourceBlock] = c
		return true
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("遍历透明承诺失败: %w", err)
	}
	if iterErr != nil {
		return nil, nil, nil, fmt.Errorf("解析透明承诺失败: %w", iterErr)
	}

	err = s.kv.IteratePrefix(ctx, keyPrefixZK, func(key, value []byte) bool {
		var c types.ZKCommitment
		if iterErr = json.Unmarshal(value, &c); iterErr != nil {
			return false
		}
		zk[c.SourceBlock] = c
		return true
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("遍历ZK承诺失败: %w", err)
	}
	if iterErr != nil {
		return nil, nil, nil, fmt.Errorf("解析ZK承诺失败: %w", iterErr)
	}

	return meta, transparent, zk, nil
}
