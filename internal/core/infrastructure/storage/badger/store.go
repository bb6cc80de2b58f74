// Package badger 提供基于BadgerDB的键值存储实现
//
// 💾 **持久化层 (Persistence Layer)**
//
// 登记处条目、源链提交记录和信箱消息都落在这里，
// 进程重启后按键前缀恢复各模块状态。
package badger

import (
	"context"
	"fmt"
	"os"

	badgerdb "github.com/dgraph-io/badger/v3"

	badgerconfig "github.com/rayls/eth-anchor/internal/config/storage/badger"
	"github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/storage"
)

// Store 基于BadgerDB的KVStore实现
type Store struct {
	db *badgerdb.DB
}

// New 打开BadgerDB并返回存储实例
func New(options *badgerconfig.BadgerOptions) (*Store, error) {
	if options == nil {
		options = badgerconfig.New(nil).GetOptions()
	}

	opts := badgerdb.DefaultOptions(options.Dir).
		WithInMemory(options.InMemory).
		WithSyncWrites(options.SyncWrites).
		WithValueLogFileSize(options.ValueLogFileSize).
		WithNumCompactors(options.NumCompactors).
		WithLogger(nil) // BadgerDB自带日志太吵，统一走zap

	if options.InMemory {
		opts.Dir = ""
		opts.ValueDir = ""
	} else {
		if err := os.MkdirAll(options.Dir, 0700); err != nil {
			return nil, fmt.Errorf("创建存储目录失败: %w", err)
		}
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开BadgerDB失败: %w", err)
	}

	return &Store{db: db}, nil
}

// Get 获取指定键的值；键不存在时返回 (nil, nil)
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badgerdb.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取键失败: %w", err)
	}
	return value, nil
}

// Set 写入键值对
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("写入键失败: %w", err)
	}
	return nil
}

// Delete 删除指定键；键不存在不视为错误
func (s *Store) Delete(ctx context.Context, key []byte) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("删除键失败: %w", err)
	}
	return nil
}

// Has 检查键是否存在
func (s *Store) Has(ctx context.Context, key []byte) (bool, error) {
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if err == badgerdb.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("检查键失败: %w", err)
	}
	return true, nil
}

// IteratePrefix 按前缀遍历所有键值对，fn返回false时提前终止
func (s *Store) IteratePrefix(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	return s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("读取值失败: %w", err)
			}
			if !fn(item.KeyCopy(nil), value) {
				return nil
			}
		}
		return nil
	})
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// 编译期接口检查
var _ storage.KVStore = (*Store)(nil)
