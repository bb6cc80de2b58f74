// Package storage 提供锚定系统的键值存储接口定义
//
// 💾 **BadgerDB存储服务 (BadgerDB Storage Service)**
//
// 本文件定义了系统的键值存储接口，专注于：
// - 高性能存储：BadgerDB的原生高性能键值存储服务
// - 前缀遍历：支持按键前缀恢复模块状态
// - 显式缺失：键不存在返回 (nil, nil)，不视为错误
//
// 🎯 **设计原则**
// - 性能优先：充分利用BadgerDB的性能优势
// - 数据安全：写入即落盘，进程重启后可恢复
// - 易用性：简洁的接口设计和错误处理
package storage

import "context"

// KVStore 定义键值存储的应用接口
//
// 被登记处、收件信箱等模块用于持久化自身状态。
type KVStore interface {
	// Get 获取指定键的值；键不存在时返回 (nil, nil)
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 写入键值对
	Set(ctx context.Context, key, value []byte) error

	// Delete 删除指定键；键不存在不视为错误
	Delete(ctx context.Context, key []byte) error

	// Has 检查键是否存在
	Has(ctx context.Context, key []byte) (bool, error)

	// IteratePrefix 按前缀遍历所有键值对，fn返回false时提前终止
	IteratePrefix(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// Close 关闭数据库连接
	// 应用关闭时必须调用此方法以避免数据损坏
	Close() error
}
