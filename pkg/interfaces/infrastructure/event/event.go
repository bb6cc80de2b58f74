// Package event 提供锚定系统的事件总线接口定义
//
// 📋 **事件总线接口 (Event Bus Interface)**
//
// 本文件定义了系统的事件总线接口，专注于：
// - 发布/订阅模式的事件分发
// - 同步与异步订阅
// - 订阅生命周期管理
//
// 🎯 **设计原则**
// - 松耦合：发布方与订阅方只共享事件主题和载荷类型
// - 可测试：接口可被内存实现替换，便于单元测试
// - 简单优先：只暴露锚定系统实际使用的能力
package event

// EventType 事件类型（主题）
type EventType string

// EventBus 定义事件总线接口
//
// 注意：事件总线由DI容器自动管理生命周期。
type EventBus interface {
	// Subscribe 订阅事件（同步回调）
	Subscribe(eventType EventType, handler interface{}) error

	// SubscribeAsync 异步订阅事件
	// transactional 为 true 时同一订阅者的回调串行执行
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error

	// SubscribeOnce 一次性订阅事件
	SubscribeOnce(eventType EventType, handler interface{}) error

	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})

	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error

	// WaitAsync 等待所有异步处理完成
	WaitAsync()

	// HasCallback 检查指定主题是否有订阅者
	HasCallback(eventType EventType) bool
}
