// Package log 提供锚定系统的日志级别接口定义
package log

import "github.com/rayls/eth-anchor/pkg/types"

// LogLevel 兼容别名（定义在 pkg/types）
type LogLevel = types.LogLevel

// 常量别名
const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)
