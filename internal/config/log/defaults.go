package log

import "go.uber.org/zap/zapcore"

// 默认日志配置
const (
	defaultLogLevel  = "info"
	defaultToConsole = true
	defaultFilePath  = "" // 为空时不写文件

	defaultMaxSize    = 100 // MB
	defaultMaxBackups = 10
	defaultMaxAge     = 30 // 天
	defaultCompress   = true

	defaultEnableCaller     = true
	defaultEnableStacktrace = false
)

// defaultLevelMap 级别名称到zap级别的映射
var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"fatal": zapcore.FatalLevel,
}
