// Package logging 提供基于 zerolog 的统一日志入口。
//
// 用法：
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	log := logging.Component("ingest")
//	log.Warn().Int("row", i).Str("reason", "missing ITEM_ID").Msg("skip malformed row")
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config 是日志配置。
type Config struct {
	// Level: trace, debug, info, warn, error（默认 info）
	Level string

	// Format: json 或 console（默认 json）
	Format string

	// Output 默认 os.Stderr
	Output io.Writer
}

var (
	mu     sync.RWMutex
	global = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init 配置全局 logger，可重复调用。
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()

	mu.Lock()
	global = l
	mu.Unlock()
}

// ParseLevel 将字符串转换为 zerolog.Level，无法识别时为 info。
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger 返回全局 logger 的副本。
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Component 返回带 component 字段的子 logger。
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// Nop 返回不输出任何内容的 logger，测试中使用。
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
