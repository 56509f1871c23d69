// Package logger 封装zerolog，统一日志格式
//
// 教学要点：
// - console格式便于本地开发阅读，json格式便于ELK等日志系统采集
// - 日志字段使用snake_case（product_id、trace_id），便于检索
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config 日志配置
type Config struct {
	Level  string // trace | debug | info | warn | error
	Format string // console | json
	Output io.Writer
}

// New 创建结构化日志
// console格式输出彩色可读日志，其余格式输出JSON
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.Output != nil {
		w = cfg.Output
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	}

	zl := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()

	// 同步全局logger，第三方库通过log.Logger输出时格式一致
	log.Logger = zl
	return zl
}

// ParseLevel 解析日志级别，未知值返回info
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Nop 不输出任何日志（测试用）
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
