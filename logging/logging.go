// Package logging 构建服务使用的 logrus 日志器，并把 gin 的输出桥接到同一目的地。
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// Level 为 logrus 级别名（debug/info/warn/error），空值按 info。
	Level string
	// File 非空时写入按大小滚动的日志文件，否则写标准输出。
	File string
	JSON bool
}

// Logger 持有日志器及其需要在退出时关闭的输出。
type Logger struct {
	*logrus.Logger

	closers []io.Closer
}

// New 按 Options 创建日志器。
func New(opts Options) (*Logger, error) {
	return newLogger(opts, os.Stdout)
}

func newLogger(opts Options, stdout io.Writer) (*Logger, error) {
	level := logrus.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		parsed, err := logrus.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("logging: invalid level %q: %w", s, err)
		}
		level = parsed
	}

	l := &Logger{Logger: logrus.New()}
	l.SetLevel(level)
	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	if opts.File == "" {
		l.SetOutput(stdout)
		return l, nil
	}
	if dir := filepath.Dir(opts.File); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: failed to create log directory: %w", err)
		}
	}
	writer := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
	}
	l.SetOutput(writer)
	l.closers = append(l.closers, writer)
	return l, nil
}

// BridgeGin 让 gin 的默认输出与调试输出走该日志器。
func (l *Logger) BridgeGin() {
	info := l.Writer()
	errw := l.WriterLevel(logrus.ErrorLevel)
	gin.DefaultWriter = info
	gin.DefaultErrorWriter = errw
	gin.DebugPrintFunc = func(format string, values ...any) {
		l.Debugf(strings.TrimRight(format, "\r\n"), values...)
	}
	l.closers = append(l.closers, info, errw)
}

// Close 关闭日志文件与桥接管道。
func (l *Logger) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.closers = nil
	return first
}
