// 指示: miu200521358
// Package logging はツール全体で共有するロガーを提供する。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Level はログ出力レベルを表す。
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger は書式付きメッセージを slog へ中継するロガーを表す。
type Logger struct {
	level  *slog.LevelVar
	logger *slog.Logger
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewLogger(os.Stderr, LevelInfo)
)

// NewLogger は出力先とレベルを指定してロガーを生成する。
func NewLogger(w io.Writer, level Level) *Logger {
	lv := &slog.LevelVar{}
	lv.Set(level)
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})
	return &Logger{level: lv, logger: slog.New(handler)}
}

// DefaultLogger はプロセス共通のロガーを返す。
func DefaultLogger() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger はプロセス共通のロガーを差し替える。
func SetDefaultLogger(logger *Logger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// SetLevel は出力レベルを変更する。
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.level.Set(level)
}

// Enabled は指定レベルが出力対象か判定する。
func (l *Logger) Enabled(level Level) bool {
	if l == nil {
		return false
	}
	return l.logger.Enabled(context.Background(), level)
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.log(LevelDebug, format, params...)
}

// Info は情報ログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.log(LevelInfo, format, params...)
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.log(LevelWarn, format, params...)
}

// Error はエラーログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.log(LevelError, format, params...)
}

// log は書式を展開してから出力する。レベル外の場合は書式展開を省略する。
func (l *Logger) log(level Level, format string, params ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := format
	if len(params) > 0 {
		msg = fmt.Sprintf(format, params...)
	}
	l.logger.Log(context.Background(), level, msg)
}
