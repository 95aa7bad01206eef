// 指示: miu200521358
// Package io_common は入出力アダプタ共通のエラーを提供する。
package io_common

import (
	"errors"
	"fmt"
)

var (
	// ErrIoFileNotFound はファイルが存在しないことを表す。
	ErrIoFileNotFound = errors.New("ファイルが見つかりません")
	// ErrIoExtInvalid は拡張子が未対応であることを表す。
	ErrIoExtInvalid = errors.New("拡張子が未対応です")
	// ErrIoParseFailed は解析に失敗したことを表す。
	ErrIoParseFailed = errors.New("解析に失敗しました")
	// ErrIoFormatNotSupported は形式が未対応であることを表す。
	ErrIoFormatNotSupported = errors.New("形式が未対応です")
	// ErrIoSaveFailed は保存に失敗したことを表す。
	ErrIoSaveFailed = errors.New("保存に失敗しました")
)

// IoError は入出力エラーを表す。
type IoError struct {
	kind    error
	message string
	cause   error
}

// Error はエラーメッセージを返す。
func (e *IoError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap は分類用の番兵エラーと原因エラーを返す。
func (e *IoError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// newIoError は書式付きメッセージで入出力エラーを生成する。
func newIoError(kind error, format string, cause error, params ...any) error {
	message := format
	if len(params) > 0 {
		message = fmt.Sprintf(format, params...)
	}
	return &IoError{kind: kind, message: message, cause: cause}
}

// NewIoFileNotFound はファイル未検出エラーを生成する。
func NewIoFileNotFound(path string, cause error) error {
	return newIoError(ErrIoFileNotFound, "ファイルが見つかりません: %s", cause, path)
}

// NewIoExtInvalid は拡張子不正エラーを生成する。
func NewIoExtInvalid(path string, cause error) error {
	return newIoError(ErrIoExtInvalid, "拡張子が未対応です: %s", cause, path)
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(format string, cause error, params ...any) error {
	return newIoError(ErrIoParseFailed, format, cause, params...)
}

// NewIoFormatNotSupported は形式未対応エラーを生成する。
func NewIoFormatNotSupported(format string, cause error, params ...any) error {
	return newIoError(ErrIoFormatNotSupported, format, cause, params...)
}

// NewIoSaveFailed は保存失敗エラーを生成する。
func NewIoSaveFailed(format string, cause error, params ...any) error {
	return newIoError(ErrIoSaveFailed, format, cause, params...)
}
