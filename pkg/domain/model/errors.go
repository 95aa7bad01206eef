// 指示: miu200521358
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrReference は名前やインデックスの参照解決に失敗したことを表す。
	ErrReference = errors.New("参照解決エラー")
	// ErrPrecondition は処理の前提条件を満たさない入力であることを表す。
	ErrPrecondition = errors.New("前提条件エラー")
)

// ReferenceError は参照整合性エラーを表す。
type ReferenceError struct {
	Kind  string
	Name  string
	Index int
}

// NewReferenceError は参照整合性エラーを生成する。
func NewReferenceError(kind string, name string, index int) error {
	return &ReferenceError{Kind: kind, Name: name, Index: index}
}

// Error はエラーメッセージを返す。
func (e *ReferenceError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s が見つかりません: %s", ErrReference, e.Kind, e.Name)
	}
	return fmt.Sprintf("%s: %s が見つかりません: index=%d", ErrReference, e.Kind, e.Index)
}

// Unwrap は分類用の番兵エラーを返す。
func (e *ReferenceError) Unwrap() error {
	return ErrReference
}

// PreconditionError は前提条件違反を表す。
type PreconditionError struct {
	Reason string
}

// NewPreconditionError は前提条件違反エラーを生成する。
func NewPreconditionError(format string, params ...any) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, params...)}
}

// Error はエラーメッセージを返す。
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPrecondition, e.Reason)
}

// Unwrap は分類用の番兵エラーを返す。
func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}
