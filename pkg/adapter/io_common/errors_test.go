// 指示: miu200521358
package io_common

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIoErrorKindsAreMatchable(t *testing.T) {
	cause := os.ErrNotExist
	err := NewIoFileNotFound("avatar.vrm", cause)
	assert.ErrorIs(t, err, ErrIoFileNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrIoParseFailed)
	assert.Contains(t, err.Error(), "avatar.vrm")

	err = NewIoFormatNotSupported("GLBバージョンが未対応です: %d", nil, 3)
	assert.ErrorIs(t, err, ErrIoFormatNotSupported)
	assert.Equal(t, "GLBバージョンが未対応です: 3", err.Error())

	err = NewIoParseFailed("100%完了", nil)
	assert.Equal(t, "100%完了", err.Error())
}

func TestIoErrorWrapsCause(t *testing.T) {
	cause := errors.New("broken")
	err := NewIoSaveFailed("保存できません", cause)
	assert.ErrorIs(t, err, ErrIoSaveFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "保存できません: broken", err.Error())
	assert.ErrorIs(t, NewIoExtInvalid("a.pmx", nil), ErrIoExtInvalid)
}
