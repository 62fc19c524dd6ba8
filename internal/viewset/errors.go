package viewset

import (
	"errors"
	"fmt"

	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/repository"
)

// panicError 动作中的 panic
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func asPanic(err error, target **panicError) bool {
	return errors.As(err, target)
}

// ToError 将任意错误转换为业务错误
// 业务错误原样返回，存储层错误按唯一冲突/不存在/其他归类，panic 为 4504，其余为 4500
func ToError(err error) *errcode.Error {
	var pe *panicError
	if errors.As(err, &pe) {
		return errcode.Wrap(errcode.InnerErr, err, fmt.Sprint(pe.value))
	}
	if e, ok := errcode.From(err); ok {
		return e
	}
	if repository.IsStorageError(err) {
		return repository.ClassifyStorageError(err)
	}
	return errcode.Wrap(errcode.SysErr, err, err.Error())
}
