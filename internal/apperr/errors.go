// Package apperr 定义业务错误分类，handler 层据此映射 HTTP 状态码。
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// ErrStockConflict 条件扣减库存未命中（并发下被其他订单抢先）
var ErrStockConflict = errors.New("stock changed concurrently")

// Error 带分类的业务错误。Msg 可以返回给调用方，Err 只用于日志。
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound 资源不存在
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// BadRequest 参数非法或状态不允许
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized 认证失败
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// Internal 包装底层错误
func Internal(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// StockConflict 并发扣减失败，订单整体回滚
func StockConflict(bookID int64) *Error {
	return &Error{
		Kind: KindBadRequest,
		Msg:  fmt.Sprintf("stock of book %d was taken by another order, please retry", bookID),
		Err:  ErrStockConflict,
	}
}

// KindOf 返回错误分类；非 *Error 一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is 判断 err 是否属于分类 k
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
