package apperr

import (
	"errors"
	"fmt"
)

// Kind 领域错误分类。传输层据此映射 HTTP/gRPC 状态码，
// 业务层据此做分支判断（errors.Is / apperr.IsKind）。
type Kind int

const (
	KindUnknown           Kind = iota
	KindValidation             // 入参非法/缺失（未发生任何变更）
	KindPermission             // 当前 actor 无权执行该操作
	KindStateConflict          // 状态机前置条件不满足（如 ride 非 PENDING）
	KindInsufficientFunds      // 余额不足
	KindDuplicateBid           // 同一 business 下重复出价
	KindGateway                // 外部支付网关失败/超时
	KindNotFound               // 目标实体不存在
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindStateConflict:
		return "state_conflict"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindDuplicateBid:
		return "duplicate_bid"
	case KindGateway:
		return "gateway"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error 携带分类的领域错误。
type Error struct {
	Kind Kind
	Msg  string
	Err  error // 可选的底层错误
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建指定分类的错误。
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf 创建指定分类的错误（格式化消息）。
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误并附加分类。
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf 解析错误的分类；非领域错误返回 KindUnknown。
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// IsKind 判断错误是否属于指定分类。
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Validation / Permission / ... 常用分类的便捷构造。
func Validation(msg string) *Error        { return New(KindValidation, msg) }
func Permission(msg string) *Error        { return New(KindPermission, msg) }
func StateConflict(msg string) *Error     { return New(KindStateConflict, msg) }
func InsufficientFunds(msg string) *Error { return New(KindInsufficientFunds, msg) }
func DuplicateBid(msg string) *Error      { return New(KindDuplicateBid, msg) }
func NotFound(msg string) *Error          { return New(KindNotFound, msg) }

// Gateway 包装网关调用失败（保留底层错误便于排查）。
func Gateway(msg string, err error) *Error { return Wrap(KindGateway, msg, err) }
