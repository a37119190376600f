package azure2openai

import (
	"errors"
	"strings"
)

// ErrorKind 区分代理内部的失败类别。HTTP 边界层目前把所有类别都映射为 403，
// 保留类别是为了日志与后续细化状态码。
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindAuthentication 缺失或无效的 Bearer token。
	KindAuthentication
	// KindAuthorization 管理路径或管理员密钥不匹配。
	KindAuthorization
	// KindValidation 用户名为空、模型未映射、请求体非法等。
	KindValidation
	// KindNotFound 吊销不存在的用户。
	KindNotFound
	// KindUpstream 访问 Azure 或转发流时的网络/后端错误。
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// 对外可见的错误文案，与旧版 worker 返回的纯文本保持一致。
const (
	MsgAuthRequired       = "Auth required"
	MsgInvalidToken       = "Invalid token"
	MsgMissingModelMapper = "Missing model mapper"
	MsgUserNotFound       = "User not found"
	MsgInvalidUsername    = "Invalid username"
	MsgInvalidAction      = "Invalid action"
	MsgAccessForbidden    = "Access forbidden"
	MsgUnknownReason      = "Unknown reason"
)

// Error 是带类别的错误，Message 会原样作为响应体返回给客户端。
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func (e *Error) Unwrap() error { return e.Err }

// NewError 创建一个不包裹底层错误的 Error。
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError 创建一个包裹 err 的 Error；message 为空时对外展示 err 的文本。
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf 返回 err 链上第一个 *Error 的类别，没有则为 KindUnknown。
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Kind
	}
	return KindUnknown
}

// IsKind 判断 err 是否属于指定类别。
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
