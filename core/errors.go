package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）、模块（Module）和消息（Message）
//   - 可包装底层错误（Err），兼容 errors.Is / errors.As
//
// 使用场景：
//   - 摄入错误：MALFORMED_INPUT（整批不可用，调用方需修正输入后重新摄入）
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - 远程推荐源：UNAVAILABLE
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "MALFORMED_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "ingest", "store", "remote"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is 按 Module + Code 匹配，使 errors.Is(err, ErrMalformedInput) 对包装后的错误同样成立。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Module != "" && t.Module != e.Module {
		return false
	}
	return t.Code == e.Code
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建包装了底层错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeMalformedInput = "MALFORMED_INPUT" // 整批输入结构不可用
	ErrorCodeNotFound       = "NOT_FOUND"       // 资源不存在
	ErrorCodeNotSupported   = "NOT_SUPPORTED"   // 操作不支持
	ErrorCodeUnavailable    = "UNAVAILABLE"     // 服务不可用
	ErrorCodeInvalidInput   = "INVALID_INPUT"   // 输入无效
)

// 模块名称常量
const (
	ModuleIngest     = "ingest"
	ModuleAggregate  = "aggregate"
	ModuleSimilarity = "similarity"
	ModuleRecommend  = "recommend"
	ModuleStore      = "store"
	ModuleRemote     = "remote"
)

// ErrMalformedInput 匹配任意模块的 MALFORMED_INPUT 错误（Module 为空即不限模块）。
var ErrMalformedInput = &DomainError{Code: ErrorCodeMalformedInput, Message: "malformed input"}

// NewMalformedInputError 创建批次级的输入错误。
func NewMalformedInputError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeMalformedInput, message)
}

// IsMalformedInput 检查错误是否为 MALFORMED_INPUT
func IsMalformedInput(err error) bool {
	return hasCode(err, ErrorCodeMalformedInput)
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}
