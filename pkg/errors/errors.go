// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证授权错误 (2xxx)
	CodeTokenExpired     ErrorCode = "2001"
	CodeTokenInvalid     ErrorCode = "2002"
	CodeTokenMissing     ErrorCode = "2003"
	CodePermissionDenied ErrorCode = "2004"

	// 资源错误 (3xxx)
	CodeProfileNotFound      ErrorCode = "3001"
	CodeArticleNotFound      ErrorCode = "3002"
	CodeStyleGuideNotFound   ErrorCode = "3003"
	CodeOrganizationNotFound ErrorCode = "3004"
	CodeSubscriptionNotFound ErrorCode = "3005"

	// 业务错误 (4xxx)
	CodeQuotaExceeded         ErrorCode = "4001"
	CodeQuotaConflict         ErrorCode = "4002"
	CodeGenerationFailed      ErrorCode = "4003"
	CodeAlreadyPro            ErrorCode = "4004"
	CodeAlreadyCanceled       ErrorCode = "4005"
	CodeCannotReactivate      ErrorCode = "4006"
	CodeNoBillingKey          ErrorCode = "4007"
	CodePaymentFailed         ErrorCode = "4008"
	CodeCannotRemoveOwner     ErrorCode = "4009"
	CodeOwnerCannotLeave      ErrorCode = "4010"
	CodeNotOrganizationMember ErrorCode = "4011"

	// 外部服务错误 (5xxx)
	CodeDatabaseError        ErrorCode = "5001"
	CodeCacheError           ErrorCode = "5002"
	CodeLLMProviderError     ErrorCode = "5003"
	CodePaymentGatewayError  ErrorCode = "5004"
	CodeSEOProviderError     ErrorCode = "5005"
	CodeSEOInvalidCredential ErrorCode = "5006"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeTokenMissing:
		return http.StatusUnauthorized
	case CodeForbidden, CodePermissionDenied, CodeCannotRemoveOwner, CodeOwnerCannotLeave, CodeNotOrganizationMember:
		return http.StatusForbidden
	case CodeNotFound, CodeProfileNotFound, CodeArticleNotFound, CodeStyleGuideNotFound,
		CodeOrganizationNotFound, CodeSubscriptionNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeQuotaConflict, CodeAlreadyPro, CodeAlreadyCanceled,
		CodeCannotReactivate, CodeNoBillingKey:
		return http.StatusConflict
	case CodeTooManyRequests, CodeQuotaExceeded:
		return http.StatusTooManyRequests
	case CodePaymentFailed:
		return http.StatusPaymentRequired
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing = New(CodeTokenMissing, "token missing")

	ErrProfileNotFound      = New(CodeProfileNotFound, "profile not found")
	ErrArticleNotFound      = New(CodeArticleNotFound, "article not found")
	ErrStyleGuideNotFound   = New(CodeStyleGuideNotFound, "style guide not found")
	ErrOrganizationNotFound = New(CodeOrganizationNotFound, "organization not found")
	ErrSubscriptionNotFound = New(CodeSubscriptionNotFound, "subscription not found")

	ErrQuotaConflict     = New(CodeQuotaConflict, "quota counter advanced concurrently")
	ErrGenerationFailed  = New(CodeGenerationFailed, "article generation failed")
	ErrAlreadyPro        = New(CodeAlreadyPro, "already a pro subscriber")
	ErrAlreadyCanceled   = New(CodeAlreadyCanceled, "subscription already canceled")
	ErrCannotReactivate  = New(CodeCannotReactivate, "subscription cannot be reactivated")
	ErrNoBillingKey      = New(CodeNoBillingKey, "no billing key registered")
	ErrCannotRemoveOwner = New(CodeCannotRemoveOwner, "organization owner cannot be removed")
	ErrOwnerCannotLeave  = New(CodeOwnerCannotLeave, "owner must delete the organization instead of leaving")
	ErrNotMember         = New(CodeNotOrganizationMember, "not a member of this organization")
)

// QuotaExceeded 创建带用量详情的配额耗尽错误
func QuotaExceeded(tier string, current, limit int) *AppError {
	return New(CodeQuotaExceeded, "monthly generation quota exceeded").
		WithDetail(fmt.Sprintf("tier=%s used=%d limit=%d", tier, current, limit))
}

// PaymentFailed 创建带网关信息的支付失败错误
func PaymentFailed(gatewayCode, gatewayMessage string) *AppError {
	return New(CodePaymentFailed, "payment failed").
		WithDetail(fmt.Sprintf("gateway_code=%s message=%s", gatewayCode, gatewayMessage))
}

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
