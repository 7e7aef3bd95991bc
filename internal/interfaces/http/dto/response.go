// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/domain/repository"
	apperrors "inkpress-ai-api/pkg/errors"
)

// ErrorBody 统一错误载荷
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse 统一错误信封
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// Paged 以资源名为键返回分页结果信封，如 {"articles": [...], "total": 3, ...}
func Paged[T any](c *gin.Context, key string, result *repository.PagedResult[T]) {
	c.JSON(http.StatusOK, gin.H{
		key:      result.Items,
		"total":  result.Total,
		"limit":  result.Limit,
		"offset": result.Offset,
	})
}

// OK 返回 200 成功响应
func OK[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, data)
}

// Created 返回 201 创建成功响应
func Created[T any](c *gin.Context, data T) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 返回 204 无内容响应
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail 把业务错误翻译为 HTTP 状态码与错误信封
// 非 AppError 的意外错误统一映射为 500，不向客户端泄露内部细节
func Fail(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			Error: ErrorBody{
				Code:    string(appErr.Code),
				Message: appErr.Message,
				Details: detailsOf(appErr),
			},
			TraceID: c.GetString("trace_id"),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorBody{
			Code:    string(apperrors.CodeInternalError),
			Message: "internal server error",
		},
		TraceID: c.GetString("trace_id"),
	})
}

// FailValidation 返回 400 参数错误
func FailValidation(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorBody{
			Code:    string(apperrors.CodeInvalidParam),
			Message: message,
		},
		TraceID: c.GetString("trace_id"),
	})
}

func detailsOf(appErr *apperrors.AppError) any {
	if appErr.Detail == "" {
		return nil
	}
	return appErr.Detail
}
