// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"errors"
	"strings"
)

// ErrDuplicateKey 唯一约束冲突，由各实现归一化返回
var ErrDuplicateKey = errors.New("duplicate key")

// TxKey 事务上下文键类型
type TxKey struct{}

// Transactor 事务管理接口
type Transactor interface {
	// WithTransaction 在事务中执行操作
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pagination 分页参数（offset/limit 风格）
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// NewPagination 创建分页参数
func NewPagination(offset, limit int) Pagination {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return Pagination{Offset: offset, Limit: limit}
}

// PagedResult 分页结果
type PagedResult[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

// NewPagedResult 创建分页结果
func NewPagedResult[T any](items []T, total int64, pagination Pagination) *PagedResult[T] {
	return &PagedResult[T]{
		Items:  items,
		Total:  total,
		Offset: pagination.Offset,
		Limit:  pagination.Limit,
	}
}

// SortOrder 排序方向
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// Sort 排序参数
type Sort struct {
	Field string    `json:"field"`
	Order SortOrder `json:"order"`
}

// NewSort 创建排序参数，排序方向大小写不敏感，非法值回退为倒序
func NewSort(field, order string) Sort {
	normalized := SortOrderDesc
	if strings.EqualFold(order, string(SortOrderAsc)) {
		normalized = SortOrderAsc
	}
	return Sort{Field: field, Order: normalized}
}
