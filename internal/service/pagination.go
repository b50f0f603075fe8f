package service

import "github.com/d60-Lab/bookstore/internal/apperr"

// Page 分页结果
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// checkPage 校验页码与每页数量，返回 offset
func checkPage(page, limit, maxLimit int) (int, error) {
	if page < 1 {
		return 0, apperr.BadRequest("page must be >= 1")
	}
	if limit < 1 || limit > maxLimit {
		return 0, apperr.BadRequest("limit must be between 1 and %d", maxLimit)
	}
	return (page - 1) * limit, nil
}

// clampTop 榜单数量：<=0 取默认值，超过上限截断
func clampTop(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
