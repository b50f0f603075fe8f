// Package response 统一的 JSON 响应格式
package response

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/pkg/logger"
)

// Response 通用响应体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResult 分页数据
type PageResult struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Pages int64       `json:"pages"`
}

// NewPage 计算总页数
func NewPage(list interface{}, total int64, page, limit int) PageResult {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return PageResult{List: list, Total: total, Page: page, Limit: limit, Pages: pages}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: msg})
}

// InternalError 记录日志并上报 Sentry，对外只返回通用提示
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err),
	)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
	c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: "internal server error"})
}

// Error 按业务错误分类映射状态码
func Error(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		InternalError(c, err)
		return
	}
	switch e.Kind {
	case apperr.KindNotFound:
		NotFound(c, e.Msg)
	case apperr.KindBadRequest:
		BadRequest(c, e.Msg)
	case apperr.KindUnauthorized:
		Unauthorized(c, e.Msg)
	default:
		InternalError(c, err)
	}
}
