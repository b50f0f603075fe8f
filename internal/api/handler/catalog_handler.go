package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookstore/internal/service"
	"github.com/d60-Lab/bookstore/pkg/response"
)

// ListBooks 图书列表
// @Summary 搜索图书
// @Tags 图书
// @Produce json
// @Param keyword query string false "书名/作者关键字"
// @Param category_id query int false "分类ID"
// @Param sort query string false "recommended | newest | price_asc | price_desc" default(recommended)
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.PageResult}
// @Failure 400 {object} response.Response
// @Router /api/books [get]
func (h *Handler) ListBooks(c *gin.Context) {
	page, limit, ok := paging(c, 20)
	if !ok {
		return
	}
	categoryID, ok := queryInt(c, "category_id", 0)
	if !ok {
		return
	}
	p, err := h.catalogService.FindBooks(c.Request.Context(), service.BookSearch{
		Keyword:    strings.TrimSpace(c.Query("keyword")),
		CategoryID: int64(categoryID),
		Sort:       c.Query("sort"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pageOf(p))
}

// HotBooks 热销榜
// @Summary 热销图书
// @Tags 图书
// @Param limit query int false "数量" default(10)
// @Success 200 {object} response.Response{data=[]model.BookListItem}
// @Router /api/books/hot [get]
func (h *Handler) HotBooks(c *gin.Context) {
	n, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	list, err := h.catalogService.HotBooks(c.Request.Context(), n)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// NewBooks 新书榜
// @Summary 新书上架
// @Tags 图书
// @Param limit query int false "数量" default(10)
// @Success 200 {object} response.Response{data=[]model.BookListItem}
// @Router /api/books/new [get]
func (h *Handler) NewBooks(c *gin.Context) {
	n, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	list, err := h.catalogService.NewBooks(c.Request.Context(), n)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetBook 图书详情
// @Summary 图书详情
// @Tags 图书
// @Param id path int true "图书ID"
// @Success 200 {object} response.Response{data=model.BookDetail}
// @Failure 404 {object} response.Response
// @Router /api/books/{id} [get]
func (h *Handler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.catalogService.GetBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, d)
}

// RelatedBooks 相关推荐
// @Summary 相关图书
// @Tags 图书
// @Param id path int true "图书ID"
// @Param limit query int false "数量" default(4)
// @Success 200 {object} response.Response{data=[]model.BookListItem}
// @Router /api/books/{id}/related [get]
func (h *Handler) RelatedBooks(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	n, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	list, err := h.catalogService.RelatedBooks(c.Request.Context(), id, n)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// BooksByCategory 分类下的图书
// @Summary 分类图书
// @Tags 图书
// @Param categoryId path int true "分类ID"
// @Param sort query string false "排序"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.PageResult}
// @Router /api/books/category/{categoryId} [get]
func (h *Handler) BooksByCategory(c *gin.Context) {
	id, ok := pathID(c, "categoryId")
	if !ok {
		return
	}
	page, limit, ok := paging(c, 20)
	if !ok {
		return
	}
	p, err := h.catalogService.BooksByCategory(c.Request.Context(), id, page, limit, c.Query("sort"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pageOf(p))
}

// ListCategories 分类列表
// @Summary 启用的分类
// @Tags 分类
// @Success 200 {object} response.Response{data=[]model.Category}
// @Router /api/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// CategoryTree 分类树
// @Summary 分类树
// @Tags 分类
// @Success 200 {object} response.Response{data=[]model.CategoryNode}
// @Router /api/categories/tree [get]
func (h *Handler) CategoryTree(c *gin.Context) {
	tree, err := h.catalogService.CategoryTree(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tree)
}

// CategoryBySlug 按 slug 查询分类
// @Summary 分类详情（slug）
// @Tags 分类
// @Param slug path string true "slug"
// @Success 200 {object} response.Response{data=model.Category}
// @Failure 404 {object} response.Response
// @Router /api/categories/slug/{slug} [get]
func (h *Handler) CategoryBySlug(c *gin.Context) {
	cat, err := h.catalogService.CategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cat)
}

// GetCategory 按 ID 查询分类
// @Summary 分类详情
// @Tags 分类
// @Param id path int true "分类ID"
// @Success 200 {object} response.Response{data=model.Category}
// @Failure 404 {object} response.Response
// @Router /api/categories/{id} [get]
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cat, err := h.catalogService.CategoryByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cat)
}

// ListCarousels 首页轮播
// @Summary 轮播图
// @Tags 首页
// @Success 200 {object} response.Response{data=[]model.Carousel}
// @Router /api/carousels [get]
func (h *Handler) ListCarousels(c *gin.Context) {
	list, err := h.catalogService.Carousels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
