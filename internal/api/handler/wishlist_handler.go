package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookstore/pkg/response"
)

// ListWishlist 收藏列表
// @Summary 收藏列表
// @Tags 收藏
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.PageResult}
// @Router /api/wishlist [get]
func (h *Handler) ListWishlist(c *gin.Context) {
	page, limit, ok := paging(c, 20)
	if !ok {
		return
	}
	p, err := h.wishlistService.List(c.Request.Context(), currentUser(c), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pageOf(p))
}

// AddWishlist 收藏
// @Summary 加入收藏
// @Tags 收藏
// @Security BearerAuth
// @Param bookId path int true "图书ID"
// @Success 201 {object} response.Response{data=model.WishlistItem}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/wishlist/{bookId} [post]
func (h *Handler) AddWishlist(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	item, err := h.wishlistService.Add(c.Request.Context(), currentUser(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// RemoveWishlist 取消收藏
// @Summary 取消收藏
// @Tags 收藏
// @Security BearerAuth
// @Param bookId path int true "图书ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/wishlist/{bookId} [delete]
func (h *Handler) RemoveWishlist(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	if err := h.wishlistService.Remove(c.Request.Context(), currentUser(c), bookID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// CheckWishlist 是否已收藏
// @Summary 是否已收藏
// @Tags 收藏
// @Security BearerAuth
// @Param bookId path int true "图书ID"
// @Success 200 {object} response.Response{data=map[string]bool}
// @Router /api/wishlist/{bookId}/check [get]
func (h *Handler) CheckWishlist(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	in, err := h.wishlistService.Contains(c.Request.Context(), currentUser(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"in_wishlist": in})
}
