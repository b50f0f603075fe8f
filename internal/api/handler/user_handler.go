package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookstore/internal/service"
	"github.com/d60-Lab/bookstore/pkg/response"
)

type updateProfileRequest struct {
	Nickname  *string `json:"nickname" binding:"omitempty,max=50"`
	Email     *string `json:"email" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	Gender    *string `json:"gender" binding:"omitempty,max=10"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=255"`
	BirthDate *string `json:"birth_date"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// GetProfile 个人资料
// @Summary 个人资料
// @Tags 用户
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.User}
// @Router /api/user/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.userService.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u)
}

// UpdateProfile 修改资料，未传的字段保持不变
// @Summary 修改个人资料
// @Tags 用户
// @Security BearerAuth
// @Accept json
// @Param request body updateProfileRequest true "资料"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Router /api/user/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.UpdateProfile(c.Request.Context(), currentUser(c), service.ProfileUpdate{
		Nickname:  req.Nickname,
		Email:     req.Email,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags 用户
// @Security BearerAuth
// @Accept json
// @Param request body changePasswordRequest true "新旧密码"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/user/change-password [post]
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.userService.ChangePassword(c.Request.Context(), currentUser(c), req.OldPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetStats 个人中心统计
// @Summary 订单数、收藏数、累计消费
// @Tags 用户
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.UserStats}
// @Router /api/user/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	s, err := h.userService.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, s)
}
